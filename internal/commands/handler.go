package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/pkg/interfaces"
)

const defaultHandlerTimeout = 30 * time.Second

// Outcomes reported to an Observer.
const (
	OutcomeOK        = "ok"
	OutcomeInvalid   = "invalid"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// Observer is told how every command execution ended.
type Observer interface {
	ObserveCommand(command, outcome string)
}

type HandlerOption[T command.Message] func(*Handler[T])

// Handler runs a showcase command: it validates the message, bounds the
// context, logs the run with its duration and reports the outcome.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	observer  Observer
	timeout   time.Duration
	operation string
	now       func() time.Time
}

// NewHandler returns a command.Commander[T] around fn.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: defaultHandlerTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	name := command.GetMessageType(msg)
	outcome := OutcomeOK
	defer func() {
		if h.observer != nil {
			h.observer.ObserveCommand(name, outcome)
		}
	}()

	if verr := command.ValidateMessage(msg); verr != nil {
		outcome = OutcomeInvalid
		return wrapValidationError(verr)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}
	if cerr := ctx.Err(); cerr != nil {
		outcome = OutcomeCancelled
		return wrapContextError(cerr)
	}

	fields := map[string]any{"command": name}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	logger := logging.WithFields(h.logger, fields)
	logger.Debug("command.execute.start")
	started := h.now()

	if xerr := h.exec(ctx, msg); xerr != nil {
		outcome = OutcomeFailed
		logger.Error("command.execute.failed", "error", xerr, "duration", h.now().Sub(started))
		return wrapExecuteError(xerr)
	}
	if cerr := ctx.Err(); cerr != nil {
		outcome = OutcomeCancelled
		logger.Error("command.execute.context_error", "error", cerr)
		return wrapContextError(cerr)
	}
	logger.Info("command.execute.success", "duration", h.now().Sub(started))
	return nil
}

// WithTimeout overrides the default execution timeout. Zero disables it.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.timeout = max(timeout, 0)
	}
}

func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		if logger == nil {
			logger = logging.NoOp()
		}
		h.logger = logger
	}
}

// WithOperation names the operation in every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

func WithObserver[T command.Message](observer Observer) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.observer = observer
	}
}
