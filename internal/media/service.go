package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	DefaultMaxUploadSize int64 = 5 << 20
	defaultRemoteTimeout       = 20 * time.Second
)

// DefaultExtensions lists the image extensions accepted for upload.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".svg", ".avif"}

// ReferenceCounter reports how many records reference an image by id or URL.
type ReferenceCounter interface {
	CountImageReferences(ctx context.Context, imageID uuid.UUID, url string) (int, error)
}

// Service exposes image library use-cases.
type Service interface {
	Upload(ctx context.Context, req UploadRequest) (*Image, error)
	Rehost(ctx context.Context, remoteURL string) (*Image, error)
	Get(ctx context.Context, id uuid.UUID) (*Image, error)
	List(ctx context.Context) ([]*Image, error)
	Delete(ctx context.Context, id uuid.UUID) error
	AdjustUsage(ctx context.Context, deltas map[uuid.UUID]int) error
}

// UploadRequest describes an incoming file. Size may be zero when unknown.
type UploadRequest struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

// ServiceOption configures the service at construction time.
type ServiceOption func(*service)

func WithReferenceCounter(counter ReferenceCounter) ServiceOption {
	return func(s *service) {
		s.references = counter
	}
}

func WithMaxUploadSize(limit int64) ServiceOption {
	return func(s *service) {
		if limit > 0 {
			s.maxSize = limit
		}
	}
}

// WithExtensions replaces the allow-list. Entries are matched case-insensitively.
func WithExtensions(extensions ...string) ServiceOption {
	return func(s *service) {
		if len(extensions) == 0 {
			return
		}
		s.extensions = normalizeExtensions(extensions)
	}
}

func WithHTTPClient(client *http.Client) ServiceOption {
	return func(s *service) {
		if client != nil {
			s.client = client
		}
	}
}

func WithClock(clock func() time.Time) ServiceOption {
	return func(s *service) {
		if clock != nil {
			s.now = clock
		}
	}
}

type IDGenerator func() uuid.UUID

func WithIDGenerator(generator IDGenerator) ServiceOption {
	return func(s *service) {
		if generator != nil {
			s.id = generator
		}
	}
}

func WithLogger(logger interfaces.Logger) ServiceOption {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

type service struct {
	repo       Repository
	store      ObjectStore
	references ReferenceCounter
	maxSize    int64
	extensions map[string]struct{}
	client     *http.Client
	now        func() time.Time
	id         IDGenerator
	logger     interfaces.Logger
}

// NewService constructs the image library service.
func NewService(repo Repository, store ObjectStore, opts ...ServiceOption) Service {
	s := &service{
		repo:       repo,
		store:      store,
		maxSize:    DefaultMaxUploadSize,
		extensions: normalizeExtensions(DefaultExtensions),
		client:     &http.Client{Timeout: defaultRemoteTimeout},
		now:        time.Now,
		id:         uuid.New,
		logger:     logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *service) Upload(ctx context.Context, req UploadRequest) (*Image, error) {
	if s.store == nil {
		return nil, ErrStoreUnavailable
	}
	filename := path.Base(strings.ReplaceAll(strings.TrimSpace(req.Filename), "\\", "/"))
	if req.Body == nil || filename == "" || filename == "." || filename == "/" {
		return nil, ErrFileRequired
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := s.extensions[ext]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrExtensionNotAllowed, ext)
	}
	if req.Size > s.maxSize {
		return nil, ErrFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(req.Body, s.maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("media: read upload: %w", err)
	}
	if int64(len(data)) > s.maxSize {
		return nil, ErrFileTooLarge
	}
	if len(data) == 0 {
		return nil, ErrFileRequired
	}

	contentType := strings.TrimSpace(req.ContentType)
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = detectContentType(ext, data)
	}

	now := s.now()
	id := s.id()
	key := fmt.Sprintf("%04d/%02d/%s%s", now.Year(), int(now.Month()), id.String(), ext)

	publicURL, err := s.store.Put(ctx, key, bytes.NewReader(data), contentType)
	if err != nil {
		return nil, fmt.Errorf("media: store object: %w", err)
	}

	image := &Image{
		ID:          id,
		URL:         publicURL,
		Key:         key,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := s.repo.Create(ctx, image)
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			s.log(ctx).Warn("media object cleanup failed", "key", key, "error", delErr)
		}
		return nil, err
	}
	s.log(ctx).Info("image uploaded", "id", created.ID.String(), "url", created.URL, "size", created.Size)
	return created, nil
}

// Rehost downloads a remote image and stores it through Upload.
func (s *service) Rehost(ctx context.Context, remoteURL string) (*Image, error) {
	parsed, err := url.Parse(strings.TrimSpace(remoteURL))
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, ErrRemoteURLInvalid
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteFetchFailed, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemoteFetchFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d", ErrRemoteFetchFailed, resp.StatusCode)
	}

	filename := path.Base(parsed.Path)
	if filepath.Ext(filename) == "" {
		filename += extensionFor(resp.Header.Get("Content-Type"))
	}
	return s.Upload(ctx, UploadRequest{
		Filename:    filename,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
		Body:        resp.Body,
	})
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*Image, error) {
	if id == uuid.Nil {
		return nil, ErrImageIDRequired
	}
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context) ([]*Image, error) {
	return s.repo.List(ctx)
}

// Delete refuses while any record references the image. The stored usage
// counter is reconciled with the computed reference count first.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return ErrImageIDRequired
	}
	image, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	usage := image.UsageCount
	if s.references != nil {
		computed, err := s.references.CountImageReferences(ctx, image.ID, image.URL)
		if err != nil {
			return fmt.Errorf("media: count image references: %w", err)
		}
		if computed != usage {
			s.log(ctx).Warn("image usage counter drifted", "id", image.ID.String(), "stored", usage, "computed", computed)
			if err := s.AdjustUsage(ctx, map[uuid.UUID]int{image.ID: computed - usage}); err != nil {
				return err
			}
		}
		usage = computed
	}
	if usage > 0 {
		return ErrImageInUse
	}

	if s.store != nil {
		if err := s.store.Delete(ctx, image.Key); err != nil {
			return fmt.Errorf("media: delete object: %w", err)
		}
	}
	if err := s.repo.Delete(ctx, image.ID); err != nil {
		return err
	}
	s.log(ctx).Info("image deleted", "id", image.ID.String(), "url", image.URL)
	return nil
}

func (s *service) AdjustUsage(ctx context.Context, deltas map[uuid.UUID]int) error {
	if len(deltas) == 0 {
		return nil
	}
	return s.repo.AdjustUsage(ctx, deltas)
}

func (s *service) log(ctx context.Context) interfaces.Logger {
	return logging.FromContext(ctx, s.logger)
}

// IsNotFound reports whether err wraps a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func normalizeExtensions(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, value := range values {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			continue
		}
		if !strings.HasPrefix(value, ".") {
			value = "." + value
		}
		out[value] = struct{}{}
	}
	return out
}

func detectContentType(ext string, data []byte) string {
	switch ext {
	case ".svg":
		return "image/svg+xml"
	case ".avif":
		return "image/avif"
	case ".webp":
		return "image/webp"
	}
	return http.DetectContentType(data)
}

func extensionFor(contentType string) string {
	mediaType := strings.ToLower(strings.TrimSpace(strings.Split(contentType, ";")[0]))
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	case "image/svg+xml":
		return ".svg"
	case "image/avif":
		return ".avif"
	}
	return ""
}
