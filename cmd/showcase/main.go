package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/goliatone/go-command/dispatcher"
	showcase "github.com/goliatone/go-showcase"
	"github.com/goliatone/go-showcase/internal/commands"
	"github.com/goliatone/go-showcase/internal/logging"
	"github.com/goliatone/go-showcase/pkg/storage"
	"github.com/uptrace/bun"
)

type options struct {
	configPath   string
	addr         string
	migrate      bool
	seedAdmin    string
	importStatic string
	dryRun       bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		log.Fatalf("showcase: %v", err)
	}
}

func parseFlags(args []string) (options, error) {
	fs := flag.NewFlagSet("showcase", flag.ContinueOnError)
	var opts options
	fs.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	fs.StringVar(&opts.addr, "addr", "", "Listen address (overrides http.addr)")
	fs.BoolVar(&opts.migrate, "migrate", true, "Apply schema migrations before serving")
	fs.StringVar(&opts.seedAdmin, "seed-admin", "", "Ensure a SUPER_ADMIN exists, as email:password")
	fs.StringVar(&opts.importStatic, "import-static", "", "Copy static sections into the database for the given locales (comma separated, \"all\" for every locale)")
	fs.BoolVar(&opts.dryRun, "dry-run", false, "Report what -import-static would create without writing")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	return opts, nil
}

func parseSeed(value string) (string, string, error) {
	email, password, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || strings.TrimSpace(email) == "" || password == "" {
		return "", "", fmt.Errorf("seed-admin must be email:password")
	}
	return strings.TrimSpace(email), password, nil
}

func parseLocales(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, "all") {
		return nil
	}
	var locales []string
	for _, code := range strings.Split(value, ",") {
		if code = strings.TrimSpace(code); code != "" {
			locales = append(locales, code)
		}
	}
	return locales
}

func run(ctx context.Context, args []string) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	cfg, err := showcase.LoadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.HTTP.Addr = opts.addr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	moduleOpts := []showcase.Option{}
	var db *bun.DB
	if !strings.EqualFold(strings.TrimSpace(cfg.Database.Driver), "memory") {
		db, err = storage.Open(ctx, storage.Config{
			Driver: cfg.Database.Driver,
			DSN:    cfg.Database.DSN,
		})
		if err != nil {
			return err
		}
		defer db.Close()
		if opts.migrate {
			if _, err := showcase.Migrate(ctx, db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
		}
		moduleOpts = append(moduleOpts, showcase.WithBunDB(db))
	}

	module, err := showcase.New(cfg, moduleOpts...)
	if err != nil {
		return err
	}
	logger := logging.ModuleLogger(module.Container().LoggerProvider(), "showcase.cmd")
	if db != nil && cfg.Database.Debug {
		db.AddQueryHook(storage.NewQueryLogger(logging.ModuleLogger(module.Container().LoggerProvider(), "showcase.db")))
	}

	subs := module.Container().RegisterCommands()
	defer commands.Unsubscribe(subs)

	if opts.seedAdmin != "" {
		email, password, err := parseSeed(opts.seedAdmin)
		if err != nil {
			return err
		}
		if err := dispatcher.Dispatch(ctx, commands.SeedAdminCommand{Email: email, Password: password}); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
	}
	if opts.importStatic != "" {
		var result commands.ImportResult
		cmd := commands.ImportStaticContentCommand{
			Locales: parseLocales(opts.importStatic),
			DryRun:  opts.dryRun,
			Result:  &result,
		}
		if err := dispatcher.Dispatch(ctx, cmd); err != nil {
			return fmt.Errorf("import static: %w", err)
		}
		for _, key := range result.Created {
			logger.Info("static section imported", "key", key.String(), "dry_run", opts.dryRun)
		}
	}

	server := &http.Server{
		Addr:         cfg.HTTP.Addr,
		Handler:      module.Handler(),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}
	errs := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTP.Addr, "driver", cfg.Database.Driver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errs
}
