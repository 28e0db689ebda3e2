package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/noobLue/fullstack5pw/internal/app"
	"github.com/noobLue/fullstack5pw/internal/platform/config"
	"github.com/noobLue/fullstack5pw/internal/platform/logger"
	"github.com/noobLue/fullstack5pw/internal/platform/migration"
	"github.com/noobLue/fullstack5pw/internal/platform/telemetry"
	usecaseAccount "github.com/noobLue/fullstack5pw/internal/usecase/account"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args); err != nil {
		slog.Error("admin command failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) < 2 {
		printUsage()
		return fmt.Errorf("missing command")
	}
	switch args[1] {
	case "reset":
		return runReset(ctx, args[2:])
	case "create-user":
		return runCreateUser(ctx, args[2:])
	case "migrate":
		return runMigrate(args[2:])
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[1])
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  admin reset --yes")
	fmt.Fprintln(os.Stderr, "  admin create-user --username root --name Rooty --password sekret")
	fmt.Fprintln(os.Stderr, "  admin migrate up|down|version")
}

// setup loads config and builds the logger, wiring Sentry when configured.
// The returned cleanup flushes Sentry.
func setup() (*config.Config, *slog.Logger, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	sentryEnabled, err := telemetry.InitSentry(cfg.Sentry)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init sentry: %w", err)
	}

	log := logger.New(logger.Config{
		Level:   logger.Level(cfg.App.LogLevel),
		Format:  logger.Format(cfg.App.LogFormat),
		Service: "bloglist-admin",
		Output:  os.Stderr,
	})
	if sentryEnabled {
		log = logger.WrapWithSentry(log)
	}
	logger.SetDefault(log)

	cleanup := func() {
		if sentryEnabled {
			telemetry.Flush(2 * time.Second)
		}
	}
	return cfg, log, cleanup, nil
}

func runReset(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reset", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	yes := fs.Bool("yes", false, "required confirmation")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*yes {
		return fmt.Errorf("--yes is required")
	}

	cfg, log, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()
	if cfg.App.Storage == config.StorageMemory {
		return fmt.Errorf("reset needs shared storage; APP_STORAGE is %q", cfg.App.Storage)
	}

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	services, err := app.NewServices(stores, cfg, nil, log)
	if err != nil {
		return err
	}
	if err := services.Admin.Reset(ctx); err != nil {
		return err
	}
	log.Info("reset completed")
	return nil
}

func runCreateUser(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-user", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	username := fs.String("username", "", "account handle (required)")
	name := fs.String("name", "", "display name (required)")
	password := fs.String("password", "", "password; falls back to ADMIN_USER_PASSWORD")
	if err := fs.Parse(args); err != nil {
		return err
	}
	pw := *password
	if pw == "" {
		pw = os.Getenv("ADMIN_USER_PASSWORD")
	}
	if strings.TrimSpace(*username) == "" || strings.TrimSpace(*name) == "" || pw == "" {
		return fmt.Errorf("--username, --name and a password are required")
	}

	cfg, log, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()
	if cfg.App.Storage == config.StorageMemory {
		return fmt.Errorf("create-user needs shared storage; APP_STORAGE is %q", cfg.App.Storage)
	}

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer stores.Close()

	services, err := app.NewServices(stores, cfg, nil, log)
	if err != nil {
		return err
	}
	acc, err := services.Accounts.Register(ctx, usecaseAccount.RegisterParams{
		Username: *username,
		Name:     *name,
		Password: pw,
	})
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	fmt.Println(acc.ID.String())
	return nil
}

func runMigrate(args []string) error {
	if len(args) < 1 {
		printUsage()
		return fmt.Errorf("missing migrate subcommand")
	}

	cfg, log, cleanup, err := setup()
	if err != nil {
		return err
	}
	defer cleanup()
	if !cfg.UsesPostgres() {
		return fmt.Errorf("migrate requires APP_STORAGE=%s", config.StoragePostgres)
	}

	runner, err := migration.New(migration.Config{
		DatabaseURL:    cfg.Database.ConnectionString(),
		MigrationsPath: cfg.App.MigrationsPath,
		Logger:         log,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := runner.Close(); err != nil {
			log.Warn("failed to close migration runner", "error", err)
		}
	}()

	switch args[0] {
	case "up":
		return runner.Up()
	case "down":
		return runner.Down()
	case "version":
		version, dirty, err := runner.Version()
		if err != nil {
			return err
		}
		fmt.Printf("version=%d dirty=%t\n", version, dirty)
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown migrate subcommand: %s", args[0])
	}
}
