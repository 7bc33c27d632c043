package main

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"

	"github.com/directory-app/directory-api/auth"
	"github.com/directory-app/directory-api/config"
)

func main() {
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "directory-api",
	})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("unable to load configuration", "error", err)
	}

	if level, err := charmlog.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB(ctx, cfg)
	if err != nil {
		logger.Fatal("unable to open database", "error", err)
	}
	defer db.Close()

	repo := auth.NewRepositoryManager(db)
	repo.MustValidate()

	dispatcher := auth.NewDispatcher(cfg.QueueSize, cfg.Workers, named(logger, "dispatch"))

	mailer, err := auth.NewVerificationMailer(auth.LogNotifier{Logger: named(logger, "mail")}, cfg.GetAppHost())
	if err != nil {
		logger.Fatal("unable to initialize mailer", "error", err)
	}

	auther := auth.NewAuthenticator(repo, cfg).WithLogger(named(logger, "auth"))

	createAccount := auth.NewCreateAccountHandler(repo, mailer, dispatcher).
		WithLogger(named(logger, "signup"))

	app := fiber.New(fiber.Config{
		AppName:               "directory-api",
		DisableStartupMessage: true,
	})

	auth.RegisterAuthRoutes(app, func(c *auth.AuthController) *auth.AuthController {
		c.Auther = auther
		c.CreateAccount = createAccount
		c.Repo = repo
		c.WithLogger(named(logger, "http"))
		return c
	})

	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		if err := app.Listen(cfg.Addr); err != nil {
			logger.Error("server stopped", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	if err := app.Shutdown(); err != nil {
		logger.Error("http shutdown error", "error", err)
	}

	// Drain pending verification tokens and emails before exiting.
	if err := dispatcher.Close(); err != nil {
		logger.Error("dispatcher shutdown error", "error", err)
	}
}

func openDB(ctx context.Context, cfg *config.Config) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	migrationsFS, err := fs.Sub(auth.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, err
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(migrationsFS); err != nil {
		return nil, err
	}

	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, err
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

// named adapts a scoped charm logger to the auth.Logger interface.
func named(logger *charmlog.Logger, name string) auth.Logger {
	return charmAdapter{logger.With("component", name)}
}

type charmAdapter struct {
	l *charmlog.Logger
}

func (c charmAdapter) Debug(msg string, args ...any) { c.l.Debug(msg, args...) }
func (c charmAdapter) Info(msg string, args ...any)  { c.l.Info(msg, args...) }
func (c charmAdapter) Warn(msg string, args ...any)  { c.l.Warn(msg, args...) }
func (c charmAdapter) Error(msg string, args ...any) { c.l.Error(msg, args...) }
