package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/malariaconnect/api/internal/config"
	"github.com/malariaconnect/api/internal/domain/actor"
	"github.com/malariaconnect/api/internal/domain/cases"
	"github.com/malariaconnect/api/internal/domain/digest"
	"github.com/malariaconnect/api/internal/domain/facility"
	"github.com/malariaconnect/api/internal/domain/jembi"
	"github.com/malariaconnect/api/internal/domain/notify"
	"github.com/malariaconnect/api/internal/domain/ona"
	"github.com/malariaconnect/api/internal/platform/db"
	"github.com/malariaconnect/api/internal/platform/email"
	"github.com/malariaconnect/api/internal/platform/middleware"
	"github.com/malariaconnect/api/internal/platform/sms"
	"github.com/malariaconnect/api/internal/platform/tasks"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "malaria-server",
		Short: "Malaria case reporting API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(syncCmd())
	rootCmd.AddCommand(digestCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the API server and background sync jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			count, err := migrator.Up(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			fmt.Printf("Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := context.Background()
			pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
			if err != nil {
				return err
			}
			defer pool.Close()

			migrator := db.NewMigrator(pool, dir)
			statuses, err := migrator.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}

			fmt.Printf("%-10s %-40s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
			fmt.Println("---------- ---------------------------------------- ---------- --------------------")
			for _, s := range statuses {
				status := "pending"
				appliedAt := ""
				if s.Applied {
					status = "applied"
					if s.AppliedAt != nil {
						appliedAt = s.AppliedAt.Format("2006-01-02 15:04:05")
					}
				}
				fmt.Printf("%-10d %-40s %-10s %s\n", s.Version, s.Name, status, appliedAt)
			}
			return nil
		},
	}
	statusCmd.Flags().String("dir", "./migrations", "Path to migrations directory")
	cmd.AddCommand(statusCmd)

	return cmd
}

func syncCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a one-off sync against the Ona API",
	}

	formsCmd := &cobra.Command{
		Use:   "forms",
		Short: "Refresh the form registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.close()

			count, err := app.onaSvc.SyncForms(context.Background())
			if err != nil {
				return err
			}
			fmt.Printf("Synced %d form(s).\n", count)
			return nil
		},
	}
	cmd.AddCommand(formsCmd)

	casesCmd := &cobra.Command{
		Use:   "cases",
		Short: "Pull submitted records into reported cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.close()

			created, err := app.onaSvc.SyncCases(context.Background())
			if err != nil {
				return err
			}
			total := 0
			for form, ids := range created {
				fmt.Printf("%s: %d new case(s)\n", form, len(ids))
				total += len(ids)
			}
			fmt.Printf("Created %d case(s).\n", total)

			// One-off syncs still fan out notifications through the task
			// runner; give in-flight sends a moment to finish.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return app.runner.Shutdown(shutdownCtx)
		},
	}
	cmd.AddCommand(casesCmd)

	return cmd
}

func digestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Weekly digest operations",
	}

	sendCmd := &cobra.Command{
		Use:   "send",
		Short: "Compile and send digests for all unclaimed cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := buildApp()
			if err != nil {
				return err
			}
			defer app.close()

			if err := app.compiler.CompileAndSend(context.Background()); err != nil {
				return err
			}
			fmt.Println("Digest run complete.")
			return nil
		},
	}
	cmd.AddCommand(sendCmd)

	return cmd
}

// app wires the full dependency graph once for both the server and the
// one-off CLI commands.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	pool     *pgxpool.Pool
	runner   *tasks.Runner
	onaSvc   *ona.Service
	compiler *digest.Compiler

	facilityHandler *facility.Handler
	actorHandler    *actor.Handler
	caseHandler     *cases.Handler
	onaHandler      *ona.Handler
}

func (a *app) close() {
	a.pool.Close()
}

func buildApp() (*app, error) {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if os.Getenv("ENV") == "development" || os.Getenv("ENV") == "" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	logger.Info().Msg("connected to database")

	// Repositories
	facilityRepo := facility.NewRepo(pool)
	actorRepo := actor.NewRepo(pool)
	caseRepo := cases.NewRepo(pool)
	auditRepo := cases.NewAuditRepo(pool)
	formRepo := ona.NewRepo(pool)
	digestRepo := digest.NewRepo(pool)

	// Services
	facilitySvc := facility.NewService(facilityRepo)
	actorSvc := actor.NewService(actorRepo)
	caseSvc := cases.NewService(caseRepo)

	// Outbound channels
	smsSender := sms.NewJunebugSender(cfg.JunebugChannelURL, cfg.JunebugEventURL, cfg.JunebugAuthToken)
	emailSender := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom)

	runner := tasks.NewRunner(logger)

	forwarder := jembi.NewForwarder(
		cfg.JembiURL, cfg.JembiUsername, cfg.JembiPassword,
		func() bool { return cfg.ForwardToJembi },
		caseRepo, logger,
	)

	dispatcher := notify.NewDispatcher(notify.Deps{
		Actors:     actorRepo,
		Facilities: facilityRepo,
		Cases:      caseRepo,
		Audit:      auditRepo,
		SMS:        smsSender,
		Email:      emailSender,
		Scheduler:  runner,
		Forwarder:  forwarder,
		Log:        logger,
	})

	onaClient := ona.NewClient(cfg.OnaBaseURL, cfg.OnaAccessToken)
	onaSvc := ona.NewService(onaClient, formRepo, caseSvc, dispatcher, logger)

	compiler := digest.NewCompiler(caseRepo, actorRepo, facilityRepo, digestRepo, emailSender, auditRepo, logger)

	return &app{
		cfg:      cfg,
		logger:   logger,
		pool:     pool,
		runner:   runner,
		onaSvc:   onaSvc,
		compiler: compiler,

		facilityHandler: facility.NewHandler(facilitySvc),
		actorHandler:    actor.NewHandler(actorSvc),
		caseHandler:     cases.NewHandler(caseSvc, auditRepo, logger),
		onaHandler:      ona.NewHandler(formRepo),
	}, nil
}

func runServer() error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.close()

	cfg, logger := a.cfg, a.logger

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recovery(logger))
	e.Use(echomw.RequestID())
	e.Use(middleware.Logger(logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"version": "0.1.0",
		})
	})
	e.GET("/health/db", db.HealthHandler(a.pool))

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.JWTAuth(cfg.JWTSecret))

	a.facilityHandler.RegisterRoutes(apiV1)
	a.actorHandler.RegisterRoutes(apiV1)
	a.caseHandler.RegisterRoutes(apiV1)
	a.onaHandler.RegisterRoutes(apiV1)

	// Background jobs
	a.runner.Every(cfg.FormSyncInterval, "sync-forms", func(ctx context.Context) error {
		_, err := a.onaSvc.SyncForms(ctx)
		return err
	})
	a.runner.Every(cfg.CaseSyncInterval, "sync-cases", func(ctx context.Context) error {
		_, err := a.onaSvc.SyncCases(ctx)
		return err
	})
	digestDay, _ := config.ParseWeekday(cfg.DigestDay)
	digestHour, digestMinute, _ := config.ParseClock(cfg.DigestTime)
	a.runner.WeeklyAt(digestDay, digestHour, digestMinute, "weekly-digest", a.compiler.CompileAndSend)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.runner.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("task runner shutdown incomplete")
	}
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
