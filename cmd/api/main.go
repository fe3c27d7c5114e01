package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/01moynul/selecta-golang/internal/auth"
	"github.com/01moynul/selecta-golang/internal/config"
	"github.com/01moynul/selecta-golang/internal/database"
	"github.com/01moynul/selecta-golang/internal/email"
	"github.com/01moynul/selecta-golang/internal/handlers"
	"github.com/01moynul/selecta-golang/internal/logger"
	"github.com/01moynul/selecta-golang/internal/reminders"
	"github.com/01moynul/selecta-golang/internal/repository"
	"github.com/01moynul/selecta-golang/internal/routes"
)

func main() {
	// 0. --- Load Configuration (.env + environment) ---
	cfg, envLoaded, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zl, err := logger.New(cfg.IsProduction(), cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zl.Sync() //nolint:errcheck

	if !envLoaded {
		zl.Warn("could not load .env file, relying on system environment variables")
	}

	// 1. --- Database Connection ---
	db, err := database.OpenDB(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		zl.Fatal("failed to connect to database", zap.String("driver", cfg.DBDriver), zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db); err != nil {
		zl.Fatal("failed to migrate database", zap.Error(err))
	}

	// 2. --- Email ---
	var mailer email.Mailer
	if cfg.ResendAPIKey != "" {
		mailer = email.NewResendMailer(cfg.ResendAPIKey, cfg.EmailFrom)
	} else {
		zl.Warn("RESEND_API_KEY not set, emails will only be logged")
		mailer = email.NewLogMailer(zl.Named("mail"))
	}

	// 3. --- Repositories, Auth and Jobs ---
	users := repository.NewUserRepo(db)
	orders := repository.NewOrderRepo(db)
	gifts := repository.NewGiftRepo(db)
	reviews := repository.NewReviewRepo(db)

	signer := auth.NewSigner(cfg.JWTSecret)
	loginTokens := auth.NewLoginTokens(signer, repository.NewLoginTokenRepo(db), cfg.LoginTokenTTL)

	giftJob := &reminders.GiftReminderJob{
		Gifts:   gifts,
		Mailer:  mailer,
		SiteURL: cfg.SiteURL,
		Logger:  zl,
	}
	reviewJob := &reminders.ReviewReminderJob{
		Orders:    orders,
		Reviews:   reviews,
		Reminders: repository.NewReviewReminderRepo(db),
		Customers: users,
		Tokens:    loginTokens,
		Mailer:    mailer,
		SiteURL:   cfg.SiteURL,
		Logger:    zl,
	}

	app := &handlers.Handlers{
		Users:            users,
		Products:         repository.NewProductRepo(db),
		Orders:           orders,
		Gifts:            gifts,
		Reviews:          reviews,
		CartStorage:      repository.NewCartStorageRepo(db),
		CartPersistDelay: cfg.CartPersistDelay,
		Signer:           signer,
		LoginTokens:      loginTokens,
		GiftReminders:    giftJob,
		ReviewReminders:  reviewJob,
		Logger:           zl,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- 4. Background Worker (optional) ---
	// Hosted deployments trigger the cron endpoints instead.
	var scheduler *reminders.Scheduler
	if cfg.ReminderInterval > 0 {
		scheduler = reminders.NewScheduler(cfg.ReminderInterval, zl.Named("scheduler"), giftJob, reviewJob)
		scheduler.Start(ctx)
	}

	// --- Router Setup ---
	router := routes.SetupRouter(app, routes.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		CronSecret:     cfg.CronSecret,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful Shutdown ---
	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			zl.Error("HTTP server shutdown", zap.Error(err))
		}
		close(idleConnsClosed)
	}()

	// --- Start Server ---
	zl.Info("starting Experiencia Selecta API", zap.String("addr", srv.Addr), zap.String("db", cfg.DBDriver))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zl.Fatal("listen", zap.Error(err))
	}

	<-idleConnsClosed
	if scheduler != nil {
		scheduler.Wait()
	}
	zl.Info("server stopped")
}
