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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/wolfman30/clinic-scheduler/internal/api/router"
	"github.com/wolfman30/clinic-scheduler/internal/booking"
	"github.com/wolfman30/clinic-scheduler/internal/calendar"
	appconfig "github.com/wolfman30/clinic-scheduler/internal/config"
	"github.com/wolfman30/clinic-scheduler/internal/directory"
	"github.com/wolfman30/clinic-scheduler/internal/extract"
	"github.com/wolfman30/clinic-scheduler/internal/notify"
	"github.com/wolfman30/clinic-scheduler/internal/observability/metrics"
	"github.com/wolfman30/clinic-scheduler/internal/records"
	"github.com/wolfman30/clinic-scheduler/internal/reminders"
	"github.com/wolfman30/clinic-scheduler/internal/schedule"
	"github.com/wolfman30/clinic-scheduler/internal/session"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-scheduler API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	// Redis backs sessions, reminders, and (without Postgres) records.
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Error("failed to connect to redis", "addr", cfg.RedisAddr, "error", err)
		os.Exit(1)
	}

	sessionStore := session.NewRedisStore(redisClient, cfg.SessionTTL)
	reminderStore := reminders.NewRedisStore(redisClient)

	// Records go to Postgres when configured, Redis otherwise.
	var recordStore records.Store = records.NewRedisStore(redisClient)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		recordStore = records.NewPostgresStore(pool)
		logger.Info("using postgres record store")
	} else {
		logger.Info("using redis record store")
	}

	// Gemini extraction when a key is configured, rule-based otherwise.
	var extractor extract.Extractor = extract.NewRuleExtractor()
	if cfg.GeminiAPIKey != "" {
		gemini, err := extract.NewGeminiExtractor(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Error("failed to create gemini extractor", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gemini.Close() }()
		extractor = gemini
		logger.Info("using gemini extractor", "model", cfg.GeminiModelID)
	} else {
		logger.Info("using rule-based extractor")
	}

	dir, err := directory.LoadCSV(cfg.PatientsCSV)
	if err != nil {
		logger.Error("failed to load patient directory", "path", cfg.PatientsCSV, "error", err)
		os.Exit(1)
	}

	var emailSender notify.EmailSender = notify.NewStubEmailSender(logger.Component("notify"))
	if sg := notify.NewSendGridSender(cfg.SendGridAPIKey, cfg.SendGridFromEmail, cfg.SendGridFromName, logger.Component("notify")); sg != nil {
		emailSender = sg
		logger.Info("using sendgrid email sender")
	}
	smsSender := notify.NewStubSMSSender(logger.Component("notify"))

	var calendarClient calendar.Client = calendar.NewRecordingClient(recordStore, logger.Component("calendar"))
	if calendly := calendar.NewCalendlyClient(cfg.CalendlyPAT, cfg.CalendlyEventTypeUUID, logger.Component("calendar")); calendly != nil {
		calendarClient = calendly
		logger.Info("using calendly calendar client")
	}

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	machine := booking.NewMachine(booking.Config{
		Extractor:  extractor,
		Directory:  dir,
		Slots:      schedule.NewStaticProvider(),
		Records:    recordStore,
		Calendar:   calendarClient,
		Email:      emailSender,
		Reminders:  reminderStore,
		Metrics:    bookingMetrics,
		Logger:     logger.Component("booking"),
		ClinicName: cfg.ClinicName,
		FormsDir:   cfg.FormsDir,
	})
	bookingHandler := booking.NewHandler(machine, sessionStore, logger.Component("booking"))

	r := router.New(&router.Config{
		Logger:         logger,
		BookingHandler: bookingHandler,
		RecordStore:    recordStore,
		ReminderStore:  reminderStore,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})

	// Reminder dispatch runs alongside the server.
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	worker := reminders.NewWorker(reminderStore, emailSender, smsSender, cfg.ReminderPollInterval, logger.Component("reminders"))
	go worker.Run(workerCtx)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}
