package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"

	"github.com/bstrong/door-access/internal/http/handlers"
	"github.com/bstrong/door-access/internal/notify"
	"github.com/bstrong/door-access/internal/remotelock"
	"github.com/bstrong/door-access/internal/service"
	storepg "github.com/bstrong/door-access/internal/store/postgres"
	"github.com/bstrong/door-access/internal/vagaro"
	"github.com/bstrong/door-access/pkg/config"
	"github.com/bstrong/door-access/pkg/database"
	"github.com/bstrong/door-access/pkg/events"
	"github.com/bstrong/door-access/pkg/logger"
	mw "github.com/bstrong/door-access/pkg/middleware"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	var bus events.Publisher
	if cfg.NATS.URL != "" {
		natsBus, err := events.NewNATSEventBus(cfg.NATS.URL)
		if err != nil {
			logger.Error("Failed to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer natsBus.Close()
		bus = natsBus
	} else {
		bus = events.NewNoopBus()
	}

	// Wiring: store, vendor clients, notification channels, engine.
	st := storepg.New(pool)
	accessClient := remotelock.NewClient(cfg.RemoteLock)
	directoryClient := vagaro.NewClient(cfg.Vagaro)
	messenger := notify.NewTwilioMessenger(cfg.Twilio)
	mailer := notify.NewMailer(cfg.Email.MailerSendKey, cfg.Email.AlertFrom, cfg.Email.AlertTo)
	alerter := notify.NewAlerter(messenger, mailer, cfg.Twilio.DeveloperPhone, cfg.Twilio.OwnerPhones)

	engine, err := service.NewEngine(st, accessClient, directoryClient, messenger, alerter, bus, cfg)
	if err != nil {
		logger.Error("Failed to initialize correlation engine", "error", err)
		os.Exit(1)
	}

	h := handlers.New(engine, cfg)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.ServiceName("door-access"))
	r.Use(mw.Logging)
	r.Use(mw.Health)
	h.Routes(r)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down door-access service...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting door-access service", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
