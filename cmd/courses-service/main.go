package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coursehub/internal/api"
	"coursehub/internal/courses"
	"coursehub/pkg/bus"
	"coursehub/pkg/config"
	"coursehub/pkg/database"
	"coursehub/pkg/logging"
	"coursehub/pkg/rabbitmq"
)

func main() {
	config.LoadDotEnv()
	cfg := config.LoadForService("courses")

	logger := logging.New(os.Stdout, "courses-service", logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)
	logger.Info("starting courses-service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		fatal(logger, "failed to connect to database", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, "courses"); err != nil {
		fatal(logger, "failed to run migrations", err)
	}

	rmqConn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL)
	if err != nil {
		fatal(logger, "failed to connect to RabbitMQ", err)
	}
	defer rmqConn.Close()

	transport, err := rabbitmq.NewTransport(rmqConn)
	if err != nil {
		fatal(logger, "failed to open bus transport", err)
	}
	defer transport.Close()

	client := bus.NewClient(transport, "courses-service", cfg.RequestTimeout, logger)
	scopes := courses.ScopeFactory{
		DB:       db,
		Payments: courses.BusPaymentRequester{Client: client},
		Logger:   logger,
	}

	router := api.NewCoursesRouter(api.NewEnrollmentHandler(courses.NewService(scopes, logger), logger))

	srv := &http.Server{
		Addr:              ":" + cfg.APIPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("listening", slog.String("port", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "server error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", slog.Any("error", err))
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
