package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"coursehub/internal/students"
	"coursehub/pkg/bus"
	"coursehub/pkg/config"
	"coursehub/pkg/database"
	"coursehub/pkg/logging"
	"coursehub/pkg/models"
	"coursehub/pkg/rabbitmq"
)

func main() {
	config.LoadDotEnv()
	cfg := config.LoadForService("students")

	logger := logging.New(os.Stdout, "students-service", logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)
	logger.Info("starting students-service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		fatal(logger, "failed to connect to database", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, "students"); err != nil {
		fatal(logger, "failed to run migrations", err)
	}

	rmqConn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL)
	if err != nil {
		fatal(logger, "failed to connect to RabbitMQ", err)
	}
	defer rmqConn.Close()

	scopes := students.ScopeFactory{DB: db, Logger: logger}
	codec := bus.Codec{Source: "students-service"}

	registrations := students.NewUserRegisteredHandler(scopes, logger)
	responders, err := rabbitmq.SetupResponder(ctx, rmqConn, rabbitmq.ConsumerConfig{
		QueueName:    "students.user.registered",
		DLQName:      "dlq.students.user.registered",
		RoutingKeys:  []string{models.EventUserRegistered},
		ConsumerName: "students-registration",
		Concurrency:  cfg.ConsumerConcurrency,
	}, bus.HandleRequest(codec, registrations.Handle))
	if err != nil {
		fatal(logger, "failed to setup responder", err)
	}

	revocations := students.NewRevocationConsumer(db, scopes, logger)
	consumers, err := rabbitmq.SetupConsumer(ctx, rmqConn, rabbitmq.ConsumerConfig{
		QueueName:    "students.user.registration.revoked",
		DLQName:      "dlq.students.user.registration.revoked",
		RoutingKeys:  []string{models.EventUserRegistrationRevoked},
		ConsumerName: "students-revocation",
		Concurrency:  1,
	}, bus.HandleEvent(revocations.Handle))
	if err != nil {
		fatal(logger, "failed to setup consumer", err)
	}

	logger.Info("students-service is running, waiting for messages")
	<-ctx.Done()

	logger.Info("shutting down, draining in-flight deliveries")
	responders.Wait()
	consumers.Wait()
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
