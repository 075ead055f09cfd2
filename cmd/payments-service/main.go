package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"coursehub/internal/payments"
	"coursehub/pkg/bus"
	"coursehub/pkg/config"
	"coursehub/pkg/database"
	"coursehub/pkg/logging"
	"coursehub/pkg/models"
	"coursehub/pkg/rabbitmq"
)

func main() {
	config.LoadDotEnv()
	cfg := config.LoadForService("payments")

	logger := logging.New(os.Stdout, "payments-service", logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)
	logger.Info("starting payments-service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		fatal(logger, "failed to connect to database", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, "payments"); err != nil {
		fatal(logger, "failed to run migrations", err)
	}

	// Prices are read from the courses database, never from the request.
	coursesDB, err := database.Connect(ctx, cfg.DatabaseDriver, cfg.CoursesDatabaseURL)
	if err != nil {
		fatal(logger, "failed to connect to courses database", err)
	}
	defer coursesDB.Close()

	rmqConn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL)
	if err != nil {
		fatal(logger, "failed to connect to RabbitMQ", err)
	}
	defer rmqConn.Close()

	participant := payments.NewPaymentRequestedHandler(
		payments.NewCourseCatalog(coursesDB),
		payments.ScopeFactory{DB: db, Logger: logger},
		logger,
	)
	responders, err := rabbitmq.SetupResponder(ctx, rmqConn, rabbitmq.ConsumerConfig{
		QueueName:    "payments.payment.requested",
		DLQName:      "dlq.payments.payment.requested",
		RoutingKeys:  []string{models.EventPaymentRequested},
		ConsumerName: "payments-validation",
		Concurrency:  cfg.ConsumerConcurrency,
	}, bus.HandleRequest(bus.Codec{Source: "payments-service"}, participant.Handle))
	if err != nil {
		fatal(logger, "failed to setup responder", err)
	}

	logger.Info("payments-service is running, waiting for messages")
	<-ctx.Done()

	logger.Info("shutting down, draining in-flight deliveries")
	responders.Wait()
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
