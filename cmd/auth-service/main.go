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
	"coursehub/internal/identity"
	"coursehub/internal/registration"
	"coursehub/pkg/bus"
	"coursehub/pkg/config"
	"coursehub/pkg/database"
	"coursehub/pkg/logging"
	"coursehub/pkg/rabbitmq"
)

// @title           CourseHub API
// @version         1.0
// @description     Registration and enrollment entry points of the course platform.
// @host            localhost:8080
// @BasePath        /
// @schemes         http
func main() {
	config.LoadDotEnv()
	cfg := config.LoadForService("auth")

	logger := logging.New(os.Stdout, "auth-service", logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	slog.SetDefault(logger)
	logger.Info("starting auth-service")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(ctx, cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		fatal(logger, "failed to connect to database", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db, "auth"); err != nil {
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

	client := bus.NewClient(transport, "auth-service", cfg.RequestTimeout, logger)
	store := identity.NewStore(db)
	tokens := identity.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	saga := registration.NewService(store, registration.BusRegistrar{Client: client}, tokens, logger)

	router := api.NewAuthRouter(api.NewAccountHandler(saga, store, tokens, logger))
	serve(ctx, logger, cfg.APIPort, router)
}

// serve runs the HTTP server until ctx is done, then shuts it down gracefully.
func serve(ctx context.Context, logger *slog.Logger, port string, handler http.Handler) {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("listening", slog.String("port", port))
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
		return
	}
	logger.Info("server exited gracefully")
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, slog.Any("error", err))
	os.Exit(1)
}
