package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/dpi/sms-rule-based/internal/platform/config"
	"github.com/dpi/sms-rule-based/internal/platform/database"
	"github.com/dpi/sms-rule-based/internal/platform/logger"
	"github.com/dpi/sms-rule-based/internal/platform/messagebroker"
	httptransport "github.com/dpi/sms-rule-based/internal/routing_service/adapters/http"
	"github.com/dpi/sms-rule-based/internal/routing_service/app"
	"github.com/dpi/sms-rule-based/internal/routing_service/gateway"
	"github.com/dpi/sms-rule-based/internal/routing_service/middleware"
	"github.com/dpi/sms-rule-based/internal/routing_service/repository/postgres"
)

const (
	serviceName = "routing_service"

	natsRoutingJobSubject     = "sms.routing.requested"
	natsRoutingJobQueueGroup  = "routing_workers"
	natsRoutingOutcomeSubject = "sms.routing.completed"
)

func main() {
	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel)
	appLogger.Info("Routing service starting...", "port", cfg.RoutingServiceHTTPPort, "rule_based_routing", cfg.EnableRuleBasedRouting)

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbPool, err := database.NewDBPool(rootCtx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to connect to PostgreSQL database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Successfully connected to PostgreSQL database")

	natsClient, err := messagebroker.NewNatsClient(cfg.NATSUrl, serviceName, appLogger, false)
	if err != nil {
		appLogger.Error("Failed to connect to NATS", "error", err)
		os.Exit(1)
	}
	defer natsClient.Close()
	appLogger.Info("Successfully connected to NATS")

	rulesetRepo := postgres.NewPgRulesetRepository(dbPool, appLogger)
	router := app.NewRouter(rulesetRepo, appLogger)

	gateways := map[string]gateway.Gateway{
		"log": gateway.NewLogGateway("log", appLogger),
	}
	if _, ok := gateways[cfg.DefaultGatewayName]; !ok {
		gateways[cfg.DefaultGatewayName] = gateway.NewMockGateway(cfg.DefaultGatewayName, appLogger, false, 0)
	}
	dispatcher := app.NewDispatcher(gateways, cfg.DefaultGatewayName, appLogger)

	senderFilter, err := app.NewSenderIDFilter(app.SenderFilterConfig{
		Excluded:         cfg.ExcludedSenderIDs,
		Included:         cfg.IncludedSenderIDs,
		IncludeSuperuser: cfg.SenderIDCheckSuperuser,
	}, appLogger)
	if err != nil {
		appLogger.Error("Failed to compile sender-id restriction settings", "error", err)
		os.Exit(1)
	}

	routingAppService := app.NewRoutingAppService(router, dispatcher, senderFilter, natsClient, appLogger, cfg.EnableRuleBasedRouting)
	if err := routingAppService.StartConsumingJobs(rootCtx, natsRoutingJobSubject, natsRoutingJobQueueGroup, natsRoutingOutcomeSubject); err != nil {
		appLogger.Error("Failed to start NATS job consumer", "error", err)
		os.Exit(1)
	}
	appLogger.Info("NATS consumer started", "subject", natsRoutingJobSubject, "queue_group", natsRoutingJobQueueGroup)

	validate := validator.New()
	routingHandler := httptransport.NewRoutingHandler(router, senderFilter, appLogger, validate)
	authMW := middleware.AuthMiddleware(cfg.JWTAccessSecret, appLogger)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "Routing service is healthy"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(v1 chi.Router) {
		v1.Use(authMW)
		routingHandler.RegisterRoutes(v1)
	})

	httpServer := &http.Server{Addr: fmt.Sprintf(":%d", cfg.RoutingServiceHTTPPort), Handler: r}

	g, gCtx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		appLogger.Info(fmt.Sprintf("Routing service HTTP server listening on port %d", cfg.RoutingServiceHTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		appLogger.Info("Shutdown signal received, shutting down...")

		routingAppService.StopConsumingJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Routing service terminated with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Routing service shut down successfully.")
}
