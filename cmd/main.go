package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	grpcapi "balance-schema-service/internal/api/grpc"
	"balance-schema-service/internal/app"
	"balance-schema-service/internal/config"
	"balance-schema-service/internal/events"
	httpapi "balance-schema-service/internal/http"
	"balance-schema-service/internal/observability"
	"balance-schema-service/internal/observability/metrics"
	"balance-schema-service/internal/schema"
	"balance-schema-service/internal/service/validation"
)

func main() {
	cfg := config.Load()
	application := app.New(cfg, metrics.DefaultMetrics)

	validator, err := schema.New(
		schema.WithDocumentsDir(cfg.Schema.DocumentsDir),
		schema.WithMaxCoins(cfg.Limits.MaxCoins),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load schema documents")
	}
	if !validator.HasKind(cfg.Schema.DefaultKind) {
		log.Fatal().Str("kind", cfg.Schema.DefaultKind).Strs("kinds", validator.Kinds()).Msg("default kind is not loaded")
	}

	// Results go to separate topics for valid and rejected documents
	publisher := events.New(&events.Config{
		Enabled:          cfg.Kafka.Enabled,
		Brokers:          cfg.Kafka.Brokers,
		TopicValid:       cfg.Kafka.TopicValid,
		TopicRejected:    cfg.Kafka.TopicRejected,
		Principal:        cfg.Kafka.Principal,
		MaxDocumentBytes: cfg.Limits.MaxDocumentBytes,
	}, application.Metrics)
	defer publisher.Close()

	handler := validation.NewHandlerWithLimits(validator, publisher, application.Metrics, validation.Limits{
		MaxDocumentBytes: cfg.Limits.MaxDocumentBytes,
	})

	consumer := events.NewConsumer(&events.ConsumerConfig{
		Enabled:     cfg.Kafka.Enabled,
		Brokers:     cfg.Kafka.Brokers,
		Topic:       cfg.Kafka.TopicInput,
		GroupID:     cfg.Kafka.GroupID,
		DefaultKind: cfg.Schema.DefaultKind,
	}, application.Metrics)
	defer consumer.Close()

	obsServer := observability.NewServer(":" + cfg.Service.MetricsPort)
	obsServer.Start()

	lis, err := net.Listen("tcp", ":"+cfg.Service.GRPCPort)
	if err != nil {
		log.Fatal().Err(err).Str("port", cfg.Service.GRPCPort).Msg("failed to listen")
	}

	server := grpc.NewServer(
		grpc.UnaryInterceptor(observability.UnaryServerInterceptor(application.Metrics)),
		grpc.StreamInterceptor(observability.StreamServerInterceptor(application.Metrics)),
	)

	// Register gRPC health check service
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)

	grpcapi.Register(server, handler, cfg.Schema.DefaultKind)

	httpServer := &http.Server{
		Addr:              ":" + cfg.Service.HTTPPort,
		Handler:           httpapi.NewRouter(application, handler),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Service.GRPCPort).Msg("Balance schema gRPC server started")
		if err := server.Serve(lis); err != nil {
			log.Fatal().Err(err).Msg("grpc serve failed")
		}
	}()

	go func() {
		log.Info().Str("port", cfg.Service.HTTPPort).Msg("Balance schema HTTP server started")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http serve failed")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		if err := consumer.Run(ctx, handler.HandleDocument); err != nil {
			log.Error().Err(err).Msg("kafka consumer stopped")
		}
	}()

	if err := application.Start(); err != nil {
		log.Fatal().Err(err).Msg("application start failed")
	}
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(grpcapi.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)
	obsServer.SetReady(true)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	application.Shutdown()
	obsServer.SetReady(false)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	cancel()
	<-consumerDone

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Service.ShutdownTimeout)
	defer shutdownCancel()

	log.Info().Msg("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}

	log.Info().Msg("shutting down gRPC server")
	stopped := make(chan struct{})
	go func() {
		server.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		server.Stop()
	}

	if err := obsServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("observability shutdown failed")
	}
}
