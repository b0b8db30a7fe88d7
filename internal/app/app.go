package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	promgrpc "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	healthcheck "github.com/vladislavdragonenkov/mdm/internal/health"
	"github.com/vladislavdragonenkov/mdm/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/mdm/internal/service/orders"
	"github.com/vladislavdragonenkov/mdm/internal/service/outbox"
	"github.com/vladislavdragonenkov/mdm/internal/version"
)

func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	deps, err := NewDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := deps.Close(); closeErr != nil {
			logger.WithError(closeErr).Warn("failed to close storage")
		}
	}()

	orchestrators := createOrchestrators(deps, cfg)

	resolver := orders.NewResolver(deps.Storage.Orders, deps.Session, deps.Clock,
		logger.WithField("component", "order-resolver"))

	api := newAPIServer(orchestrators, resolver, deps.Storage.Customers,
		deps.Storage.ChangeLog, logger.WithField("component", "http-api"))

	// Инициализация Kafka producer (опционально)
	kafkaProducer, err := initKafkaProducer(cfg.KafkaBrokers, logger)
	if err != nil {
		logger.Warn("продолжаем без Kafka: уведомления остаются в outbox")
	}

	workerCtx, stopWorkers := context.WithCancel(ctx)
	defer stopWorkers()

	// Consumer group обновляет наблюдаемые списки по уведомлениям из
	// топика событий.
	var cacheConsumer *kafka.Consumer
	if kafkaProducer != nil {
		handler := newCacheRefreshHandler(orchestrators, deps.Session,
			logger.WithField("component", "cache-refresh"))
		cacheConsumer, err = initCacheConsumer(cfg, handler, kafkaProducer, logger)
		if err != nil {
			logger.Warn("продолжаем без обновления кэша по событиям")
		}
		if cacheConsumer != nil {
			if err := cacheConsumer.Start(workerCtx); err != nil {
				logger.WithError(err).Warn("failed to start kafka cache consumer")
				cacheConsumer = nil
			}
		}
	}

	// Outbox worker публикует уведомления, когда брокер доступен.
	if kafkaProducer != nil {
		publisher := kafka.NewOutboxPublisher(kafkaProducer, cfg.EventsTopic)
		dlqPublisher := kafka.NewOutboxPublisher(kafkaProducer, cfg.DLQTopic)
		outboxWorker := outbox.NewWorker(deps.Storage.Outbox, publisher,
			outbox.WithLogger(logger.WithField("component", "outbox-worker")),
			outbox.WithDLQPublisher(dlqPublisher),
			outbox.WithPollInterval(cfg.OutboxPollInterval),
			outbox.WithBatchSize(cfg.OutboxBatchSize),
			outbox.WithMaxAttempts(cfg.OutboxMaxAttempts),
			outbox.WithRetryBaseDelay(cfg.OutboxRetryDelay),
		)
		go outboxWorker.Run(workerCtx)
	}

	// Воркер очистки устаревших черновиков.
	cleanupWorker := orders.NewCleanupWorker(deps.Storage.Orders, deps.Clock,
		orders.WithLogger(logger.WithField("component", "draft-cleanup-worker")),
		orders.WithInterval(cfg.DraftCleanupInterval),
		orders.WithBatchSize(cfg.DraftCleanupBatchSize),
		orders.WithRetentionDays(cfg.DraftRetentionDays),
	)
	go cleanupWorker.Run(workerCtx)

	grpcMetrics := promgrpc.NewServerMetrics()
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(grpcMetrics.UnaryServerInterceptor()))
	if err := prometheus.Register(grpcMetrics); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok2 := are.ExistingCollector.(*promgrpc.ServerMetrics); ok2 {
				grpcMetrics = existing
			}
		} else {
			logger.WithError(err).Warn("failed to register grpc metrics")
		}
	}
	grpcMetrics.InitializeMetrics(grpcServer)

	// Register reflection service for grpcurl and debugging tools
	reflection.Register(grpcServer)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	// HTTP Health checks
	healthHandler := healthcheck.NewHandler(version.GetVersion())
	healthHandler.RegisterChecker("storage", healthcheck.NewSimpleChecker("storage", func() error {
		checkCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return deps.Storage.Ping(checkCtx)
	}))
	// Kafka необязателен: без брокера уведомления копятся в outbox,
	// поэтому его недоступность понижает статус, но не готовность.
	if kafkaProducer != nil {
		healthHandler.RegisterChecker("kafka", healthcheck.Optional(
			healthcheck.NewSimpleChecker("kafka", kafkaProducer.Healthcheck)))
	}

	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler, api)

	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("gRPC сервер слушает %s", cfg.GRPCAddr)
		errCh <- grpcServer.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем gRPC сервер")
		stopWorkers()
		stoppedCh := make(chan struct{})
		go func() {
			grpcServer.GracefulStop()
			healthServer.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
			close(stoppedCh)
		}()
		select {
		case <-stoppedCh:
		case <-time.After(5 * time.Second):
			logger.Warn("graceful stop превысил таймаут, принудительно останавливаем")
			grpcServer.Stop()
		}
		shutdownHTTP(metricsSrv, logger)
		closeConsumer(cacheConsumer, logger)
		closeKafka(kafkaProducer, logger)
		return ctx.Err()
	case err := <-errCh:
		stopWorkers()
		shutdownHTTP(metricsSrv, logger)
		closeConsumer(cacheConsumer, logger)
		closeKafka(kafkaProducer, logger)
		if errors.Is(err, grpc.ErrServerStopped) {
			return nil
		}
		return err
	}
}

// startMetricsServer запускает HTTP-сервер с API справочников,
// /metrics для Prometheus и health-эндпоинтами.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler, api *apiServer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	if api != nil {
		api.register(mux)
	}

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/readyz, %s/livez", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("metrics shutdown with error")
	}
}
