package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mehdighelich1379/Heart-Disease/internal/application/usecase"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/port"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/service"
	"github.com/mehdighelich1379/Heart-Disease/internal/domain/valueobject"
	"github.com/mehdighelich1379/Heart-Disease/internal/infrastructure/config"
	"github.com/mehdighelich1379/Heart-Disease/internal/infrastructure/kafka"
	"github.com/mehdighelich1379/Heart-Disease/internal/infrastructure/messaging"
	"github.com/mehdighelich1379/Heart-Disease/internal/infrastructure/metrics"
	"github.com/mehdighelich1379/Heart-Disease/internal/infrastructure/ml"
	"github.com/mehdighelich1379/Heart-Disease/internal/infrastructure/persistence/memory"
	pgrepo "github.com/mehdighelich1379/Heart-Disease/internal/infrastructure/persistence/postgres"
	grpcpresentation "github.com/mehdighelich1379/Heart-Disease/internal/presentation/grpc"
	"github.com/mehdighelich1379/Heart-Disease/internal/presentation/rest"
	"github.com/mehdighelich1379/Heart-Disease/pkg/auth"
	pkgkafka "github.com/mehdighelich1379/Heart-Disease/pkg/kafka"
	"github.com/mehdighelich1379/Heart-Disease/pkg/observability"
	"github.com/mehdighelich1379/Heart-Disease/pkg/postgres"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Load configuration.
	cfg := config.Load()

	logger := observability.InitLogger(observability.LogConfig{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("cardiod exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger.Info("starting cardiod",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"model_backend", cfg.Model.Backend,
		"banner_policy", cfg.BannerPolicy,
	)

	// Metrics and tracing.
	meters, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: cfg.ServiceName})
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}
	defer func() { _ = meters.Shutdown(context.Background()) }()

	if cfg.Tracing.Enabled {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: cfg.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			Insecure:    true,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	assessmentMetrics, err := metrics.NewAssessmentMetrics(meters.Provider)
	if err != nil {
		return err
	}

	// Scoring model.
	loaded, err := ml.Load(ml.Options{
		Backend:         cfg.Model.Backend,
		URL:             cfg.Model.URL,
		ManifestPath:    cfg.Model.Manifest,
		FeatureSet:      cfg.Model.FeatureSet,
		Timeout:         cfg.Model.Timeout,
		CacheTTL:        cfg.Model.CacheTTL,
		StubProbability: cfg.Model.StubProbability,
		InvertOutput:    cfg.Model.InvertOutput,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to load scoring model: %w", err)
	}

	assessor, err := service.NewAssessor(loaded.Normalizer, loaded.Model)
	if err != nil {
		return fmt.Errorf("scoring model rejected: %w", err)
	}
	logger.Info("scoring model loaded",
		"model", assessor.ModelName(),
		"feature_set", loaded.Normalizer.FeatureSet().String(),
	)

	policy, err := valueobject.BannerPolicyFromString(cfg.BannerPolicy)
	if err != nil {
		return err
	}
	classifier := service.NewClassifier(policy)

	healthHandler := rest.NewHealthHandler(cfg.ServiceName, logger)

	// Assessment store.
	var repo port.AssessmentRepository
	if cfg.DB.Enabled {
		if err := postgres.RunMigrations(cfg.DB.URL, cfg.DB.MigrationsDir); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := postgres.NewPool(dbCtx, postgres.Config{URL: cfg.DB.URL})
		dbCancel()
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		repo = pgrepo.NewAssessmentRepository(pool)
		healthHandler.AddCheck("database", func(ctx context.Context) error {
			return postgres.HealthCheck(ctx, pool)
		})
		logger.Info("connected to database")
	} else {
		repo = memory.NewAssessmentRepository()
		logger.Warn("DATABASE_ENABLED=false, assessments are kept in memory only")
	}

	// Event publisher.
	var publisher port.EventPublisher
	if cfg.Kafka.Enabled {
		producer, err := pkgkafka.NewProducer(pkgkafka.Config{Brokers: cfg.Kafka.Brokers})
		if err != nil {
			return fmt.Errorf("failed to create kafka producer: %w", err)
		}
		defer func() {
			if err := producer.Close(); err != nil {
				logger.Error("failed to close kafka producer", "error", err)
			}
		}()
		publisher = kafka.NewPublisher(producer, cfg.Kafka.Topic, logger)
	} else {
		publisher = messaging.NewLogPublisher(logger)
	}

	// Authentication.
	var jwtService *auth.JWTService
	if cfg.Auth.Enabled {
		jwtService, err = auth.NewJWTService(auth.JWTConfig{
			Secret: cfg.Auth.JWTSecret,
			Issuer: cfg.Auth.JWTIssuer,
		})
		if err != nil {
			return fmt.Errorf("failed to configure auth: %w", err)
		}
	} else {
		logger.Warn("AUTH_ENABLED=false, all requests use the default tenant", "tenant_id", cfg.DefaultTenant)
	}

	// Wire use cases.
	assessPatientUC := usecase.NewAssessPatient(repo, publisher, assessor, classifier, assessmentMetrics)
	classifyPatientUC := usecase.NewClassifyPatient(classifier)
	getAssessmentUC := usecase.NewGetAssessment(repo)
	listAssessmentsUC := usecase.NewListAssessments(repo)
	computeFeaturesUC := usecase.NewComputeFeatures(loaded.Normalizer)

	// gRPC server.
	grpcHandler := grpcpresentation.NewHeartRiskHandler(assessPatientUC, classifyPatientUC, getAssessmentUC, cfg.DefaultTenantID(), logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		JWT:         jwtService,
		Logger:      logger,
		Address:     cfg.GRPCAddress(),
		ServiceName: cfg.ServiceName,
		TLSCertFile: cfg.TLS.CertFile,
		TLSKeyFile:  cfg.TLS.KeyFile,
		Reflection:  cfg.Reflection,
	})
	if err != nil {
		return err
	}

	// HTTP server.
	var limiter *rest.PerClientRateLimiter
	if cfg.RateLimit > 0 {
		limiter = rest.NewPerClientRateLimiter(cfg.RateLimit, cfg.RateBurst)
		go pruneLimiter(ctx, limiter)
	}

	httpServer := &http.Server{
		Addr: cfg.HTTPAddress(),
		Handler: rest.NewRouter(rest.RouterConfig{
			Assessments: rest.NewAssessmentHandler(
				assessPatientUC, classifyPatientUC, getAssessmentUC, listAssessmentsUC, computeFeaturesUC,
				cfg.DefaultTenantID(), logger,
			),
			Health:      healthHandler,
			Metrics:     meters.Handler,
			RateLimiter: limiter,
			JWT:         jwtService,
			Logger:      logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.Model.Timeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Start servers.
	errCh := make(chan error, 2)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	logger.Info("cardiod started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
	)

	// Wait for shutdown signal.
	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr = <-errCh:
		logger.Error("server error", "error", serveErr)
	}

	// Graceful shutdown.
	logger.Info("shutting down cardiod")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("cardiod stopped")
	return serveErr
}

func pruneLimiter(ctx context.Context, limiter *rest.PerClientRateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Prune(10 * time.Minute)
		}
	}
}
