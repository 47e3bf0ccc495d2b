// Command hidsd serves threat analysis over gRPC, exposes health and metrics
// over HTTP and optionally analyzes records streamed through Kafka.
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

	"go.opentelemetry.io/otel"

	"github.com/Emmyme/hids-cli/internal/application/dto"
	"github.com/Emmyme/hids-cli/internal/application/usecase"
	"github.com/Emmyme/hids-cli/internal/domain/model"
	"github.com/Emmyme/hids-cli/internal/domain/port"
	"github.com/Emmyme/hids-cli/internal/domain/service"
	"github.com/Emmyme/hids-cli/internal/infrastructure/artifact"
	"github.com/Emmyme/hids-cli/internal/infrastructure/config"
	"github.com/Emmyme/hids-cli/internal/infrastructure/forest"
	"github.com/Emmyme/hids-cli/internal/infrastructure/memory"
	"github.com/Emmyme/hids-cli/internal/infrastructure/postgres"
	"github.com/Emmyme/hids-cli/internal/infrastructure/stream"
	"github.com/Emmyme/hids-cli/internal/infrastructure/telemetry"
	grpcpresentation "github.com/Emmyme/hids-cli/internal/presentation/grpc"
	"github.com/Emmyme/hids-cli/internal/presentation/rest"
	"github.com/Emmyme/hids-cli/pkg/auth"
	pkgkafka "github.com/Emmyme/hids-cli/pkg/kafka"
	"github.com/Emmyme/hids-cli/pkg/observability"
	pgpkg "github.com/Emmyme/hids-cli/pkg/postgres"
)

const serviceName = "hidsd"

func main() {
	if err := run(); err != nil {
		slog.Error("hidsd failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:       cfg.LogLevel,
		Format:      "json",
		ServiceName: serviceName,
	})

	logger.Info("starting hidsd",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"model_path", cfg.ModelPath,
	)

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		return err
	}
	defer meterProvider.Shutdown(context.Background())

	shutdownTracer, err := observability.InitTracer(ctx, observability.TracingConfig{
		ServiceName: serviceName,
		Endpoint:    cfg.OTelEndpoint,
		Insecure:    true,
	})
	if err != nil {
		logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
	} else {
		defer shutdownTracer(context.Background())
	}

	// Model. A missing artifact is not fatal; readiness reports it.
	store := artifact.NewFileStore(logger)
	classifier := service.NewThreatClassifier(
		forest.NewTrainer(forest.Config{Trees: cfg.Trees, MaxDepth: cfg.MaxDepth, Seed: cfg.Seed, Workers: cfg.Workers}, logger),
		store,
		logger,
	)
	if err := classifier.Load(ctx, cfg.ModelPath); err != nil {
		logger.Warn("model not loaded, analysis is unavailable until restart", "path", cfg.ModelPath, "error", err)
	}

	healthHandler := rest.NewHealthHandler(logger)
	healthHandler.AddCheck("model", func(context.Context) error {
		if classifier.State() != service.StateTrained {
			return model.ErrUntrainedModel
		}
		return nil
	})

	// Verdict history.
	var repo port.VerdictRepository
	if cfg.DatabaseURL != "" {
		version, err := postgres.Migrate(cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}

		dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
		pool, err := pgpkg.NewPool(dbCtx, cfg.DatabaseURL, pgpkg.PoolOptions{MaxConns: cfg.DatabaseMaxConns})
		dbCancel()
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()
		logger.Info("connected to database", "schema_version", version, "max_conns", pool.Config().MaxConns)

		repo = postgres.NewVerdictRepository(pool)
		healthHandler.AddCheck("database", func(ctx context.Context) error {
			return pgpkg.HealthCheck(ctx, pool)
		})
	} else {
		logger.Info("DATABASE_URL not set, keeping verdict history in memory", "capacity", memory.DefaultCapacity)
		repo = memory.NewVerdictRepository(memory.DefaultCapacity)
	}

	metrics, err := telemetry.NewAnalysisMetrics(meterProvider)
	if err != nil {
		return fmt.Errorf("failed to create analysis metrics: %w", err)
	}

	// Use cases.
	analyzeOpts := []usecase.AnalyzeOption{
		usecase.WithVerdictRepository(repo),
		usecase.WithRecorder(metrics),
		usecase.WithTracer(otel.Tracer(telemetry.MeterName)),
		usecase.WithWorkers(cfg.Workers),
	}
	kafkaCfg := cfg.Kafka()
	streaming := len(kafkaCfg.Brokers) > 0
	if streaming {
		producer, err := pkgkafka.NewProducer(kafkaCfg)
		if err != nil {
			return fmt.Errorf("failed to create kafka producer: %w", err)
		}
		defer producer.Close()
		healthHandler.AddCheck("kafka", func(ctx context.Context) error {
			return pkgkafka.Ping(ctx, kafkaCfg)
		})
		analyzeOpts = append(analyzeOpts, usecase.WithEventPublisher(
			stream.NewEventPublisher(producer, cfg.KafkaAlertsTopic, logger),
		))
	}
	analyzeRecords := usecase.NewAnalyzeRecords(service.NewThreatAnalyzer(classifier), logger, analyzeOpts...)
	getVerdict := usecase.NewGetVerdict(repo)
	modelInfo := usecase.NewModelInfo(store)

	// gRPC server.
	var jwtService *auth.JWTService
	if cfg.AuthEnabled() {
		jwtConfig, err := cfg.JWTConfig(24 * time.Hour)
		if err != nil {
			return fmt.Errorf("failed to load JWT keys: %w", err)
		}
		jwtService, err = auth.NewJWTService(jwtConfig)
		if err != nil {
			return fmt.Errorf("failed to create JWT service: %w", err)
		}
	}

	grpcHandler := grpcpresentation.NewThreatServiceHandler(analyzeRecords, getVerdict, modelInfo, cfg.ModelPath, logger)
	grpcServer, err := grpcpresentation.NewServer(grpcHandler, cfg.GRPCAddress(), logger, grpcpresentation.ServerOptions{
		JWT:             jwtService,
		TLSCertFile:     cfg.GRPCTLSCertFile,
		TLSKeyFile:      cfg.GRPCTLSKeyFile,
		TLSClientCAFile: cfg.GRPCTLSClientCA,
		Reflection:      cfg.GRPCReflection,
	})
	if err != nil {
		return err
	}

	// HTTP server (health checks and metrics).
	healthHandler.SetMetricsHandler(metricsHandler)
	httpMux := http.NewServeMux()
	healthHandler.RegisterRoutes(httpMux)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      rest.LoggingMiddleware(logger)(httpMux),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	errCh := make(chan error, 3)

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

	var consumer *stream.Consumer
	if streaming {
		consumer, err = stream.NewConsumer(kafkaCfg, cfg.KafkaRecordsTopic, streamHandler(analyzeRecords, logger), logger)
		if err != nil {
			return fmt.Errorf("failed to create record stream consumer: %w", err)
		}

		go func() {
			if err := consumer.Start(ctx); err != nil {
				errCh <- fmt.Errorf("record stream error: %w", err)
			}
		}()
	} else {
		logger.Info("KAFKA_BROKER not set, record stream and alerts disabled")
	}

	logger.Info("hidsd started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
		"model_state", classifier.State().String(),
	)

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case runErr = <-errCh:
		logger.Error("server error", "error", runErr)
	}

	logger.Info("shutting down hidsd")
	cancel()

	if consumer != nil {
		if err := consumer.Close(); err != nil {
			logger.Error("record stream close error", "error", err)
		}
	}

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("hidsd stopped")
	return runErr
}

// streamHandler analyzes each streamed record on its own so one bad record
// never holds back the partition.
func streamHandler(uc *usecase.AnalyzeRecords, logger *slog.Logger) stream.RecordHandler {
	return func(ctx context.Context, r model.Record) error {
		resp, err := uc.Execute(ctx, dto.AnalyzeRecordsRequest{Records: []model.Record{r}})
		if err != nil {
			return err
		}
		v := resp.Verdicts[0]
		if v.Prediction == 1 {
			logger.WarnContext(ctx, "threat detected",
				"session_id", v.SessionID,
				"attack_type", v.AttackType,
				"confidence", v.Confidence,
				"risk_score", v.RiskScore,
				"verdict_id", v.ID,
			)
		}
		return nil
	}
}
