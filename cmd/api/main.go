package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/rgdevment/scam-shield/internal/analysis"
	"github.com/rgdevment/scam-shield/internal/config"
	httpHandler "github.com/rgdevment/scam-shield/internal/platform/http"
	"github.com/rgdevment/scam-shield/internal/platform/http/middleware"
	"github.com/rgdevment/scam-shield/internal/platform/metrics"
	"github.com/rgdevment/scam-shield/internal/platform/storage/confirmations"
	"github.com/rgdevment/scam-shield/internal/platform/storage/memory"
	"github.com/rgdevment/scam-shield/internal/platform/storage/objectstore"
	"github.com/rgdevment/scam-shield/internal/platform/storage/scylla"
	"github.com/rgdevment/scam-shield/internal/platform/tracing"
	"github.com/rgdevment/scam-shield/internal/service"
	"github.com/rgdevment/scam-shield/pkg/logging"
)

func main() {
	envErr := godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	if envErr != nil {
		logger.Debug("no .env file found, using system environment variables")
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := buildRepository(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to initialize report storage", "driver", cfg.StorageDriver, "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	var engineOpts []analysis.Option
	if cfg.TracingEnabled {
		tp, err := tracing.Setup(ctx, cfg.ServiceName)
		if err != nil {
			logger.Error("failed to start tracing", "error", err)
			os.Exit(1)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("failed to flush traces", "error", err)
			}
		}()
		engineOpts = append(engineOpts, analysis.WithTracerProvider(tp))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	deps := service.Dependencies{
		Repo:     repo,
		Engine:   analysis.NewEngine(repo, analysis.NewNormalizer(cfg.DefaultRegion), logger, m, engineOpts...),
		Activity: m,
		Logger:   logger,
	}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, confirmations will fail until it recovers", "addr", cfg.RedisAddr, "error", err)
		}
		deps.Guard = confirmations.NewRedisGuard(rdb)
	} else {
		logger.Warn("REDIS_ADDR not set, a user may confirm the same report more than once")
	}

	if cfg.S3Bucket != "" {
		client, err := newS3Client(ctx, cfg)
		if err != nil {
			logger.Error("failed to load AWS config", "error", err)
			os.Exit(1)
		}
		deps.Screenshots = objectstore.NewScreenshotStore(client, cfg.S3Bucket, cfg.S3PublicBaseURL, logger)
	}

	svc := service.NewReportService(deps)
	handler := httpHandler.NewHandler(svc, logger)

	strategies := []middleware.Strategy{middleware.APIKeyStrategy{Key: cfg.APIMasterKey}}
	if cfg.JWTSecret != "" {
		strategies = append(strategies, middleware.BearerStrategy{Secret: cfg.JWTSecret})
	}

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chiMiddleware.Recoverer)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
		r.Use(middleware.Authenticate(logger, strategies...))
		handler.RegisterRoutes(r)
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
		}
	}()

	logger.Info("server listening", "addr", srv.Addr, "storage", cfg.StorageDriver)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
}

func buildRepository(ctx context.Context, cfg *config.Config, logger *logging.Logger) (service.Repository, func(), error) {
	if cfg.StorageDriver != config.DriverScylla {
		logger.Warn("using in-memory report storage; data is lost on restart")
		return memory.NewRepository(), func() {}, nil
	}

	session, err := scylla.Connect(cfg.ScyllaKeyspace, cfg.ScyllaTimeout, cfg.ScyllaHosts...)
	if err != nil {
		return nil, nil, err
	}
	if cfg.ScyllaMigrate {
		if err := scylla.Migrate(ctx, session); err != nil {
			session.Close()
			return nil, nil, err
		}
	}
	logger.Info("connected to scylla", "hosts", cfg.ScyllaHosts, "keyspace", cfg.ScyllaKeyspace)
	return scylla.NewScyllaRepository(session, logger), session.Close, nil
}

func newS3Client(ctx context.Context, cfg *config.Config) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWSEndpointOverride != "" {
			o.BaseEndpoint = aws.String(cfg.AWSEndpointOverride)
			o.UsePathStyle = true
		}
	}), nil
}
