package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
	"google.golang.org/grpc/status"

	grpc_logging "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/logging"
	grpc_recovery "github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"

	"github.com/KirkDiggler/equip-api/internal/config"
	"github.com/KirkDiggler/equip-api/internal/handlers/equipment/v1alpha1"
	"github.com/KirkDiggler/equip-api/internal/metrics"
	"github.com/KirkDiggler/equip-api/internal/redis"
	equipmentset "github.com/KirkDiggler/equip-api/internal/repositories/equipment_set"
	"github.com/KirkDiggler/equip-api/internal/services/sets"
)

const shutdownTimeout = 30 * time.Second

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the gRPC server",
	Long:  `Start the equipment totals gRPC server, its health service and the Prometheus endpoint.`,
}

func init() {
	// RunE is assigned here rather than in the literal to avoid an
	// initialization cycle (runServer -> bindFlags -> serverCmd).
	serverCmd.RunE = runServer
	serverCmd.Flags().Int("port", 50051, "gRPC server port")
	serverCmd.Flags().String("redis-addr", "", "Redis address; empty keeps sets in memory")
	serverCmd.Flags().String("metrics-addr", ":9090", "Prometheus listen address; empty disables metrics")
	serverCmd.Flags().Bool("auto-save", true, "persist sets after every dispatched event")
}

// bindFlags lets explicitly set flags override the config file and environment
func bindFlags(cmd *cobra.Command) error {
	bindings := map[string]string{
		config.KeyLogLevel:  "log-level",
		config.KeyLogFormat: "log-format",
	}
	if cmd == serverCmd {
		bindings[config.KeyGRPCPort] = "port"
		bindings[config.KeyRedisAddr] = "redis-addr"
		bindings[config.KeyMetricsAddr] = "metrics-addr"
		bindings[config.KeySetsAutoSave] = "auto-save"
	}

	for key, name := range bindings {
		if err := v.BindPFlag(key, cmd.Flag(name)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return err
	}

	logger := newLogger(os.Stderr, cfg.Log)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := newRepository(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeRepo()

	var recorder metrics.Recorder = metrics.NewNop()
	var metricsServer *http.Server
	if cfg.Metrics.Addr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		recorder = metrics.NewPrometheus(reg, cfg.Metrics.Namespace)

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
		metricsServer = &http.Server{
			Addr:              cfg.Metrics.Addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
	}

	setService, err := sets.NewService(&sets.Config{
		Repository:       repo,
		LimitDefinitions: cfg.Limits.Definitions,
		GlobalLimits:     cfg.Limits.GlobalLimits(),
		AutoSave:         cfg.Sets.AutoSave,
		Metrics:          recorder,
		Logger:           logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create set service: %w", err)
	}

	handler, err := v1alpha1.NewHandler(&v1alpha1.HandlerConfig{
		SetService: setService,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create totals handler: %w", err)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPC.Port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	recoveryOpt := grpc_recovery.WithRecoveryHandlerContext(func(ctx context.Context, p any) error {
		logger.ErrorContext(ctx, "recovered from panic", "panic", p)
		return status.Error(codes.Internal, "internal error")
	})
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			grpc_logging.UnaryServerInterceptor(interceptorLogger(logger)),
			grpc_recovery.UnaryServerInterceptor(recoveryOpt),
		),
		grpc.ChainStreamInterceptor(
			grpc_logging.StreamServerInterceptor(interceptorLogger(logger)),
			grpc_recovery.StreamServerInterceptor(recoveryOpt),
		),
	)

	v1alpha1.RegisterTotalsServiceServer(srv, handler)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(srv, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(v1alpha1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	errChan := make(chan error, 2)
	go func() {
		logger.Info("gRPC server starting", "port", cfg.GRPC.Port, "auto_save", cfg.Sets.AutoSave)
		if err := srv.Serve(lis); err != nil {
			errChan <- fmt.Errorf("failed to serve: %w", err)
		}
	}()
	if metricsServer != nil {
		go func() {
			logger.Info("metrics server starting", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errChan <- fmt.Errorf("failed to serve metrics: %w", err)
			}
		}()
	}

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-errChan:
		srv.Stop()
		return err
	}

	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if metricsServer != nil {
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown failed", "error", err)
		}
	}

	stopped := make(chan struct{})
	go func() {
		srv.GracefulStop()
		close(stopped)
	}()

	select {
	case <-shutdownCtx.Done():
		logger.Warn("graceful shutdown timeout exceeded, forcing stop")
		srv.Stop()
	case <-stopped:
		logger.Info("server stopped gracefully")
	}

	return nil
}

// newRepository picks Redis when an address is configured, memory otherwise
func newRepository(ctx context.Context, cfg config.RedisConfig) (equipmentset.Repository, func(), error) {
	if cfg.Addr == "" {
		slog.Info("storing equipment sets in memory")
		return equipmentset.NewInMemory(), func() {}, nil
	}

	client, err := redis.NewClient(cfg.Addr, &redis.Options{
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err != nil {
		return nil, nil, err
	}
	closeClient := func() {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close redis client", "error", err)
		}
	}

	if err := redis.Ping(ctx, client, 5*time.Second); err != nil {
		closeClient()
		return nil, nil, err
	}

	repo, err := equipmentset.NewRedis(&equipmentset.RedisConfig{
		Client: client,
		TTL:    cfg.TTL,
	})
	if err != nil {
		closeClient()
		return nil, nil, err
	}

	slog.Info("storing equipment sets in redis", "addr", cfg.Addr, "ttl", cfg.TTL)
	return repo, closeClient, nil
}
