package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_restaurant/internal/cart"
	"github.com/fjod/go_restaurant/internal/config"
	"github.com/fjod/go_restaurant/internal/consumer"
	"github.com/fjod/go_restaurant/internal/dashboard"
	h "github.com/fjod/go_restaurant/internal/http"
	"github.com/fjod/go_restaurant/internal/restapi"
	"github.com/fjod/go_restaurant/pkg/logger"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const (
	evictInterval = 5 * time.Minute
	evictIdle     = 30 * time.Minute
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{
		Service: "restaurant",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
	})

	if err := run(cfg, log); err != nil {
		log.Error("restaurant service failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, closeStorage, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStorage()

	carts := cart.NewManager(st, log)
	go carts.RunEvictor(ctx, evictInterval, evictIdle)

	api, err := restapi.New(restapi.Options{
		BaseURL: cfg.APIBaseURL,
		Token:   cfg.APIToken,
		Timeout: cfg.RequestTimeout,
		Logger:  log,
	})
	if err != nil {
		return err
	}
	dash := dashboard.NewService(api, dashboard.Options{Dedup: cfg.CacheDedup, Logger: log})

	if len(cfg.KafkaBrokers) > 0 {
		c := consumer.NewConsumer(carts, log, cfg.KafkaBrokers...)
		defer c.Close()
		go c.Run(ctx)
		log.Info("order consumer started", "brokers", cfg.KafkaBrokers, "topic", consumer.Topic)
	}

	// Health and reflection for grpcurl/grpc_health_probe
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", cfg.GRPCHealthPort))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)

	go func() {
		log.Info("grpc health listening", "port", cfg.GRPCHealthPort)
		if err := grpcServer.Serve(lis); err != nil {
			log.Error("grpc health server error", "error", err)
		}
	}()

	router := h.NewRouter(h.RouterConfig{
		Cart:           h.NewCartHandler(carts),
		Lists:          h.NewListHandler(api),
		Dashboard:      h.NewDashboardHandler(dash),
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("http server starting", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		return fmt.Errorf("http server error: %w", err)
	}

	log.Info("shutting down")
	healthServer.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}
	grpcServer.GracefulStop()

	log.Info("server exited")
	return nil
}
