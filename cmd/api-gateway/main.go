package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/config"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/discovery"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/logger"
)

const serviceName = "api-gateway"

func main() {
	cfg, err := config.Load(serviceName, 8080)
	if err != nil {
		panic(err)
	}

	log, err := logger.New(serviceName, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("❌ API Gateway stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	var resolver Resolver
	if cfg.DiscoveryEnabled {
		consul, err := discovery.NewConsulClient(cfg.ConsulHost, cfg.ConsulPort, log)
		if err != nil {
			log.Warn("⚠️ Failed to connect to Consul, using K8s DNS", zap.Error(err))
		} else {
			resolver = consul
		}
	}

	gateway := NewGateway(resolver, map[string]string{orderService: cfg.OrderServiceURL}, log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), RequestID())
	gateway.Register(router)

	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	if resolver != nil {
		g.Go(func() error {
			gateway.Watch(gctx, 10*time.Second)
			return nil
		})
	}
	g.Go(func() error {
		log.Info("🚀 API Gateway starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
