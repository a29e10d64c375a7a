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

	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/cache"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/config"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/consumer"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/discovery"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/logger"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/messaging"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/publisher"
)

const (
	serviceName = "receipt-worker"
	prefetch    = 10
)

func main() {
	cfg, err := config.Load(serviceName, 8083)
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
		log.Error("❌ Receipt worker stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr(), cfg.CacheTTL, log)
	if err != nil {
		return err
	}
	defer redisCache.Close()

	rabbitMQ, err := messaging.NewRabbitMQ(messaging.URL(cfg.RabbitMQHost, cfg.RabbitMQPort, cfg.RabbitMQUser, cfg.RabbitMQPassword), log)
	if err != nil {
		return err
	}
	defer rabbitMQ.Close()

	if err := rabbitMQ.DeclareQueue(publisher.OrderCreatedQueue); err != nil {
		return err
	}
	messages, err := rabbitMQ.Consume(publisher.OrderCreatedQueue, prefetch)
	if err != nil {
		return err
	}

	if cfg.DiscoveryEnabled {
		consul, err := discovery.NewConsulClient(cfg.ConsulHost, cfg.ConsulPort, log)
		if err != nil {
			log.Warn("⚠️ Failed to connect to Consul, skipping registration", zap.Error(err))
		} else {
			if err := consul.Register(discovery.ServiceConfig{
				Name:    serviceName,
				ID:      cfg.ServiceID,
				Address: cfg.ServiceAddress,
				Port:    cfg.HTTPPort,
				Tags:    []string{"worker", "receipts"},
			}); err != nil {
				return err
			}
			defer consul.Deregister(cfg.ServiceID)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.GET("/health", func(c *gin.Context) {
		if err := redisCache.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "service": serviceName})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "service": serviceName})
	})
	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	receipts := consumer.NewReceiptConsumer(redisCache, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		receipts.ProcessOrderCreated(gctx, messages)
		if gctx.Err() == nil {
			return errors.New("order.created delivery channel closed")
		}
		return nil
	})
	g.Go(func() error {
		log.Info("🚀 Receipt worker starting", zap.String("addr", server.Addr))
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
