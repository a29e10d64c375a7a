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
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/db"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/discovery"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/fulfillment"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/handlers"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/logger"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/memstore"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/messaging"
	"github.com/prudhivi99/Distributed-Systems/mealorder-go/internal/publisher"
)

const serviceName = "order-service"

func main() {
	cfg, err := config.Load(serviceName, 8082)
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
		log.Error("❌ Order service stopped", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	store, orders, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var opts []fulfillment.Option

	// Redis and RabbitMQ are optional; without them receipts are rebuilt
	// from the store and no events are published.
	var receiptCache db.ReceiptCache
	redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr(), cfg.CacheTTL, log)
	if err != nil {
		log.Warn("⚠️ Running without receipt cache", zap.Error(err))
	} else {
		defer redisCache.Close()
		receiptCache = redisCache
	}

	rabbitMQ, err := messaging.NewRabbitMQ(messaging.URL(cfg.RabbitMQHost, cfg.RabbitMQPort, cfg.RabbitMQUser, cfg.RabbitMQPassword), log)
	if err != nil {
		log.Warn("⚠️ Running without event publishing", zap.Error(err))
	} else {
		defer rabbitMQ.Close()
		orderPublisher, err := publisher.NewOrderPublisher(rabbitMQ)
		if err != nil {
			return err
		}
		opts = append(opts, fulfillment.WithPublisher(orderPublisher))
	}

	service := fulfillment.NewService(store, log, opts...)
	orderHandler := handlers.NewOrderHandler(service, db.NewCachedOrderRepository(orders, receiptCache, log), log)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	orderHandler.Register(router)

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
				Tags:    []string{"api", "orders"},
			}); err != nil {
				return err
			}
			defer consul.Deregister(cfg.ServiceID)
		}
	}

	server := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("🚀 Order service starting", zap.String("addr", server.Addr), zap.String("store", cfg.StoreDriver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (fulfillment.Store, db.OrderSource, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		store := memstore.New()
		if cfg.SeedProducts {
			store.Seed(db.SampleProducts()...)
		}
		log.Info("✅ Using in-memory store")
		return store, store, func() {}, nil
	}

	database, err := db.NewPostgresDB(ctx, db.PostgresConfig{
		Host:         cfg.DBHost,
		Port:         cfg.DBPort,
		User:         cfg.DBUser,
		Password:     cfg.DBPassword,
		DBName:       cfg.DBName,
		MaxOpenConns: cfg.DBMaxOpenConns,
	}, log)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, nil, nil, err
	}

	if cfg.SeedProducts {
		if err := db.NewProductRepository(database).Upsert(ctx, db.SampleProducts()...); err != nil {
			database.Close()
			return nil, nil, nil, err
		}
		log.Info("🌱 Seeded sample products")
	}

	closeFn := func() { database.Close() }
	return db.NewFulfillmentStore(database), db.NewOrderRepository(database), closeFn, nil
}
