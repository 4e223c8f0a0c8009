package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront-api/internal/core/cache"
	"storefront-api/internal/core/config"
	"storefront-api/internal/core/database"
	"storefront-api/internal/core/events"
	"storefront-api/internal/core/logger"
	"storefront-api/internal/core/metrics"
	"storefront-api/internal/core/server"
	"storefront-api/internal/core/tracing"
	addressadapter "storefront-api/internal/features/addresses/adapters"
	addresshandler "storefront-api/internal/features/addresses/handler"
	addressports "storefront-api/internal/features/addresses/ports"
	addressservice "storefront-api/internal/features/addresses/service"
	banneradapter "storefront-api/internal/features/banners/adapters"
	bannerhandler "storefront-api/internal/features/banners/handler"
	bannerports "storefront-api/internal/features/banners/ports"
	bannerservice "storefront-api/internal/features/banners/service"
	contactadapter "storefront-api/internal/features/contacts/adapters"
	contacthandler "storefront-api/internal/features/contacts/handler"
	contactports "storefront-api/internal/features/contacts/ports"
	contactservice "storefront-api/internal/features/contacts/service"
	inventoryadapter "storefront-api/internal/features/inventory/adapters"
	inventoryhandler "storefront-api/internal/features/inventory/handler"
	inventoryports "storefront-api/internal/features/inventory/ports"
	inventoryservice "storefront-api/internal/features/inventory/service"
	orderadapter "storefront-api/internal/features/orders/adapters"
	orderhandler "storefront-api/internal/features/orders/handler"
	orderports "storefront-api/internal/features/orders/ports"
	orderservice "storefront-api/internal/features/orders/service"
	orderworker "storefront-api/internal/features/orders/worker"
	paymentadapter "storefront-api/internal/features/payments/adapters"
	shippingadapter "storefront-api/internal/features/shipping/adapters"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// stores groups the repositories selected by STORAGE_DRIVER.
type stores struct {
	orders    orderports.OrderRepository
	products  inventoryports.ProductRepository
	addresses addressports.AddressRepository
	banners   bannerports.BannerRepository
	contacts  contactports.ContactRepository
	ping      func(ctx context.Context) error
	close     func(ctx context.Context) error
}

// @title Storefront API
// @version 1.0
// @description Orders, payments, fulfillment and catalogue API for the storefront.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
		zap.String("storage", cfg.StorageDriver),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	tp, err := tracing.Init(cfg.Tracing, os.Stdout)
	if err != nil {
		l.Fatal("Tracing initialization failed", zap.Error(err))
	}
	l.Info("Tracing configured", zap.String("exporter", cfg.Tracing.Exporter))

	st, err := openStores(ctx, cfg)
	if err != nil {
		l.Fatal("Storage initialization failed", zap.Error(err))
	}

	c, err := openCache(cfg.Redis)
	if err != nil {
		l.Fatal("Cache initialization failed", zap.Error(err))
	}

	publisher := openPublisher(cfg.Kafka)

	// Catalogue and customer features
	ledger := inventoryservice.NewLedger(st.products, m)
	productHdl := inventoryhandler.NewProductHandler(inventoryservice.NewProductService(st.products))

	addressSvc := addressservice.NewAddressService(st.addresses)
	addressHdl := addresshandler.NewAddressHandler(addressSvc)

	bannerRepo := banneradapter.NewCachedBannerRepository(st.banners, c, 10*time.Minute)
	bannerHdl := bannerhandler.NewBannerHandler(bannerservice.NewBannerService(bannerRepo))

	contactHdl := contacthandler.NewContactHandler(contactservice.NewContactService(st.contacts))

	// Order flow
	orchestrator := orderservice.NewOrchestrator(orderservice.Dependencies{
		Orders:    st.orders,
		Ledger:    ledger,
		Gateway:   paymentadapter.NewPhonePeAdapter(cfg.PhonePe, c, m),
		Shipper:   shippingadapter.NewShipCorrectAdapter(cfg.ShipCorrect, m),
		Addresses: st.addresses,
		Events:    publisher,
		Metrics:   m,
		Tracing:   tp.TracerProvider(),
	}, orderservice.Options{
		PublicBaseURL:       cfg.PublicBaseURL,
		InitiateTimeout:     cfg.Orders.InitiateTimeout,
		VerifyLeaseTTL:      cfg.Orders.VerifyLeaseTTL,
		ShipmentRetryBase:   cfg.Orders.ShipmentRetryBase,
		ShipmentMaxAttempts: cfg.Orders.ShipmentMaxAttempts,
	})
	orderHdl := orderhandler.NewOrderHandler(orchestrator, cfg.Frontend)

	worker := orderworker.NewReconciliationWorker(orchestrator, orderworker.Config{
		Interval:   cfg.Orders.ReconcileInterval,
		StaleAfter: cfg.Orders.ReconcileStaleAfter,
	})
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := make(chan struct{})
	go func() {
		defer close(workerDone)
		worker.Run(workerCtx)
	}()

	srv := server.New(cfg, reg,
		server.HealthCheck{Name: "store", Ping: st.ping},
		server.HealthCheck{Name: "cache", Ping: c.Ping},
	)

	// Register Routes
	orderHdl.Register(srv.App)
	productHdl.Register(srv.App)
	addressHdl.Register(srv.App)
	bannerHdl.Register(srv.App)
	contactHdl.Register(srv.App)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Run()
	}()

	select {
	case <-ctx.Done():
		l.Info("Shutdown signal received")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Error("Server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error("Server shutdown failed", zap.Error(err))
	}
	stopWorker()
	<-workerDone

	if err := publisher.Close(); err != nil {
		l.Error("Event publisher close failed", zap.Error(err))
	}
	if err := tp.Shutdown(shutdownCtx); err != nil {
		l.Error("Tracer provider shutdown failed", zap.Error(err))
	}
	if err := c.Close(); err != nil {
		l.Error("Cache close failed", zap.Error(err))
	}
	if err := st.close(shutdownCtx); err != nil {
		l.Error("Storage close failed", zap.Error(err))
	}
	l.Info("Application stopped")
}

func openStores(ctx context.Context, cfg *config.AppConfig) (*stores, error) {
	if cfg.StorageDriver == config.StorageMemory {
		logger.Get().Warn("Using in-memory storage; data is lost on restart")
		return &stores{
			orders:    orderadapter.NewMemoryOrderRepository(),
			products:  inventoryadapter.NewMemoryProductRepository(),
			addresses: addressadapter.NewMemoryAddressRepository(),
			banners:   banneradapter.NewMemoryBannerRepository(),
			contacts:  contactadapter.NewMemoryContactRepository(),
			ping:      func(context.Context) error { return nil },
			close:     func(context.Context) error { return nil },
		}, nil
	}

	client, db, err := database.Connect(ctx, cfg.Mongo)
	if err != nil {
		return nil, err
	}
	if err := database.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &stores{
		orders:    orderadapter.NewMongoOrderRepository(db),
		products:  inventoryadapter.NewMongoProductRepository(db),
		addresses: addressadapter.NewMongoAddressRepository(db),
		banners:   banneradapter.NewMongoBannerRepository(db),
		contacts:  contactadapter.NewMongoContactRepository(db),
		ping:      func(ctx context.Context) error { return client.Ping(ctx, nil) },
		close:     disconnect(client),
	}, nil
}

func disconnect(client *mongo.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		return client.Disconnect(ctx)
	}
}

func openCache(cfg config.RedisConfig) (cache.Cache, error) {
	if cfg.URL == "" {
		logger.Get().Info("REDIS_URL not set; using in-process cache")
		return cache.NewMemoryAdapter(), nil
	}
	return cache.NewRedisAdapter(cfg.URL, cache.WithKeyPrefix(cfg.KeyPrefix))
}

func openPublisher(cfg config.KafkaConfig) events.Publisher {
	brokers := cfg.BrokerList()
	if len(brokers) == 0 {
		logger.Get().Info("KAFKA_BROKERS not set; order events are dropped")
		return events.NopPublisher{}
	}
	logger.Get().Info("Publishing order events", zap.Strings("brokers", brokers), zap.String("topic", cfg.Topic))
	return events.NewKafkaPublisher(brokers, cfg.Topic, 1024)
}
