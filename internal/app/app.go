package app

import (
	"context"
	"fmt"

	"github.com/ariefcatur/go-storefront/internal/cart"
	"github.com/ariefcatur/go-storefront/internal/catalog"
	"github.com/ariefcatur/go-storefront/internal/config"
	"github.com/ariefcatur/go-storefront/internal/currency"
	"github.com/ariefcatur/go-storefront/internal/inventory"
	kafkax "github.com/ariefcatur/go-storefront/internal/kafka"
	"github.com/ariefcatur/go-storefront/internal/notify"
	"github.com/ariefcatur/go-storefront/internal/orders"
	"github.com/ariefcatur/go-storefront/internal/postgres"
	"github.com/ariefcatur/go-storefront/internal/rabbitmq"
	"github.com/ariefcatur/go-storefront/internal/redisx"
	"github.com/ariefcatur/go-storefront/internal/storage"
	"go.uber.org/zap"
)

// App is the wired core shared by the server and the dev CLI.
type App struct {
	Backend  storage.Backend
	Bus      *notify.Bus
	Relay    *redisx.Relay // nil unless the backend is redis
	Catalog  *catalog.Catalog
	Stock    *inventory.Service
	Cart     *cart.Store
	Currency *currency.Store
	Orders   *orders.Recorder
	Checkout *orders.Checkout

	closers []func()
}

// Open connects the configured backend and event sink. The sink's background
// work runs until ctx is done; call Close to flush and release everything.
func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*App, error) {
	a := &App{Bus: notify.NewBus()}
	var notifier notify.Publisher = a.Bus

	switch cfg.StorageBackend {
	case "memory", "":
		a.Backend = storage.NewMemory()
	case "redis":
		rdb := redisx.New(cfg.RedisAddr)
		a.closers = append(a.closers, func() { _ = rdb.Close() })
		if err := redisx.Ping(ctx, rdb); err != nil {
			a.Close()
			return nil, err
		}
		a.Backend = redisx.NewStorage(rdb, redisx.WithLockTTL(cfg.LockTTL), redisx.WithLockRetries(cfg.LockRetries))
		a.Relay = redisx.NewRelay(rdb, a.Bus, log.Named("relay"))
		notifier = a.Relay
	case "postgres":
		db, err := postgres.Connect(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		pg := &postgres.Storage{DB: db}
		if err := pg.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.Backend = pg
	default:
		return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
	}
	log.Info("storage backend ready", zap.String("backend", cfg.StorageBackend))

	sink, err := a.openSink(ctx, cfg, log)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Catalog = catalog.New(a.Backend, log.Named("catalog"))
	if err := a.Catalog.Init(ctx); err != nil {
		a.Close()
		return nil, fmt.Errorf("init catalog: %w", err)
	}
	a.Stock = inventory.NewService(a.Backend, a.Catalog, notifier, log.Named("stock"))
	a.Cart = cart.NewStore(a.Backend, a.Stock, notifier, log.Named("cart"))
	a.Currency = currency.NewStore(a.Backend, notifier, log.Named("currency"))
	a.Orders = orders.NewRecorder(a.Backend, a.Stock, a.Cart, a.Catalog, sink, log.Named("orders"))
	a.Checkout = orders.NewCheckout(a.Backend, a.Cart, a.Orders, log.Named("checkout"))
	return a, nil
}

func (a *App) openSink(ctx context.Context, cfg config.Config, log *zap.Logger) (orders.EventSink, error) {
	switch cfg.EventsSink {
	case "none", "":
		return orders.NopSink{}, nil
	case "kafka":
		prod := kafkax.NewProducer(cfg.KafkaBrokers, orders.TopicOrderCommitted, 1024, log.Named("kafka"))
		prod.Start(ctx)
		a.closers = append(a.closers, func() {
			prod.Close() // tutup inbox -> flush & close writer
			prod.WaitClosed()
		})
		log.Info("order events to kafka", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", orders.TopicOrderCommitted))
		return &orders.KafkaSink{Producer: prod, ServiceName: cfg.ServiceName}, nil
	case "rabbitmq":
		pool, err := rabbitmq.NewChannelPool(cfg.RabbitMQURL, cfg.RabbitMQQueue, 4, log.Named("rabbitmq"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pool.Close)
		return &orders.RabbitSink{
			Publisher:   rabbitmq.NewPublisher(pool, cfg.RabbitMQQueue, log.Named("rabbitmq")),
			ServiceName: cfg.ServiceName,
		}, nil
	default:
		return nil, fmt.Errorf("unknown EVENTS_SINK %q", cfg.EventsSink)
	}
}

// ClearAll wipes cart, stock and orders. Dev use only.
func (a *App) ClearAll(ctx context.Context) error {
	if err := a.Cart.Clear(ctx); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	if err := a.Stock.Reset(ctx); err != nil {
		return err
	}
	if err := a.Orders.Clear(ctx); err != nil {
		return fmt.Errorf("clear orders: %w", err)
	}
	return nil
}

// Close releases in reverse order of acquisition.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
