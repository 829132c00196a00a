package app

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/jourmarche/internal/catalog"
	"github.com/vladislavdragonenkov/jourmarche/internal/domain"
	"github.com/vladislavdragonenkov/jourmarche/internal/metrics"
	"github.com/vladislavdragonenkov/jourmarche/internal/service/auth"
	"github.com/vladislavdragonenkov/jourmarche/internal/service/cart"
	"github.com/vladislavdragonenkov/jourmarche/internal/service/checkout"
	grpcsvc "github.com/vladislavdragonenkov/jourmarche/internal/service/grpc"
	"github.com/vladislavdragonenkov/jourmarche/internal/service/identity"
	"github.com/vladislavdragonenkov/jourmarche/internal/service/order"
)

// Dependencies содержит собранные сервисы витрины.
type Dependencies struct {
	Catalog    *catalog.Catalog
	Metrics    *metrics.StorefrontMetrics
	Cart       *cart.Store
	Orders     *order.Store
	Auth       *auth.Store
	Checkout   *checkout.Service
	Storefront *grpcsvc.StorefrontService
	Logger     *log.Entry
}

// NewDependencies собирает хранилища сессии поверх storage. События заказов пишутся
// в outbox только при publishEvents: без брокера их некому забирать.
func NewDependencies(
	cfg Config,
	storage *runtimeStorage,
	registerer prometheus.Registerer,
	publishEvents bool,
	logger *log.Entry,
) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	if storage == nil {
		return nil, fmt.Errorf("storage is not initialized")
	}

	cat, err := catalog.Default()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	storefrontMetrics := metrics.NewStorefrontMetricsWithRegisterer(registerer)

	var policy domain.StatusPolicy = domain.PermissivePolicy{}
	if cfg.StrictTransitions {
		policy = domain.StrictPolicy{}
	}

	orderOpts := []order.Option{
		order.WithLogger(logger.WithField("component", "order-store")),
		order.WithMetrics(storefrontMetrics),
		order.WithStatusPolicy(policy),
		order.WithTimeline(storage.timelineRepo),
	}
	if publishEvents {
		orderOpts = append(orderOpts, order.WithOutbox(storage.outboxRepo))
	}

	cartStore := cart.NewStore(storage.snapshots,
		cart.WithLogger(logger.WithField("component", "cart-store")),
		cart.WithMetrics(storefrontMetrics),
	)
	orderStore := order.NewStore(storage.snapshots, orderOpts...)

	provider := identity.NewMockProvider(cat.DemoUsers(),
		identity.WithDelay(cfg.LoginDelay),
		identity.WithLogger(logger.WithField("component", "identity-mock")),
	)
	authStore := auth.NewStore(provider, storage.snapshots,
		auth.WithLogger(logger.WithField("component", "auth-store")),
		auth.WithMetrics(storefrontMetrics),
	)

	checkoutSvc := checkout.NewService(cartStore, orderStore,
		checkout.WithLogger(logger.WithField("component", "checkout")),
		checkout.WithMetrics(storefrontMetrics),
		checkout.WithShops(cat),
		checkout.WithDefaultDeliveryFee(cfg.DefaultDeliveryFee),
	)

	storefront := grpcsvc.NewStorefrontService(grpcsvc.Dependencies{
		Cart:     cartStore,
		Orders:   orderStore,
		Auth:     authStore,
		Checkout: checkoutSvc,
		Catalog:  cat,
		Logger:   logger.WithField("layer", "grpc"),
	})

	return &Dependencies{
		Catalog:    cat,
		Metrics:    storefrontMetrics,
		Cart:       cartStore,
		Orders:     orderStore,
		Auth:       authStore,
		Checkout:   checkoutSvc,
		Storefront: storefront,
		Logger:     logger,
	}, nil
}
