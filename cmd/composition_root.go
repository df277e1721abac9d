package cmd

import (
	"context"
	"log/slog"

	httpin "procurement/internal/adapters/in/http"
	"procurement/internal/adapters/out/bookingstore"
	"procurement/internal/adapters/out/postgres"
	"procurement/internal/adapters/out/postgres/preferencesrepo"
	"procurement/internal/adapters/out/rabbitmq"
	"procurement/internal/core/application/usecases/commands"
	"procurement/internal/core/application/usecases/queries"
	"procurement/internal/core/domain/model/kernel"
	"procurement/internal/core/domain/model/order"
	"procurement/internal/core/ports"
	"procurement/internal/jobs"
	"procurement/internal/metrics"
	"procurement/internal/pkg/cache"

	"github.com/jmoiron/sqlx"
	amqp "github.com/rabbitmq/amqp091-go"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	config     Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	clock      kernel.Clock
	logger     *slog.Logger

	orderCache    *cache.Cache[kernel.UUID, *order.Order]
	lineItemCache *cache.Cache[kernel.UUID, ports.LineItemProjection]

	documents *bookingstore.DocumentStore
	statuses  *bookingstore.StatusCatalog
	publisher *rabbitmq.ThreadPublisher
}

func NewCompositionRoot(
	config Config,
	gormDB *gorm.DB,
	bookingDB *sqlx.DB,
	channel *amqp.Channel,
	logger *slog.Logger,
) CompositionRoot {
	statuses := bookingstore.NewStatusCatalog(bookingDB, config.StatusCacheTTL)
	return CompositionRoot{
		config:        config,
		gormDB:        gormDB,
		uowFactory:    postgres.NewGormUnitOfWorkFactory(gormDB),
		clock:         kernel.SystemClock{},
		logger:        logger,
		orderCache:    cache.New[kernel.UUID, *order.Order](config.OrderCacheTTL),
		lineItemCache: cache.New[kernel.UUID, ports.LineItemProjection](config.OrderCacheTTL),
		documents:     bookingstore.NewDocumentStore(bookingDB, statuses),
		statuses:      statuses,
		publisher:     rabbitmq.NewThreadPublisher(channel, config.RabbitMQExchange, logger),
	}
}

func (c *CompositionRoot) uow() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderUoW() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) outboxUoW() commands.OutboxUoWFactory {
	return FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) orderReader() queries.OrderReader {
	return FuncOrderReader(func(ctx context.Context, id kernel.UUID) (*order.Order, error) {
		return c.uowFactory.Create().OrderRepository().Get(ctx, id)
	})
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() *commands.ChangeOrderStatusCommandHandler {
	return commands.NewChangeOrderStatusCommandHandler(
		c.orderUoW(), c.documents, c.statuses, c.documents, c.orderCache, c.clock, c.logger,
	)
}

func (c *CompositionRoot) CreateEditOrderCommandHandler() *commands.EditOrderCommandHandler {
	return commands.NewEditOrderCommandHandler(commands.EditOrderDependencies{
		UoWFactory:    c.uow(),
		StatusChanger: c.CreateChangeOrderStatusCommandHandler(),
		Preferences:   preferencesrepo.NewGormPreferencesProvider(c.gormDB),
		Fulfillments:  c.documents,
		Catalog:       c.statuses,
		Bookings:      c.documents,
		OrderCache:    c.orderCache,
		LineItemCache: c.lineItemCache,
		Clock:         c.clock,
		Logger:        c.logger,
	})
}

func (c *CompositionRoot) CreateEditParticipantsCommandHandler() *commands.EditParticipantsCommandHandler {
	return commands.NewEditParticipantsCommandHandler(c.orderUoW(), c.orderCache, c.clock, c.logger)
}

func (c *CompositionRoot) CreateReviewChangeRequestCommandHandler() *commands.ReviewChangeRequestCommandHandler {
	return commands.NewReviewChangeRequestCommandHandler(c.uow(), c.clock, c.logger)
}

func (c *CompositionRoot) CreateSaveOrderPreferencesCommandHandler() *commands.SaveOrderPreferencesCommandHandler {
	return commands.NewSaveOrderPreferencesCommandHandler(preferencesrepo.NewGormPreferencesProvider(c.gormDB), c.logger)
}

func (c *CompositionRoot) CreateRelayOutboxCommandHandler() *commands.RelayOutboxCommandHandler {
	return commands.NewRelayOutboxCommandHandler(c.outboxUoW(), c.publisher, c.clock, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() *queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.orderCache, c.orderReader())
}

func (c *CompositionRoot) CreateGetLineItemQueryHandler() *queries.GetLineItemQueryHandler {
	return queries.NewGetLineItemQueryHandler(c.gormDB, c.orderCache, c.lineItemCache, c.orderReader())
}

func (c *CompositionRoot) CreateGetOrderChangeRequestsQueryHandler() *queries.GetOrderChangeRequestsQueryHandler {
	return queries.NewGetOrderChangeRequestsQueryHandler(c.gormDB, c.orderCache, c.orderReader())
}

func (c *CompositionRoot) CreateCanOrderBeCancelledQueryHandler() *queries.CanOrderBeCancelledQueryHandler {
	return queries.NewCanOrderBeCancelledQueryHandler(c.orderCache, c.orderReader(), c.documents, c.statuses)
}

// CreateHTTPServer wires every use case behind the REST surface.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(httpin.Handlers{
		EditOrder:              c.CreateEditOrderCommandHandler(),
		ChangeOrderStatus:      c.CreateChangeOrderStatusCommandHandler(),
		EditParticipants:       c.CreateEditParticipantsCommandHandler(),
		ReviewChangeRequest:    c.CreateReviewChangeRequestCommandHandler(),
		SaveOrderPreferences:   c.CreateSaveOrderPreferencesCommandHandler(),
		GetOrder:               c.CreateGetOrderQueryHandler(),
		GetLineItem:            c.CreateGetLineItemQueryHandler(),
		GetOrderChangeRequests: c.CreateGetOrderChangeRequestsQueryHandler(),
		CanOrderBeCancelled:    c.CreateCanOrderBeCancelledQueryHandler(),
	}, c.logger)
}

// CreateJobManager wires the background jobs.
func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	relay, err := commands.NewRelayOutboxCommand(c.config.OutboxBatchSize, c.config.OutboxMaxAttempts)
	if err != nil {
		return nil, err
	}
	return jobs.NewJobManager(
		jobs.NewOutboxRelayJob(c.CreateRelayOutboxCommandHandler(), relay, c.config.OutboxRelaySchedule, c.logger),
		jobs.NewCacheSweepJob(c.orderCache, metrics.OrderCacheItems, c.config.CacheSweepSchedule, c.logger),
	), nil
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}

// FuncOrderReader loads orders for the queries on a fresh unit of work.
type FuncOrderReader func(ctx context.Context, id kernel.UUID) (*order.Order, error)

func (f FuncOrderReader) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	return f(ctx, id)
}
