package cmd

import (
	"time"

	amqpin "orderflow/internal/adapters/in/amqp"
	httpin "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/core/application/notifications"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/ports"
	"orderflow/internal/jobs"
	"orderflow/internal/pkg/logger"
	"orderflow/internal/pkg/metrics"
	"orderflow/internal/pkg/rabbit"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Clients are the outbound dependencies built by main.
type Clients struct {
	Calculator ports.CalculatorClient
	Details    ports.DetailsClient
	Identity   ports.IdentityClient
	Files      ports.FileClient
	Lots       ports.LotClient
	Publisher  ports.EventPublisher
	// Attempts may be nil; the consumer then falls back to the redelivered flag.
	Attempts amqpin.CounterStore
}

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	clients    Clients
	log        *logger.Logger
	registry   *prometheus.Registry
}

func NewCompositionRoot(cfg Config, gormDB *gorm.DB, clients Clients, log *logger.Logger) CompositionRoot {
	return CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		clients:    clients,
		log:        log,
		registry:   prometheus.NewRegistry(),
	}
}

func (c *CompositionRoot) Registry() *prometheus.Registry {
	return c.registry
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) uoWFactory() commands.UoWFactory {
	return FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) customInvoiceUoWFactory() commands.CustomInvoiceUoWFactory {
	return FuncCustomInvoiceUoWFactory(func() commands.CustomInvoiceUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateStatusNotifier() ports.StatusNotifier {
	return notifications.NewDispatcher(c.clients.Identity, c.clients.Publisher, c.log)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.orderUoWFactory(), c.clients.Identity, c.clients.Details, c.clients.Calculator)
}

func (c *CompositionRoot) CreateCreateOrderFromLotCommandHandler() commands.CreateOrderFromLotCommandHandler {
	return commands.NewCreateOrderFromLotCommandHandler(c.orderUoWFactory(), c.clients.Lots, c.clients.Identity, c.clients.Calculator)
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	return commands.NewChangeOrderStatusCommandHandler(c.uoWFactory(), c.CreateStatusNotifier())
}

func (c *CompositionRoot) CreateChooseDestinationCommandHandler() commands.ChooseDestinationCommandHandler {
	return commands.NewChooseDestinationCommandHandler(c.orderUoWFactory(), c.clients.Calculator, c.CreateStatusNotifier())
}

func (c *CompositionRoot) CreateDeleteOrderCommandHandler() commands.DeleteOrderCommandHandler {
	return commands.NewDeleteOrderCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateInvoiceItemCommandHandler() commands.InvoiceItemCommandHandler {
	return commands.NewInvoiceItemCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateDeleteCustomInvoiceCommandHandler() commands.DeleteCustomInvoiceCommandHandler {
	return commands.NewDeleteCustomInvoiceCommandHandler(c.uoWFactory())
}

func (c *CompositionRoot) CreateRequestCustomInvoiceUploadCommandHandler() commands.RequestCustomInvoiceUploadCommandHandler {
	return commands.NewRequestCustomInvoiceUploadCommandHandler(c.uoWFactory(), c.clients.Files)
}

func (c *CompositionRoot) CreateApplyFileStatusCommandHandler() commands.ApplyFileStatusCommandHandler {
	return commands.NewApplyFileStatusCommandHandler(c.customInvoiceUoWFactory())
}

func (c *CompositionRoot) CreatePurgeStaleCustomInvoicesCommandHandler() commands.PurgeStaleCustomInvoicesCommandHandler {
	return commands.NewPurgeStaleCustomInvoicesCommandHandler(c.customInvoiceUoWFactory())
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderStatusHistoryQueryHandler() queries.GetOrderStatusHistoryQueryHandler {
	return queries.NewGetOrderStatusHistoryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAvailableDestinationsQueryHandler() queries.GetAvailableDestinationsQueryHandler {
	return queries.NewGetAvailableDestinationsQueryHandler(c.gormDB, c.clients.Calculator)
}

func (c *CompositionRoot) CreateGetCustomInvoiceDownloadURLQueryHandler() queries.GetCustomInvoiceDownloadURLQueryHandler {
	return queries.NewGetCustomInvoiceDownloadURLQueryHandler(c.gormDB, c.clients.Files)
}

// CreateHTTPServer wires every use case exposed over HTTP.
func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	createOrder := c.CreateCreateOrderCommandHandler()
	changeStatus := c.CreateChangeOrderStatusCommandHandler()
	chooseDestination := c.CreateChooseDestinationCommandHandler()
	deleteOrder := c.CreateDeleteOrderCommandHandler()
	invoiceItems := c.CreateInvoiceItemCommandHandler()
	deleteCustomInvoice := c.CreateDeleteCustomInvoiceCommandHandler()
	requestUpload := c.CreateRequestCustomInvoiceUploadCommandHandler()

	return httpin.NewServer(httpin.Handlers{
		CreateOrder:           &createOrder,
		ChangeStatus:          &changeStatus,
		ChooseDestination:     &chooseDestination,
		DeleteOrder:           &deleteOrder,
		InvoiceItems:          &invoiceItems,
		DeleteCustomInvoice:   &deleteCustomInvoice,
		RequestUpload:         &requestUpload,
		GetOrder:              c.CreateGetOrderQueryHandler(),
		ListOrders:            c.CreateListOrdersQueryHandler(),
		StatusHistory:         c.CreateGetOrderStatusHistoryQueryHandler(),
		AvailableDestinations: c.CreateGetAvailableDestinationsQueryHandler(),
		DownloadURL:           c.CreateGetCustomInvoiceDownloadURLQueryHandler(),
	}, c.log, c.registry)
}

// CreateConsumer wires the bid.won and files.uploaded handlers to the queue.
func (c *CompositionRoot) CreateConsumer(dialer *rabbit.Dialer) *amqpin.Consumer {
	fromLot := c.CreateCreateOrderFromLotCommandHandler()
	applyFileStatus := c.CreateApplyFileStatusCommandHandler()

	consumer := amqpin.NewConsumer(
		amqpin.Config{
			Exchange: c.cfg.RabbitMQ.ExchangeName,
			Queue:    c.cfg.RabbitMQ.QueueName,
			Prefetch: c.cfg.RabbitMQ.Prefetch,
		},
		dialer,
		amqpin.NewAttemptCounter(c.clients.Attempts, c.cfg.Redis.AttemptTTL, c.cfg.RabbitMQ.MaxAttempts),
		metrics.NewConsumerMetrics(c.registry),
		c.log,
	)
	consumer.Handle(amqpin.RoutingKeyBidWon, amqpin.NewBidWonHandler(&fromLot, c.log))
	consumer.Handle(amqpin.RoutingKeyFilesUploaded, amqpin.NewFilesUploadedHandler(&applyFileStatus, c.log))
	return consumer
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	purge := c.CreatePurgeStaleCustomInvoicesCommandHandler()
	return jobs.NewJobManager(
		jobs.NewStaleCustomInvoiceJob(
			&purge,
			c.cfg.Jobs.StaleUploadTTL,
			c.cfg.Jobs.StaleUploadSchedule,
			metrics.NewJobMetrics(c.registry),
			c.log,
		),
	)
}

// RabbitRetryPolicy is the reconnect policy shared by consumer and publisher.
func (c *CompositionRoot) RabbitRetryPolicy() rabbit.RetryPolicy {
	return RabbitRetryPolicy(c.cfg.RabbitMQ)
}

func RabbitRetryPolicy(cfg RabbitMQConfig) rabbit.RetryPolicy {
	base, maxDelay := cfg.BackoffBase, cfg.BackoffMax
	if base <= 0 {
		base = time.Second
	}
	if maxDelay < base {
		maxDelay = base
	}
	return rabbit.RetryPolicy{Attempts: cfg.ConnectAttempts, BaseDelay: base, MaxDelay: maxDelay}
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

type FuncCustomInvoiceUoWFactory func() commands.CustomInvoiceUoW

func (f FuncCustomInvoiceUoWFactory) Create() commands.CustomInvoiceUoW {
	return f()
}
