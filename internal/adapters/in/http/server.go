package http

import (
	"context"
	"net/http"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/custominvoice"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// UserHeader carries the uuid of the calling customer. Requests without it
// are not restricted to an owner.
const UserHeader = "X-User-UUID"

type OrderCreator interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
}

type StatusChanger interface {
	Handle(ctx context.Context, cmd commands.ChangeOrderStatusCommand) (*order.Order, error)
	HandleTrackingLink(ctx context.Context, cmd commands.AddTrackingLinkCommand) (*order.Order, error)
}

type DestinationChooser interface {
	Handle(ctx context.Context, cmd commands.ChooseDestinationCommand) (*order.Order, error)
}

type OrderDeleter interface {
	Handle(ctx context.Context, cmd commands.DeleteOrderCommand) error
}

type InvoiceItemEditor interface {
	Handle(ctx context.Context, cmd commands.InvoiceItemCommand) (*order.InvoiceItem, error)
}

type CustomInvoiceDeleter interface {
	Handle(ctx context.Context, cmd commands.DeleteCustomInvoiceCommand) (*custominvoice.CustomInvoice, error)
}

type CustomInvoiceUploadRequester interface {
	Handle(ctx context.Context, cmd commands.RequestCustomInvoiceUploadCommand) (ports.PresignedUpload, error)
}

type OrderGetter interface {
	Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error)
}

type OrderLister interface {
	Handle(ctx context.Context, query queries.ListOrdersQuery) (queries.ListOrdersResponse, error)
}

type StatusHistoryGetter interface {
	Handle(ctx context.Context, query queries.GetOrderStatusHistoryQuery) ([]queries.StatusHistoryEntry, error)
}

type DestinationsGetter interface {
	Handle(ctx context.Context, query queries.GetAvailableDestinationsQuery) ([]queries.DestinationView, error)
}

type DownloadURLGetter interface {
	Handle(ctx context.Context, query queries.GetCustomInvoiceDownloadURLQuery) (ports.Download, error)
}

// Handlers are the use cases exposed over HTTP.
type Handlers struct {
	CreateOrder           OrderCreator
	ChangeStatus          StatusChanger
	ChooseDestination     DestinationChooser
	DeleteOrder           OrderDeleter
	InvoiceItems          InvoiceItemEditor
	DeleteCustomInvoice   CustomInvoiceDeleter
	RequestUpload         CustomInvoiceUploadRequester
	GetOrder              OrderGetter
	ListOrders            OrderLister
	StatusHistory         StatusHistoryGetter
	AvailableDestinations DestinationsGetter
	DownloadURL           DownloadURLGetter
}

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	h        Handlers
	log      *logger.Logger
	gatherer prometheus.Gatherer
}

// NewServer creates a server over the given use cases. gatherer backs
// /metrics and may be nil.
func NewServer(h Handlers, log *logger.Logger, gatherer prometheus.Gatherer) *Server {
	if log == nil {
		log = logger.Nop()
	}
	return &Server{h: h, log: log, gatherer: gatherer}
}

// NewEcho builds an echo instance with the middleware, error handler,
// validator and routes of s.
func (s *Server) NewEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = s.handleError

	e.Use(middleware.Recover())
	e.Use(s.requestLogger())

	s.Register(e)
	return e
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "Healthy")
	})
	if s.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	v1 := e.Group("/api/v1")

	v1.POST("/orders", s.CreateOrder)
	v1.GET("/orders", s.ListOrders)
	v1.GET("/orders/:id", s.GetOrder)
	v1.DELETE("/orders/:id", s.DeleteOrder)
	v1.GET("/orders/:id/status-history", s.GetStatusHistory)

	v1.GET("/orders/:id/destinations", s.GetAvailableDestinations)
	v1.POST("/orders/:id/destination", s.ChooseDestination)

	for _, t := range []commands.StatusTransition{
		commands.TransitionPublishInvoice,
		commands.TransitionMoveToCustomAgency,
		commands.TransitionAttachCustomInvoice,
		commands.TransitionDeliver,
	} {
		v1.POST("/orders/:id/"+string(t), s.ChangeStatus(t))
	}
	v1.POST("/orders/:id/tracking-link", s.AddTrackingLink)

	v1.POST("/orders/:id/custom-invoice/upload", s.RequestCustomInvoiceUpload)
	v1.GET("/orders/:id/custom-invoice/download", s.GetCustomInvoiceDownloadURL)
	v1.DELETE("/orders/:id/custom-invoice/:file_id", s.DeleteCustomInvoice)

	v1.POST("/orders/:id/invoice-items", s.AddInvoiceItem)
	v1.PUT("/orders/:id/invoice-items/:item_id", s.UpdateInvoiceItem)
	v1.DELETE("/orders/:id/invoice-items/:item_id", s.DeleteInvoiceItem)
}

func (s *Server) requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ctx := s.log.WithFields(c.Request().Context(), map[string]any{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency_ms": v.Latency.Milliseconds(),
			})
			if v.Status >= http.StatusInternalServerError {
				s.log.Error(ctx, "request failed", v.Error)
				return nil
			}
			s.log.Info(ctx, "request handled")
			return nil
		},
	})
}
