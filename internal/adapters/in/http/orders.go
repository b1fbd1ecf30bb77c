package http

import (
	"net/http"
	"strconv"
	"strings"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

type createOrderRequest struct {
	LotID         int64  `json:"lot_id"         validate:"required,gt=0"`
	VIN           string `json:"vin"            validate:"required"`
	Auction       string `json:"auction"        validate:"required"`
	VehicleName   string `json:"vehicle_name"   validate:"required"`
	VehicleType   string `json:"vehicle_type"   validate:"required,oneof=CAR MOTO"`
	VehicleValue  int64  `json:"vehicle_value"  validate:"gte=0"`
	Keys          bool   `json:"keys"`
	Damage        bool   `json:"damage"`
	Color         string `json:"color"`
	UserUUID      string `json:"user_uuid"`
	LocationID    int64  `json:"location_id"    validate:"required,gt=0"`
	FeeTypeID     int64  `json:"fee_type_id"    validate:"required,gt=0"`
	TerminalID    int64  `json:"terminal_id"    validate:"required,gt=0"`
	DestinationID int64  `json:"destination_id" validate:"required,gt=0"`
}

type chooseDestinationRequest struct {
	DestinationID int64 `json:"destination_id" validate:"required,gt=0"`
}

type trackingLinkRequest struct {
	TrackingLink string `json:"tracking_link" validate:"required,min=1"`
}

type invoiceItemRequest struct {
	Name       string `json:"name"         validate:"required,max=255"`
	Amount     int64  `json:"amount"       validate:"gte=0"`
	IsExtraFee bool   `json:"is_extra_fee"`
}

func bind(c echo.Context, dest any) error {
	if err := c.Bind(dest); err != nil {
		return errs.Wrap(errs.KindBadRequest, err, "invalid request body")
	}
	return c.Validate(dest)
}

func pathID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.BadRequest(name + " must be a positive integer")
	}
	return id, nil
}

func orderID(c echo.Context) (int64, error) {
	return pathID(c, "id")
}

func callerUUID(c echo.Context) string {
	return strings.TrimSpace(c.Request().Header.Get(UserHeader))
}

// CreateOrder handles POST /api/v1/orders.
func (s *Server) CreateOrder(c echo.Context) error {
	var req createOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	auction, err := kernel.ParseAuction(req.Auction)
	if err != nil {
		return errs.Wrap(errs.KindBadRequest, err, "unknown auction site")
	}

	userUUID := req.UserUUID
	if userUUID == "" {
		userUUID = callerUUID(c)
	}

	cmd, err := commands.NewCreateOrderCommand(order.Vehicle{
		LotID:   req.LotID,
		VIN:     req.VIN,
		Auction: auction,
		Name:    req.VehicleName,
		Type:    kernel.VehicleType(req.VehicleType),
		Value:   req.VehicleValue,
		Keys:    req.Keys,
		Damage:  req.Damage,
		Color:   req.Color,
	}, userUUID, commands.PricingSelection{
		LocationID:    req.LocationID,
		FeeTypeID:     req.FeeTypeID,
		TerminalID:    req.TerminalID,
		DestinationID: req.DestinationID,
	})
	if err != nil {
		return err
	}

	created, err := s.h.CreateOrder.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newOrderResponse(created))
}

// ListOrders handles GET /api/v1/orders.
func (s *Server) ListOrders(c echo.Context) error {
	limit, err := queryInt(c, "limit")
	if err != nil {
		return err
	}
	offset, err := queryInt(c, "offset")
	if err != nil {
		return err
	}

	ownerUUID := c.QueryParam("user_uuid")
	if caller := callerUUID(c); caller != "" {
		ownerUUID = caller
	}

	resp, err := s.h.ListOrders.Handle(c.Request().Context(),
		queries.NewListOrdersQuery(c.QueryParam("search"), ownerUUID, limit, offset))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errs.BadRequest(name + " must be a non-negative integer")
	}
	return v, nil
}

// GetOrder handles GET /api/v1/orders/:id.
func (s *Server) GetOrder(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetOrderQuery(id, callerUUID(c))
	if err != nil {
		return err
	}

	view, err := s.h.GetOrder.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, view)
}

// DeleteOrder handles DELETE /api/v1/orders/:id.
func (s *Server) DeleteOrder(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewDeleteOrderCommand(id)
	if err != nil {
		return err
	}

	if err = s.h.DeleteOrder.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) GetStatusHistory(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetOrderStatusHistoryQuery(id, callerUUID(c))
	if err != nil {
		return err
	}

	history, err := s.h.StatusHistory.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, history)
}

func (s *Server) GetAvailableDestinations(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetAvailableDestinationsQuery(id, callerUUID(c))
	if err != nil {
		return err
	}

	destinations, err := s.h.AvailableDestinations.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, destinations)
}

// ChooseDestination handles POST /api/v1/orders/:id/destination. The caller
// must own the order.
func (s *Server) ChooseDestination(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req chooseDestinationRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewChooseDestinationCommand(id, req.DestinationID, callerUUID(c))
	if err != nil {
		return err
	}

	updated, err := s.h.ChooseDestination.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderResponse(updated))
}

// ChangeStatus returns the handler of one status transition endpoint.
func (s *Server) ChangeStatus(transition commands.StatusTransition) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := orderID(c)
		if err != nil {
			return err
		}
		cmd, err := commands.NewChangeOrderStatusCommand(id, transition)
		if err != nil {
			return err
		}

		updated, err := s.h.ChangeStatus.Handle(c.Request().Context(), cmd)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, newOrderResponse(updated))
	}
}

func (s *Server) AddTrackingLink(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req trackingLinkRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewAddTrackingLinkCommand(id, req.TrackingLink)
	if err != nil {
		return err
	}

	updated, err := s.h.ChangeStatus.HandleTrackingLink(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newOrderResponse(updated))
}

func (s *Server) RequestCustomInvoiceUpload(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewRequestCustomInvoiceUploadCommand(id)
	if err != nil {
		return err
	}

	upload, err := s.h.RequestUpload.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, newUploadResponse(upload))
}

func (s *Server) GetCustomInvoiceDownloadURL(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	query, err := queries.NewGetCustomInvoiceDownloadURLQuery(id, callerUUID(c))
	if err != nil {
		return err
	}

	download, err := s.h.DownloadURL.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newDownloadResponse(download))
}

func (s *Server) DeleteCustomInvoice(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	fileID, err := pathID(c, "file_id")
	if err != nil {
		return err
	}
	cmd, err := commands.NewDeleteCustomInvoiceCommand(id, fileID)
	if err != nil {
		return err
	}

	deleted, err := s.h.DeleteCustomInvoice.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newCustomInvoiceResponse(deleted))
}

func (s *Server) AddInvoiceItem(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	var req invoiceItemRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewAddInvoiceItemCommand(id, req.Name, req.Amount, req.IsExtraFee)
	if err != nil {
		return err
	}
	return s.editInvoiceItem(c, cmd, http.StatusCreated)
}

func (s *Server) UpdateInvoiceItem(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	itemID, err := pathID(c, "item_id")
	if err != nil {
		return err
	}
	var req invoiceItemRequest
	if err = bind(c, &req); err != nil {
		return err
	}

	cmd, err := commands.NewUpdateInvoiceItemCommand(id, itemID, req.Name, req.Amount, req.IsExtraFee)
	if err != nil {
		return err
	}
	return s.editInvoiceItem(c, cmd, http.StatusOK)
}

func (s *Server) DeleteInvoiceItem(c echo.Context) error {
	id, err := orderID(c)
	if err != nil {
		return err
	}
	itemID, err := pathID(c, "item_id")
	if err != nil {
		return err
	}

	cmd, err := commands.NewDeleteInvoiceItemCommand(id, itemID)
	if err != nil {
		return err
	}
	if _, err = s.h.InvoiceItems.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) editInvoiceItem(c echo.Context, cmd commands.InvoiceItemCommand, status int) error {
	item, err := s.h.InvoiceItems.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(status, newInvoiceItemResponse(item))
}
