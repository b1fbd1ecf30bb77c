package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	httpadapter "orderflow/internal/adapters/in/http"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderCreator struct {
	mock.Mock
}

func (m *MockOrderCreator) Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockStatusChanger struct {
	mock.Mock
}

func (m *MockStatusChanger) Handle(ctx context.Context, cmd commands.ChangeOrderStatusCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStatusChanger) HandleTrackingLink(ctx context.Context, cmd commands.AddTrackingLinkCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockDestinationChooser struct {
	mock.Mock
}

func (m *MockDestinationChooser) Handle(ctx context.Context, cmd commands.ChooseDestinationCommand) (*order.Order, error) {
	args := m.Called(ctx, cmd)
	if o, ok := args.Get(0).(*order.Order); ok {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockInvoiceItemEditor struct {
	mock.Mock
}

func (m *MockInvoiceItemEditor) Handle(ctx context.Context, cmd commands.InvoiceItemCommand) (*order.InvoiceItem, error) {
	args := m.Called(ctx, cmd)
	if item, ok := args.Get(0).(*order.InvoiceItem); ok {
		return item, args.Error(1)
	}
	return nil, args.Error(1)
}

type MockOrderGetter struct {
	mock.Mock
}

func (m *MockOrderGetter) Handle(ctx context.Context, query queries.GetOrderQuery) (queries.OrderView, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.OrderView), args.Error(1)
}

type MockOrderLister struct {
	mock.Mock
}

func (m *MockOrderLister) Handle(ctx context.Context, query queries.ListOrdersQuery) (queries.ListOrdersResponse, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(queries.ListOrdersResponse), args.Error(1)
}

func wonOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.Vehicle{
		LotID:   91467725,
		VIN:     "1HGCM82633A004352",
		Auction: kernel.AuctionCopart,
		Name:    "2019 Honda Accord",
		Type:    kernel.VehicleTypeCar,
		Value:   1000,
	}, order.Pricing{
		Location:   order.Location{ID: 10, Name: "TX - DALLAS"},
		TerminalID: 3, TerminalName: "Newark",
		FeeTypeID: 2, FeeTypeName: "Standard",
	}, order.Owner{UUID: "u1", Name: "ada"}, false, time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	o.AssignID(7)
	return o
}

func serve(h httpadapter.Handlers, method, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	e := httpadapter.NewServer(h, nil, prometheus.NewRegistry()).NewEcho()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httpadapter.Error {
	t.Helper()
	var body httpadapter.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

const createOrderBody = `{
	"lot_id": 91467725, "vin": "1HGCM82633A004352", "auction": "copart",
	"vehicle_name": "2019 Honda Accord", "vehicle_type": "CAR", "vehicle_value": 1000,
	"user_uuid": "u1", "location_id": 10, "fee_type_id": 2, "terminal_id": 3, "destination_id": 5
}`

func TestServer_CreateOrder(t *testing.T) {
	t.Run("created order is returned", func(t *testing.T) {
		creator := &MockOrderCreator{}
		creator.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.CreateOrderCommand) bool {
			return cmd.Vehicle().Auction == kernel.AuctionCopart &&
				cmd.UserUUID() == "u1" &&
				cmd.Selection() == commands.PricingSelection{LocationID: 10, FeeTypeID: 2, TerminalID: 3, DestinationID: 5}
		})).Return(wonOrder(t), nil).Once()

		rec := serve(httpadapter.Handlers{CreateOrder: creator}, http.MethodPost, "/api/v1/orders", createOrderBody, nil)

		require.Equal(t, http.StatusCreated, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.InDelta(t, 7, body["id"], 0)
		assert.InDelta(t, 1000, body["vehicle_value"], 0)
		assert.Equal(t, "WON", body["delivery_status"])
		assert.Equal(t, "u1", body["user_uuid"])
		creator.AssertExpectations(t)
	})

	t.Run("missing fields are rejected before the use case", func(t *testing.T) {
		creator := &MockOrderCreator{}

		rec := serve(httpadapter.Handlers{CreateOrder: creator}, http.MethodPost, "/api/v1/orders", `{"vin": "X"}`, nil)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, http.StatusBadRequest, body.Code)
		assert.Contains(t, body.Message, "lot_id is required")
		creator.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})

	t.Run("duplicate lot is a conflict", func(t *testing.T) {
		creator := &MockOrderCreator{}
		creator.On("Handle", mock.Anything, mock.Anything).
			Return(nil, errs.Conflict("order with lot id 91467725 already exists")).Once()

		rec := serve(httpadapter.Handlers{CreateOrder: creator}, http.MethodPost, "/api/v1/orders", createOrderBody, nil)

		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "order with lot id 91467725 already exists", decodeError(t, rec).Message)
	})

	t.Run("unclassified failure hides details", func(t *testing.T) {
		creator := &MockOrderCreator{}
		creator.On("Handle", mock.Anything, mock.Anything).
			Return(nil, errors.New("pq: connection refused")).Once()

		rec := serve(httpadapter.Handlers{CreateOrder: creator}, http.MethodPost, "/api/v1/orders", createOrderBody, nil)

		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal server error", decodeError(t, rec).Message)
	})
}

func TestServer_ChangeStatus(t *testing.T) {
	t.Run("each transition has its own route", func(t *testing.T) {
		for _, transition := range []commands.StatusTransition{
			commands.TransitionPublishInvoice,
			commands.TransitionMoveToCustomAgency,
			commands.TransitionAttachCustomInvoice,
			commands.TransitionDeliver,
		} {
			changer := &MockStatusChanger{}
			changer.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ChangeOrderStatusCommand) bool {
				return cmd.OrderID() == 7 && cmd.Transition() == transition
			})).Return(wonOrder(t), nil).Once()

			rec := serve(httpadapter.Handlers{ChangeStatus: changer}, http.MethodPost,
				"/api/v1/orders/7/"+string(transition), "", nil)

			assert.Equal(t, http.StatusOK, rec.Code, transition)
			changer.AssertExpectations(t)
		}
	})

	t.Run("guard failure is precondition failed", func(t *testing.T) {
		changer := &MockStatusChanger{}
		changer.On("Handle", mock.Anything, mock.Anything).
			Return(nil, errs.PreconditionFailed("order status must be one of [PORT_CHOSEN]")).Once()

		rec := serve(httpadapter.Handlers{ChangeStatus: changer}, http.MethodPost,
			"/api/v1/orders/7/make-invoice-visible", "", nil)

		require.Equal(t, http.StatusPreconditionFailed, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "PORT_CHOSEN")
	})

	t.Run("missing order is not found", func(t *testing.T) {
		changer := &MockStatusChanger{}
		changer.On("Handle", mock.Anything, mock.Anything).Return(nil, errs.NotFound("order 7 not found")).Once()

		rec := serve(httpadapter.Handlers{ChangeStatus: changer}, http.MethodPost, "/api/v1/orders/7/delivered", "", nil)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("invalid order id", func(t *testing.T) {
		rec := serve(httpadapter.Handlers{ChangeStatus: &MockStatusChanger{}}, http.MethodPost,
			"/api/v1/orders/abc/delivered", "", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("tracking link is required", func(t *testing.T) {
		changer := &MockStatusChanger{}

		rec := serve(httpadapter.Handlers{ChangeStatus: changer}, http.MethodPost,
			"/api/v1/orders/7/tracking-link", `{"tracking_link": ""}`, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		changer.AssertNotCalled(t, "HandleTrackingLink", mock.Anything, mock.Anything)
	})

	t.Run("carrier reference without scheme is accepted", func(t *testing.T) {
		changer := &MockStatusChanger{}
		changer.On("HandleTrackingLink", mock.Anything, mock.MatchedBy(func(cmd commands.AddTrackingLinkCommand) bool {
			return cmd.Link() == "MSCU1234567"
		})).Return(wonOrder(t), nil).Once()

		rec := serve(httpadapter.Handlers{ChangeStatus: changer}, http.MethodPost,
			"/api/v1/orders/7/tracking-link", `{"tracking_link": "MSCU1234567"}`, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		changer.AssertExpectations(t)
	})

	t.Run("tracking link is stored", func(t *testing.T) {
		changer := &MockStatusChanger{}
		changer.On("HandleTrackingLink", mock.Anything, mock.MatchedBy(func(cmd commands.AddTrackingLinkCommand) bool {
			return cmd.Link() == "https://track.example.com/1"
		})).Return(wonOrder(t), nil).Once()

		rec := serve(httpadapter.Handlers{ChangeStatus: changer}, http.MethodPost,
			"/api/v1/orders/7/tracking-link", `{"tracking_link": "https://track.example.com/1"}`, nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		changer.AssertExpectations(t)
	})
}

func TestServer_ChooseDestination(t *testing.T) {
	t.Run("caller header identifies the owner", func(t *testing.T) {
		chooser := &MockDestinationChooser{}
		chooser.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.ChooseDestinationCommand) bool {
			return cmd.OrderID() == 7 && cmd.DestinationID() == 5 && cmd.UserUUID() == "u1"
		})).Return(wonOrder(t), nil).Once()

		rec := serve(httpadapter.Handlers{ChooseDestination: chooser}, http.MethodPost,
			"/api/v1/orders/7/destination", `{"destination_id": 5}`, map[string]string{httpadapter.UserHeader: "u1"})

		assert.Equal(t, http.StatusOK, rec.Code)
		chooser.AssertExpectations(t)
	})

	t.Run("anonymous caller is rejected", func(t *testing.T) {
		chooser := &MockDestinationChooser{}

		rec := serve(httpadapter.Handlers{ChooseDestination: chooser}, http.MethodPost,
			"/api/v1/orders/7/destination", `{"destination_id": 5}`, nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		chooser.AssertNotCalled(t, "Handle", mock.Anything, mock.Anything)
	})
}

func TestServer_InvoiceItems(t *testing.T) {
	editor := &MockInvoiceItemEditor{}
	item, err := order.NewInvoiceItem("Storage", 40, true)
	require.NoError(t, err)
	editor.On("Handle", mock.Anything, mock.MatchedBy(func(cmd commands.InvoiceItemCommand) bool {
		return cmd.OrderID() == 7 && cmd.Name() == "Storage" && cmd.Amount() == 40 && cmd.IsExtraFee()
	})).Return(item, nil).Once()

	rec := serve(httpadapter.Handlers{InvoiceItems: editor}, http.MethodPost,
		"/api/v1/orders/7/invoice-items", `{"name": "Storage", "amount": 40, "is_extra_fee": true}`, nil)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"id": 0, "name": "Storage", "amount": 40, "is_extra_fee": true}`, rec.Body.String())
	editor.AssertExpectations(t)
}

func TestServer_Queries(t *testing.T) {
	t.Run("foreign order is forbidden", func(t *testing.T) {
		getter := &MockOrderGetter{}
		getter.On("Handle", mock.Anything, mock.Anything).
			Return(queries.OrderView{}, errs.New(errs.KindForbidden, "not allowed")).Once()

		rec := serve(httpadapter.Handlers{GetOrder: getter}, http.MethodGet, "/api/v1/orders/7", "",
			map[string]string{httpadapter.UserHeader: "u2"})

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("list passes paging", func(t *testing.T) {
		lister := &MockOrderLister{}
		lister.On("Handle", mock.Anything, mock.MatchedBy(func(q queries.ListOrdersQuery) bool {
			return q.Limit() == 5 && q.Offset() == 10
		})).Return(queries.ListOrdersResponse{Total: 0, Limit: 5, Offset: 10}, nil).Once()

		rec := serve(httpadapter.Handlers{ListOrders: lister}, http.MethodGet, "/api/v1/orders?limit=5&offset=10&search=honda", "", nil)

		assert.Equal(t, http.StatusOK, rec.Code)
		lister.AssertExpectations(t)
	})

	t.Run("negative paging is rejected", func(t *testing.T) {
		rec := serve(httpadapter.Handlers{ListOrders: &MockOrderLister{}}, http.MethodGet, "/api/v1/orders?limit=-1", "", nil)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_Operational(t *testing.T) {
	rec := serve(httpadapter.Handlers{}, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Healthy", rec.Body.String())

	rec = serve(httpadapter.Handlers{}, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(httpadapter.Handlers{}, http.MethodGet, "/api/v1/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, decodeError(t, rec).Code)
}
