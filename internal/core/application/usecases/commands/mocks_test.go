package commands_test

import (
	"context"
	"time"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/custominvoice"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/pricing"
	"orderflow/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) ExistsByLotID(ctx context.Context, lotID int64) (bool, error) {
	args := m.Called(ctx, lotID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) ExistsByVIN(ctx context.Context, vin string) (bool, error) {
	args := m.Called(ctx, vin)
	return args.Bool(0), args.Error(1)
}

type MockCustomInvoiceRepository struct{ mock.Mock }

func (m *MockCustomInvoiceRepository) Add(ctx context.Context, c *custominvoice.CustomInvoice) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomInvoiceRepository) Update(ctx context.Context, c *custominvoice.CustomInvoice) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCustomInvoiceRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCustomInvoiceRepository) GetCurrentByOrderID(ctx context.Context, orderID int64) (*custominvoice.CustomInvoice, error) {
	args := m.Called(ctx, orderID)
	c, _ := args.Get(0).(*custominvoice.CustomInvoice)
	return c, args.Error(1)
}

func (m *MockCustomInvoiceRepository) GetByFileID(ctx context.Context, fileID int64) (*custominvoice.CustomInvoice, error) {
	args := m.Called(ctx, fileID)
	c, _ := args.Get(0).(*custominvoice.CustomInvoice)
	return c, args.Error(1)
}

func (m *MockCustomInvoiceRepository) DeletePendingBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockUoW satisfies every unit of work flavour used by the handlers.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) CustomInvoiceRepository() ports.CustomInvoiceRepository {
	args := m.Called()
	return args.Get(0).(ports.CustomInvoiceRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockCustomInvoiceUoWFactory struct{ mock.Mock }

func (m *MockCustomInvoiceUoWFactory) Create() commands.CustomInvoiceUoW {
	args := m.Called()
	return args.Get(0).(commands.CustomInvoiceUoW)
}

type MockIdentityClient struct{ mock.Mock }

func (m *MockIdentityClient) GetUser(ctx context.Context, uuid string) (ports.User, error) {
	args := m.Called(ctx, uuid)
	return args.Get(0).(ports.User), args.Error(1)
}

type MockCalculatorClient struct{ mock.Mock }

func (m *MockCalculatorClient) GetCalculatorWithData(ctx context.Context, req ports.CalculatorByNames) (pricing.Quote, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(pricing.Quote), args.Error(1)
}

func (m *MockCalculatorClient) GetCalculatorWithIDs(ctx context.Context, req ports.CalculatorByIDs) (pricing.Quote, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(pricing.Quote), args.Error(1)
}

type MockDetailsClient struct{ mock.Mock }

func (m *MockDetailsClient) GetLocation(ctx context.Context, id int64) (pricing.Location, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(pricing.Location), args.Error(1)
}

func (m *MockDetailsClient) GetTerminal(ctx context.Context, id int64) (pricing.Terminal, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(pricing.Terminal), args.Error(1)
}

func (m *MockDetailsClient) GetDestination(ctx context.Context, id int64) (pricing.Destination, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(pricing.Destination), args.Error(1)
}

func (m *MockDetailsClient) GetFeeType(ctx context.Context, id int64) (pricing.FeeType, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(pricing.FeeType), args.Error(1)
}

type MockFileClient struct{ mock.Mock }

func (m *MockFileClient) CreatePresignedUpload(ctx context.Context, req ports.PresignedUploadRequest) (ports.PresignedUpload, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(ports.PresignedUpload), args.Error(1)
}

func (m *MockFileClient) GetDownloadURL(ctx context.Context, fileID int64) (ports.Download, error) {
	args := m.Called(ctx, fileID)
	return args.Get(0).(ports.Download), args.Error(1)
}

type MockLotClient struct{ mock.Mock }

func (m *MockLotClient) GetLot(ctx context.Context, lotIDOrVIN string, site kernel.Auction) (ports.Lot, error) {
	args := m.Called(ctx, lotIDOrVIN, site)
	return args.Get(0).(ports.Lot), args.Error(1)
}

type MockStatusNotifier struct{ mock.Mock }

func (m *MockStatusNotifier) StatusChanged(ctx context.Context, o *order.Order, previous order.Status) {
	m.Called(ctx, o, previous)
}

func testVehicle() order.Vehicle {
	return order.Vehicle{
		LotID:   91467725,
		VIN:     "1HGCM82633A004352",
		Auction: kernel.AuctionCopart,
		Name:    "2019 Honda Accord",
		Type:    kernel.VehicleTypeCar,
		Value:   1000,
	}
}

func storedOrder(status order.Status, destinationID int64, items ...*order.InvoiceItem) *order.Order {
	o, err := order.RestoreOrder(order.Snapshot{
		ID:      7,
		Vehicle: testVehicle(),
		Pricing: order.Pricing{
			Location:      order.Location{ID: 10, Name: "Dallas"},
			TerminalID:    3,
			FeeTypeID:     2,
			DestinationID: destinationID,
		},
		Owner:  order.Owner{UUID: "u1"},
		Status: status,
		Items:  items,
	})
	if err != nil {
		panic(err)
	}
	return o
}

func testBreakdown() *pricing.Breakdown {
	return &pricing.Breakdown{
		BrokerFee:      250,
		AdditionalFees: []pricing.PricedName{{Name: "Title Fee", Price: 40}, {Name: "Storage", Price: 0}},
		Transportation: []pricing.PricedName{{Name: "Savannah", Price: 100}, {Name: "Newark", Price: 50}, {Name: "Houston", Price: 30}},
		OceanShipping:  []pricing.PricedName{{Name: "Savannah", Price: 200}, {Name: "Newark", Price: 400}},
	}
}

func testDetailed() *pricing.DetailedData {
	return &pricing.DetailedData{
		LocationID: 10,
		FeeTypeID:  2,
		FeeType:    "Standard",
		Location:   pricing.Location{ID: 10, Name: "Dallas", City: "Dallas", State: "TX", PostalCode: "75201"},
		Terminals:  []pricing.Terminal{{ID: 3, Name: "Newark"}, {ID: 4, Name: "Savannah"}},
		Destinations: []pricing.Destination{
			{ID: 5, Name: "Gdynia"},
			{ID: 6, Name: "Bremerhaven"},
		},
	}
}

func itemNames(o *order.Order) []string {
	names := make([]string, 0, len(o.Items()))
	for _, item := range o.Items() {
		names = append(names, item.Name())
	}
	return names
}
