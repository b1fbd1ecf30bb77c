package commands_test

import (
	"testing"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/pricing"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func wonLot() ports.Lot {
	return ports.Lot{
		LotID:         91467725,
		VIN:           "1HGCM82633A004352",
		Title:         "2019 Honda Accord",
		BaseSite:      "COPART",
		VehicleType:   "Automobile",
		Location:      "TX - Dallas",
		Keys:          "Yes",
		PrimaryDamage: "Front end",
		PurchasePrice: 900,
	}
}

type fromLotFixture struct {
	repo       *MockOrderRepository
	uow        *MockUoW
	lots       *MockLotClient
	identity   *MockIdentityClient
	calculator *MockCalculatorClient
	handler    commands.CreateOrderFromLotCommandHandler
}

func newFromLotFixture() *fromLotFixture {
	f := &fromLotFixture{
		repo:       new(MockOrderRepository),
		uow:        new(MockUoW),
		lots:       new(MockLotClient),
		identity:   new(MockIdentityClient),
		calculator: new(MockCalculatorClient),
	}
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(f.uow).Once()
	f.uow.On("OrderRepository").Return(f.repo)
	f.handler = commands.NewCreateOrderFromLotCommandHandler(factory, f.lots, f.identity, f.calculator)
	return f
}

func TestCreateOrderFromLotCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newFromLotFixture()
	f.repo.On("ExistsByLotID", ctx, int64(91467725)).Return(false, nil).Once()
	f.lots.On("GetLot", ctx, "91467725", kernel.AuctionCopart).Return(wonLot(), nil).Once()
	f.calculator.On("GetCalculatorWithData", ctx, ports.CalculatorByNames{
		Price:       1000,
		Auction:     kernel.AuctionCopart,
		VehicleType: kernel.VehicleTypeCar,
		Location:    "TX - Dallas",
	}).Return(pricing.Quote{
		Detailed: &pricing.DetailedData{
			LocationID:   10,
			FeeTypeID:    2,
			FeeType:      "Standard",
			Location:     pricing.Location{Name: "Dallas", City: "Dallas", State: "TX"},
			Terminals:    []pricing.Terminal{{ID: 3, Name: "Savannah"}},
			Destinations: []pricing.Destination{{ID: 5, Name: "Gdynia"}},
		},
		Breakdown: &pricing.Breakdown{BrokerFee: 250},
	}, nil).Once()
	f.repo.On("ExistsByVIN", ctx, "1HGCM82633A004352").Return(false, nil).Once()
	f.identity.On("GetUser", ctx, "u1").Return(ports.User{UUID: "u1", Username: "buyer"}, nil).Once()
	mock.InOrder(
		f.uow.On("Begin", ctx).Return(nil).Once(),
		f.repo.On("Add", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		f.uow.On("Commit", ctx).Return(nil).Once(),
		f.uow.On("Rollback", ctx).Return(nil).Once(),
	)

	cmd, err := commands.NewCreateOrderFromLotCommand(91467725, kernel.AuctionCopart, "u1", 1000)
	require.NoError(t, err)
	created, err := f.handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Won, created.Status())
	assert.Equal(t, int64(1000), created.Vehicle().Value)
	assert.True(t, created.Vehicle().Keys)
	assert.True(t, created.Vehicle().Damage)
	assert.Equal(t, "Unknown", created.Vehicle().Color)
	assert.True(t, created.AutoGenerated())
	assert.Equal(t, int64(5), created.Pricing().DestinationID)
	assert.Equal(t, int64(10), created.Pricing().Location.ID)
	assert.Equal(t, "buyer", created.Owner().Name)
	assert.GreaterOrEqual(t, len(created.Items()), 2)
	assert.Equal(t, []string{"2019 HONDA ACCORD (1HGCM82633A004352)", "Broker Fee"}, itemNames(created))
	f.repo.AssertExpectations(t)
	f.uow.AssertExpectations(t)
}

func TestCreateOrderFromLotCommandHandler_Handle_CheapestRouteOverridesTerminal(t *testing.T) {
	ctx := t.Context()
	f := newFromLotFixture()
	f.repo.On("ExistsByLotID", ctx, mock.Anything).Return(false, nil).Once()
	f.repo.On("ExistsByVIN", ctx, mock.Anything).Return(false, nil).Once()
	f.lots.On("GetLot", ctx, mock.Anything, mock.Anything).Return(wonLot(), nil).Once()
	f.calculator.On("GetCalculatorWithData", ctx, mock.MatchedBy(func(req ports.CalculatorByNames) bool {
		return req.Price == 900
	})).Return(pricing.Quote{Detailed: testDetailed(), Breakdown: testBreakdown()}, nil).Once()
	f.identity.On("GetUser", ctx, "u1").Return(ports.User{UUID: "u1"}, nil).Once()
	f.uow.On("Begin", ctx).Return(nil).Once()
	f.repo.On("Add", ctx, mock.Anything).Return(nil).Once()
	f.uow.On("Commit", ctx).Return(nil).Once()
	f.uow.On("Rollback", ctx).Return(nil).Once()

	cmd, err := commands.NewCreateOrderFromLotCommand(91467725, kernel.AuctionCopart, "u1", 0)
	require.NoError(t, err)
	created, err := f.handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, int64(900), created.Vehicle().Value)
	assert.Equal(t, "Savannah", created.Pricing().TerminalName)
	assert.Equal(t, int64(4), created.Pricing().TerminalID)
	assert.Contains(t, itemNames(created), "Transportation (Savannah)")
	assert.Contains(t, itemNames(created), "Ocean Shipping (Savannah)")
}

func TestCreateOrderFromLotCommandHandler_Handle_AlreadyCreated(t *testing.T) {
	ctx := t.Context()
	f := newFromLotFixture()
	f.repo.On("ExistsByLotID", ctx, int64(91467725)).Return(true, nil).Once()

	cmd, err := commands.NewCreateOrderFromLotCommand(91467725, kernel.AuctionCopart, "u1", 1000)
	require.NoError(t, err)
	_, err = f.handler.Handle(ctx, cmd)

	assert.Equal(t, errs.KindConflict, errs.KindOf(err))
	f.lots.AssertNotCalled(t, "GetLot", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateOrderFromLotCommandHandler_Handle_LotNotFound(t *testing.T) {
	ctx := t.Context()
	f := newFromLotFixture()
	f.repo.On("ExistsByLotID", ctx, int64(91467725)).Return(false, nil).Once()
	f.lots.On("GetLot", ctx, "91467725", kernel.AuctionCopart).Return(ports.Lot{}, errs.NotFound("lot not found")).Once()

	cmd, err := commands.NewCreateOrderFromLotCommand(91467725, kernel.AuctionCopart, "u1", 1000)
	require.NoError(t, err)
	_, err = f.handler.Handle(ctx, cmd)

	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	assert.False(t, errs.IsTransient(err))
}

func TestCreateOrderFromLotCommandHandler_Handle_NoDestinations(t *testing.T) {
	ctx := t.Context()
	f := newFromLotFixture()
	f.repo.On("ExistsByLotID", ctx, mock.Anything).Return(false, nil).Once()
	f.lots.On("GetLot", ctx, mock.Anything, mock.Anything).Return(wonLot(), nil).Once()
	detailed := testDetailed()
	detailed.Destinations = nil
	f.calculator.On("GetCalculatorWithData", ctx, mock.Anything).
		Return(pricing.Quote{Detailed: detailed, Breakdown: testBreakdown()}, nil).Once()

	cmd, err := commands.NewCreateOrderFromLotCommand(91467725, kernel.AuctionCopart, "u1", 1000)
	require.NoError(t, err)
	_, err = f.handler.Handle(ctx, cmd)

	assert.Equal(t, errs.KindBadRequest, errs.KindOf(err))
	assert.False(t, errs.IsTransient(err))
}
