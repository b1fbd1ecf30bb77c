package postgres_test

import (
	"context"
	"sync"
	"testing"
	"time"

	postgres_adapter "orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/pgtest"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/core/domain/model/pricing"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
)

type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	database *pgtest.Database
	factory  *postgres_adapter.GormUnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	database, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.database = database
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(database.DB)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.database.Truncate())
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.database.Terminate(context.Background()))
}

func newTestOrder(lotID int64, vin string) (*order.Order, error) {
	return order.NewOrder(order.Vehicle{
		LotID:   lotID,
		VIN:     vin,
		Auction: kernel.AuctionCopart,
		Name:    "2019 HONDA ACCORD",
		Type:    kernel.VehicleTypeCar,
		Value:   1000,
	}, order.Pricing{TerminalID: 3, TerminalName: "Newark"}, order.Owner{UUID: "u1"}, false, time.Now().UTC())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().Error(uow.Commit(ctx), "commit without begin")
	suite.Require().Error(uow.Rollback(ctx), "rollback without begin")

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "second begin is a no-op")
	suite.Require().NoError(uow.Commit(ctx))
	suite.Require().Error(uow.Rollback(ctx), "rollback after commit")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PersistsAndClearsChanges() {
	ctx := context.Background()
	o, err := newTestOrder(1, "VIN-A")
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.NotEmpty(o.PendingHistory(), "changes are kept until commit")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Empty(o.PendingHistory())
	exists, err := suite.factory.Create().OrderRepository().ExistsByLotID(ctx, 1)
	suite.Require().NoError(err)
	suite.True(exists)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsWrites() {
	ctx := context.Background()
	o, err := newTestOrder(1, "VIN-A")
	suite.Require().NoError(err)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Rollback(ctx))

	suite.NotEmpty(o.PendingHistory())
	exists, err := suite.factory.Create().OrderRepository().ExistsByLotID(ctx, 1)
	suite.Require().NoError(err)
	suite.False(exists)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentCreationOfSameLot() {
	const attempts = 8
	ctx := context.Background()

	var factory commands.OrderUoWFactory = orderUoWFactory(func() commands.OrderUoW {
		return suite.factory.Create()
	})
	handler := commands.NewCreateOrderFromLotCommandHandler(factory, lotStub{}, identityStub{}, calculatorStub{})

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		created  int
		conflict int
		other    []error
		start    = make(chan struct{})
	)
	for range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd, err := commands.NewCreateOrderFromLotCommand(91467725, kernel.AuctionCopart, "u1", 1000)
			if err != nil {
				panic(err)
			}
			<-start
			_, err = handler.Handle(ctx, cmd)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errs.IsKind(err, errs.KindConflict):
				conflict++
			default:
				other = append(other, err)
			}
		}()
	}
	close(start)
	wg.Wait()

	suite.Empty(other)
	suite.Equal(1, created)
	suite.Equal(attempts-1, conflict)

	var count int64
	suite.Require().NoError(suite.database.DB.Raw("SELECT COUNT(*) FROM orders WHERE lot_id = 91467725").Scan(&count).Error)
	suite.Equal(int64(1), count)
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}

type orderUoWFactory func() commands.OrderUoW

func (f orderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type lotStub struct{}

func (lotStub) GetLot(_ context.Context, lotIDOrVIN string, site kernel.Auction) (ports.Lot, error) {
	return ports.Lot{
		LotID:       91467725,
		VIN:         "1HGCM82633A004352",
		Title:       "2019 Honda Accord",
		BaseSite:    string(site),
		VehicleType: "Automobile",
		Location:    "Dallas",
		LocationID:  10,
		Keys:        "yes",
	}, nil
}

type identityStub struct{}

func (identityStub) GetUser(_ context.Context, uuid string) (ports.User, error) {
	return ports.User{UUID: uuid, FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"}, nil
}

type calculatorStub struct{}

func (calculatorStub) quote() pricing.Quote {
	return pricing.Quote{
		Detailed: &pricing.DetailedData{
			LocationID:   10,
			FeeTypeID:    2,
			Location:     pricing.Location{ID: 10, Name: "Dallas"},
			Terminals:    []pricing.Terminal{{ID: 3, Name: "Newark"}},
			Destinations: []pricing.Destination{{ID: 5, Name: "Gdynia"}},
		},
		Breakdown: &pricing.Breakdown{
			BrokerFee:      250,
			Transportation: []pricing.PricedName{{Name: "Newark", Price: 50}},
			OceanShipping:  []pricing.PricedName{{Name: "Newark", Price: 400}},
		},
	}
}

func (c calculatorStub) GetCalculatorWithData(context.Context, ports.CalculatorByNames) (pricing.Quote, error) {
	return c.quote(), nil
}

func (c calculatorStub) GetCalculatorWithIDs(context.Context, ports.CalculatorByIDs) (pricing.Quote, error) {
	return c.quote(), nil
}
