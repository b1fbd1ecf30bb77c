package rpc

import (
	"context"
	"encoding/json"
	"net"
	"sync"
	"testing"
	"time"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/ports"
	"orderflow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

type handlerFunc func(ctx context.Context, req json.RawMessage) (json.RawMessage, error)

// fakeServer answers any method registered in handlers and remembers the
// last request body per method.
type fakeServer struct {
	mu       sync.Mutex
	handlers map[string]handlerFunc
	requests map[string]json.RawMessage
}

func (f *fakeServer) handle(_ any, stream grpc.ServerStream) error {
	method, _ := grpc.MethodFromServerStream(stream)

	var req json.RawMessage
	if err := stream.RecvMsg(&req); err != nil {
		return err
	}

	f.mu.Lock()
	f.requests[method] = req
	h, ok := f.handlers[method]
	f.mu.Unlock()
	if !ok {
		return status.Error(codes.Unimplemented, method)
	}

	resp, err := h(stream.Context(), req)
	if err != nil {
		return err
	}
	return stream.SendMsg(resp)
}

func (f *fakeServer) lastRequest(t *testing.T, method string) map[string]any {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()

	var out map[string]any
	require.NoError(t, json.Unmarshal(f.requests[method], &out))
	return out
}

func startServer(t *testing.T, handlers map[string]handlerFunc) (*fakeServer, *bufconn.Listener) {
	t.Helper()

	fake := &fakeServer{handlers: handlers, requests: map[string]json.RawMessage{}}
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnknownServiceHandler(fake.handle))
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	return fake, lis
}

func dial(t *testing.T, lis *bufconn.Listener, opts Options) (*Conn, error) {
	t.Helper()
	opts.DialOptions = append(opts.DialOptions, grpc.WithContextDialer(
		func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) },
	))
	return Dial(t.Context(), "passthrough:///bufnet", opts)
}

func connect(t *testing.T, handlers map[string]handlerFunc) (*fakeServer, *Conn) {
	t.Helper()
	fake, lis := startServer(t, handlers)
	conn, err := dial(t, lis, Options{ConnectTimeout: 5 * time.Second, CallTimeout: 5 * time.Second})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return fake, conn
}

func reply(body string) handlerFunc {
	return func(context.Context, json.RawMessage) (json.RawMessage, error) {
		return json.RawMessage(body), nil
	}
}

func fail(code codes.Code, msg string) handlerFunc {
	return func(context.Context, json.RawMessage) (json.RawMessage, error) {
		return nil, status.Error(code, msg)
	}
}

func TestKindForCode(t *testing.T) {
	tests := []struct {
		code codes.Code
		want errs.Kind
	}{
		{codes.NotFound, errs.KindNotFound},
		{codes.AlreadyExists, errs.KindConflict},
		{codes.Aborted, errs.KindConflict},
		{codes.FailedPrecondition, errs.KindPreconditionFailed},
		{codes.InvalidArgument, errs.KindBadRequest},
		{codes.OutOfRange, errs.KindBadRequest},
		{codes.DeadlineExceeded, errs.KindUnavailable},
		{codes.Unavailable, errs.KindUnavailable},
		{codes.Internal, errs.KindUnavailable},
		{codes.Unimplemented, errs.KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.code.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, kindForCode(tt.code))
		})
	}
}

func TestConn_Call(t *testing.T) {
	t.Run("maps remote status once", func(t *testing.T) {
		_, conn := connect(t, map[string]handlerFunc{
			methodGetUser: fail(codes.NotFound, "user not found"),
		})

		_, err := NewIdentityClient(conn).GetUser(t.Context(), "u1")

		require.Error(t, err)
		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
		assert.False(t, errs.IsTransient(err))
		assert.Contains(t, err.Error(), "user not found")
	})

	t.Run("call timeout is unavailable", func(t *testing.T) {
		_, lis := startServer(t, map[string]handlerFunc{
			methodGetUser: func(ctx context.Context, _ json.RawMessage) (json.RawMessage, error) {
				<-ctx.Done()
				return nil, ctx.Err()
			},
		})
		conn, err := dial(t, lis, Options{ConnectTimeout: 5 * time.Second, CallTimeout: 50 * time.Millisecond})
		require.NoError(t, err)
		defer conn.Close()

		_, err = NewIdentityClient(conn).GetUser(t.Context(), "u1")

		require.Error(t, err)
		assert.Equal(t, errs.KindUnavailable, errs.KindOf(err))
		assert.True(t, errs.IsTransient(err))
	})
}

func TestDial_NotReady(t *testing.T) {
	lis := bufconn.Listen(1 << 10)
	require.NoError(t, lis.Close())

	_, err := dial(t, lis, Options{ConnectTimeout: 100 * time.Millisecond})

	require.Error(t, err)
	assert.Equal(t, errs.KindUnavailable, errs.KindOf(err))
}

func TestCalculatorClient(t *testing.T) {
	body := `{
		"detailed_data": {
			"location_id": 12,
			"fee_type_id": 4,
			"location_data": {"id": 12, "name": "CA - SACRAMENTO", "city": "Sacramento", "state": "CA", "postal_code": "95828"},
			"fee_type_data": {"id": 4, "fee_type": "Standard"},
			"terminals": [{"terminal_id": 3, "terminal_name": "Newark"}],
			"available_destinations": [{"destination_id": 5, "destination_name": "Gdynia"}]
		},
		"data": {"calculator": {
			"broker_fee": "250.50",
			"additional": {"fees": [{"name": "Title", "price": 0}, {"name": "Storage", "price": 39.4}]},
			"transportation_price": [{"name": "Newark", "price": "400"}],
			"ocean_ship": [{"name": "Newark", "price": 1150.5}]
		}}
	}`

	t.Run("with data", func(t *testing.T) {
		fake, conn := connect(t, map[string]handlerFunc{methodCalculatorWithData: reply(body)})

		quote, err := NewCalculatorClient(conn).GetCalculatorWithData(t.Context(), ports.CalculatorByNames{
			Price:       1000,
			Auction:     kernel.AuctionCopart,
			VehicleType: kernel.VehicleTypeCar,
			Location:    "CA - SACRAMENTO",
		})
		require.NoError(t, err)

		require.NotNil(t, quote.Detailed)
		assert.Equal(t, "Standard", quote.Detailed.FeeType)
		assert.Equal(t, "Sacramento", quote.Detailed.Location.City)
		term, ok := quote.Detailed.TerminalByName("Newark")
		assert.True(t, ok)
		assert.Equal(t, int64(3), term.ID)
		dst, ok := quote.Detailed.DestinationByID(5)
		assert.True(t, ok)
		assert.Equal(t, "Gdynia", dst.Name)

		require.NotNil(t, quote.Breakdown)
		assert.Equal(t, int64(251), quote.Breakdown.BrokerFee)
		assert.Equal(t, int64(0), quote.Breakdown.AdditionalFees[0].Price)
		assert.Equal(t, int64(39), quote.Breakdown.AdditionalFees[1].Price)
		assert.Equal(t, int64(400), quote.Breakdown.Transportation[0].Price)
		assert.Equal(t, int64(1151), quote.Breakdown.OceanShipping[0].Price)

		req := fake.lastRequest(t, methodCalculatorWithData)
		assert.Equal(t, "COPART", req["auction"])
		assert.Equal(t, "CAR", req["vehicle_type"])
		assert.NotContains(t, req, "destination")
		assert.NotContains(t, req, "fee_type")
	})

	t.Run("with ids and missing parts", func(t *testing.T) {
		fake, conn := connect(t, map[string]handlerFunc{methodCalculatorWithIDs: reply(`{}`)})

		quote, err := NewCalculatorClient(conn).GetCalculatorWithIDs(t.Context(), ports.CalculatorByIDs{
			Price:         1000,
			Auction:       kernel.AuctionIAAI,
			VehicleType:   kernel.VehicleTypeMoto,
			LocationID:    12,
			DestinationID: 5,
		})
		require.NoError(t, err)

		assert.Nil(t, quote.Detailed)
		assert.Nil(t, quote.Breakdown)

		req := fake.lastRequest(t, methodCalculatorWithIDs)
		assert.InDelta(t, 5, req["destination_id"], 0)
		assert.NotContains(t, req, "fee_type_id")
	})
}

func TestDetailsClient(t *testing.T) {
	_, conn := connect(t, map[string]handlerFunc{
		methodDetailedLocation:    reply(`{"id": 12, "name": "CA - SACRAMENTO", "city": "Sacramento"}`),
		methodDetailedTerminal:    reply(`{"id": 3, "name": "Newark"}`),
		methodDetailedDestination: reply(`{"id": 5, "name": "Gdynia"}`),
		methodDetailedFeeType:     fail(codes.NotFound, "fee type not found"),
	})
	client := NewDetailsClient(conn)

	loc, err := client.GetLocation(t.Context(), 12)
	require.NoError(t, err)
	assert.Equal(t, "CA - SACRAMENTO", loc.Name)

	term, err := client.GetTerminal(t.Context(), 3)
	require.NoError(t, err)
	assert.Equal(t, "Newark", term.Name)

	dst, err := client.GetDestination(t.Context(), 5)
	require.NoError(t, err)
	assert.Equal(t, "Gdynia", dst.Name)

	_, err = client.GetFeeType(t.Context(), 4)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestIdentityClient_GetUser(t *testing.T) {
	fake, conn := connect(t, map[string]handlerFunc{
		methodGetUser: reply(`{"username": "jd", "first_name": "Jane", "email": "jane@example.com", "phone_number": "+100"}`),
	})

	user, err := NewIdentityClient(conn).GetUser(t.Context(), "u1")

	require.NoError(t, err)
	assert.Equal(t, "u1", user.UUID)
	assert.Equal(t, "Jane", user.DisplayName())
	assert.Equal(t, "+100", user.PhoneNumber)
	assert.Equal(t, "u1", fake.lastRequest(t, methodGetUser)["user_uuid"])
}

func TestFileClient(t *testing.T) {
	fake, conn := connect(t, map[string]handlerFunc{
		methodCreatePresignedUpload: reply(`{"file_id": 55, "upload_url": "https://s3/put", "http_method": "PUT", "headers": {"Content-Type": "application/pdf"}}`),
		methodGetDownloadURL:        reply(`{"file_id": 55, "download_url": "https://s3/get", "expires_in": 3600}`),
	})
	client := NewFileClient(conn)

	upload, err := client.CreatePresignedUpload(t.Context(), ports.PresignedUploadRequest{
		FileName: "1HGCM82633A004352_custom_invoice.pdf",
		MimeType: "application/pdf",
		Private:  true,
		Folder:   "1HGCM82633A004352",
		Kind:     "PDF",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(55), upload.FileID)
	assert.Equal(t, "application/pdf", upload.Headers["Content-Type"])
	assert.Equal(t, "PRIVATE", fake.lastRequest(t, methodCreatePresignedUpload)["visibility"])

	download, err := client.GetDownloadURL(t.Context(), 55)
	require.NoError(t, err)
	assert.Equal(t, "https://s3/get", download.DownloadURL)
	assert.InDelta(t, downloadURLExpiresIn, fake.lastRequest(t, methodGetDownloadURL)["expires_in"], 0)
}

func TestLotClient_GetLot(t *testing.T) {
	t.Run("first lot with rounded prices", func(t *testing.T) {
		fake, conn := connect(t, map[string]handlerFunc{
			methodGetLot: reply(`{"lot": [{
				"lot_id": 91467725, "vin": "1HGCM82633A004352", "title": "2019 Honda Accord",
				"base_site": "COPART", "vehicle_type": "Automobile", "damage_pr": "FRONT END",
				"purchase_price": "0", "current_bid": 999.5
			}]}`),
		})

		lot, err := NewLotClient(conn).GetLot(t.Context(), "91467725", kernel.AuctionCopart)

		require.NoError(t, err)
		assert.Equal(t, int64(91467725), lot.LotID)
		assert.Equal(t, "FRONT END", lot.PrimaryDamage)
		assert.Equal(t, int64(1000), lot.CurrentBid)
		assert.Equal(t, int64(1000), lot.Price(0))
		assert.Equal(t, "COPART", fake.lastRequest(t, methodGetLot)["site"])
	})

	t.Run("empty answer is not found", func(t *testing.T) {
		_, conn := connect(t, map[string]handlerFunc{methodGetLot: reply(`{"lot": []}`)})

		_, err := NewLotClient(conn).GetLot(t.Context(), "1", kernel.AuctionIAAI)

		assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
	})
}
