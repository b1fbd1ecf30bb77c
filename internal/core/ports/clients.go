package ports

import (
	"context"
	"strings"

	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/pricing"
)

// User is an identity record of the auth service.
type User struct {
	UUID        string
	Username    string
	FirstName   string
	LastName    string
	Email       string
	PhoneNumber string
}

// DisplayName joins first and last name, falling back to the username and
// then to the uuid.
func (u User) DisplayName() string {
	name := strings.TrimSpace(strings.Join([]string{u.FirstName, u.LastName}, " "))
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return u.UUID
}

type IdentityClient interface {
	GetUser(ctx context.Context, uuid string) (User, error)
}

// CalculatorByNames asks the calculator to price a vehicle using reference
// data names. Empty FeeType and Destination are omitted.
type CalculatorByNames struct {
	Price       int64
	Auction     kernel.Auction
	VehicleType kernel.VehicleType
	Location    string
	FeeType     string
	Destination string
}

// CalculatorByIDs asks the calculator to price a vehicle using reference data
// ids. Zero ids are omitted.
type CalculatorByIDs struct {
	Price         int64
	Auction       kernel.Auction
	VehicleType   kernel.VehicleType
	LocationID    int64
	FeeTypeID     int64
	DestinationID int64
}

type CalculatorClient interface {
	GetCalculatorWithData(ctx context.Context, req CalculatorByNames) (pricing.Quote, error)
	GetCalculatorWithIDs(ctx context.Context, req CalculatorByIDs) (pricing.Quote, error)
}

// DetailsClient resolves calculator reference data by id.
type DetailsClient interface {
	GetLocation(ctx context.Context, id int64) (pricing.Location, error)
	GetTerminal(ctx context.Context, id int64) (pricing.Terminal, error)
	GetDestination(ctx context.Context, id int64) (pricing.Destination, error)
	GetFeeType(ctx context.Context, id int64) (pricing.FeeType, error)
}

// PresignedUploadRequest describes a file the client is going to upload.
type PresignedUploadRequest struct {
	FileName string
	MimeType string
	Private  bool
	Folder   string
	Kind     string
}

// PresignedUpload is the upload target issued by the file service.
type PresignedUpload struct {
	FileID     int64
	Bucket     string
	Key        string
	UploadURL  string
	ExpiresIn  int64
	HTTPMethod string
	Headers    map[string]string
}

// Download is a temporary link to a stored file.
type Download struct {
	FileID      int64
	DownloadURL string
	ExpiresIn   int64
}

type FileClient interface {
	CreatePresignedUpload(ctx context.Context, req PresignedUploadRequest) (PresignedUpload, error)
	GetDownloadURL(ctx context.Context, fileID int64) (Download, error)
}

// Lot is the auction snapshot of a vehicle.
type Lot struct {
	LotID           int64
	VIN             string
	Title           string
	BaseSite        string
	VehicleType     string
	Location        string
	LocationID      int64
	Keys            string
	PrimaryDamage   string
	SecondaryDamage string
	Color           string
	PurchasePrice   int64
	CurrentBid      int64
	PriceFuture     int64
	PriceNew        int64
}

// Price returns the first non-zero of bid, purchase price, current bid,
// future price and list price.
func (l Lot) Price(bid int64) int64 {
	for _, v := range []int64{bid, l.PurchasePrice, l.CurrentBid, l.PriceFuture, l.PriceNew} {
		if v != 0 {
			return v
		}
	}
	return 0
}

type LotClient interface {
	// GetLot looks a lot up by lot id or VIN on the given auction site.
	// A missing lot is errs.KindNotFound.
	GetLot(ctx context.Context, lotIDOrVIN string, site kernel.Auction) (Lot, error)
}
