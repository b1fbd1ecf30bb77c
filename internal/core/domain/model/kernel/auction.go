package kernel

import (
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
)

// Auction is the auction site a lot was bought on.
type Auction string

const (
	AuctionCopart Auction = "COPART"
	AuctionIAAI   Auction = "IAAI"
)

// ParseAuction accepts the site name in any letter case.
func ParseAuction(s string) (Auction, error) {
	a := Auction(strings.ToUpper(strings.TrimSpace(s)))
	if err := a.Validate(); err != nil {
		return "", err
	}
	return a, nil
}

func (a Auction) Validate() error {
	switch a {
	case AuctionCopart, AuctionIAAI:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("auction", fmt.Errorf("%q is not a known auction", string(a)))
	}
}

func (a Auction) String() string {
	return string(a)
}
