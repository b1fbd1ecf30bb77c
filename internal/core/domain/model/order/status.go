package order

import (
	"fmt"
	"strings"

	"orderflow/internal/pkg/errs"
)

// Status represents the delivery stage of an order.
//
// Forward-only pipeline:
//
//	Won ─> PortChosen ─> InvoiceAdded ─> TrackingAdded ─> VehicleInCustomAgency ─> CustomInvoiceAdded ─> Delivered
//	 └─┘       └─┘                          └─┘
//	(destination re-selection)      (tracking link replaced)
//
// Status is persisted by its code (String) and shown to people by Human.
type Status int

const (
	// Unknown is the zero value and never a valid state.
	// It helps catch uninitialized Status values.
	Unknown Status = iota

	// Won is the initial status: the auction was won and the order exists,
	// but no destination port has been chosen yet.
	Won

	// PortChosen means the customer picked a destination port.
	// The port may still be changed while in this status.
	PortChosen

	// InvoiceAdded means the invoice is visible to the customer.
	InvoiceAdded

	// TrackingAdded means the shipment has a tracking link.
	// Setting a new link keeps the order in this status.
	TrackingAdded

	// VehicleInCustomAgency means the vehicle arrived at customs and a custom
	// invoice may be uploaded.
	VehicleInCustomAgency

	// CustomInvoiceAdded means an uploaded custom invoice is attached.
	CustomInvoiceAdded

	// Delivered is the final status with no further transitions.
	Delivered
)

// ErrStatusIsDeprecated is returned by ParseStatus for codes of the retired
// payment-centric status vocabulary.
var ErrStatusIsDeprecated = errs.NewValueIsInvalidError("status is deprecated")

// getStatusCodes maps valid statuses to their persisted codes.
func getStatusCodes() map[Status]string {
	return map[Status]string{
		Won:                   "WON",
		PortChosen:            "PORT_CHOSEN",
		InvoiceAdded:          "INVOICE_ADDED",
		TrackingAdded:         "TRACKING_ADDED",
		VehicleInCustomAgency: "VEHICLE_IN_CUSTOM_AGENCY",
		CustomInvoiceAdded:    "CUSTOM_INVOICE_ADDED",
		Delivered:             "DELIVERED",
	}
}

// getStatusHumanNames maps valid statuses to the names shown in notifications.
func getStatusHumanNames() map[Status]string {
	return map[Status]string{
		Won:                   "Bid won",
		PortChosen:            "Port chosen",
		InvoiceAdded:          "Invoice added",
		TrackingAdded:         "Tracking added",
		VehicleInCustomAgency: "Vehicle in custom agency",
		CustomInvoiceAdded:    "Custom invoice added",
		Delivered:             "Delivered",
	}
}

// legacyStatusCodes lists codes that older records may still carry.
// They must be migrated, not interpreted.
func legacyStatusCodes() map[string]struct{} {
	return map[string]struct{}{
		"PENDING_PAYMENT":       {},
		"PAID":                  {},
		"UNPAID":                {},
		"PICKED_UP":             {},
		"DELIVERED_TERMINAL":    {},
		"NO_TITLE":              {},
		"LOADED_INTO_CONTAINER": {},
	}
}

// ParseStatus converts a status code (case-insensitive) into a Status.
func ParseStatus(code string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	for s, c := range getStatusCodes() {
		if c == normalized {
			return s, nil
		}
	}
	if _, ok := legacyStatusCodes()[normalized]; ok {
		return Unknown, fmt.Errorf("%w: %s must be migrated to the delivery pipeline", ErrStatusIsDeprecated, normalized)
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%q is not a valid status", code))
}

// Validate checks that s is one of the pipeline statuses.
func (s Status) Validate() error {
	if _, ok := getStatusCodes()[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the persisted code, e.g. "TRACKING_ADDED".
func (s Status) String() string {
	if code, ok := getStatusCodes()[s]; ok {
		return code
	}
	return "UNKNOWN"
}

// Human returns the display name used in notifications.
func (s Status) Human() string {
	if name, ok := getStatusHumanNames()[s]; ok {
		return name
	}
	return "Unknown"
}

// ChoosePort moves to PortChosen from Won, or stays in PortChosen on re-selection.
func (s Status) ChoosePort() (Status, error) {
	return s.moveTo(PortChosen, Won, PortChosen)
}

// PublishInvoice moves to InvoiceAdded. Only PortChosen is accepted.
func (s Status) PublishInvoice() (Status, error) {
	return s.moveTo(InvoiceAdded, PortChosen)
}

// AddTracking is idempotent while already in TrackingAdded.
func (s Status) AddTracking() (Status, error) {
	return s.moveTo(TrackingAdded, InvoiceAdded, TrackingAdded)
}

// MoveToCustomAgency moves to VehicleInCustomAgency. Only TrackingAdded is accepted.
func (s Status) MoveToCustomAgency() (Status, error) {
	return s.moveTo(VehicleInCustomAgency, TrackingAdded)
}

// AttachCustomInvoice moves to CustomInvoiceAdded. Only VehicleInCustomAgency is accepted.
func (s Status) AttachCustomInvoice() (Status, error) {
	return s.moveTo(CustomInvoiceAdded, VehicleInCustomAgency)
}

// Deliver moves to the final Delivered status. Only CustomInvoiceAdded is accepted.
func (s Status) Deliver() (Status, error) {
	return s.moveTo(Delivered, CustomInvoiceAdded)
}

// moveTo returns target when s is one of accepted, otherwise a
// PreconditionFailed error naming the accepted statuses.
func (s Status) moveTo(target Status, accepted ...Status) (Status, error) {
	for _, a := range accepted {
		if s == a {
			return target, nil
		}
	}
	return Unknown, errs.PreconditionFailed(fmt.Sprintf(
		"order status must be %s to move to %s, current status is %s",
		joinStatuses(accepted), target, s,
	))
}

func joinStatuses(statuses []Status) string {
	codes := make([]string, 0, len(statuses))
	for _, s := range statuses {
		codes = append(codes, s.String())
	}
	return strings.Join(codes, " or ")
}

// Require fails with PreconditionFailed unless s is one of accepted.
func (s Status) Require(accepted ...Status) error {
	for _, a := range accepted {
		if s == a {
			return nil
		}
	}
	return errs.PreconditionFailed(fmt.Sprintf(
		"order status must be %s, current status is %s", joinStatuses(accepted), s,
	))
}
