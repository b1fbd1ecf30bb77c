// Package custominvoice models the customs invoice document attached to an
// order while the vehicle is cleared by the customs agency.
//
// A record is created as Pending when an upload is requested and becomes
// Available once the file service confirms the upload. A failed upload
// deletes the record; superseded uploads reuse it.
package custominvoice

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"orderflow/internal/pkg/errs"
)

var ErrCustomInvoiceIsNotConstructed = errors.New("CustomInvoice must be created via NewCustomInvoice constructor")

// Status of the uploaded document.
type Status string

const (
	Pending   Status = "PENDING"
	Available Status = "AVAILABLE"
)

func (s Status) Validate() error {
	if s != Pending && s != Available {
		return errs.NewValueIsInvalidErrorWithCause("custom invoice status", fmt.Errorf("%q is not a valid status", string(s)))
	}
	return nil
}

// Priority orders statuses when several records exist; higher wins.
func (s Status) Priority() int {
	if s == Available {
		return 2
	}
	if s == Pending {
		return 1
	}
	return 0
}

// FileStatus is the upload outcome reported by the file service.
type FileStatus string

const (
	FileAvailable FileStatus = "AVAILABLE"
	FileFailed    FileStatus = "FAILED"
)

// ParseFileStatus upper-cases the reported value. Unrecognized values are
// returned as is so callers can log them.
func ParseFileStatus(s string) FileStatus {
	return FileStatus(strings.ToUpper(strings.TrimSpace(s)))
}

type CustomInvoice struct {
	id        int64
	orderID   int64
	fileID    int64
	status    Status
	createdAt time.Time
	updatedAt time.Time

	isConstructed bool
}

func NewCustomInvoice(orderID, fileID int64, now time.Time) (*CustomInvoice, error) {
	if orderID <= 0 {
		return nil, errs.NewValueIsRequiredError("order id")
	}
	if fileID <= 0 {
		return nil, errs.NewValueIsRequiredError("file id")
	}
	return &CustomInvoice{
		orderID:       orderID,
		fileID:        fileID,
		status:        Pending,
		createdAt:     now,
		updatedAt:     now,
		isConstructed: true,
	}, nil
}

func RestoreCustomInvoice(id, orderID, fileID int64, status Status, createdAt, updatedAt time.Time) (*CustomInvoice, error) {
	if err := status.Validate(); err != nil {
		return nil, err
	}
	return &CustomInvoice{
		id:            id,
		orderID:       orderID,
		fileID:        fileID,
		status:        status,
		createdAt:     createdAt,
		updatedAt:     updatedAt,
		isConstructed: true,
	}, nil
}

func (c *CustomInvoice) Validate() error {
	if c == nil || !c.isConstructed {
		return ErrCustomInvoiceIsNotConstructed
	}
	return nil
}

func (c *CustomInvoice) ID() int64 { return c.id }

func (c *CustomInvoice) OrderID() int64 { return c.orderID }

func (c *CustomInvoice) FileID() int64 { return c.fileID }

func (c *CustomInvoice) Status() Status { return c.status }

func (c *CustomInvoice) CreatedAt() time.Time { return c.createdAt }

func (c *CustomInvoice) UpdatedAt() time.Time { return c.updatedAt }

func (c *CustomInvoice) IsAvailable() bool { return c.status == Available }

func (c *CustomInvoice) AssignID(id int64) {
	c.id = id
}

// MarkAvailable confirms the upload.
func (c *CustomInvoice) MarkAvailable(now time.Time) {
	c.status = Available
	c.updatedAt = now
}

// Replace points the record to a newly requested upload.
func (c *CustomInvoice) Replace(fileID int64, now time.Time) error {
	if fileID <= 0 {
		return errs.NewValueIsRequiredError("file id")
	}
	c.fileID = fileID
	c.status = Pending
	c.updatedAt = now
	return nil
}
