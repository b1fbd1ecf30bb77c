package amqp

import (
	"context"
	"encoding/json"

	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/model/order"
	"orderflow/internal/pkg/errs"
	"orderflow/internal/pkg/logger"

	"github.com/shopspring/decimal"
)

const (
	RoutingKeyBidWon        = "bid.won"
	RoutingKeyFilesUploaded = "files.uploaded"
)

// Handler processes the payload of one message. A returned error is
// classified with errs.IsTransient to decide between requeue and dead-letter.
type Handler interface {
	Handle(ctx context.Context, payload json.RawMessage) error
}

type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

func (f HandlerFunc) Handle(ctx context.Context, payload json.RawMessage) error {
	return f(ctx, payload)
}

type orderFromLotCreator interface {
	Handle(ctx context.Context, cmd commands.CreateOrderFromLotCommand) (*order.Order, error)
}

type fileStatusApplier interface {
	Handle(ctx context.Context, cmd commands.ApplyFileStatusCommand) (commands.FileStatusOutcome, error)
}

type bidWonPayload struct {
	UserUUID  string          `json:"user_uuid"`
	Auction   string          `json:"auction"`
	LotID     int64           `json:"lot_id"`
	BidAmount decimal.Decimal `json:"bid_amount"`
}

// BidWonHandler creates the order of a won bid. Redelivered bids for a lot
// that already has an order are acknowledged.
type BidWonHandler struct {
	creator orderFromLotCreator
	log     *logger.Logger
}

func NewBidWonHandler(creator orderFromLotCreator, log *logger.Logger) *BidWonHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &BidWonHandler{creator: creator, log: log}
}

func (h *BidWonHandler) Handle(ctx context.Context, payload json.RawMessage) error {
	var p bidWonPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return errs.Wrap(errs.KindBadRequest, err, "malformed bid.won payload")
	}

	ctx = h.log.WithFields(ctx, map[string]any{
		"lot_id":    p.LotID,
		"auction":   p.Auction,
		"user_uuid": p.UserUUID,
	})

	auction, err := kernel.ParseAuction(p.Auction)
	if err != nil {
		h.log.Error(ctx, "unknown auction site for bid won", err)
		return errs.Wrap(errs.KindBadRequest, err, "unknown auction site")
	}

	cmd, err := commands.NewCreateOrderFromLotCommand(p.LotID, auction, p.UserUUID, p.BidAmount.Round(0).IntPart())
	if err != nil {
		return errs.Wrap(errs.KindBadRequest, err, "invalid bid.won payload")
	}

	created, err := h.creator.Handle(ctx, cmd)
	if errs.IsKind(err, errs.KindConflict) {
		h.log.Info(ctx, "order already exists for lot, skipping duplicate bid won")
		return nil
	}
	if err != nil {
		return err
	}

	h.log.Info(h.log.WithField(ctx, "order_id", created.ID()), "order created from won bid")
	return nil
}

type filesUploadedPayload struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// FilesUploadedHandler applies upload results to custom invoices.
type FilesUploadedHandler struct {
	applier fileStatusApplier
	log     *logger.Logger
}

func NewFilesUploadedHandler(applier fileStatusApplier, log *logger.Logger) *FilesUploadedHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &FilesUploadedHandler{applier: applier, log: log}
}

func (h *FilesUploadedHandler) Handle(ctx context.Context, payload json.RawMessage) error {
	var p filesUploadedPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return errs.Wrap(errs.KindBadRequest, err, "malformed files.uploaded payload")
	}

	ctx = h.log.WithFields(ctx, map[string]any{"file_id": p.ID, "file_status": p.Status})

	cmd, err := commands.NewApplyFileStatusCommand(p.ID, p.Status)
	if err != nil {
		return errs.Wrap(errs.KindBadRequest, err, "invalid files.uploaded payload")
	}

	outcome, err := h.applier.Handle(ctx, cmd)
	if err != nil {
		return err
	}

	switch outcome {
	case commands.FileStatusIgnored:
		h.log.Warn(ctx, "unprocessable file status received")
	case commands.FileStatusUnknownFile:
		h.log.Debug(ctx, "uploaded file is not a custom invoice")
	default:
		h.log.Info(h.log.WithField(ctx, "outcome", string(outcome)), "custom invoice updated")
	}
	return nil
}
