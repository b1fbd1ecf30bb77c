package commands

import (
	"errors"

	"orderflow/internal/core/domain/model/custominvoice"
	"orderflow/internal/pkg/guard"
)

var ErrApplyFileStatusCommandIsNotConstructed = errors.New(
	"ApplyFileStatusCommand must be created via NewApplyFileStatusCommand constructor",
)

// ApplyFileStatusCommand carries an upload outcome reported by the file service.
type ApplyFileStatusCommand struct { //nolint:recvcheck //using for validation
	fileID int64
	status custominvoice.FileStatus

	guard guard.ConstructorGuard
}

func NewApplyFileStatusCommand(fileID int64, status string) (ApplyFileStatusCommand, error) {
	if err := positive("file id", fileID); err != nil {
		return ApplyFileStatusCommand{}, err
	}
	return ApplyFileStatusCommand{
		fileID: fileID,
		status: custominvoice.ParseFileStatus(status),
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c ApplyFileStatusCommand) Validate() error {
	return c.guard.Validate(ErrApplyFileStatusCommandIsNotConstructed)
}

func (c ApplyFileStatusCommand) FileID() int64 { return c.fileID }

func (c ApplyFileStatusCommand) Status() custominvoice.FileStatus { return c.status }
