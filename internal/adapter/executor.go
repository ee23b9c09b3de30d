package adapter

import (
	"context"

	"netintent/internal/domain"
)

// Executor runs an ordered batch of commands on a device. It returns one
// output per command in request order; a failing command is recorded in its
// CommandOutput and does not abort the batch. An error is returned only when
// the device cannot be reached at all.
type Executor interface {
	Execute(ctx context.Context, device domain.Device, commands []string) (domain.RawCommandResult, error)
}
