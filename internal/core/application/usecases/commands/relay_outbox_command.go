package commands

import (
	"errors"

	"procurement/internal/pkg/errs"
	"procurement/internal/pkg/guard"
)

var ErrRelayOutboxCommandIsNotConstructed = errors.New(
	"RelayOutboxCommand must be created via NewRelayOutboxCommand constructor",
)

const maxRelayBatchSize = 1000

// RelayOutboxCommand drains one batch of pending thread notifications.
type RelayOutboxCommand struct {
	batchSize   int
	maxAttempts int

	guard guard.ConstructorGuard
}

// NewRelayOutboxCommand takes the batch size and the number of failed
// publishes after which a message is left for manual inspection.
func NewRelayOutboxCommand(batchSize, maxAttempts int) (RelayOutboxCommand, error) {
	var errList []error
	if batchSize < 1 || batchSize > maxRelayBatchSize {
		errList = append(errList, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, maxRelayBatchSize))
	}
	if maxAttempts < 1 {
		errList = append(errList, errs.NewValueIsOutOfRangeError("maxAttempts", maxAttempts, 1, "unbounded"))
	}
	if err := errors.Join(errList...); err != nil {
		return RelayOutboxCommand{}, err
	}
	return RelayOutboxCommand{batchSize: batchSize, maxAttempts: maxAttempts, guard: guard.NewConstructorGuard()}, nil
}

func (c RelayOutboxCommand) Validate() error {
	return c.guard.Validate(ErrRelayOutboxCommandIsNotConstructed)
}

func (c RelayOutboxCommand) BatchSize() int { return c.batchSize }

func (c RelayOutboxCommand) MaxAttempts() int { return c.maxAttempts }
