package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/daccred/nearmints/models"
)

var (
	// ErrReceiptNotResolved is returned when an execution outcome emitted events but its
	// action receipt is not part of the block.
	ErrReceiptNotResolved = errors.New("receipt not resolved")
	// ErrBlockNotFound is returned when a listed block is missing one of its objects.
	ErrBlockNotFound = errors.New("block not found")
)

// BlockSource delivers blocks in height order. NextBlock returns the first block above
// `after`, or io.EOF when no such block is available yet.
type BlockSource interface {
	NextBlock(ctx context.Context, after uint64) (models.Block, error)
	Close() error
}

// BlockError ties a source failure to the height it happened at.
type BlockError struct {
	Height uint64
	Err    error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("block %d: %v", e.Height, e.Err)
}

func (e *BlockError) Unwrap() error { return e.Err }
