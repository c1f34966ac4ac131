package handlers

import (
	"github.com/sirupsen/logrus"

	"github.com/daccred/nearmints/metrics"
)

// BlockProcessingFailure classifies why a block could not be ingested.
type BlockProcessingFailure int

const (
	SourceQueryError BlockProcessingFailure = iota
	UnresolvedReceipts
	StoreError
)

func (f BlockProcessingFailure) String() string {
	switch f {
	case SourceQueryError:
		return "source_query_error"
	case UnresolvedReceipts:
		return "unresolved_receipts"
	case StoreError:
		return "store_error"
	default:
		return "unknown"
	}
}

// HandleFailedBlock logs and counts a block failure. Unresolved receipts skip the block;
// the other kinds are retried by the caller.
func (i *Ingester) HandleFailedBlock(height uint64, reason BlockProcessingFailure, err error) {
	entry := i.logger.WithFields(logrus.Fields{
		"height": height,
		"reason": reason.String(),
	})
	switch reason {
	case UnresolvedReceipts:
		entry.Warnf("Skipping block with unresolved receipts: %v", err)
	default:
		entry.Errorf("Failed to process block: %v", err)
	}

	metrics.FailedBlocks.WithLabelValues(reason.String()).Inc()
	i.mu.Lock()
	i.stats.FailedBlocks++
	i.mu.Unlock()
}
