package source

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/daccred/nearmints/models"
)

// EventLogPrefix starts every NEP-297 event emitted through a receipt log.
const EventLogPrefix = "EVENT_JSON:"

// ParseEventLog decodes a single log line. ok is false for plain text logs.
func ParseEventLog(log string) (event models.Event, ok bool, err error) {
	if !strings.HasPrefix(log, EventLogPrefix) {
		return event, false, nil
	}
	raw := strings.TrimSpace(strings.TrimPrefix(log, EventLogPrefix))
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return event, false, fmt.Errorf("failed to decode event log: %w", err)
	}
	if event.Name == "" {
		return event, false, fmt.Errorf("event log without event name")
	}
	return event, true, nil
}

// buildBlock flattens the lake shards of a block into receipts with their events.
// Outcomes that emitted no events are dropped; undecodable event logs are skipped.
func buildBlock(header lakeBlock, shards []lakeShard) (models.Block, error) {
	block := models.Block{
		Height:   header.Header.Height,
		Hash:     header.Header.Hash,
		Receipts: []models.Receipt{},
	}

	for _, shard := range shards {
		for _, outcome := range shard.ReceiptExecutionOutcomes {
			var events []models.Event
			for _, log := range outcome.ExecutionOutcome.Outcome.Logs {
				event, ok, err := ParseEventLog(log)
				if err != nil || !ok {
					continue
				}
				events = append(events, event)
			}
			if len(events) == 0 {
				continue
			}

			if !outcome.Receipt.isAction() {
				return models.Block{}, &BlockError{
					Height: block.Height,
					Err:    fmt.Errorf("%w: %s", ErrReceiptNotResolved, outcome.ExecutionOutcome.ID),
				}
			}

			block.Receipts = append(block.Receipts, models.Receipt{
				ID:         outcome.Receipt.ReceiptID,
				ReceiverID: outcome.Receipt.ReceiverID,
				Events:     events,
			})
		}
	}

	return block, nil
}
