package source

import "encoding/json"

// Subset of the NEAR Lake JSON layout needed to extract receipts and their events.

type lakeBlock struct {
	Author string          `json:"author"`
	Header lakeBlockHeader `json:"header"`
	Chunks []lakeChunk     `json:"chunks"`
}

type lakeBlockHeader struct {
	Height     uint64 `json:"height"`
	PrevHeight uint64 `json:"prev_height"`
	Hash       string `json:"hash"`
	Timestamp  uint64 `json:"timestamp"`
}

type lakeChunk struct {
	ChunkHash string `json:"chunk_hash"`
	ShardID   uint64 `json:"shard_id"`
}

type lakeShard struct {
	ShardID                  uint64                   `json:"shard_id"`
	ReceiptExecutionOutcomes []lakeOutcomeWithReceipt `json:"receipt_execution_outcomes"`
}

type lakeOutcomeWithReceipt struct {
	ExecutionOutcome lakeExecutionOutcome `json:"execution_outcome"`
	Receipt          *lakeReceipt         `json:"receipt"`
}

type lakeExecutionOutcome struct {
	ID      string      `json:"id"`
	Outcome lakeOutcome `json:"outcome"`
}

type lakeOutcome struct {
	Logs       []string `json:"logs"`
	ExecutorID string   `json:"executor_id"`
}

type lakeReceipt struct {
	ReceiptID     string                     `json:"receipt_id"`
	ReceiverID    string                     `json:"receiver_id"`
	PredecessorID string                     `json:"predecessor_id"`
	Receipt       map[string]json.RawMessage `json:"receipt"`
}

func (r *lakeReceipt) isAction() bool {
	if r == nil {
		return false
	}
	_, ok := r.Receipt["Action"]
	return ok
}
