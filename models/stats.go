package models

import "time"

type Stats struct {
	BlocksProcessed  int64     `json:"blocks_processed"`
	CurrentBlock     uint64    `json:"current_block"`
	ReceiptsMatched  int64     `json:"receipts_matched"`
	NFTsCaught       int64     `json:"nfts_caught"`
	ParseFailures    int64     `json:"parse_failures"`
	FailedBlocks     int64     `json:"failed_blocks"`
	StartTime        time.Time `json:"start_time"`
	LastUpdateTime   time.Time `json:"last_update_time"`
	ProcessingRate   float64   `json:"processing_rate"` // blocks per second
	ConnectedClients int       `json:"connected_clients"`
}
