package models

import "time"

type NFT struct {
	Owner string   `json:"owner"`
	Links []string `json:"links"`
}

type NFTReceipt struct {
	ReceiptID   string `json:"receipt_id"`
	Marketplace string `json:"marketplace"`
	NFTs        []NFT  `json:"nfts"`
}

// StoredReceipt is an NFTReceipt as read back from the database.
type StoredReceipt struct {
	NFTReceipt
	BlockHeight uint64    `json:"block_height"`
	CreatedAt   time.Time `json:"created_at"`
}

// StoredNFT is a single NFT row joined with its receipt.
type StoredNFT struct {
	ReceiptID   string   `json:"receipt_id"`
	Marketplace string   `json:"marketplace"`
	BlockHeight uint64   `json:"block_height"`
	Position    int      `json:"position"`
	Owner       string   `json:"owner"`
	Links       []string `json:"links"`
}

type MarketplaceCount struct {
	Marketplace string `json:"marketplace"`
	Receipts    int64  `json:"receipts"`
	NFTs        int64  `json:"nfts"`
}
