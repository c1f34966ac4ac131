package models

type Block struct {
	Height   uint64    `json:"height"`
	Hash     string    `json:"hash,omitempty"`
	Receipts []Receipt `json:"receipts"`
}

type Receipt struct {
	ID         string  `json:"receipt_id"`
	ReceiverID string  `json:"receiver_id"`
	Events     []Event `json:"events"`
}
