package handlers

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/daccred/nearmints/models"
)

// DB helpers
func (i *Ingester) storeReceipts(tx *sql.Tx, height uint64, receipts []models.NFTReceipt) error {
	for _, receipt := range receipts {
		_, err := tx.Exec(`
			INSERT INTO nft_receipts (receipt_id, block_height, marketplace, created_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (receipt_id) DO NOTHING`,
			receipt.ReceiptID, height, receipt.Marketplace, time.Now())
		if err != nil {
			return fmt.Errorf("failed to store receipt %s: %w", receipt.ReceiptID, err)
		}

		for position, nft := range receipt.NFTs {
			_, err := tx.Exec(`
				INSERT INTO nfts (receipt_id, position, owner_id, links)
				VALUES ($1, $2, $3, $4)
				ON CONFLICT (receipt_id, position) DO NOTHING`,
				receipt.ReceiptID, position, nft.Owner, pq.Array(nft.Links))
			if err != nil {
				return fmt.Errorf("failed to store nft %d of receipt %s: %w", position, receipt.ReceiptID, err)
			}
		}
	}
	return nil
}

func (i *Ingester) updateIngestionState(tx *sql.Tx, height uint64) error {
	_, err := tx.Exec(`
		INSERT INTO ingestion_state (id, last_block_height, updated_at)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			last_block_height = EXCLUDED.last_block_height,
			updated_at = EXCLUDED.updated_at`, height, time.Now())
	return err
}

func (i *Ingester) loadLastBlock() (uint64, error) {
	var lastBlock uint64
	err := i.db.QueryRow(`SELECT last_block_height FROM ingestion_state WHERE id = 1`).Scan(&lastBlock)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	return lastBlock, err
}
