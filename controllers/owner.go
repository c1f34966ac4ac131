package controllers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daccred/nearmints/models"
)

type OwnerController struct {
	db *sql.DB
}

func NewOwnerController(db *sql.DB) *OwnerController {
	return &OwnerController{db: db}
}

// OwnerSummary counts the NFTs minted to one account, by marketplace.
type OwnerSummary struct {
	Owner        string                    `json:"owner"`
	Total        int64                     `json:"total"`
	Marketplaces []models.MarketplaceCount `json:"marketplaces"`
}

func (o *OwnerController) Retrieve(c *gin.Context) {
	ownerID := c.Param("id")
	if ownerID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "bad request"})
		c.Abort()
		return
	}

	rows, err := o.db.Query(`
		SELECT r.marketplace, COUNT(DISTINCT r.receipt_id), COUNT(*)
		FROM nfts n
		JOIN nft_receipts r ON r.receipt_id = n.receipt_id
		WHERE n.owner_id = $1
		GROUP BY r.marketplace
		ORDER BY r.marketplace`, ownerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch owner"})
		return
	}
	defer rows.Close()

	summary := OwnerSummary{Owner: ownerID, Marketplaces: []models.MarketplaceCount{}}
	for rows.Next() {
		var count models.MarketplaceCount
		if err := rows.Scan(&count.Marketplace, &count.Receipts, &count.NFTs); err == nil {
			summary.Marketplaces = append(summary.Marketplaces, count)
			summary.Total += count.NFTs
		}
	}
	if summary.Total == 0 {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "No NFTs minted to this account"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": summary})
}
