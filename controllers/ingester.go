package controllers

import (
	"database/sql"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cache"
	"github.com/gin-contrib/cache/persistence"
	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/daccred/nearmints/handlers"
	"github.com/daccred/nearmints/models"
)

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// StatsProvider exposes the live ingestion counters.
type StatsProvider interface {
	Stats() models.Stats
}

type IngesterController struct {
	db    *sql.DB
	stats StatsProvider
	hub   *handlers.Hub
}

func NewIngesterController(db *sql.DB, stats StatsProvider, hub *handlers.Hub) *IngesterController {
	return &IngesterController{db: db, stats: stats, hub: hub}
}

func (ic *IngesterController) RegisterRoutes(r *gin.Engine) {
	store := persistence.NewInMemoryStore(time.Minute)

	r.GET("/health", ic.HealthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/stats", cache.CachePage(store, 10*time.Second, ic.GetStats))
		v1.GET("/stream", ic.Stream)
	}

	// Stored receipts are only queryable with a database.
	if ic.db == nil {
		return
	}
	v1.GET("/receipts", ic.GetReceipts)
	v1.GET("/receipts/:id", ic.GetReceipt)
	v1.GET("/nfts", ic.GetNFTs)
	v1.GET("/marketplaces", cache.CachePage(store, time.Minute, ic.GetMarketplaces))
}

func (ic *IngesterController) HealthCheck(c *gin.Context) {
	if ic.db == nil {
		c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "disabled"})
		return
	}
	if err := ic.db.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "Database connection failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (ic *IngesterController) GetReceipts(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	marketplace := c.Query("marketplace")

	query := `
		SELECT receipt_id, block_height, marketplace, created_at
		FROM nft_receipts`
	args := []interface{}{}
	if marketplace != "" {
		query += " WHERE marketplace = $1"
		args = append(args, marketplace)
	}
	query += " ORDER BY block_height DESC, receipt_id"
	if marketplace != "" {
		query += " LIMIT $2 OFFSET $3"
	} else {
		query += " LIMIT $1 OFFSET $2"
	}
	args = append(args, limit, offset)

	rows, err := ic.db.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch receipts"})
		return
	}
	defer rows.Close()

	receipts := []models.StoredReceipt{}
	for rows.Next() {
		var receipt models.StoredReceipt
		if err := rows.Scan(&receipt.ReceiptID, &receipt.BlockHeight, &receipt.Marketplace, &receipt.CreatedAt); err == nil {
			receipts = append(receipts, receipt)
		}
	}

	if err := ic.attachNFTs(receipts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch nfts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": receipts})
}

func (ic *IngesterController) GetReceipt(c *gin.Context) {
	id := c.Param("id")
	receipt := models.StoredReceipt{}
	err := ic.db.QueryRow(`
		SELECT receipt_id, block_height, marketplace, created_at
		FROM nft_receipts WHERE receipt_id = $1`, id).Scan(
		&receipt.ReceiptID, &receipt.BlockHeight, &receipt.Marketplace, &receipt.CreatedAt)
	if err == sql.ErrNoRows {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Receipt not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch receipt"})
		return
	}

	receipts := []models.StoredReceipt{receipt}
	if err := ic.attachNFTs(receipts); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch nfts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": receipts[0]})
}

// attachNFTs loads the NFTs of the given receipts in a single query, keeping mint order.
func (ic *IngesterController) attachNFTs(receipts []models.StoredReceipt) error {
	if len(receipts) == 0 {
		return nil
	}
	ids := make([]string, len(receipts))
	index := make(map[string]int, len(receipts))
	for i := range receipts {
		ids[i] = receipts[i].ReceiptID
		index[receipts[i].ReceiptID] = i
		receipts[i].NFTs = []models.NFT{}
	}

	rows, err := ic.db.Query(`
		SELECT receipt_id, owner_id, links
		FROM nfts
		WHERE receipt_id = ANY($1)
		ORDER BY receipt_id, position`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var receiptID string
		var nft models.NFT
		if err := rows.Scan(&receiptID, &nft.Owner, pq.Array(&nft.Links)); err != nil {
			continue
		}
		if i, ok := index[receiptID]; ok {
			receipts[i].NFTs = append(receipts[i].NFTs, nft)
		}
	}
	return rows.Err()
}

func (ic *IngesterController) GetNFTs(c *gin.Context) {
	limit, offset, ok := pagination(c)
	if !ok {
		return
	}
	owner := c.Query("owner")

	query := `
		SELECT n.receipt_id, r.marketplace, r.block_height, n.position, n.owner_id, n.links
		FROM nfts n
		JOIN nft_receipts r ON r.receipt_id = n.receipt_id`
	args := []interface{}{}
	if owner != "" {
		query += " WHERE n.owner_id = $1"
		args = append(args, owner)
	}
	query += " ORDER BY r.block_height DESC, n.receipt_id, n.position"
	if owner != "" {
		query += " LIMIT $2 OFFSET $3"
	} else {
		query += " LIMIT $1 OFFSET $2"
	}
	args = append(args, limit, offset)

	rows, err := ic.db.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch nfts"})
		return
	}
	defer rows.Close()

	nfts := []models.StoredNFT{}
	for rows.Next() {
		var nft models.StoredNFT
		if err := rows.Scan(&nft.ReceiptID, &nft.Marketplace, &nft.BlockHeight,
			&nft.Position, &nft.Owner, pq.Array(&nft.Links)); err == nil {
			nfts = append(nfts, nft)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": nfts})
}

func (ic *IngesterController) GetMarketplaces(c *gin.Context) {
	rows, err := ic.db.Query(`
		SELECT r.marketplace, COUNT(DISTINCT r.receipt_id), COUNT(n.id)
		FROM nft_receipts r
		LEFT JOIN nfts n ON n.receipt_id = r.receipt_id
		GROUP BY r.marketplace
		ORDER BY r.marketplace`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to fetch marketplaces"})
		return
	}
	defer rows.Close()

	counts := []models.MarketplaceCount{}
	for rows.Next() {
		var count models.MarketplaceCount
		if err := rows.Scan(&count.Marketplace, &count.Receipts, &count.NFTs); err == nil {
			counts = append(counts, count)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": counts})
}

func (ic *IngesterController) GetStats(c *gin.Context) {
	var stats models.Stats
	if ic.stats != nil {
		stats = ic.stats.Stats()
	}
	var storedReceipts, storedNFTs int64
	if ic.db != nil {
		ic.db.QueryRow("SELECT COUNT(*) FROM nft_receipts").Scan(&storedReceipts)
		ic.db.QueryRow("SELECT COUNT(*) FROM nfts").Scan(&storedNFTs)
	}
	stats.LastUpdateTime = time.Now()
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{
		"ingester":        stats,
		"stored_receipts": storedReceipts,
		"stored_nfts":     storedNFTs,
	}})
}

// Stream pushes caught NFT receipts to the client as server-sent events.
func (ic *IngesterController) Stream(c *gin.Context) {
	if ic.hub == nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "Live stream is disabled"})
		return
	}
	ctx := c.Request.Context()
	client, ok := ic.hub.Subscribe(ctx)
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "Live stream is unavailable"})
		return
	}
	defer ic.hub.Unsubscribe(client)

	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-client.Messages():
			if !ok {
				return false
			}
			c.SSEvent(msg.Type, msg)
			return true
		}
	})
}

func pagination(c *gin.Context) (int, int, bool) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid limit"})
		return 0, 0, false
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid offset"})
		return 0, 0, false
	}
	return limit, offset, true
}
