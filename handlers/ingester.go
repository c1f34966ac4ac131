package handlers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/daccred/nearmints/classifier"
	"github.com/daccred/nearmints/metrics"
	"github.com/daccred/nearmints/models"
	"github.com/daccred/nearmints/source"
)

const (
	DefaultStartBlockHeight = 80504433
	DefaultPollInterval     = 2 * time.Second
	DefaultRetryInterval    = 5 * time.Second
)

// Ingester streams blocks from a BlockSource, classifies them and hands the caught NFTs to
// the database and the live stream.
type Ingester struct {
	config       *Config
	db           *sql.DB
	source       source.BlockSource
	processor    *classifier.Processor
	hub          *Hub
	mu           sync.RWMutex
	stats        *models.Stats
	currentBlock uint64
	logger       *logrus.Entry
}

// Config holds the ingestion configuration
type Config struct {
	Network          string
	StartBlockHeight uint64
	EndBlockHeight   uint64 // 0 means continuous streaming
	PollInterval     time.Duration
	RetryInterval    time.Duration
	StopOnEOF        bool // stop instead of polling once the source runs dry
	EnableStream     bool
}

func NewIngester(cfg *Config, db *sql.DB, src source.BlockSource, processor *classifier.Processor, logger *logrus.Entry) (*Ingester, error) {
	if processor == nil {
		return nil, errors.New("block processor is required")
	}
	if cfg.EndBlockHeight > 0 && cfg.EndBlockHeight < cfg.StartBlockHeight {
		return nil, fmt.Errorf("end block %d is below start block %d", cfg.EndBlockHeight, cfg.StartBlockHeight)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}

	ingester := &Ingester{
		config:    cfg,
		db:        db,
		source:    src,
		processor: processor,
		logger:    logger,
		stats:     &models.Stats{StartTime: time.Now()},
	}
	if cfg.StartBlockHeight > 0 {
		ingester.currentBlock = cfg.StartBlockHeight - 1
	}
	if cfg.EnableStream {
		ingester.hub = NewHub()
	}

	return ingester, nil
}

// Stats returns a copy of the current ingestion statistics.
func (i *Ingester) Stats() models.Stats {
	i.mu.RLock()
	defer i.mu.RUnlock()
	stats := *i.stats
	if i.hub != nil {
		stats.ConnectedClients = i.hub.ClientCount()
	}
	return stats
}

// Hub returns the live stream hub, nil when streaming is disabled.
func (i *Ingester) Hub() *Hub { return i.hub }

// Start resumes from the stored ingestion state and processes blocks in the background.
func (i *Ingester) Start(ctx context.Context) error {
	if err := i.resume(); err != nil {
		return err
	}

	if i.hub != nil {
		go i.hub.Run(ctx)
	}
	go i.updateStats(ctx)

	if i.source == nil {
		i.logger.Warn("Block source not configured; skipping ingestion")
		return nil
	}

	i.logger.Infof("Starting ingestion after block %d", i.getCurrentBlock())
	go func() {
		if err := i.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			i.logger.Errorf("Ingestion stopped: %v", err)
		}
	}()
	return nil
}

func (i *Ingester) resume() error {
	if i.db == nil {
		return nil
	}
	lastBlock, err := i.loadLastBlock()
	if err != nil {
		return fmt.Errorf("failed to load ingestion state: %w", err)
	}
	if lastBlock > i.getCurrentBlock() {
		i.setCurrentBlock(lastBlock)
		i.logger.Infof("Resuming from block %d", lastBlock+1)
	}
	return nil
}

// Run processes blocks until the context is cancelled, the end block is reached or, with
// StopOnEOF, the source has no more blocks.
func (i *Ingester) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			i.logger.Info("Context cancelled, stopping block processing")
			return err
		}
		if i.config.EndBlockHeight > 0 && i.getCurrentBlock() >= i.config.EndBlockHeight {
			i.logger.Infof("Reached end block %d", i.config.EndBlockHeight)
			return nil
		}

		block, err := i.source.NextBlock(ctx, i.getCurrentBlock())
		if err != nil {
			if errors.Is(err, io.EOF) {
				if i.config.StopOnEOF {
					i.logger.Info("Block source exhausted")
					return nil
				}
				sleep(ctx, i.config.PollInterval)
				continue
			}
			if ctx.Err() != nil {
				continue
			}

			var blockErr *source.BlockError
			if errors.As(err, &blockErr) && errors.Is(err, source.ErrReceiptNotResolved) {
				i.HandleFailedBlock(blockErr.Height, UnresolvedReceipts, err)
				i.setCurrentBlock(blockErr.Height)
				continue
			}
			i.HandleFailedBlock(i.getCurrentBlock()+1, SourceQueryError, err)
			sleep(ctx, i.config.RetryInterval)
			continue
		}

		if i.config.EndBlockHeight > 0 && block.Height > i.config.EndBlockHeight {
			i.logger.Infof("Reached end block %d", i.config.EndBlockHeight)
			return nil
		}

		if err := i.processBlock(block); err != nil {
			i.HandleFailedBlock(block.Height, StoreError, err)
			sleep(ctx, i.config.RetryInterval)
			continue
		}
		i.setCurrentBlock(block.Height)
		i.incrementBlocksProcessed()
	}
}

func (i *Ingester) processBlock(block models.Block) error {
	start := time.Now()
	i.logger.Debugf("Block %d", block.Height)

	result := i.processor.Process(block)

	if i.db != nil {
		if err := i.store(block.Height, result.Receipts); err != nil {
			return err
		}
	}

	i.publish(result)
	metrics.BlockProcessDuration.Observe(time.Since(start).Seconds())
	return nil
}

// publish reports a stored block result. It runs once per block, never for a failed attempt.
func (i *Ingester) publish(result classifier.Result) {
	for _, failure := range result.Failures {
		i.logger.WithFields(logrus.Fields{
			"height":      failure.Height,
			"receipt_id":  failure.ReceiptID,
			"event_index": failure.EventIndex,
			"marketplace": failure.Marketplace,
		}).Warnf("Skipping malformed mint event: %v", failure.Err)
		metrics.ParseFailures.WithLabelValues(failure.Marketplace).Inc()
	}
	for marketplace, count := range result.MintEvents {
		metrics.MintEvents.WithLabelValues(marketplace).Add(float64(count))
	}

	for _, receipt := range result.Receipts {
		i.logger.WithFields(logrus.Fields{
			"height":      result.Height,
			"receipt_id":  receipt.ReceiptID,
			"marketplace": receipt.Marketplace,
			"nfts":        len(receipt.NFTs),
		}).Info("Caught freshly minted NFTs")
		metrics.NFTs.WithLabelValues(receipt.Marketplace).Add(float64(len(receipt.NFTs)))
	}

	i.recordResult(result)
	if i.hub != nil && len(result.Receipts) > 0 {
		i.hub.Broadcast(StreamMessage{Type: "nft_receipts", Height: result.Height, Data: result.Receipts})
	}
}

func (i *Ingester) store(height uint64, receipts []models.NFTReceipt) error {
	dbTx, err := i.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	if err := i.storeReceipts(dbTx, height, receipts); err != nil {
		return err
	}
	if err := i.updateIngestionState(dbTx, height); err != nil {
		return fmt.Errorf("failed to update ingestion state: %w", err)
	}
	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Helpers
func (i *Ingester) getCurrentBlock() uint64 { i.mu.RLock(); defer i.mu.RUnlock(); return i.currentBlock }

func (i *Ingester) setCurrentBlock(height uint64) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.currentBlock = height
	i.stats.CurrentBlock = height
	metrics.CurrentBlockHeight.Set(float64(height))
}

func (i *Ingester) incrementBlocksProcessed() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stats.BlocksProcessed++
	metrics.BlocksProcessed.Inc()
	if elapsed := time.Since(i.stats.StartTime).Seconds(); elapsed > 0 {
		i.stats.ProcessingRate = float64(i.stats.BlocksProcessed) / elapsed
	}
}

func (i *Ingester) recordResult(result classifier.Result) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.stats.ReceiptsMatched += int64(len(result.Receipts))
	i.stats.NFTsCaught += int64(result.NFTCount())
	i.stats.ParseFailures += int64(len(result.Failures))
}

func (i *Ingester) updateStats(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			i.mu.Lock()
			i.stats.LastUpdateTime = time.Now()
			i.mu.Unlock()
		}
	}
}
