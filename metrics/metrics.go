package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "nearmints"

var (
	BlocksProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blocks_processed_total",
			Help:      "Total number of blocks classified.",
		},
	)
	MintEvents = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mint_events_total",
			Help:      "Total number of nft_mint events seen, by marketplace.",
		},
		[]string{"marketplace"},
	)
	NFTs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "nfts_total",
			Help:      "Total number of NFTs extracted, by marketplace.",
		},
		[]string{"marketplace"},
	)
	ParseFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "parse_failures_total",
			Help:      "Total number of mint events skipped because their payload was malformed.",
		},
		[]string{"marketplace"},
	)
	FailedBlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_blocks_total",
			Help:      "Total number of block processing failures, by reason.",
		},
		[]string{"reason"},
	)
	BlockProcessDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "block_process_duration_seconds",
			Help:      "Time taken to classify and store one block.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 2.0},
		},
	)
	CurrentBlockHeight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_block_height",
			Help:      "Height of the last processed block.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		BlocksProcessed,
		MintEvents,
		NFTs,
		ParseFailures,
		FailedBlocks,
		BlockProcessDuration,
		CurrentBlockHeight,
	)
}
