package classifier

import (
	"github.com/daccred/nearmints/models"
)

// EventFailure describes a mint event that could not be parsed.
type EventFailure struct {
	Height      uint64
	ReceiptID   string
	EventIndex  int
	Marketplace string
	Err         error
}

// Result is everything extracted from one block.
type Result struct {
	Height     uint64
	Receipts   []models.NFTReceipt
	MintEvents map[string]int // mint events seen, by marketplace name
	Failures   []EventFailure
}

// NFTCount returns the number of NFTs across all receipts.
func (r Result) NFTCount() int {
	n := 0
	for _, receipt := range r.Receipts {
		n += len(receipt.NFTs)
	}
	return n
}

// Processor drives the classifier over every receipt of a block.
type Processor struct {
	classifier *Classifier
}

// NewProcessor builds a processor with the default parsers and the given receiver rules.
func NewProcessor(rules Rules) (*Processor, error) {
	resolver, err := NewResolver(rules)
	if err != nil {
		return nil, err
	}
	return &Processor{classifier: NewClassifier(resolver, DefaultParsers())}, nil
}

// Process classifies a block. Receipts without parsed NFTs are left out and a failed event
// never stops the remaining events or receipts.
func (p *Processor) Process(block models.Block) Result {
	result := Result{
		Height:     block.Height,
		Receipts:   []models.NFTReceipt{},
		MintEvents: make(map[string]int),
	}

	for _, receipt := range block.Receipts {
		classification := p.classifier.Classify(receipt)
		if len(classification.Outcomes) == 0 {
			continue
		}

		name := classification.Marketplace.Name()
		result.MintEvents[name] += len(classification.Outcomes)

		for _, outcome := range classification.Outcomes {
			if outcome.Status != OutcomeFailed {
				continue
			}
			result.Failures = append(result.Failures, EventFailure{
				Height:      block.Height,
				ReceiptID:   receipt.ID,
				EventIndex:  outcome.Index,
				Marketplace: name,
				Err:         outcome.Err,
			})
		}

		if nfts := classification.NFTs(); len(nfts) > 0 {
			result.Receipts = append(result.Receipts, models.NFTReceipt{
				ReceiptID:   receipt.ID,
				Marketplace: name,
				NFTs:        nfts,
			})
		}
	}

	return result
}
