package classifier

import (
	"github.com/daccred/nearmints/models"
)

// MintEventName is the NEP-171 event emitted when tokens are minted.
const MintEventName = "nft_mint"

type OutcomeStatus int

const (
	OutcomeParsed OutcomeStatus = iota
	OutcomeSkipped
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeParsed:
		return "parsed"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// EventOutcome is the result of parsing one mint event of a receipt.
type EventOutcome struct {
	Index  int // position of the event within the receipt
	Event  models.Event
	Status OutcomeStatus
	NFT    *models.NFT
	Err    error
}

// Classification holds the mint events consumed from one receipt, in event order.
type Classification struct {
	Marketplace Marketplace
	Outcomes    []EventOutcome
}

// NFTs returns the successfully parsed NFTs in event order.
func (c Classification) NFTs() []models.NFT {
	var nfts []models.NFT
	for _, outcome := range c.Outcomes {
		if outcome.Status == OutcomeParsed {
			nfts = append(nfts, *outcome.NFT)
		}
	}
	return nfts
}

// Classifier filters receipt events down to mints and runs the marketplace parser on each.
// It holds no per-block state and is safe for concurrent use.
type Classifier struct {
	resolver *Resolver
	parsers  Parsers
}

func NewClassifier(resolver *Resolver, parsers Parsers) *Classifier {
	return &Classifier{resolver: resolver, parsers: parsers}
}

func (c *Classifier) Classify(receipt models.Receipt) Classification {
	var classification Classification
	resolved := false

	for index, event := range receipt.Events {
		if event.Name != MintEventName {
			continue
		}
		if !resolved {
			classification.Marketplace = c.resolver.Resolve(receipt.ReceiverID)
			resolved = true
		}

		outcome := EventOutcome{Index: index, Event: event, Status: OutcomeSkipped}
		if parser, ok := c.parsers[classification.Marketplace]; ok {
			nft, err := parser.Parse(event.Data, receipt.ReceiverID)
			switch {
			case err != nil:
				outcome.Status = OutcomeFailed
				outcome.Err = err
			case nft != nil:
				outcome.Status = OutcomeParsed
				outcome.NFT = nft
			}
		}
		classification.Outcomes = append(classification.Outcomes, outcome)
	}

	return classification
}
