package classifier

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daccred/nearmints/models"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	processor, err := NewProcessor(DefaultRules())
	require.NoError(t, err)
	return processor
}

func mintEvent(data string) models.Event {
	return models.Event{Standard: "nep171", Version: "1.0.0", Name: MintEventName, Data: json.RawMessage(data)}
}

func TestProcessParasReceipt(t *testing.T) {
	block := models.Block{
		Height: 80504434,
		Receipts: []models.Receipt{{
			ID:         "receipt-1",
			ReceiverID: "x.paras.near",
			Events:     []models.Event{mintEvent(`[{"owner_id":"alice.near","token_ids":["42:7"]}]`)},
		}},
	}

	result := newTestProcessor(t).Process(block)

	require.Len(t, result.Receipts, 1)
	assert.Equal(t, models.NFTReceipt{
		ReceiptID:   "receipt-1",
		Marketplace: "Paras",
		NFTs: []models.NFT{{
			Owner: "alice.near",
			Links: []string{"https://paras.id/token/x.paras.near::42/42:7"},
		}},
	}, result.Receipts[0])
	assert.Empty(t, result.Failures)
	assert.Equal(t, 1, result.MintEvents["Paras"])
	assert.Equal(t, uint64(80504434), result.Height)
}

func TestProcessMintbaseReceipt(t *testing.T) {
	block := models.Block{
		Height: 1,
		Receipts: []models.Receipt{{
			ID:         "receipt-2",
			ReceiverID: "factory.mintbase1.near",
			Events:     []models.Event{mintEvent(`[{"owner_id":"bob.near","token_ids":["99"]}]`)},
		}},
	}

	result := newTestProcessor(t).Process(block)

	require.Len(t, result.Receipts, 1)
	assert.Equal(t, "Mintbase", result.Receipts[0].Marketplace)
	assert.Equal(t, []models.NFT{{
		Owner: "bob.near",
		Links: []string{"https://mintbase.io/contract/factory.mintbase1.near/token/99"},
	}}, result.Receipts[0].NFTs)
}

func TestProcessUnknownReceiverIsExcluded(t *testing.T) {
	block := models.Block{
		Height: 1,
		Receipts: []models.Receipt{{
			ID:         "receipt-3",
			ReceiverID: "unknown.near",
			Events:     []models.Event{mintEvent(`[{"owner_id":"alice.near","token_ids":["1"]}]`)},
		}},
	}

	result := newTestProcessor(t).Process(block)

	assert.Empty(t, result.Receipts)
	assert.Empty(t, result.Failures)
	assert.Equal(t, 1, result.MintEvents["Unknown"])
}

func TestProcessIsolatesMalformedEvents(t *testing.T) {
	block := models.Block{
		Height: 7,
		Receipts: []models.Receipt{
			{
				ID:         "receipt-4",
				ReceiverID: "x.paras.near",
				Events: []models.Event{
					mintEvent(`[{"owner_id":"alice.near","token_ids":["42:7"]}]`),
					mintEvent(`{"owner_id":"broken"}`),
				},
			},
			{
				ID:         "receipt-5",
				ReceiverID: "x.paras.near",
				Events:     []models.Event{mintEvent(`[{"owner_id":"dave.near","token_ids":["5:1"]}]`)},
			},
		},
	}

	result := newTestProcessor(t).Process(block)

	require.Len(t, result.Receipts, 2)
	assert.Len(t, result.Receipts[0].NFTs, 1)
	assert.Equal(t, "alice.near", result.Receipts[0].NFTs[0].Owner)
	assert.Equal(t, "receipt-5", result.Receipts[1].ReceiptID)
	assert.Equal(t, 3, result.MintEvents["Paras"])
	assert.Equal(t, 2, result.NFTCount())

	require.Len(t, result.Failures, 1)
	failure := result.Failures[0]
	assert.Equal(t, uint64(7), failure.Height)
	assert.Equal(t, "receipt-4", failure.ReceiptID)
	assert.Equal(t, 1, failure.EventIndex)
	assert.Equal(t, "Paras", failure.Marketplace)
	assert.ErrorIs(t, failure.Err, ErrMalformedPayload)
}

func TestProcessOnlyFailedEventsExcludesReceipt(t *testing.T) {
	block := models.Block{
		Receipts: []models.Receipt{{
			ID:         "receipt-6",
			ReceiverID: "x.paras.near",
			Events:     []models.Event{mintEvent(`[]`)},
		}},
	}

	result := newTestProcessor(t).Process(block)

	assert.Empty(t, result.Receipts)
	assert.Len(t, result.Failures, 1)
}

func TestProcessFiltersNonMintEvents(t *testing.T) {
	payload := `[{"owner_id":"alice.near","token_ids":["42:7"]}]`
	block := models.Block{
		Receipts: []models.Receipt{{
			ID:         "receipt-7",
			ReceiverID: "x.paras.near",
			Events: []models.Event{
				{Name: "nft_transfer", Data: json.RawMessage(payload)},
				{Name: "NFT_MINT", Data: json.RawMessage(payload)},
				{Name: "nft_mint ", Data: json.RawMessage(payload)},
				{Name: "nft_burn", Data: json.RawMessage(payload)},
			},
		}},
	}

	result := newTestProcessor(t).Process(block)

	assert.Empty(t, result.Receipts)
	assert.Empty(t, result.MintEvents)
}

func TestProcessMintWithoutPayload(t *testing.T) {
	block := models.Block{
		Receipts: []models.Receipt{{
			ID:         "receipt-8",
			ReceiverID: "x.paras.near",
			Events:     []models.Event{{Name: MintEventName}},
		}},
	}

	result := newTestProcessor(t).Process(block)

	assert.Empty(t, result.Receipts)
	assert.Empty(t, result.Failures)
}

func TestProcessEmptyBlock(t *testing.T) {
	result := newTestProcessor(t).Process(models.Block{Height: 10})

	assert.NotNil(t, result.Receipts)
	assert.Empty(t, result.Receipts)
	assert.Empty(t, result.Failures)
	assert.Zero(t, result.NFTCount())
}

func TestProcessPreservesOrder(t *testing.T) {
	block := models.Block{
		Receipts: []models.Receipt{
			{
				ID:         "a",
				ReceiverID: "store.mintbase2.near",
				Events: []models.Event{
					mintEvent(`[{"owner_id":"one.near","token_ids":["1"]}]`),
					mintEvent(`[{"owner_id":"two.near","token_ids":["2"]}]`),
				},
			},
			{ID: "b", ReceiverID: "x.paras.near"},
			{
				ID:         "c",
				ReceiverID: "x.paras.near",
				Events:     []models.Event{mintEvent(`[{"owner_id":"three.near","token_ids":["3:1"]}]`)},
			},
		},
	}

	result := newTestProcessor(t).Process(block)

	require.Len(t, result.Receipts, 2)
	assert.Equal(t, "a", result.Receipts[0].ReceiptID)
	assert.Equal(t, "c", result.Receipts[1].ReceiptID)
	require.Len(t, result.Receipts[0].NFTs, 2)
	assert.Equal(t, "one.near", result.Receipts[0].NFTs[0].Owner)
	assert.Equal(t, "two.near", result.Receipts[0].NFTs[1].Owner)
}

func TestProcessIsStatelessAcrossBlocks(t *testing.T) {
	processor := newTestProcessor(t)
	paras := models.Block{
		Height: 1,
		Receipts: []models.Receipt{{
			ID:         "p",
			ReceiverID: "x.paras.near",
			Events:     []models.Event{mintEvent(`[{"owner_id":"alice.near","token_ids":["42:7"]}]`)},
		}},
	}

	first := processor.Process(paras)
	processor.Process(models.Block{Height: 2})
	second := processor.Process(paras)

	assert.Equal(t, first, second)
}

func TestClassifyOutcomes(t *testing.T) {
	resolver, err := NewResolver(DefaultRules())
	require.NoError(t, err)
	classifier := NewClassifier(resolver, DefaultParsers())

	classification := classifier.Classify(models.Receipt{
		ID:         "r",
		ReceiverID: "x.paras.near",
		Events: []models.Event{
			{Name: "nft_transfer"},
			mintEvent(`[{"owner_id":"alice.near","token_ids":["42:7"]}]`),
			{Name: MintEventName},
			mintEvent(`not json`),
		},
	})

	assert.Equal(t, Paras, classification.Marketplace)
	require.Len(t, classification.Outcomes, 3)
	assert.Equal(t, OutcomeParsed, classification.Outcomes[0].Status)
	assert.Equal(t, 1, classification.Outcomes[0].Index)
	assert.Equal(t, OutcomeSkipped, classification.Outcomes[1].Status)
	assert.Equal(t, OutcomeFailed, classification.Outcomes[2].Status)
	assert.Equal(t, 3, classification.Outcomes[2].Index)
	assert.Len(t, classification.NFTs(), 1)
}

func TestClassifyMissingParserSkips(t *testing.T) {
	resolver, err := NewResolver(DefaultRules())
	require.NoError(t, err)
	classifier := NewClassifier(resolver, Parsers{Paras: ParasParser{}})

	classification := classifier.Classify(models.Receipt{
		ReceiverID: "store.mintbase1.near",
		Events:     []models.Event{mintEvent(`[{"owner_id":"bob.near","token_ids":["1"]}]`)},
	})

	assert.Equal(t, Mintbase, classification.Marketplace)
	require.Len(t, classification.Outcomes, 1)
	assert.Equal(t, OutcomeSkipped, classification.Outcomes[0].Status)
}
