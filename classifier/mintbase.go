package classifier

import (
	"encoding/json"
	"fmt"

	"github.com/daccred/nearmints/models"
)

const (
	mintbaseThingURL = "https://mintbase.io/thing/%s:%s"
	mintbaseTokenURL = "https://mintbase.io/contract/%s/token/%s"
)

// MintbasePayloadV1 is the token id scheme: `{"owner_id", "token_ids"}`.
type MintbasePayloadV1 struct {
	OwnerID  string   `json:"owner_id"`
	TokenIDs []string `json:"token_ids"`
}

// MintbasePayloadV2 is the memo scheme: `{"owner_id", "memo"}` where memo holds a JSON MintbaseMemo.
type MintbasePayloadV2 struct {
	OwnerID string `json:"owner_id"`
	Memo    string `json:"memo"`
}

type MintbaseMemo struct {
	MetaID string `json:"meta_id"`
	Minter string `json:"minter"`
}

// MintbaseParser detects which scheme a payload uses, trying the memo scheme first and
// falling back to token ids.
type MintbaseParser struct{}

func (MintbaseParser) Parse(data json.RawMessage, receiverID string) (*models.NFT, error) {
	if isAbsent(data) {
		return nil, nil
	}

	nft, errV2 := parseMintbaseV2(data, receiverID)
	if errV2 == nil {
		return nft, nil
	}
	nft, errV1 := parseMintbaseV1(data, receiverID)
	if errV1 == nil {
		return nft, nil
	}
	return nil, malformed("mintbase: memo scheme: %v; token_ids scheme: %v", errV2, errV1)
}

func parseMintbaseV2(data json.RawMessage, receiverID string) (*models.NFT, error) {
	var records []MintbasePayloadV2
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty record list")
	}
	first := records[0]
	if first.OwnerID == "" {
		return nil, fmt.Errorf("missing owner_id")
	}
	if first.Memo == "" {
		return nil, fmt.Errorf("missing memo")
	}

	var memo MintbaseMemo
	if err := json.Unmarshal([]byte(first.Memo), &memo); err != nil {
		return nil, fmt.Errorf("memo: %w", err)
	}
	if memo.MetaID == "" {
		return nil, fmt.Errorf("memo: missing meta_id")
	}
	return &models.NFT{
		Owner: first.OwnerID,
		Links: []string{fmt.Sprintf(mintbaseThingURL, memo.MetaID, receiverID)},
	}, nil
}

func parseMintbaseV1(data json.RawMessage, receiverID string) (*models.NFT, error) {
	var records []MintbasePayloadV1
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty record list")
	}
	first := records[0]
	if first.OwnerID == "" {
		return nil, fmt.Errorf("missing owner_id")
	}
	if len(first.TokenIDs) == 0 {
		return nil, fmt.Errorf("missing token_ids")
	}
	return &models.NFT{
		Owner: first.OwnerID,
		Links: []string{fmt.Sprintf(mintbaseTokenURL, receiverID, first.TokenIDs[0])},
	}, nil
}
