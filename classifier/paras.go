package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/daccred/nearmints/models"
)

const parasTokenURL = "https://paras.id/token/%s::%s/%s"

type parasRecord struct {
	OwnerID  string   `json:"owner_id"`
	TokenIDs []string `json:"token_ids"`
}

// ParasParser reads `[{"owner_id": ..., "token_ids": ["<series>:<edition>", ...]}]`.
// Only the first record is used; every token id becomes one link.
type ParasParser struct{}

func (ParasParser) Parse(data json.RawMessage, receiverID string) (*models.NFT, error) {
	if isAbsent(data) {
		return nil, nil
	}

	var records []parasRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, malformed("paras: %v", err)
	}
	if len(records) == 0 {
		return nil, malformed("paras: empty record list")
	}
	first := records[0]
	if first.OwnerID == "" {
		return nil, malformed("paras: missing owner_id")
	}
	if len(first.TokenIDs) == 0 {
		return nil, malformed("paras: missing token_ids")
	}

	links := make([]string, 0, len(first.TokenIDs))
	for _, tokenID := range first.TokenIDs {
		series, _, _ := strings.Cut(tokenID, ":")
		links = append(links, fmt.Sprintf(parasTokenURL, receiverID, series, tokenID))
	}
	return &models.NFT{Owner: first.OwnerID, Links: links}, nil
}
