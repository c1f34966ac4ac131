package classifier

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/daccred/nearmints/models"
)

// ErrMalformedPayload marks a mint event whose data does not fit the marketplace schema.
var ErrMalformedPayload = errors.New("malformed mint payload")

// PayloadParser turns the data of one mint event into an NFT. A nil NFT with a nil error
// means the event carries nothing to extract.
type PayloadParser interface {
	Parse(data json.RawMessage, receiverID string) (*models.NFT, error)
}

// Parsers binds each marketplace to its payload parser.
type Parsers map[Marketplace]PayloadParser

// DefaultParsers returns the parsers for every recognized marketplace.
func DefaultParsers() Parsers {
	return Parsers{
		Mintbase: MintbaseParser{},
		Paras:    ParasParser{},
		Unknown:  UnknownParser{},
	}
}

// UnknownParser never yields an NFT.
type UnknownParser struct{}

func (UnknownParser) Parse(json.RawMessage, string) (*models.NFT, error) { return nil, nil }

func malformed(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrMalformedPayload, fmt.Sprintf(format, args...))
}

func isAbsent(data json.RawMessage) bool {
	return len(data) == 0 || string(data) == "null"
}
