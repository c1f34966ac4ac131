package classifier

import (
	"fmt"
	"regexp"
)

// Marketplace is the closed set of NFT contract families the indexer recognizes.
type Marketplace int

const (
	Unknown Marketplace = iota
	Mintbase
	Paras
)

// Name returns the display name stored with every NFTReceipt.
func (m Marketplace) Name() string {
	switch m {
	case Mintbase:
		return "Mintbase"
	case Paras:
		return "Paras"
	default:
		return "Unknown"
	}
}

func (m Marketplace) String() string { return m.Name() }

const (
	// DefaultMintbasePattern matches per-store Mintbase factory accounts, e.g. "store.mintbase1.near".
	DefaultMintbasePattern = `^.+\.mintbase\d+\.near$`
	DefaultParasReceiver   = "x.paras.near"
)

// Rules configures the receiver matching of a Resolver.
type Rules struct {
	MintbasePattern string
	ParasReceiver   string
}

func DefaultRules() Rules {
	return Rules{
		MintbasePattern: DefaultMintbasePattern,
		ParasReceiver:   DefaultParasReceiver,
	}
}

// Resolver maps a receipt receiver account to a Marketplace.
type Resolver struct {
	mintbase *regexp.Regexp
	paras    string
}

func NewResolver(rules Rules) (*Resolver, error) {
	if rules.MintbasePattern == "" {
		rules.MintbasePattern = DefaultMintbasePattern
	}
	if rules.ParasReceiver == "" {
		rules.ParasReceiver = DefaultParasReceiver
	}
	re, err := regexp.Compile(rules.MintbasePattern)
	if err != nil {
		return nil, fmt.Errorf("invalid mintbase pattern %q: %w", rules.MintbasePattern, err)
	}
	return &Resolver{mintbase: re, paras: rules.ParasReceiver}, nil
}

// Resolve applies the rules in order; the first match wins and anything else is Unknown.
func (r *Resolver) Resolve(receiverID string) Marketplace {
	if r.mintbase.MatchString(receiverID) {
		return Mintbase
	}
	if receiverID == r.paras {
		return Paras
	}
	return Unknown
}
