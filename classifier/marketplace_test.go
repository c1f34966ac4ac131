package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	resolver, err := NewResolver(DefaultRules())
	require.NoError(t, err)

	tests := []struct {
		name     string
		receiver string
		expected Marketplace
	}{
		{name: "Mintbase store", receiver: "factory.mintbase1.near", expected: Mintbase},
		{name: "Mintbase store with multi digit suffix", receiver: "nearcon.mintbase42.near", expected: Mintbase},
		{name: "Nested Mintbase store", receiver: "a.b.mintbase3.near", expected: Mintbase},
		{name: "Mintbase factory itself", receiver: "mintbase1.near", expected: Unknown},
		{name: "Mintbase without number", receiver: "store.mintbase.near", expected: Unknown},
		{name: "Mintbase on testnet", receiver: "store.mintspace2.testnet", expected: Unknown},
		{name: "Mintbase suffix with trailing text", receiver: "store.mintbase1.near.evil", expected: Unknown},
		{name: "Paras", receiver: "x.paras.near", expected: Paras},
		{name: "Paras lookalike", receiver: "y.x.paras.near", expected: Unknown},
		{name: "Paras case sensitive", receiver: "X.paras.near", expected: Unknown},
		{name: "Unknown contract", receiver: "unknown.near", expected: Unknown},
		{name: "Empty receiver", receiver: "", expected: Unknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolver.Resolve(tt.receiver))
		})
	}
}

func TestResolverCustomRules(t *testing.T) {
	resolver, err := NewResolver(Rules{
		MintbasePattern: `^.+\.mintspace\d+\.testnet$`,
		ParasReceiver:   "paras-token-v2.testnet",
	})
	require.NoError(t, err)

	assert.Equal(t, Mintbase, resolver.Resolve("store.mintspace2.testnet"))
	assert.Equal(t, Paras, resolver.Resolve("paras-token-v2.testnet"))
	assert.Equal(t, Unknown, resolver.Resolve("x.paras.near"))
}

func TestResolverInvalidPattern(t *testing.T) {
	_, err := NewResolver(Rules{MintbasePattern: "(["})
	assert.Error(t, err)
}

func TestMarketplaceName(t *testing.T) {
	assert.Equal(t, "Mintbase", Mintbase.Name())
	assert.Equal(t, "Paras", Paras.Name())
	assert.Equal(t, "Unknown", Unknown.Name())
	assert.Equal(t, "Unknown", Marketplace(42).Name())
}
