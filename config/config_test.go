package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name            string
		env             string
		expectNetwork   string
		expectBucket    string
		expectSource    string
		expectStartedAt uint64
	}{
		{
			name:            "Production maps to mainnet",
			env:             "production",
			expectNetwork:   "mainnet",
			expectBucket:    "near-lake-data-mainnet",
			expectSource:    "lake",
			expectStartedAt: 80504433,
		},
		{
			name:            "Development maps to testnet",
			env:             "development",
			expectNetwork:   "testnet",
			expectBucket:    "near-lake-data-testnet",
			expectSource:    "lake",
			expectStartedAt: 0,
		},
		{
			name:            "Test replays a file",
			env:             "test",
			expectNetwork:   "mainnet",
			expectSource:    "file",
			expectStartedAt: 80504433,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Load(".", tt.env)
			require.NoError(t, err)
			settings, err := Decode(v)
			require.NoError(t, err)

			assert.Equal(t, tt.expectNetwork, settings.Ingester.Network)
			assert.Equal(t, tt.expectBucket, settings.Lake.Bucket)
			assert.Equal(t, tt.expectSource, settings.Ingester.Source)
			assert.Equal(t, tt.expectStartedAt, settings.Ingester.StartBlockHeight)
			assert.Equal(t, 2*time.Second, settings.Ingester.PollInterval)
			assert.Equal(t, "eu-central-1", settings.Lake.Region)
		})
	}
}

func TestLoadResolvesFilePath(t *testing.T) {
	v, err := Load(".", "test")
	require.NoError(t, err)
	assert.Equal(t, "testdata/blocks.jsonl", v.GetString("ingester.file_path"))
	assert.FileExists(t, v.GetString("ingester.file_path"))
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://override@db/nearmints")
	t.Setenv("INGESTER_END_BLOCK_HEIGHT", "80600000")
	t.Setenv("INGESTER_RETRY_INTERVAL", "250ms")

	v, err := Load(".", "production")
	require.NoError(t, err)
	settings, err := Decode(v)
	require.NoError(t, err)

	assert.Equal(t, "postgres://override@db/nearmints", settings.Database.URL)
	assert.Equal(t, uint64(80600000), settings.Ingester.EndBlockHeight)
	assert.Equal(t, 250*time.Millisecond, settings.Ingester.RetryInterval)
}

func TestLoadMissingEnvironment(t *testing.T) {
	_, err := Load(".", "staging")
	assert.Error(t, err)
}

func TestRelativePath(t *testing.T) {
	path := "blocks.jsonl"
	relativePath("config", &path)
	assert.Equal(t, "config/blocks.jsonl", path)

	abs := "/var/lib/blocks.jsonl"
	relativePath("config", &abs)
	assert.Equal(t, "/var/lib/blocks.jsonl", abs)
}
