package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/daccred/nearmints/models"
)

const (
	MainnetBucket = "near-lake-data-mainnet"
	TestnetBucket = "near-lake-data-testnet"
	DefaultRegion = "eu-central-1"

	listPageSize = 10
)

// S3API is the part of the S3 client the lake source needs.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// LakeConfig selects the NEAR Lake bucket to stream from.
type LakeConfig struct {
	Network string // mainnet or testnet
	Bucket  string // overrides the network bucket when set
	Region  string
}

// LakeSource reads blocks from the NEAR Lake S3 buckets. The buckets are requester-pays.
type LakeSource struct {
	client S3API
	bucket string
	logger *logrus.Entry
}

// BucketForNetwork returns the lake bucket of a network name.
func BucketForNetwork(network string) (string, error) {
	switch network {
	case "", "mainnet":
		return MainnetBucket, nil
	case "testnet":
		return TestnetBucket, nil
	}
	return "", fmt.Errorf("unsupported network %q", network)
}

func NewLakeSource(ctx context.Context, cfg LakeConfig, logger *logrus.Entry) (*LakeSource, error) {
	bucket := cfg.Bucket
	if bucket == "" {
		var err error
		if bucket, err = BucketForNetwork(cfg.Network); err != nil {
			return nil, err
		}
	}
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewLakeSourceWithClient(s3.NewFromConfig(awsCfg), bucket, logger), nil
}

func NewLakeSourceWithClient(client S3API, bucket string, logger *logrus.Entry) *LakeSource {
	return &LakeSource{client: client, bucket: bucket, logger: logger}
}

func (s *LakeSource) NextBlock(ctx context.Context, after uint64) (models.Block, error) {
	height, err := s.nextHeight(ctx, after)
	if err != nil {
		return models.Block{}, err
	}

	var header lakeBlock
	if err := s.getJSON(ctx, blockKey(height), &header); err != nil {
		return models.Block{}, &BlockError{Height: height, Err: err}
	}

	shards := make([]lakeShard, len(header.Chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range header.Chunks {
		i, key := i, shardKey(height, chunk.ShardID)
		g.Go(func() error {
			return s.getJSON(gctx, key, &shards[i])
		})
	}
	if err := g.Wait(); err != nil {
		return models.Block{}, &BlockError{Height: height, Err: err}
	}

	block, err := buildBlock(header, shards)
	if err != nil {
		return models.Block{}, err
	}
	s.logger.Debugf("Fetched block %d with %d shards and %d event receipts", height, len(shards), len(block.Receipts))
	return block, nil
}

func (s *LakeSource) Close() error { return nil }

// nextHeight lists the block prefixes that sort after `after`.
func (s *LakeSource) nextHeight(ctx context.Context, after uint64) (uint64, error) {
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:       aws.String(s.bucket),
		Delimiter:    aws.String("/"),
		StartAfter:   aws.String(heightKey(after + 1)),
		MaxKeys:      aws.Int32(listPageSize),
		RequestPayer: s3types.RequestPayerRequester,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list blocks after %d: %w", after, err)
	}

	for _, prefix := range out.CommonPrefixes {
		height, err := strconv.ParseUint(strings.TrimSuffix(aws.ToString(prefix.Prefix), "/"), 10, 64)
		if err != nil {
			s.logger.Warnf("Skipping unexpected lake prefix %q", aws.ToString(prefix.Prefix))
			continue
		}
		if height > after {
			return height, nil
		}
	}
	return 0, io.EOF
}

func (s *LakeSource) getJSON(ctx context.Context, key string, v interface{}) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		RequestPayer: s3types.RequestPayerRequester,
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return fmt.Errorf("failed to get %s: %w: %w", key, ErrBlockNotFound, err)
		}
		return fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", key, err)
	}
	return nil
}

func heightKey(height uint64) string {
	return fmt.Sprintf("%012d", height)
}

func blockKey(height uint64) string {
	return heightKey(height) + "/block.json"
}

func shardKey(height, shardID uint64) string {
	return fmt.Sprintf("%s/shard_%d.json", heightKey(height), shardID)
}
