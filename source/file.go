package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/daccred/nearmints/models"
)

const maxLineSize = 16 * 1024 * 1024

// FileSource replays blocks from a JSON-lines file, one models.Block per line.
type FileSource struct {
	blocks []models.Block
}

func NewFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open block file: %w", err)
	}
	defer f.Close()
	return ReadBlocks(f)
}

// ReadBlocks decodes a JSON-lines stream of blocks. Blank lines are skipped.
func ReadBlocks(r io.Reader) (*FileSource, error) {
	var blocks []models.Block
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var block models.Block
		if err := json.Unmarshal([]byte(text), &block); err != nil {
			return nil, fmt.Errorf("failed to decode block on line %d: %w", line, err)
		}
		blocks = append(blocks, block)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read blocks: %w", err)
	}

	sort.SliceStable(blocks, func(i, j int) bool { return blocks[i].Height < blocks[j].Height })
	return &FileSource{blocks: blocks}, nil
}

func (s *FileSource) NextBlock(ctx context.Context, after uint64) (models.Block, error) {
	if err := ctx.Err(); err != nil {
		return models.Block{}, err
	}
	i := sort.Search(len(s.blocks), func(i int) bool { return s.blocks[i].Height > after })
	if i == len(s.blocks) {
		return models.Block{}, io.EOF
	}
	return s.blocks[i], nil
}

func (s *FileSource) Close() error { return nil }
