package chunking

import (
	"strings"
	"testing"

	"github.com/ternarybob/fiscus/internal/common"
	"pgregory.net/rapid"
)

// TestChunkWithOverlapBounds verifies that overlap chunking always
// terminates and never emits a chunk longer than the configured size.
func TestChunkWithOverlapBounds(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		chunkSize := rapid.IntRange(20, 200).Draw(rt, "chunk_size")
		overlap := rapid.IntRange(0, chunkSize-1).Draw(rt, "overlap")
		text := rapid.StringMatching(`([A-Za-z0-9,$%]{1,12}[ .!?\n]){0,80}`).Draw(rt, "text")

		svc := NewService(chunkSize, overlap, common.GetLogger())
		chunks := svc.ChunkWithOverlap(text, nil)

		for i, c := range chunks {
			if c.Text == "" {
				rt.Fatalf("chunk[%d] is empty", i)
			}
			if len(c.Text) > chunkSize {
				rt.Fatalf("chunk[%d] length %d exceeds chunk size %d", i, len(c.Text), chunkSize)
			}
		}
	})
}

// TestChunkWithOverlapCoverage verifies that every chunk is a span of the
// cleaned input and that window positions advance monotonically.
func TestChunkWithOverlapCoverage(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`([A-Za-z]{1,10}[ .]){1,60}`).Draw(rt, "text")

		svc := NewService(50, 10, common.GetLogger())
		chunks := svc.ChunkWithOverlap(text, nil)
		cleaned := cleanText(text)

		prevStart := -1
		for i, c := range chunks {
			start := c.Metadata["start_pos"].(int)
			end := c.Metadata["end_pos"].(int)
			if start <= prevStart {
				rt.Fatalf("chunk[%d] start %d does not advance past %d", i, start, prevStart)
			}
			if c.Text != strings.TrimSpace(cleaned[start:end]) {
				rt.Fatalf("chunk[%d] text does not match its span", i)
			}
			prevStart = start
		}
	})
}

// TestChunkIndexStamping verifies sequential chunk indexes and a consistent
// total in both chunking modes.
func TestChunkIndexStamping(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		text := rapid.StringMatching(`([A-Za-z]{1,10}[ .]){1,100}`).Draw(rt, "text")
		svc := NewService(40, 8, common.GetLogger())

		plain := svc.Chunk(text, nil)
		overlapped := svc.ChunkWithOverlap(text, nil)

		for i, c := range plain {
			if c.Metadata["chunk_index"] != i {
				rt.Fatalf("plain chunk[%d] has index %v", i, c.Metadata["chunk_index"])
			}
			if c.Metadata["total_chunks"] != len(plain) {
				rt.Fatalf("plain chunk[%d] has total %v, want %d", i, c.Metadata["total_chunks"], len(plain))
			}
		}
		for i, c := range overlapped {
			if c.Metadata["chunk_index"] != i {
				rt.Fatalf("overlap chunk[%d] has index %v", i, c.Metadata["chunk_index"])
			}
			if c.Metadata["total_chunks"] != len(overlapped) {
				rt.Fatalf("overlap chunk[%d] has total %v, want %d", i, c.Metadata["total_chunks"], len(overlapped))
			}
		}
	})
}
