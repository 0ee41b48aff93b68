package chunking

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/fiscus/internal/common"
)

func TestChunk(t *testing.T) {
	svc := NewService(100, 20, common.GetLogger())

	t.Run("empty text produces no chunks", func(t *testing.T) {
		assert.Empty(t, svc.Chunk("", nil))
		assert.Empty(t, svc.Chunk("   \n\n\t  ", nil))
	})

	t.Run("short text produces single chunk", func(t *testing.T) {
		chunks := svc.Chunk("Revenue grew by 12% in Q3.", nil)
		require.Len(t, chunks, 1)
		assert.Equal(t, "Revenue grew by 12% in Q3.", chunks[0].Text)
	})

	t.Run("paragraphs pack greedily", func(t *testing.T) {
		text := "First paragraph here.\n\nSecond paragraph here.\n\nThird paragraph here."
		chunks := svc.Chunk(text, nil)
		require.Len(t, chunks, 1)
		assert.Contains(t, chunks[0].Text, "First paragraph")
		assert.Contains(t, chunks[0].Text, "Third paragraph")
	})

	t.Run("oversize paragraph falls back to sentences", func(t *testing.T) {
		sentence := "The company reported strong quarterly earnings this period."
		text := strings.Repeat(sentence+" ", 10)
		chunks := svc.Chunk(text, nil)
		require.Greater(t, len(chunks), 1)
		for _, c := range chunks {
			assert.LessOrEqual(t, len(c.Text), 100+len(sentence))
		}
	})

	t.Run("metadata is stamped and copied per chunk", func(t *testing.T) {
		md := map[string]interface{}{"file_name": "report.pdf"}
		sentence := "Net income rose again according to the annual filing. "
		chunks := svc.Chunk(strings.Repeat(sentence, 8), md)
		require.Greater(t, len(chunks), 1)
		for i, c := range chunks {
			assert.Equal(t, "report.pdf", c.Metadata["file_name"])
			assert.Equal(t, i, c.Metadata["chunk_index"])
			assert.Equal(t, len(chunks), c.Metadata["total_chunks"])
		}
		// Mutating one chunk's metadata must not leak into another
		chunks[0].Metadata["file_name"] = "other.pdf"
		assert.Equal(t, "report.pdf", chunks[1].Metadata["file_name"])
		assert.NotContains(t, md, "chunk_index")
	})
}

func TestChunkWithOverlap(t *testing.T) {
	svc := NewService(100, 20, common.GetLogger())

	t.Run("empty text produces no chunks", func(t *testing.T) {
		assert.Empty(t, svc.ChunkWithOverlap("", nil))
	})

	t.Run("short text produces single chunk", func(t *testing.T) {
		chunks := svc.ChunkWithOverlap("Total assets were flat year over year.", nil)
		require.Len(t, chunks, 1)
		assert.Equal(t, 0, chunks[0].Metadata["chunk_index"])
		assert.Equal(t, 1, chunks[0].Metadata["total_chunks"])
	})

	t.Run("cuts at sentence boundaries", func(t *testing.T) {
		text := strings.Repeat("Revenue was strong. Margins improved. Costs fell. ", 10)
		chunks := svc.ChunkWithOverlap(text, nil)
		require.Greater(t, len(chunks), 1)
		for i, c := range chunks[:len(chunks)-1] {
			assert.True(t, strings.HasSuffix(c.Text, "."),
				"chunk %d should end at a sentence boundary, got %q", i, c.Text)
		}
	})

	t.Run("consecutive chunks overlap", func(t *testing.T) {
		text := strings.Repeat("Operating cash flow covered all capital expenditure. ", 10)
		chunks := svc.ChunkWithOverlap(text, nil)
		require.Greater(t, len(chunks), 1)
		for i := 1; i < len(chunks); i++ {
			prevEnd := chunks[i-1].Metadata["end_pos"].(int)
			curStart := chunks[i].Metadata["start_pos"].(int)
			assert.Less(t, curStart, prevEnd, "chunk %d should start before chunk %d ends", i, i-1)
		}
	})

	t.Run("boundary-free text hard cuts at chunk size", func(t *testing.T) {
		text := strings.Repeat("a", 350)
		chunks := svc.ChunkWithOverlap(text, nil)
		require.Greater(t, len(chunks), 1)
		assert.Equal(t, 100, len(chunks[0].Text))
	})

	t.Run("terminates on pathological overlap", func(t *testing.T) {
		// Dense boundaries push the cut so far back that end-overlap would
		// not advance; the guard must still make progress.
		pathological := NewService(10, 9, common.GetLogger())
		text := strings.Repeat("a. ", 50)
		chunks := pathological.ChunkWithOverlap(text, nil)
		assert.NotEmpty(t, chunks)
	})
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"collapses spaces and tabs", "a  \t b", "a b"},
		{"trims newline padding", "a  \n  b", "a\nb"},
		{"collapses newline runs to blank line", "a\n\n\n\n\nb", "a\n\nb"},
		{"preserves paragraph breaks", "a\n\nb", "a\n\nb"},
		{"trims surrounding whitespace", "  a  ", "a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanText(tt.input))
		})
	}
}

func TestSplitSentences(t *testing.T) {
	sentences := splitSentences("Revenue rose. Did margins improve? Yes! Costs fell")
	require.Len(t, sentences, 4)
	assert.Equal(t, "Revenue rose.", sentences[0])
	assert.Equal(t, "Did margins improve?", sentences[1])
	assert.Equal(t, "Yes!", sentences[2])
	assert.Equal(t, "Costs fell", sentences[3])
}
