package chunking

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/fiscus/internal/interfaces"
	"github.com/ternarybob/fiscus/internal/models"
)

var (
	spaceRe        = regexp.MustCompile(`[ \t]+`)
	newlinePadRe   = regexp.MustCompile(`[ \t]*\n[ \t]*`)
	multiNewlineRe = regexp.MustCompile(`\n{3,}`)
	paragraphRe    = regexp.MustCompile(`\n\s*\n`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]\s+`)
)

// overlap mode cuts at the nearest of these, searched in order
var boundaryDelims = []string{". ", "! ", "? ", "\n"}

// Service implements ChunkerService
type Service struct {
	chunkSize    int
	chunkOverlap int
	logger       arbor.ILogger
}

// NewService creates a new chunker service
func NewService(chunkSize, chunkOverlap int, logger arbor.ILogger) interfaces.ChunkerService {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if chunkOverlap < 0 {
		chunkOverlap = 0
	}
	if chunkOverlap >= chunkSize {
		chunkOverlap = chunkSize / 2
	}
	return &Service{
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
		logger:       logger,
	}
}

// Chunk splits text into chunks by greedily packing paragraphs, falling
// back to sentence packing for paragraphs longer than the chunk size.
func (s *Service) Chunk(text string, metadata map[string]interface{}) []models.Chunk {
	cleaned := cleanText(text)
	if cleaned == "" {
		return nil
	}

	var chunks []models.Chunk
	var current strings.Builder

	flush := func() {
		trimmed := strings.TrimSpace(current.String())
		if trimmed != "" {
			chunks = append(chunks, models.Chunk{
				Text:     trimmed,
				Metadata: copyMetadata(metadata),
			})
		}
		current.Reset()
	}

	for _, para := range splitParagraphs(cleaned) {
		if len(para) > s.chunkSize {
			// Paragraph too long for one chunk: flush and pack sentence-wise
			flush()
			for _, sentence := range splitSentences(para) {
				if current.Len()+len(sentence) > s.chunkSize {
					flush()
				}
				current.WriteString(sentence)
				current.WriteString(" ")
			}
			continue
		}

		if current.Len()+len(para) > s.chunkSize {
			flush()
		}
		current.WriteString(para)
		current.WriteString("\n\n")
	}
	flush()

	stampIndices(chunks)

	s.logger.Debug().
		Int("chunks", len(chunks)).
		Int("chunk_size", s.chunkSize).
		Msg("Chunked text")

	return chunks
}

// ChunkWithOverlap slides a window of chunkSize characters, backing off to
// the nearest sentence boundary before cutting. The next window starts at
// the current end minus the overlap, so consecutive chunks share a span.
func (s *Service) ChunkWithOverlap(text string, metadata map[string]interface{}) []models.Chunk {
	cleaned := cleanText(text)
	if cleaned == "" {
		return nil
	}

	var chunks []models.Chunk
	start := 0
	length := len(cleaned)

	for start < length {
		end := start + s.chunkSize
		if end > length {
			end = length
		}

		if end < length {
			cut := -1
			for _, delim := range boundaryDelims {
				if idx := strings.LastIndex(cleaned[start:end], delim); idx != -1 {
					cut = start + idx + len(delim)
					break
				}
			}
			if cut > start {
				end = cut
			} else {
				// Hard cut: never split a multi-byte rune
				for end > start && !utf8.RuneStart(cleaned[end]) {
					end--
				}
			}
		}

		chunkText := strings.TrimSpace(cleaned[start:end])
		if chunkText != "" {
			md := copyMetadata(metadata)
			md["chunk_index"] = len(chunks)
			md["start_pos"] = start
			md["end_pos"] = end
			chunks = append(chunks, models.Chunk{Text: chunkText, Metadata: md})
		}

		if end >= length {
			break
		}
		next := end - s.chunkOverlap
		if next <= start {
			next = end
		}
		start = next
	}

	// total_chunks is only knowable after the full pass
	for i := range chunks {
		chunks[i].Metadata["total_chunks"] = len(chunks)
	}

	s.logger.Debug().
		Int("chunks", len(chunks)).
		Int("chunk_size", s.chunkSize).
		Int("overlap", s.chunkOverlap).
		Msg("Chunked text with overlap")

	return chunks
}

// cleanText collapses runs of spaces to one and runs of 3+ newlines to a
// single blank line
func cleanText(text string) string {
	text = spaceRe.ReplaceAllString(text, " ")
	text = newlinePadRe.ReplaceAllString(text, "\n")
	text = multiNewlineRe.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

func splitParagraphs(text string) []string {
	var paragraphs []string
	for _, p := range paragraphRe.Split(text, -1) {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paragraphs = append(paragraphs, trimmed)
		}
	}
	return paragraphs
}

// splitSentences splits on whitespace following '.', '!' or '?', keeping
// the terminator with its sentence
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[start : loc[0]+1]); s != "" {
			sentences = append(sentences, s)
		}
		start = loc[1]
	}
	if tail := strings.TrimSpace(text[start:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func stampIndices(chunks []models.Chunk) {
	for i := range chunks {
		chunks[i].Metadata["chunk_index"] = i
		chunks[i].Metadata["total_chunks"] = len(chunks)
	}
}

func copyMetadata(metadata map[string]interface{}) map[string]interface{} {
	md := make(map[string]interface{}, len(metadata)+4)
	for k, v := range metadata {
		md[k] = v
	}
	return md
}
