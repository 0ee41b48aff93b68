package qa

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ternarybob/fiscus/internal/models"
)

// numberRe matches numeric tokens likely to answer a financial question:
// optionally currency-prefixed, comma-grouped, optionally suffixed K/M/B
var numberRe = regexp.MustCompile(`[$€]?\s*\d[\d,]*\.?\d*\s*[KMBkmb]?`)

const (
	maxNumericMentions = 3
	snippetRadius      = 50
	maxFallbackChunks  = 2
)

type numericMention struct {
	context string
	start   int
	end     int
}

// synthesizeAnswer builds an extractive answer from retrieved chunk texts.
// Numeric mentions are surfaced as short surrounding-text snippets; when
// none are found the first sentences of the top chunks stand in. A Sources
// trailer lists the distinct file names across returned sources.
func synthesizeAnswer(contexts []string, sources []models.SourceRef) string {
	var mentions []numericMention
	for _, ctx := range contexts {
		for _, loc := range numberRe.FindAllStringIndex(ctx, -1) {
			mentions = append(mentions, numericMention{context: ctx, start: loc[0], end: loc[1]})
		}
	}

	var parts []string
	if len(mentions) > 0 {
		parts = append(parts, "Based on the documents:")
		for i, m := range mentions {
			if i >= maxNumericMentions {
				break
			}
			parts = append(parts, "• "+snippet(m.context, m.start, m.end))
		}
	} else {
		parts = append(parts, "Based on the available information:")
		for i, ctx := range contexts {
			if i >= maxFallbackChunks {
				break
			}
			parts = append(parts, "• "+leadingSentences(ctx, 2))
		}
	}

	answer := strings.Join(parts, "\n")

	if fileNames := distinctFileNames(sources); len(fileNames) > 0 {
		answer += "\n\nSources: " + strings.Join(fileNames, ", ")
	}
	return answer
}

// snippet extracts ~snippetRadius characters of context on each side of a
// matched number, respecting rune boundaries
func snippet(text string, start, end int) string {
	lo := start - snippetRadius
	if lo < 0 {
		lo = 0
	}
	hi := end + snippetRadius
	if hi > len(text) {
		hi = len(text)
	}
	for lo < len(text) && !utf8.RuneStart(text[lo]) {
		lo++
	}
	for hi < len(text) && !utf8.RuneStart(text[hi]) {
		hi++
	}
	return strings.TrimSpace(text[lo:hi])
}

// leadingSentences returns the first n sentences of text, period-terminated
func leadingSentences(text string, n int) string {
	sentences := strings.SplitN(text, ".", n+1)
	if len(sentences) > n {
		sentences = sentences[:n]
	}
	joined := strings.TrimSpace(strings.Join(sentences, "."))
	if joined != "" && !strings.HasSuffix(joined, ".") {
		joined += "."
	}
	return joined
}

// distinctFileNames collects file_name/filename metadata values across
// sources, preserving retrieval order
func distinctFileNames(sources []models.SourceRef) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, source := range sources {
		for _, key := range []string{"file_name", "filename"} {
			if v, ok := source.Metadata[key]; ok {
				if name, ok := v.(string); ok && name != "" {
					if _, dup := seen[name]; !dup {
						seen[name] = struct{}{}
						names = append(names, name)
					}
				}
			}
		}
	}
	return names
}
