package metrics

import (
	_ "embed"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed keywords.yaml
var keywordsYAML []byte

// keywordGroups maps a question keyword to the metric keys it implies.
// Loaded once from the embedded table; a fixed lookup, not learned.
var keywordGroups map[string][]string

func init() {
	if err := yaml.Unmarshal(keywordsYAML, &keywordGroups); err != nil {
		panic("metrics: invalid embedded keywords.yaml: " + err.Error())
	}
}

// MatchKeywords returns the metric keys implied by the question, restricted
// to metrics actually present in the computed set. Each metric key appears
// at most once; order is deterministic (sorted by key).
func MatchKeywords(question string, computed map[string]float64) []string {
	questionLower := strings.ToLower(question)

	seen := make(map[string]struct{})
	for keyword, group := range keywordGroups {
		if !strings.Contains(questionLower, keyword) {
			continue
		}
		for _, metricKey := range group {
			if _, ok := computed[metricKey]; ok {
				seen[metricKey] = struct{}{}
			}
		}
	}

	matched := make([]string, 0, len(seen))
	for key := range seen {
		matched = append(matched, key)
	}
	sort.Strings(matched)
	return matched
}
