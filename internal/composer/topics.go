package composer

import (
	"path/filepath"
	"strings"

	"santerag/internal/domain"
)

// topicRules map condition keywords in a question to keywords expected in
// the backing brochure's file name. When a question clearly targets one
// condition, chunks from other brochures are filtered out so the answer
// never mixes diseases.
var topicRules = []struct {
	query     []string
	filenames []string
}{
	{[]string{"otite"}, []string{"otite"}},
	{[]string{"rhinopharyng"}, []string{"rhinopharyngite"}},
	{[]string{"angine"}, []string{"angine"}},
	{[]string{"fièvre", "fievre"}, []string{"fievre", "fièvre"}},
	{[]string{"gastro"}, []string{"gastro"}},
	{[]string{"bronchiolite"}, []string{"bronchiolite"}},
	{[]string{"hypertension", "tension"}, []string{"hypertension"}},
	{[]string{"diabète", "diabete"}, []string{"diabete", "diabète"}},
	{[]string{"migraine"}, []string{"migraine"}},
	{[]string{"grippe"}, []string{"grippe"}},
	{[]string{"covid"}, []string{"covid"}},
	{[]string{"asthme"}, []string{"asthme"}},
	{[]string{"allerg"}, []string{"allergie", "allergies"}},
	{[]string{"cholestérol", "cholesterol"}, []string{"cholesterol", "cholestérol"}},
}

// topicFilenames returns file-name keywords for the condition the question
// mentions, or nil when no known condition is detected.
func topicFilenames(question string) []string {
	q := strings.ToLower(question)
	for _, rule := range topicRules {
		for _, kw := range rule.query {
			if strings.Contains(q, kw) {
				return rule.filenames
			}
		}
	}
	return nil
}

// filterByTopic keeps results whose brochure file name matches the detected
// condition. If the filter would discard everything, the original results
// are kept.
func filterByTopic(question string, results []domain.SearchResult) []domain.SearchResult {
	keywords := topicFilenames(question)
	if len(keywords) == 0 {
		return results
	}
	var filtered []domain.SearchResult
	for _, r := range results {
		name := strings.ToLower(filepath.Base(r.Chunk.DocumentPath))
		for _, kw := range keywords {
			if strings.Contains(name, kw) {
				filtered = append(filtered, r)
				break
			}
		}
	}
	if len(filtered) == 0 {
		return results
	}
	return filtered
}
