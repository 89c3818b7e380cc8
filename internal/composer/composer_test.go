package composer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"santerag/internal/domain"
)

func result(path, text string, idx int, score float64) domain.SearchResult {
	return domain.SearchResult{
		Chunk: domain.Chunk{
			ChunkID:      path + ":" + text[:1],
			DocumentID:   path,
			DocumentPath: path,
			Text:         text,
			Index:        idx,
		},
		Score: score,
	}
}

func diabetesResults() []domain.SearchResult {
	return []domain.SearchResult{
		result("data/brochures/diabete.pdf",
			"Le diabète est une maladie chronique caractérisée par un excès de sucre dans le sang. "+
				"Les symptômes comprennent une soif intense et une fatigue durable.",
			0, 0.82),
		result("data/brochures/diabete.pdf",
			"Le traitement repose sur une alimentation équilibrée et parfois des médicaments. "+
				"Consultez votre médecin traitant si une soif inhabituelle apparaît.",
			1, 0.71),
	}
}

func TestComposeEmptyResults(t *testing.T) {
	c := New(Config{})
	answer := c.Compose("Quels sont les symptômes du diabète ?", nil)
	assert.True(t, answer.NoInformation)
	assert.Empty(t, answer.Sections)
	assert.Empty(t, answer.Sources)
	assert.Equal(t, "Quels sont les symptômes du diabète ?", answer.Question)
}

func TestComposeSectionsFromCues(t *testing.T) {
	c := New(Config{})
	answer := c.Compose("Quels sont les symptômes du diabète ?", diabetesResults())
	require.False(t, answer.NoInformation)

	assert.Contains(t, answer.Sections[domain.SectionDefinition], "est une maladie chronique")
	assert.Contains(t, answer.Sections[domain.SectionSymptoms], "soif intense")
	assert.Contains(t, answer.Sections[domain.SectionTreatment], "alimentation équilibrée")
	assert.Contains(t, answer.Sections[domain.SectionWhenToConsult], "Consultez votre médecin")
}

func TestComposeIsExtractive(t *testing.T) {
	c := New(Config{})
	results := diabetesResults()
	answer := c.Compose("Quels sont les symptômes du diabète ?", results)
	require.NotEmpty(t, answer.Sections)

	// Every sentence of every section must appear verbatim in a chunk.
	for label, text := range answer.Sections {
		for _, sentence := range strings.SplitAfter(text, ".") {
			sentence = strings.TrimSpace(sentence)
			if sentence == "" {
				continue
			}
			found := false
			for _, r := range results {
				if strings.Contains(r.Chunk.Text, sentence) {
					found = true
					break
				}
			}
			assert.True(t, found, "section %s contains fabricated sentence %q", label, sentence)
		}
	}
}

func TestComposeOmitsSectionsWithoutCues(t *testing.T) {
	c := New(Config{})
	results := []domain.SearchResult{
		result("data/brochures/diabete.pdf",
			"Le diabète est une maladie chronique caractérisée par un excès de sucre dans le sang.",
			0, 0.8),
	}
	answer := c.Compose("Qu'est-ce que le diabète ?", results)
	assert.Contains(t, answer.Sections, domain.SectionDefinition)
	assert.NotContains(t, answer.Sections, domain.SectionTreatment)
	assert.NotContains(t, answer.Sections, domain.SectionWhenToConsult)
}

func TestComposeNoCueMatchKeepsSources(t *testing.T) {
	c := New(Config{})
	results := []domain.SearchResult{
		result("data/brochures/diabete.pdf",
			"Bonjour tout le monde, aujourd'hui la météo est clémente dehors.",
			0, 0.4),
	}
	answer := c.Compose("Quelle est la situation ?", results)
	assert.False(t, answer.NoInformation)
	assert.Empty(t, answer.Sections)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "diabete.pdf", answer.Sources[0].Filename)
}

func TestComposeSourcesDistinctByDocument(t *testing.T) {
	c := New(Config{})
	answer := c.Compose("Quels sont les symptômes du diabète ?", diabetesResults())
	require.Len(t, answer.Sources, 1)
	src := answer.Sources[0]
	assert.Equal(t, "diabete.pdf", src.Filename)
	assert.Equal(t, 0.82, src.Score) // best of the two chunks
	assert.Equal(t, 0, src.ChunkIndex)
	assert.NotEmpty(t, src.Snippet)
}

func TestComposeSourcesOrderedByScore(t *testing.T) {
	c := New(Config{})
	results := []domain.SearchResult{
		result("data/brochures/grippe.pdf",
			"La grippe provoque une fièvre élevée et une toux sèche.", 0, 0.5),
		result("data/brochures/angine.pdf",
			"L'angine provoque une douleur à la gorge pendant plusieurs jours.", 0, 0.9),
	}
	answer := c.Compose("Quels sont les signes de la maladie ?", results)
	require.Len(t, answer.Sources, 2)
	assert.Equal(t, "angine.pdf", answer.Sources[0].Filename)
	assert.Equal(t, "grippe.pdf", answer.Sources[1].Filename)
}

func TestComposeTopicFilterDropsOtherBrochures(t *testing.T) {
	c := New(Config{})
	results := []domain.SearchResult{
		result("data/brochures/grippe.pdf",
			"La grippe provoque une fièvre élevée et une toux sèche.", 0, 0.9),
		result("data/brochures/diabete.pdf",
			"Les symptômes du diabète comprennent une soif intense et une fatigue durable.", 0, 0.6),
	}
	answer := c.Compose("Quels sont les symptômes du diabète ?", results)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "diabete.pdf", answer.Sources[0].Filename)
	assert.NotContains(t, answer.Sections[domain.SectionSymptoms], "grippe")
}

func TestComposeTopicFilterFallsBackWhenNothingMatches(t *testing.T) {
	c := New(Config{})
	results := []domain.SearchResult{
		result("data/brochures/diabete.pdf",
			"Les symptômes du diabète comprennent une soif intense et une fatigue durable.", 0, 0.6),
	}
	// Question mentions grippe but only diabetes chunks were retrieved.
	answer := c.Compose("Quels sont les symptômes de la grippe ?", results)
	require.Len(t, answer.Sources, 1)
	assert.Equal(t, "diabete.pdf", answer.Sources[0].Filename)
}

func TestComposeCapsSentencesPerSection(t *testing.T) {
	c := New(Config{MaxSentencesPerSection: 1})
	answer := c.Compose("Quels sont les symptômes du diabète ?", []domain.SearchResult{
		result("data/brochures/diabete.pdf",
			"Les symptômes incluent une soif intense. Les symptômes incluent aussi une fatigue durable. "+
				"Les symptômes incluent enfin une perte de poids.",
			0, 0.8),
	})
	text := answer.Sections[domain.SectionSymptoms]
	require.NotEmpty(t, text)
	assert.Equal(t, 1, strings.Count(text, "."))
}

func TestComposeTruncatesLongSentences(t *testing.T) {
	c := New(Config{MaxSentenceChars: 60})
	long := "Les symptômes du diabète comprennent une soif intense une fatigue durable et une envie fréquente d'uriner"
	answer := c.Compose("diabète", []domain.SearchResult{
		result("data/brochures/diabete.pdf", long, 0, 0.8),
	})
	text := answer.Sections[domain.SectionSymptoms]
	require.NotEmpty(t, text)
	assert.LessOrEqual(t, len(text), 60)
	assert.True(t, strings.HasPrefix(long, text))
}

func TestTruncateAtWord(t *testing.T) {
	assert.Equal(t, "court", truncateAtWord("court", 20))
	assert.Equal(t, "une phrase", truncateAtWord("une phrase beaucoup trop longue", 15))
	// No space before the limit: cut falls back to a rune boundary.
	out := truncateAtWord("incompréhensiblement", 10)
	assert.LessOrEqual(t, len(out), 10)
	assert.True(t, strings.HasPrefix("incompréhensiblement", out))
}
