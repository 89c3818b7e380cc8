package tui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"santerag/internal/domain"
)

func TestRenderAnswerNoInformation(t *testing.T) {
	out := renderAnswer(domain.Answer{NoInformation: true})
	assert.Contains(t, out, "Aucune information pertinente")
}

func TestRenderAnswerSectionsAndSources(t *testing.T) {
	out := renderAnswer(domain.Answer{
		Sections: map[domain.SectionLabel]string{
			domain.SectionDefinition: "Le diabète est une maladie chronique.",
			domain.SectionSymptoms:   "Les symptômes comprennent une soif intense.",
		},
		Sources: []domain.SourceRef{
			{Filename: "diabete.pdf", Score: 0.82, ChunkIndex: 1},
		},
	})
	assert.Contains(t, out, "Définition")
	assert.Contains(t, out, "Le diabète est une maladie chronique.")
	assert.Contains(t, out, "Symptômes")
	assert.Contains(t, out, "diabete.pdf")
	// The definition renders before the symptoms regardless of map order.
	assert.Less(t, strings.Index(out, "Définition"), strings.Index(out, "Symptômes"))
}

func TestRenderAnswerSourcesOnly(t *testing.T) {
	out := renderAnswer(domain.Answer{
		Sections: map[domain.SectionLabel]string{},
		Sources:  []domain.SourceRef{{Filename: "grippe.pdf", Score: 0.4}},
	})
	assert.Contains(t, out, "grippe.pdf")
	assert.Contains(t, out, "Aucune section")
}
