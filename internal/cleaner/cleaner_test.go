package cleaner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanEmptyInput(t *testing.T) {
	c := New()
	assert.Equal(t, "", c.Clean(""))
	assert.Equal(t, "", c.Clean("   \n\t  "))
}

func TestCleanCollapsesWhitespace(t *testing.T) {
	c := New()
	in := "Le diabète est une maladie chronique\r\nqui touche de  nombreuses   personnes en France."
	out := c.Clean(in)
	assert.Equal(t, "Le diabète est une maladie chronique qui touche de nombreuses personnes en France.", out)
}

func TestCleanRemovesPDFArtifacts(t *testing.T) {
	c := New()
	in := "Le diabète  est une maladie chronique qui touche des millions de personnes."
	out := c.Clean(in)
	assert.NotContains(t, out, "")
	assert.Contains(t, out, "est une maladie chronique")
}

func TestCleanRemovesReferenceMarkers(t *testing.T) {
	c := New()
	in := "Cette maladie touche de nombreuses personnes en France [1] et progresse chaque année [2, 3]."
	out := c.Clean(in)
	assert.NotContains(t, out, "[1]")
	assert.NotContains(t, out, "[2, 3]")
	assert.Contains(t, out, "touche de nombreuses personnes")
}

func TestCleanDropsBoilerplateSentences(t *testing.T) {
	c := New()
	in := "Lire aussi notre dossier complet sur les maladies chroniques et leurs complications. " +
		"Le diabète est une maladie chronique caractérisée par un excès de sucre dans le sang. " +
		"Document de référence publié par l'agence sanitaire nationale pour les professionnels."
	out := c.Clean(in)
	assert.NotContains(t, out, "Lire aussi")
	assert.NotContains(t, out, "Document de référence")
	assert.Contains(t, out, "Le diabète est une maladie chronique")
}

func TestCleanDropsMonthHeaders(t *testing.T) {
	c := New()
	in := "Janvier 2023 mise à jour de la brochure par le comité de relecture. " +
		"Les symptômes apparaissent souvent de façon progressive chez l'adulte."
	out := c.Clean(in)
	assert.NotContains(t, out, "Janvier")
	assert.Contains(t, out, "Les symptômes apparaissent")
}

func TestCleanDropsShortFragments(t *testing.T) {
	c := New()
	out := c.Clean("Oui. Non. Sommaire. Les symptômes apparaissent souvent de façon progressive chez l'adulte.")
	assert.Equal(t, "Les symptômes apparaissent souvent de façon progressive chez l'adulte.", out)
}

func TestCleanIdempotent(t *testing.T) {
	c := New()
	samples := []string{
		"",
		"Le diabète est une maladie chronique qui touche de nombreuses personnes en France.",
		"Lire aussi notre dossier complet sur les maladies chroniques et leurs complications. " +
			"Les symptômes du diabète comprennent une soif intense et une fatigue durable.",
		"Cette maladie touche de\r\nnombreuses personnes [12]  et progresse chaque année.",
		"Fragment court. Puis une phrase suffisamment longue pour être conservée au nettoyage",
	}
	for _, raw := range samples {
		once := c.Clean(raw)
		twice := c.Clean(once)
		require.Equal(t, once, twice, "clean must be idempotent for %q", raw)
	}
}
