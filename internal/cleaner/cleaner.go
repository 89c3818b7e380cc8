// Package cleaner normalizes raw text extracted from patient brochures.
// PDF extraction and web-page exports leave navigation menus, bibliographic
// references and stray symbols in the text; Clean strips them so only
// informative prose reaches the chunker.
package cleaner

import (
	"regexp"
	"strings"
)

// unwantedPatterns are interface fragments (menus, buttons, footers) that
// mark a sentence as non-informative. Matched case-insensitively.
var unwantedPatterns = []string{
	"lire aussi",
	"cet article vous a-t-il été utile",
	"assuré entreprise professionnel de santé",
	"sites utiles",
	"oui non",
	"copier le lien",
	"imprimer la page",
}

// biblioPatterns mark bibliographic or reference sentences.
var biblioPatterns = []string{
	"santé publique france",
	"consulté le",
	"site internet",
	"saint-maurice",
	"document de référence",
	"pdf ,",
}

// months starting a sentence usually indicate a publication header.
var months = []string{
	"janvier", "février", "fevrier", "mars", "avril", "mai", "juin",
	"juillet", "août", "aout", "septembre", "octobre", "novembre",
	"décembre", "decembre",
}

// Cleaner strips boilerplate from raw extracted text. Clean is idempotent:
// cleaning already-clean text returns it unchanged.
type Cleaner struct {
	minSentenceChars int
	symbolRun        *regexp.Regexp
	refMarker        *regexp.Regexp
	sentenceRe       *regexp.Regexp
	spaceRe          *regexp.Regexp
}

// New creates a Cleaner with the default minimum informative sentence
// length of 30 characters.
func New() *Cleaner {
	return &Cleaner{
		minSentenceChars: 30,
		// Runs of characters that are neither letters, digits,
		// punctuation nor whitespace: private-use glyphs, bullets and
		// other PDF artifacts.
		symbolRun: regexp.MustCompile(`[^\p{L}\p{N}\p{P}\s]+`),
		// Bracketed reference markers such as [1] or [2, 3].
		refMarker:  regexp.MustCompile(`\[\s*\d+(?:\s*[,\x{2013}-]\s*\d+)*\s*\]`),
		sentenceRe: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
		spaceRe:    regexp.MustCompile(`\s+`),
	}
}

// Clean returns the normalized form of raw. Empty or malformed input yields
// an empty string, never an error.
func (c *Cleaner) Clean(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	text := c.symbolRun.ReplaceAllString(raw, " ")
	text = c.refMarker.ReplaceAllString(text, " ")
	text = c.spaceRe.ReplaceAllString(text, " ")
	text = strings.TrimSpace(text)

	var kept []string
	for _, sentence := range c.splitSentences(text) {
		if c.keep(sentence) {
			kept = append(kept, sentence)
		}
	}
	return strings.Join(kept, " ")
}

// splitSentences returns trimmed sentences including a trailing fragment
// without terminal punctuation, so no content is silently lost.
func (c *Cleaner) splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, loc := range c.sentenceRe.FindAllStringIndex(text, -1) {
		s := strings.TrimSpace(text[loc[0]:loc[1]])
		if s != "" {
			sentences = append(sentences, s)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func (c *Cleaner) keep(sentence string) bool {
	if len([]rune(sentence)) < c.minSentenceChars {
		return false
	}
	lower := strings.ToLower(sentence)
	for _, p := range unwantedPatterns {
		if strings.Contains(lower, p) {
			return false
		}
	}
	for _, p := range biblioPatterns {
		if strings.Contains(lower, p) {
			return false
		}
	}
	for _, m := range months {
		if strings.HasPrefix(lower, m+" ") {
			return false
		}
	}
	return true
}
