package chunker

import (
	"regexp"
	"strconv"
	"strings"

	"santerag/internal/domain"
)

// SentenceChunker groups sentences into chunks bounded by character length.
// With zero overlap the concatenation of all chunks, modulo whitespace,
// reconstructs the input text.
type SentenceChunker struct {
	minChars         int
	maxChars         int
	overlapSentences int
	splitter         *regexp.Regexp
}

// NewSentenceChunker creates a chunker producing chunks of [minChars, maxChars]
// characters where sentence boundaries allow it.
func NewSentenceChunker(minChars, maxChars, overlapSentences int) *SentenceChunker {
	if maxChars <= 0 {
		maxChars = 800
	}
	if minChars < 0 || minChars > maxChars {
		minChars = maxChars / 4
	}
	if overlapSentences < 0 {
		overlapSentences = 0
	}
	return &SentenceChunker{
		minChars:         minChars,
		maxChars:         maxChars,
		overlapSentences: overlapSentences,
		splitter:         regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

// Chunk splits the cleaned text of document into ordered chunks. The result
// is deterministic for identical input and configuration.
func (c *SentenceChunker) Chunk(document domain.Document, cleaned string) ([]domain.Chunk, error) {
	sentences := c.sentences(cleaned)
	if len(sentences) == 0 {
		return nil, nil
	}

	var groups []string
	i := 0
	for i < len(sentences) {
		end := i + 1
		text := sentences[i]
		for end < len(sentences) && len(text)+1+len(sentences[end]) <= c.maxChars {
			text += " " + sentences[end]
			end++
		}
		groups = append(groups, text)
		if end == len(sentences) {
			break
		}
		next := end - c.overlapSentences
		if next <= i { // guard against stalling when overlap spans the whole group
			next = i + 1
		}
		i = next
	}

	// A short trailing group is folded into its predecessor when that stays
	// within the maximum bound. Only valid without overlap.
	if c.overlapSentences == 0 && len(groups) > 1 {
		last := groups[len(groups)-1]
		prev := groups[len(groups)-2]
		if len(last) < c.minChars && len(prev)+1+len(last) <= c.maxChars {
			groups[len(groups)-2] = prev + " " + last
			groups = groups[:len(groups)-1]
		}
	}

	chunks := make([]domain.Chunk, 0, len(groups))
	for idx, text := range groups {
		chunks = append(chunks, domain.Chunk{
			ChunkID:      document.ID + ":" + strconv.Itoa(idx),
			DocumentID:   document.ID,
			DocumentPath: document.Path,
			Text:         text,
			Index:        idx,
		})
	}
	return chunks, nil
}

// sentences splits text on sentence boundaries, keeps a trailing unterminated
// fragment, and hard-splits any single sentence exceeding maxChars on word
// boundaries so the chunk length invariant holds.
func (c *SentenceChunker) sentences(text string) []string {
	var raw []string
	last := 0
	for _, loc := range c.splitter.FindAllStringIndex(text, -1) {
		s := strings.TrimSpace(text[loc[0]:loc[1]])
		if s != "" {
			raw = append(raw, s)
		}
		last = loc[1]
	}
	if tail := strings.TrimSpace(text[last:]); tail != "" {
		raw = append(raw, tail)
	}

	var out []string
	for _, s := range raw {
		if len(s) <= c.maxChars {
			out = append(out, s)
			continue
		}
		out = append(out, splitByWords(s, c.maxChars)...)
	}
	return out
}

func splitByWords(s string, maxChars int) []string {
	words := strings.Fields(s)
	var parts []string
	current := ""
	for _, w := range words {
		switch {
		case current == "":
			current = w
		case len(current)+1+len(w) <= maxChars:
			current += " " + w
		default:
			parts = append(parts, current)
			current = w
		}
	}
	if current != "" {
		parts = append(parts, current)
	}
	return parts
}
