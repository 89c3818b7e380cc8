// Package composer assembles retrieved chunks into a structured extractive
// answer. Section detection is a pure mapping from label to keyword cues;
// every word of the output traces back to a retrieved chunk, except the
// fixed section labels themselves.
package composer

import (
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"santerag/internal/domain"
)

// sectionCues maps each answer section to the lowercase substrings that mark
// a sentence as belonging to it. The rule set is data, not dispatch, so each
// label is testable in isolation.
var sectionCues = map[domain.SectionLabel][]string{
	domain.SectionDefinition: {
		"qu'est-ce que", "est une maladie", "est une infection",
		"est une inflammation", "est une affection", "est un trouble",
		"est un virus", "se définit", "définition", "se caractérise par",
		"correspond à",
	},
	domain.SectionSymptoms: {
		"symptôme", "symptômes", "signes", "se manifeste",
		"se traduit par", "on observe", "provoque", "douleur", "fièvre",
		"toux", "fatigue", "vomissement", "diarrhée", "sensation de",
	},
	domain.SectionTreatment: {
		"traitement", "se traite", "soigner", "se soigne", "médicament",
		"antibiotique", "paracétamol", "prescri", "soulager", "guérison",
		"repos",
	},
	domain.SectionWhenToConsult: {
		"consulter", "consultez", "consultation", "médecin traitant",
		"appeler le 15", "urgences", "avis médical", "en cas de doute",
		"si les symptômes persistent",
	},
}

// Config carries the documented composition defaults: how many sentences a
// section keeps and where long sentences are cut.
type Config struct {
	MaxSentencesPerSection int
	MaxSentenceChars       int
}

// Composer builds answers from retrieval results.
type Composer struct {
	cfg        Config
	sentenceRe *regexp.Regexp
}

// New creates a Composer. Zero config fields fall back to the defaults
// (3 sentences per section, 240 characters per sentence).
func New(cfg Config) *Composer {
	if cfg.MaxSentencesPerSection <= 0 {
		cfg.MaxSentencesPerSection = 3
	}
	if cfg.MaxSentenceChars <= 0 {
		cfg.MaxSentenceChars = 240
	}
	return &Composer{
		cfg:        cfg,
		sentenceRe: regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?])`),
	}
}

// candidate is one sentence of a retrieved chunk, with its origin.
type candidate struct {
	sentence  string
	resultIdx int
	order     int
}

// Compose builds the sectioned answer for question from results. An empty
// retrieval yields the "no information found" answer with no sections and
// no sources; content is never fabricated.
func (c *Composer) Compose(question string, results []domain.SearchResult) domain.Answer {
	answer := domain.Answer{
		Question: question,
		Sections: make(map[domain.SectionLabel]string),
	}
	if len(results) == 0 {
		answer.NoInformation = true
		return answer
	}

	results = filterByTopic(question, results)

	var candidates []candidate
	for i, r := range results {
		for _, s := range c.splitSentences(r.Chunk.Text) {
			candidates = append(candidates, candidate{sentence: s, resultIdx: i, order: len(candidates)})
		}
	}
	scorer := newSentenceScorer(candidates)

	contributing := make(map[int]struct{})
	for _, label := range domain.SectionOrder {
		text, used := c.composeSection(label, candidates, scorer)
		if text == "" {
			continue
		}
		answer.Sections[label] = text
		for idx := range used {
			contributing[idx] = struct{}{}
		}
	}

	// When no cue matched anything, the user still gets the sources of the
	// retrieved chunks to follow up on.
	if len(contributing) == 0 {
		for i := range results {
			contributing[i] = struct{}{}
		}
	}
	answer.Sources = c.sources(results, contributing)
	return answer
}

// composeSection selects the most relevant cue-matching sentences for label.
// It returns the composed text and the set of result indices that
// contributed, or "" when no sentence matches.
func (c *Composer) composeSection(label domain.SectionLabel, candidates []candidate, scorer *sentenceScorer) (string, map[int]struct{}) {
	cues := sectionCues[label]
	var matched []candidate
	seen := make(map[string]struct{})
	for _, cand := range candidates {
		lower := strings.ToLower(cand.sentence)
		if _, dup := seen[lower]; dup {
			continue
		}
		for _, cue := range cues {
			if strings.Contains(lower, cue) {
				matched = append(matched, cand)
				seen[lower] = struct{}{}
				break
			}
		}
	}
	if len(matched) == 0 {
		return "", nil
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return scorer.score(matched[i].sentence) > scorer.score(matched[j].sentence)
	})
	if len(matched) > c.cfg.MaxSentencesPerSection {
		matched = matched[:c.cfg.MaxSentencesPerSection]
	}
	// Selected sentences read in their original order.
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].order < matched[j].order })

	used := make(map[int]struct{})
	parts := make([]string, 0, len(matched))
	for _, cand := range matched {
		parts = append(parts, truncateAtWord(cand.sentence, c.cfg.MaxSentenceChars))
		used[cand.resultIdx] = struct{}{}
	}
	return strings.Join(parts, " "), used
}

// sources returns the distinct documents backing the contributing chunks,
// best score first.
func (c *Composer) sources(results []domain.SearchResult, contributing map[int]struct{}) []domain.SourceRef {
	best := make(map[string]domain.SourceRef)
	var order []string
	for i, r := range results {
		if _, ok := contributing[i]; !ok {
			continue
		}
		ref := domain.SourceRef{
			Filename:   filepath.Base(r.Chunk.DocumentPath),
			Score:      r.Score,
			ChunkIndex: r.Chunk.Index,
			Snippet:    truncateAtWord(r.Chunk.Text, c.cfg.MaxSentenceChars),
		}
		prev, seen := best[r.Chunk.DocumentID]
		if !seen {
			best[r.Chunk.DocumentID] = ref
			order = append(order, r.Chunk.DocumentID)
		} else if ref.Score > prev.Score {
			best[r.Chunk.DocumentID] = ref
		}
	}
	refs := make([]domain.SourceRef, 0, len(order))
	for _, id := range order {
		refs = append(refs, best[id])
	}
	sort.SliceStable(refs, func(i, j int) bool { return refs[i].Score > refs[j].Score })
	return refs
}

func (c *Composer) splitSentences(text string) []string {
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

// truncateAtWord cuts s at the last word boundary within maxChars. The
// pre-truncation sentence always appears verbatim in a retrieved chunk.
func truncateAtWord(s string, maxChars int) string {
	if len(s) <= maxChars {
		return s
	}
	cut := strings.LastIndex(s[:maxChars], " ")
	if cut <= 0 {
		cut = maxChars
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
	}
	return s[:cut]
}
