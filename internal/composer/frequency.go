package composer

import (
	"math"
	"regexp"
	"strings"
)

// sentenceScorer ranks candidate sentences by normalized token frequency
// over the retrieved text, so sentences dense in recurring topical terms
// win over incidental cue matches.
type sentenceScorer struct {
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
	freq         map[string]float64
}

func newSentenceScorer(candidates []candidate) *sentenceScorer {
	s := &sentenceScorer{
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    scorerStopwords(),
		freq:         make(map[string]float64),
	}
	for _, cand := range candidates {
		for _, tok := range s.tokens(cand.sentence) {
			if _, ok := s.stopwords[tok]; ok {
				continue
			}
			s.freq[tok]++
		}
	}
	maxF := 0.0
	for _, v := range s.freq {
		if v > maxF {
			maxF = v
		}
	}
	if maxF > 0 {
		for k, v := range s.freq {
			s.freq[k] = v / maxF
		}
	}
	return s
}

// score sums normalized token frequencies, divided by the square root of
// the sentence length to avoid favoring long sentences.
func (s *sentenceScorer) score(sentence string) float64 {
	tokens := s.tokens(sentence)
	if len(tokens) == 0 {
		return 0
	}
	total := 0.0
	for _, tok := range tokens {
		if v, ok := s.freq[tok]; ok {
			total += v
		}
	}
	return total / math.Sqrt(float64(len(tokens)))
}

func (s *sentenceScorer) tokens(text string) []string {
	return s.tokenPattern.FindAllString(strings.ToLower(text), -1)
}

func scorerStopwords() map[string]struct{} {
	words := []string{
		"le", "la", "les", "un", "une", "des", "de", "du", "et", "ou",
		"à", "au", "aux", "en", "dans", "sur", "par", "pour", "avec",
		"sans", "ce", "cette", "ces", "il", "elle", "on", "est", "sont",
		"être", "avoir", "que", "qui", "ne", "pas", "plus", "se", "sa",
		"son", "ses", "vous", "votre", "vos", "si", "mais", "dont",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
