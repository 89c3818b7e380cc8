// Package tfidf implements a deterministic TF-IDF vectorizer suitable for a
// small, fixed corpus. No external model is required, so indexing works
// offline and repeated builds yield identical vectors.
package tfidf

import (
	"encoding/json"
	"errors"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Embedder implements a TF-IDF vectorizer. It builds a vocabulary from the
// corpus during Prepare and computes smoothed IDF values.
type Embedder struct {
	vocabulary   map[string]int
	terms        []string
	idf          []float64
	dimension    int
	prepared     bool
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates an unprepared TF-IDF embedder with French stopwords.
func NewEmbedder() *Embedder {
	return &Embedder{
		vocabulary:   make(map[string]int),
		tokenPattern: regexp.MustCompile(`\p{L}+(?:['’]\p{L}+)*`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "tfidf" }

// Prepare builds the vocabulary and IDF values from the provided corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if len(corpus) == 0 {
		return errors.New("empty corpus for TF-IDF prepare")
	}
	df := make(map[string]int)
	for _, text := range corpus {
		seen := make(map[string]struct{})
		for _, tok := range e.tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	// Stable term ordering makes the vector layout deterministic.
	sort.Strings(terms)
	if len(terms) == 0 {
		return errors.New("no tokens found in corpus; ensure tokenizer supports your language")
	}
	e.vocabulary = make(map[string]int, len(terms))
	e.terms = terms
	e.idf = make([]float64, len(terms))
	n := float64(len(corpus))
	for i, term := range terms {
		e.vocabulary[term] = i
		// Smoothed IDF.
		e.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1.0
	}
	e.dimension = len(terms)
	e.prepared = true
	return nil
}

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the L2-normalized TF-IDF vector for the given text.
func (e *Embedder) Embed(text string) ([]float64, error) {
	if !e.prepared {
		return nil, errors.New("tfidf embedder not prepared")
	}
	vec := make([]float64, e.dimension)
	tf := make(map[int]int)
	total := 0
	for _, tok := range e.tokenize(text) {
		if idx, ok := e.vocabulary[tok]; ok {
			tf[idx]++
			total++
		}
	}
	if total == 0 {
		return vec, nil
	}
	for idx, count := range tf {
		vec[idx] = float64(count) / float64(total) * e.idf[idx]
	}
	norm := 0.0
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range vec {
			vec[i] /= norm
		}
	}
	return vec, nil
}

// state is the serialized form of a prepared embedder.
type state struct {
	Terms []string  `json:"terms"`
	IDF   []float64 `json:"idf"`
}

// MarshalState serializes the fitted vocabulary and IDF values.
func (e *Embedder) MarshalState() ([]byte, error) {
	if !e.prepared {
		return nil, errors.New("tfidf embedder not prepared")
	}
	return json.Marshal(state{Terms: e.terms, IDF: e.idf})
}

// UnmarshalState restores a previously fitted embedder, after which Embed
// produces vectors identical to the original instance's.
func (e *Embedder) UnmarshalState(data []byte) error {
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return err
	}
	if len(st.Terms) == 0 || len(st.Terms) != len(st.IDF) {
		return errors.New("invalid tfidf state")
	}
	e.terms = st.Terms
	e.idf = st.IDF
	e.vocabulary = make(map[string]int, len(st.Terms))
	for i, term := range st.Terms {
		e.vocabulary[term] = i
	}
	e.dimension = len(st.Terms)
	e.prepared = true
	return nil
}

func (e *Embedder) tokenize(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, t := range raw {
		if _, isStop := e.stopwords[t]; isStop {
			continue
		}
		out = append(out, t)
	}
	return out
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "à", "au", "aux", "avec", "ce", "ces", "cette", "dans", "de",
		"des", "du", "elle", "en", "et", "eux", "il", "ils", "je", "la",
		"le", "les", "leur", "lui", "ma", "mais", "me", "même", "mes",
		"moi", "mon", "ne", "nos", "notre", "nous", "on", "ou", "où",
		"par", "pas", "peu", "plus", "pour", "qu", "que", "qui", "sa",
		"se", "ses", "son", "sont", "sur", "ta", "te", "tes", "toi",
		"ton", "tu", "un", "une", "vos", "votre", "vous", "c'est",
		"d'un", "d'une", "est", "sera", "être", "avoir", "fait", "faire",
		"comme", "tout", "tous", "toute", "toutes", "aussi", "bien",
		"si", "lors", "donc", "cas", "afin", "entre", "sans", "sous",
		"vers", "chez", "dont", "après", "avant", "lorsque", "quand",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
