package domain

// Document represents a single brochure loaded from the corpus directory.
type Document struct {
	ID      string
	Path    string
	Title   string
	RawText string
}

// Chunk is a bounded passage of cleaned document text, the unit of retrieval.
type Chunk struct {
	ChunkID      string
	DocumentID   string
	DocumentPath string
	Text         string
	Index        int
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// SectionLabel identifies one of the fixed answer sections.
type SectionLabel string

const (
	SectionDefinition    SectionLabel = "definition"
	SectionSymptoms      SectionLabel = "symptoms"
	SectionTreatment     SectionLabel = "treatment"
	SectionWhenToConsult SectionLabel = "when_to_consult"
)

// SectionOrder is the fixed rendering order for answer sections.
var SectionOrder = []SectionLabel{
	SectionDefinition,
	SectionSymptoms,
	SectionTreatment,
	SectionWhenToConsult,
}

// SectionTitle returns the French display heading for a section label.
func SectionTitle(label SectionLabel) string {
	switch label {
	case SectionDefinition:
		return "Définition"
	case SectionSymptoms:
		return "Symptômes"
	case SectionTreatment:
		return "Traitement"
	case SectionWhenToConsult:
		return "Quand consulter"
	}
	return string(label)
}

// SourceRef points at a document backing part of an answer.
type SourceRef struct {
	Filename   string  `json:"filename"`
	Score      float64 `json:"score"`
	ChunkIndex int     `json:"chunk_index"`
	Snippet    string  `json:"snippet"`
}

// Answer is the composed reply to one question. Sections only ever contain
// text copied from retrieved chunks; NoInformation is set when retrieval
// returned nothing at all.
type Answer struct {
	Question      string                  `json:"question"`
	Sections      map[SectionLabel]string `json:"sections"`
	Sources       []SourceRef             `json:"sources"`
	NoInformation bool                    `json:"no_information"`
}

// Cleaner normalizes raw extracted text into retrievable prose.
type Cleaner interface {
	Clean(raw string) string
}

// Chunker splits cleaned document text into chunks suitable for indexing.
type Chunker interface {
	Chunk(document Document, cleaned string) ([]Chunk, error)
}

// Composer assembles retrieved chunks into a sectioned extractive answer.
type Composer interface {
	Compose(question string, results []SearchResult) Answer
}
