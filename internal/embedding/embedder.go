package embedding

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus. For a
// fixed embedder state, Embed is a deterministic function of its input.
type Embedder interface {
	Name() string
	Prepare(corpus []string) error
	Dimension() int
	Embed(text string) ([]float64, error)
}

// StateCodec is implemented by embedders whose query-time behavior depends
// on state fitted during Prepare. The index persists this state alongside
// the vectors so reloaded indexes answer queries without re-preparing.
type StateCodec interface {
	MarshalState() ([]byte, error)
	UnmarshalState(data []byte) error
}
