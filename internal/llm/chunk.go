package llm

// ChunkKind tags a streamed Chunk.
type ChunkKind int

const (
	// ChunkData carries a fragment of generated text.
	ChunkData ChunkKind = iota
	// ChunkEnd marks normal completion. Nothing follows it.
	ChunkEnd
	// ChunkFailure carries the error that ended the stream. Nothing follows it.
	ChunkFailure
)

func (k ChunkKind) String() string {
	switch k {
	case ChunkData:
		return "data"
	case ChunkEnd:
		return "end"
	case ChunkFailure:
		return "failure"
	}
	return "unknown"
}

// Chunk is one item of a generation stream. A stream yields zero or more
// ChunkData items followed by exactly one ChunkEnd or ChunkFailure, unless
// the consumer stops early.
type Chunk struct {
	Kind ChunkKind
	Text string
	Err  error
}

// Data wraps a text fragment.
func Data(text string) Chunk { return Chunk{Kind: ChunkData, Text: text} }

// End is the terminal chunk of a successful stream.
func End() Chunk { return Chunk{Kind: ChunkEnd} }

// Failure is the terminal chunk of a failed stream.
func Failure(err error) Chunk { return Chunk{Kind: ChunkFailure, Err: err} }
