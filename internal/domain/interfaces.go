package domain

import "context"

// Document represents a single text file loaded from the data directory.
type Document struct {
	ID      string
	Path    string
	Content string
}

// Chunk is a bounded slice of a document used as the unit of embedding and retrieval.
type Chunk struct {
	DocumentID string
	ChunkID    string
	Source     string
	Text       string
	Index      int
	Offset     int // rune offset of the chunk start within the document
}

// SearchResult represents a matching chunk with a relevance score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Answer is the generated reply to a single question.
type Answer struct {
	Question string
	Text     string
	Sources  []SearchResult
}

// Chunker splits documents into chunks suitable for retrieval indexing.
type Chunker interface {
	Chunk(document Document) ([]Chunk, error)
}

// Embedder converts free text into a numeric vector representation.
// Implementations may require a preparation phase over the corpus.
type Embedder interface {
	Name() string
	Prepare(ctx context.Context, corpus []string) error
	Dimension() int
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// VectorStore holds chunk vectors and answers nearest-neighbour queries.
type VectorStore interface {
	Build(chunks []Chunk, vectors [][]float32) error
	Search(vector []float32, topK int) ([]SearchResult, error)
	Len() int
}

// Generator turns a question and its retrieved context into an answer.
type Generator interface {
	Generate(ctx context.Context, question string, chunks []Chunk) (string, error)
}

// Summarizer produces a brief summary of the provided text.
type Summarizer interface {
	Summarize(text string, maxSentences int) (string, error)
}
