package driven

import "context"

// EmbeddingService turns passage and question text into vectors.
//
// The same model must embed both sides; a snapshot records the model name
// and dimension it was built with. Vectors are returned as the model
// produces them and the services unit-normalise them before indexing or
// searching.
type EmbeddingService interface {
	// Embed returns the vector for one text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	Dimensions() int
	ModelName() string

	// Ping checks the backend is reachable without embedding anything.
	Ping(ctx context.Context) error

	Close() error
}
