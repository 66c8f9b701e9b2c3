package ai

import (
	"context"
	"errors"
	"strings"
)

// TaskType tells providers that distinguish document and query embeddings
// which side of a retrieval the text is on.
type TaskType string

const (
	TaskRetrievalDocument TaskType = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    TaskType = "RETRIEVAL_QUERY"
)

var (
	// ErrEmptyInput is returned for blank input text.
	ErrEmptyInput = errors.New("empty embedding input")
	// ErrEmptyEmbedding is returned when a provider answers without a vector.
	ErrEmptyEmbedding = errors.New("provider returned no embedding")
)

// EmbeddingClient wraps an external text embedding service.
//
// A failed call returns an error and never terminates the process. Clients do
// not retry; pacing and failure handling belong to the caller.
type EmbeddingClient interface {
	GenerateEmbedding(ctx context.Context, input []byte, opts ...EmbedOption) ([]float32, error)
	Model() string
}

// EmbedOptions holds per request settings.
type EmbedOptions struct {
	TaskType   TaskType
	Dimensions int
}

// EmbedOption is a functional option for embedding requests.
type EmbedOption func(*EmbedOptions)

// WithTaskType sets the retrieval task type. Providers without task types
// ignore it.
func WithTaskType(t TaskType) EmbedOption {
	return func(o *EmbedOptions) {
		o.TaskType = t
	}
}

// WithDimensions asks the provider to shorten the output vector. Zero keeps
// the model default.
func WithDimensions(n int) EmbedOption {
	return func(o *EmbedOptions) {
		o.Dimensions = n
	}
}

// ApplyOptions resolves options on top of the defaults.
func ApplyOptions(opts ...EmbedOption) EmbedOptions {
	o := EmbedOptions{TaskType: TaskRetrievalDocument}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// CheckInput rejects blank input before a request is made.
func CheckInput(input []byte) error {
	if len(strings.TrimSpace(string(input))) == 0 {
		return ErrEmptyInput
	}
	return nil
}
