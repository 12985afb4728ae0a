package driven

import "context"

// Extraction is the raw outcome of one extractive QA call.
type Extraction struct {
	// Answer is the extracted span, empty when NoAnswer is set.
	Answer string

	// Score is the model confidence for the span.
	Score float64

	// NoAnswer reports that the model judged the question impossible
	// to answer from the context. This is a first-class outcome,
	// distinct from a low-confidence answer.
	NoAnswer bool
}

// AnswerExtractor extracts a literal answer span for a question from
// a context passage.
//
// Implementations may include:
//   - Hugging Face inference API (deepset/roberta-base-squad2)
//   - Local extractive QA servers with a compatible contract
type AnswerExtractor interface {
	// Extract returns the best answer span for the question within
	// the passage. maxAnswerLength bounds the span in characters.
	Extract(ctx context.Context, question, passage string, maxAnswerLength int) (Extraction, error)

	// ModelName returns the name of the extraction model being used.
	ModelName() string

	// Close releases resources.
	Close() error
}
