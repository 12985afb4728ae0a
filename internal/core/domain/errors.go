package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRetrainInProgress indicates a knowledge base rebuild is
	// already running. Not a failure: callers report "not started"
	// instead of queuing a second job.
	ErrRetrainInProgress = errors.New("retrain in progress")

	// ErrCorruptIndex indicates the persisted document list and
	// embedding matrix disagree. The index resets to empty rather
	// than attempting partial repair.
	ErrCorruptIndex = errors.New("corrupt index state")

	// ErrEmbeddingUnavailable indicates the embedding service is not
	// configured. The index cannot add or search without it.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrExtractorUnavailable indicates the answer extraction service
	// is not configured.
	ErrExtractorUnavailable = errors.New("answer extractor unavailable")

	// ErrSourceUnavailable indicates a knowledge source fetcher
	// failed or is not registered. Aggregation degrades to empty
	// results for that source.
	ErrSourceUnavailable = errors.New("knowledge source unavailable")
)
