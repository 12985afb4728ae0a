package domain

// SourceRef is the provenance of one retrieved document as reported
// in an answer result.
type SourceRef struct {
	// Source is the provenance label of the retrieved document.
	Source string `json:"source"`

	// URL is the provenance link, empty if unavailable.
	URL string `json:"url"`

	// Relevance is the retrieval similarity score for this document.
	Relevance float64 `json:"relevance"`
}

// AnswerResult is the outcome of one answer pipeline run.
type AnswerResult struct {
	// Answer is the extracted literal answer span, empty when no
	// confident answer was found.
	Answer string `json:"answer,omitempty"`

	// Score is the extraction confidence, 0 when Answer is empty.
	Score float64 `json:"score"`

	// Sources lists the provenance of every retrieved document, in
	// retrieval order. When a per-document fallback produced the
	// answer, the list still covers all retrieved documents.
	Sources []SourceRef `json:"sources"`

	// Context is the combined retrieval context, truncated for
	// display at 500 characters with a trailing ellipsis.
	Context string `json:"context"`

	// Message carries a user-facing explanation when no answer was
	// extracted, empty otherwise.
	Message string `json:"message,omitempty"`
}

// Answered reports whether the pipeline extracted an answer.
func (r *AnswerResult) Answered() bool {
	return r.Answer != ""
}

// User-visible fallback messages. Internal errors are never exposed
// to the end user.
const (
	// MsgNoInformation is returned when retrieval finds nothing.
	MsgNoInformation = "I could not find reliable information on this topic in my sources."

	// MsgNoClearAnswer is returned when retrieval found context but
	// extraction produced no confident span.
	MsgNoClearAnswer = "I could not find a clear answer in my sources, but I found some relevant information."
)
