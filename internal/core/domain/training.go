package domain

// TrainingSource is the provenance label attached to records built
// from curated training pairs.
const TrainingSource = "Custom Training Data"

// TrainingPair is a curated question/answer ground-truth pair. At
// train time every pair becomes an unchunked DocumentRecord with
// Source set to TrainingSource.
type TrainingPair struct {
	Input  string `json:"input"`
	Output string `json:"output"`
}

// Record converts the pair into an indexable document. The answer is
// short enough to stand as a single unit, so it is never chunked.
func (p TrainingPair) Record() RawDocument {
	return RawDocument{
		Title:  p.Input,
		Text:   p.Output,
		Source: TrainingSource,
		URL:    "",
	}
}

// UnansweredQuestion logs a question that produced no confident
// answer. Entries are removed by exact input match once a matching
// training pair is supplied.
type UnansweredQuestion struct {
	Input string `json:"input"`
}

// ConversationEntry is one logged interaction. The log is write-only
// from the core's perspective and never read back into the index.
type ConversationEntry struct {
	// ID is a unique identifier assigned when the entry is logged.
	ID string `json:"id"`

	Input  string `json:"input"`
	Output string `json:"output"`
}
