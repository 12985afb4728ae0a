package journal

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/ansera/internal/core/domain"
)

// TrainingLog persists the curated question/answer pairs the index is
// trained from.
type TrainingLog struct {
	file listFile[domain.TrainingPair]
}

func NewTrainingLog(path string) *TrainingLog {
	return &TrainingLog{file: listFile[domain.TrainingPair]{path: path}}
}

// Add appends a pair. Blank inputs or outputs are rejected.
func (l *TrainingLog) Add(pair domain.TrainingPair) error {
	pair.Input = strings.TrimSpace(pair.Input)
	pair.Output = strings.TrimSpace(pair.Output)
	if pair.Input == "" || pair.Output == "" {
		return fmt.Errorf("training pair: %w", domain.ErrInvalidInput)
	}
	return l.file.update(func(pairs []domain.TrainingPair) ([]domain.TrainingPair, error) {
		return append(pairs, pair), nil
	})
}

// List returns all stored pairs in insertion order.
func (l *TrainingLog) List() []domain.TrainingPair {
	return l.file.list()
}

// Remove deletes the pair at the given zero-based position.
func (l *TrainingLog) Remove(i int) error {
	return l.file.update(func(pairs []domain.TrainingPair) ([]domain.TrainingPair, error) {
		if i < 0 || i >= len(pairs) {
			return nil, fmt.Errorf("training pair index %d out of range: %w", i, domain.ErrInvalidInput)
		}
		return append(pairs[:i], pairs[i+1:]...), nil
	})
}

// UnansweredLog records questions the service could not answer, so an
// operator can later supply answers for them.
type UnansweredLog struct {
	file listFile[domain.UnansweredQuestion]
}

func NewUnansweredLog(path string) *UnansweredLog {
	return &UnansweredLog{file: listFile[domain.UnansweredQuestion]{path: path}}
}

func (l *UnansweredLog) Add(input string) error {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil
	}
	return l.file.update(func(items []domain.UnansweredQuestion) ([]domain.UnansweredQuestion, error) {
		return append(items, domain.UnansweredQuestion{Input: input}), nil
	})
}

func (l *UnansweredLog) List() []domain.UnansweredQuestion {
	return l.file.list()
}

// RemoveMatching drops every entry whose input equals the given text,
// typically called once an answer has been supplied for it.
func (l *UnansweredLog) RemoveMatching(input string) error {
	return l.file.update(func(items []domain.UnansweredQuestion) ([]domain.UnansweredQuestion, error) {
		kept := items[:0]
		for _, it := range items {
			if it.Input != input {
				kept = append(kept, it)
			}
		}
		return kept, nil
	})
}

// ConversationLog keeps a bounded rolling history of exchanges.
type ConversationLog struct {
	file       listFile[domain.ConversationEntry]
	maxEntries int
}

func NewConversationLog(path string, maxEntries int) *ConversationLog {
	return &ConversationLog{
		file:       listFile[domain.ConversationEntry]{path: path},
		maxEntries: maxEntries,
	}
}

// Append records one exchange, assigning it a fresh ID and discarding
// the oldest entries beyond the configured cap.
func (l *ConversationLog) Append(input, output string) error {
	entry := domain.ConversationEntry{
		ID:     uuid.NewString(),
		Input:  input,
		Output: output,
	}
	return l.file.update(func(entries []domain.ConversationEntry) ([]domain.ConversationEntry, error) {
		entries = append(entries, entry)
		if l.maxEntries > 0 && len(entries) > l.maxEntries {
			entries = entries[len(entries)-l.maxEntries:]
		}
		return entries, nil
	})
}

func (l *ConversationLog) List() []domain.ConversationEntry {
	return l.file.list()
}
