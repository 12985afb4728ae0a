package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ansera/internal/core/domain"
)

func TestTrainingLog_AddAndList(t *testing.T) {
	log := NewTrainingLog(filepath.Join(t.TempDir(), "training_data.json"))

	require.NoError(t, log.Add(domain.TrainingPair{Input: "what is go", Output: "A programming language."}))
	require.NoError(t, log.Add(domain.TrainingPair{Input: "  what is rust  ", Output: "Another one."}))

	pairs := log.List()
	require.Len(t, pairs, 2)
	assert.Equal(t, "what is go", pairs[0].Input)
	assert.Equal(t, "what is rust", pairs[1].Input)
}

func TestTrainingLog_RejectsBlankPairs(t *testing.T) {
	log := NewTrainingLog(filepath.Join(t.TempDir(), "training_data.json"))

	err := log.Add(domain.TrainingPair{Input: "   ", Output: "answer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = log.Add(domain.TrainingPair{Input: "question", Output: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Empty(t, log.List())
}

func TestTrainingLog_Remove(t *testing.T) {
	log := NewTrainingLog(filepath.Join(t.TempDir(), "training_data.json"))

	require.NoError(t, log.Add(domain.TrainingPair{Input: "a", Output: "1"}))
	require.NoError(t, log.Add(domain.TrainingPair{Input: "b", Output: "2"}))

	require.NoError(t, log.Remove(0))
	pairs := log.List()
	require.Len(t, pairs, 1)
	assert.Equal(t, "b", pairs[0].Input)

	assert.ErrorIs(t, log.Remove(5), domain.ErrInvalidInput)
	assert.ErrorIs(t, log.Remove(-1), domain.ErrInvalidInput)
}

func TestTrainingLog_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "training_data.json")

	log := NewTrainingLog(path)
	require.NoError(t, log.Add(domain.TrainingPair{Input: "persist", Output: "me"}))

	reopened := NewTrainingLog(path)
	pairs := reopened.List()
	require.Len(t, pairs, 1)
	assert.Equal(t, "persist", pairs[0].Input)
}

func TestTrainingLog_CorruptFileReadsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "training_data.json")
	require.NoError(t, os.WriteFile(path, []byte("{oops"), 0o644))

	log := NewTrainingLog(path)
	assert.Empty(t, log.List())

	require.NoError(t, log.Add(domain.TrainingPair{Input: "fresh", Output: "start"}))
	assert.Len(t, log.List(), 1)
}

func TestUnansweredLog_AddListRemove(t *testing.T) {
	log := NewUnansweredLog(filepath.Join(t.TempDir(), "unanswered.json"))

	require.NoError(t, log.Add("what is entropy"))
	require.NoError(t, log.Add("what is entropy"))
	require.NoError(t, log.Add("who wrote hamlet"))
	require.NoError(t, log.Add("   "))

	require.Len(t, log.List(), 3)

	require.NoError(t, log.RemoveMatching("what is entropy"))
	items := log.List()
	require.Len(t, items, 1)
	assert.Equal(t, "who wrote hamlet", items[0].Input)
}

func TestConversationLog_AppendAssignsIDs(t *testing.T) {
	log := NewConversationLog(filepath.Join(t.TempDir(), "memory.json"), 10)

	require.NoError(t, log.Append("hi", "hello"))
	require.NoError(t, log.Append("bye", "goodbye"))

	entries := log.List()
	require.Len(t, entries, 2)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEqual(t, entries[0].ID, entries[1].ID)
	assert.Equal(t, "hi", entries[0].Input)
}

func TestConversationLog_EnforcesCap(t *testing.T) {
	log := NewConversationLog(filepath.Join(t.TempDir(), "memory.json"), 3)

	for i := 0; i < 5; i++ {
		require.NoError(t, log.Append(fmt.Sprintf("q%d", i), "a"))
	}

	entries := log.List()
	require.Len(t, entries, 3)
	assert.Equal(t, "q2", entries[0].Input)
	assert.Equal(t, "q4", entries[2].Input)
}
