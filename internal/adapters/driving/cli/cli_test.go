package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/ansera/internal/config"
	"github.com/custodia-labs/ansera/internal/core/domain"
)

func mustSource(t *testing.T, name string) domain.SourceName {
	t.Helper()
	s, ok := domain.ParseSourceName(name)
	require.True(t, ok, name)
	return s
}

func TestVersionCmd_Use(t *testing.T) {
	assert.Equal(t, "version", versionCmd.Use)
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	version = "test-version-1.0.0"
	defer func() { version = originalVersion }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"version"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "ansera version test-version-1.0.0")
}

func TestAskCmd_RequiresQuestion(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ask"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 1 arg(s)")
}

func TestAskCmd_Flags(t *testing.T) {
	fetch := askCmd.Flags().Lookup("fetch")
	require.NotNil(t, fetch)
	assert.Equal(t, "false", fetch.DefValue)

	sources := askCmd.Flags().Lookup("sources")
	require.NotNil(t, sources)

	jsonFlag := askCmd.Flags().Lookup("json")
	require.NotNil(t, jsonFlag)
}

func TestServeCmd_WatchFlagDefaultsOn(t *testing.T) {
	flag := serveCmd.Flags().Lookup("watch")
	require.NotNil(t, flag)
	assert.Equal(t, "true", flag.DefValue)
}

func TestFetchCmd_RequiresTopics(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"fetch"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
}

func TestTrainAddCmd_RequiresBothArgs(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"train", "add", "only-question"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 2 arg(s)")
}

func TestBuildApp_DefaultConfig(t *testing.T) {
	c := config.Default()
	c.Storage.DataDir = t.TempDir()

	a, err := buildApp(c)
	require.NoError(t, err)
	defer a.Close()

	assert.NotNil(t, a.index)
	assert.NotNil(t, a.qa)
	assert.NotNil(t, a.knowledge)

	// All six sources are registered.
	for _, name := range []string{"wikipedia", "arxiv", "pubmed", "stackoverflow", "openlibrary", "osm"} {
		assert.True(t, a.aggregator.Registered(mustSource(t, name)), name)
	}
}

func TestBuildApp_UnknownEmbeddingProvider(t *testing.T) {
	c := config.Default()
	c.Embedding.Provider = "singularity"

	_, err := buildApp(c)
	assert.Error(t, err)
}
