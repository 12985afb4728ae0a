// Package config defines the service configuration and loads it from
// a TOML file layered over defaults.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/ansera/internal/core/domain"
	"github.com/custodia-labs/ansera/internal/logger"
)

// Config is the full service configuration.
type Config struct {
	Server    Server    `toml:"server"`
	Search    Search    `toml:"search"`
	Chunking  Chunking  `toml:"chunking"`
	Sources   Sources   `toml:"sources"`
	Knowledge Knowledge `toml:"knowledge"`
	Storage   Storage   `toml:"storage"`
	Embedding Embedding `toml:"embedding"`
	Extractor Extractor `toml:"extractor"`
	Behavior  Behavior  `toml:"behavior"`
}

// Server configures the HTTP façade.
type Server struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`

	// ChatThreshold is the confidence floor for chat replies; below
	// it the service refetches from external sources.
	ChatThreshold float64 `toml:"chat_threshold"`
}

// Search configures retrieval and extraction.
type Search struct {
	// TopK is how many documents feed the QA context.
	TopK int `toml:"top_k"`

	// MinSimilarity is the cosine floor for retrieval.
	MinSimilarity float64 `toml:"min_similarity"`

	// MinScore is the extraction confidence floor.
	MinScore float64 `toml:"min_score"`

	// MaxAnswerLength caps extracted answers, in characters.
	MaxAnswerLength int `toml:"max_answer_length"`

	// MaxContextChars caps the context passed to the extractor.
	MaxContextChars int `toml:"max_context_chars"`

	// ReplyThreshold is the confidence floor for programmatic replies.
	ReplyThreshold float64 `toml:"reply_threshold"`
}

// Chunking configures document splitting.
type Chunking struct {
	Size    int `toml:"size"`
	Overlap int `toml:"overlap"`
}

// Sources configures the external document sources.
type Sources struct {
	// Default names the sources queried when a caller picks none.
	Default []string `toml:"default"`

	// Limits caps results per source per query.
	Limits map[string]int `toml:"limits"`
}

// Knowledge configures knowledge base building.
type Knowledge struct {
	PreloadTopics  []string `toml:"preload_topics"`
	PreloadSources []string `toml:"preload_sources"`
	AutoPreload    bool     `toml:"auto_preload"`
}

// Storage configures where state lives on disk.
type Storage struct {
	// DataDir holds the index artifacts.
	DataDir string `toml:"data_dir"`

	TrainingFile   string `toml:"training_file"`
	UnansweredFile string `toml:"unanswered_file"`
	MemoryFile     string `toml:"memory_file"`

	// MaxMemoryEntries caps the conversation log.
	MaxMemoryEntries int `toml:"max_memory_entries"`
}

// Embedding selects and configures the embedding backend.
type Embedding struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`

	Model      string `toml:"model"`
	BaseURL    string `toml:"base_url"`
	Dimensions int    `toml:"dimensions"`
}

// Extractor configures the answer-extraction backend.
type Extractor struct {
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// Behavior toggles side effects of answering.
type Behavior struct {
	// FetchNewData lets chat replies pull from external sources.
	FetchNewData bool `toml:"fetch_new_data"`

	// TrackUnanswered records questions the service cannot answer.
	TrackUnanswered bool `toml:"track_unanswered"`

	// SaveConversations appends exchanges to the conversation log.
	SaveConversations bool `toml:"save_conversations"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Server: Server{
			Host:          "0.0.0.0",
			Port:          5000,
			ChatThreshold: 0.35,
		},
		Search: Search{
			TopK:            3,
			MinSimilarity:   0.3,
			MinScore:        0.01,
			MaxAnswerLength: 200,
			MaxContextChars: 4000,
			ReplyThreshold:  0.1,
		},
		Chunking: Chunking{
			Size:    500,
			Overlap: 50,
		},
		Sources: Sources{
			Default: []string{"wikipedia", "stackoverflow"},
			Limits: map[string]int{
				"wikipedia":     3,
				"arxiv":         2,
				"pubmed":        2,
				"stackoverflow": 3,
				"openlibrary":   2,
				"osm":           2,
			},
		},
		Knowledge: Knowledge{
			PreloadTopics: []string{
				"Python programming language",
				"Machine learning basics",
				"Artificial intelligence",
				"Web development",
				"Database management",
				"Computer science fundamentals",
				"Software engineering best practices",
			},
			PreloadSources: []string{"wikipedia", "stackoverflow"},
			AutoPreload:    false,
		},
		Storage: Storage{
			DataDir:          "data",
			TrainingFile:     "data/training_data.json",
			UnansweredFile:   "data/unanswered.json",
			MemoryFile:       "data/memory.json",
			MaxMemoryEntries: 1000,
		},
		Embedding: Embedding{
			Provider: "ollama",
		},
		Extractor: Extractor{},
		Behavior: Behavior{
			FetchNewData:      true,
			TrackUnanswered:   true,
			SaveConversations: true,
		},
	}
}

// Load reads a TOML file over the defaults. A missing file is not an
// error; the defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects configurations the services cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Search.TopK < 1 {
		errs = append(errs, fmt.Errorf("search.top_k must be positive"))
	}
	if c.Search.MinSimilarity < 0 || c.Search.MinSimilarity > 1 {
		errs = append(errs, fmt.Errorf("search.min_similarity must be within [0, 1]"))
	}
	if c.Chunking.Size < 1 {
		errs = append(errs, fmt.Errorf("chunking.size must be positive"))
	}
	if c.Chunking.Overlap < 0 || 2*c.Chunking.Overlap >= c.Chunking.Size {
		errs = append(errs, fmt.Errorf("chunking.overlap must satisfy 2*overlap < size"))
	}
	// Unrecognized source names are dropped everywhere they are
	// parsed, so they only warrant a warning here.
	for _, name := range c.Sources.Default {
		if _, ok := domain.ParseSourceName(name); !ok {
			logger.Warn("Ignoring unknown source %q in sources.default", name)
		}
	}
	switch c.Embedding.Provider {
	case "ollama", "openai":
	default:
		errs = append(errs, fmt.Errorf("embedding.provider must be \"ollama\" or \"openai\""))
	}

	return errors.Join(errs...)
}

// DefaultSourceNames parses the configured default sources.
func (c Config) DefaultSourceNames() []domain.SourceName {
	return domain.ParseSourceNames(c.Sources.Default)
}

// SourceLimits parses the per-source fetch limits.
func (c Config) SourceLimits() map[domain.SourceName]int {
	limits := make(map[domain.SourceName]int, len(c.Sources.Limits))
	for name, limit := range c.Sources.Limits {
		if parsed, ok := domain.ParseSourceName(name); ok {
			limits[parsed] = limit
		}
	}
	return limits
}
