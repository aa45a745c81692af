// Package config provides configuration loading and management for
// Specdialog.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/c360studio/specdialog/conversation"
	"github.com/c360studio/specdialog/model"
)

// Config represents the complete Specdialog configuration.
type Config struct {
	NATS    NATSConfig           `yaml:"nats"`
	Session SessionConfig        `yaml:"session"`
	Models  model.RegistryConfig `yaml:"models"`
	Phases  PhaseConfig          `yaml:"phases"`
	Extract ExtractConfig        `yaml:"extract"`
	Diagram DiagramConfig        `yaml:"diagram"`
	Notes   NotesConfig          `yaml:"notes"`
}

// NATSConfig configures the NATS connection.
type NATSConfig struct {
	// URL is the NATS server URL (empty = no graph publishing or
	// durable session storage).
	URL string `yaml:"url"`
}

// SessionConfig configures discovery session lifecycle.
type SessionConfig struct {
	// IdleTimeout is how long a session may sit untouched before the
	// sweeper destroys it.
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// PhaseConfig configures the conversation phase machine.
type PhaseConfig struct {
	Thresholds conversation.Thresholds `yaml:"thresholds"`
	// Keywords maps phase names to trigger words that force a
	// transition regardless of counts.
	Keywords map[string][]string `yaml:"keywords"`
}

// ExtractConfig configures the pattern extractors.
type ExtractConfig struct {
	// MinConfidence drops extracted items scoring below it.
	MinConfidence float64 `yaml:"min_confidence"`
	// VagueWords override the built-in vague-language lexicon when set.
	VagueWords []string `yaml:"vague_words"`
	// UntestablePhrases override the built-in untestable-outcome
	// lexicon when set.
	UntestablePhrases []string `yaml:"untestable_phrases"`
}

// DiagramConfig configures diagram layout defaults.
type DiagramConfig struct {
	// Spacing is the default node spacing in pixels.
	Spacing float64 `yaml:"spacing"`
	// GridColumns is the column count for the grid layout.
	GridColumns int `yaml:"grid_columns"`
}

// NotesConfig configures the notes-ingester file watcher.
type NotesConfig struct {
	// Dir is the directory to watch for design notes (empty = disabled).
	Dir string `yaml:"dir"`
	// Patterns are doublestar globs selecting which files to ingest.
	Patterns []string `yaml:"patterns"`
	// Debounce is the quiet period before a changed file is processed.
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		NATS: NATSConfig{
			URL: "",
		},
		Session: SessionConfig{
			IdleTimeout: 30 * time.Minute,
		},
		Models: model.RegistryConfig{},
		Phases: PhaseConfig{
			Thresholds: conversation.DefaultThresholds(),
			Keywords:   nil,
		},
		Extract: ExtractConfig{
			MinConfidence: 0.3,
		},
		Diagram: DiagramConfig{
			Spacing:     150,
			GridColumns: 4,
		},
		Notes: NotesConfig{
			Patterns: []string{"**/*.md", "**/*.txt", "**/*.html"},
			Debounce: 500 * time.Millisecond,
		},
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Session.IdleTimeout < 0 {
		return fmt.Errorf("session.idle_timeout must not be negative")
	}
	if c.Extract.MinConfidence < 0 || c.Extract.MinConfidence > 1 {
		return fmt.Errorf("extract.min_confidence must be between 0 and 1")
	}
	if c.Diagram.Spacing <= 0 {
		return fmt.Errorf("diagram.spacing must be positive")
	}
	if c.Diagram.GridColumns < 1 {
		return fmt.Errorf("diagram.grid_columns must be at least 1")
	}
	if c.Notes.Debounce < 0 {
		return fmt.Errorf("notes.debounce must not be negative")
	}
	return nil
}

// PhaseKeywords converts the YAML keyword map into the phase machine's
// typed form. Unknown phase names are dropped. Returns nil when no
// keywords are configured so the machine falls back to its defaults.
func (c *Config) PhaseKeywords() map[conversation.Phase][]string {
	if len(c.Phases.Keywords) == 0 {
		return nil
	}
	keywords := make(map[conversation.Phase][]string, len(c.Phases.Keywords))
	for name, words := range c.Phases.Keywords {
		phase := conversation.Phase(name)
		if !phase.IsValid() {
			continue
		}
		keywords[phase] = words
	}
	return keywords
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence
// for non-zero values).
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}

	if other.Session.IdleTimeout != 0 {
		c.Session.IdleTimeout = other.Session.IdleTimeout
	}

	if len(other.Models.Capabilities) > 0 || len(other.Models.Endpoints) > 0 || other.Models.Defaults != nil {
		mergeRegistryConfig(&c.Models, &other.Models)
	}

	if other.Phases.Thresholds != (conversation.Thresholds{}) {
		c.Phases.Thresholds = other.Phases.Thresholds
	}
	if len(other.Phases.Keywords) > 0 {
		c.Phases.Keywords = other.Phases.Keywords
	}

	if other.Extract.MinConfidence != 0 {
		c.Extract.MinConfidence = other.Extract.MinConfidence
	}
	if len(other.Extract.VagueWords) > 0 {
		c.Extract.VagueWords = other.Extract.VagueWords
	}
	if len(other.Extract.UntestablePhrases) > 0 {
		c.Extract.UntestablePhrases = other.Extract.UntestablePhrases
	}

	if other.Diagram.Spacing != 0 {
		c.Diagram.Spacing = other.Diagram.Spacing
	}
	if other.Diagram.GridColumns != 0 {
		c.Diagram.GridColumns = other.Diagram.GridColumns
	}

	if other.Notes.Dir != "" {
		c.Notes.Dir = other.Notes.Dir
	}
	if len(other.Notes.Patterns) > 0 {
		c.Notes.Patterns = other.Notes.Patterns
	}
	if other.Notes.Debounce != 0 {
		c.Notes.Debounce = other.Notes.Debounce
	}
}

func mergeRegistryConfig(dst, src *model.RegistryConfig) {
	if len(src.Capabilities) > 0 {
		if dst.Capabilities == nil {
			dst.Capabilities = make(map[string]*model.CapabilityConfig, len(src.Capabilities))
		}
		for k, v := range src.Capabilities {
			dst.Capabilities[k] = v
		}
	}
	if len(src.Endpoints) > 0 {
		if dst.Endpoints == nil {
			dst.Endpoints = make(map[string]*model.EndpointConfig, len(src.Endpoints))
		}
		for k, v := range src.Endpoints {
			dst.Endpoints[k] = v
		}
	}
	if src.Defaults != nil {
		dst.Defaults = src.Defaults
	}
}
