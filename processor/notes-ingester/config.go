package notesingester

import (
	"fmt"
	"reflect"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/specdialog/extract"
)

// notesIngesterSchema defines the configuration schema.
var notesIngesterSchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Config holds configuration for the notes-ingester processor component.
type Config struct {
	Ports *component.PortConfig `json:"ports,omitempty" schema:"type:ports,description:Port configuration,category:basic"`

	// NotesDir is the directory watched for design notes.
	NotesDir string `json:"notes_dir" schema:"type:string,description:Directory watched for design notes,category:basic,default:notes"`

	// Patterns are doublestar globs selecting which files to ingest,
	// relative to NotesDir.
	Patterns []string `json:"patterns" schema:"type:array,description:Glob patterns for files to ingest,category:basic,default:[**/*.md,**/*.txt,**/*.html]"`

	// DebounceDelay is how long to wait for more changes before
	// processing, as a Go duration string.
	DebounceDelay string `json:"debounce_delay" schema:"type:string,description:Debounce delay before processing file changes,category:advanced,default:500ms"`

	// ExcludeDirs lists directory names to skip.
	ExcludeDirs []string `json:"exclude_dirs" schema:"type:array,description:Directory names to exclude from watching,category:advanced,default:[.git,node_modules,vendor]"`

	// MinConfidence drops extraction results scored below it. Zero keeps
	// everything.
	MinConfidence float64 `json:"min_confidence,omitempty" schema:"type:number,description:Minimum extraction confidence,category:advanced"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{
		NotesDir:      "notes",
		Patterns:      []string{"**/*.md", "**/*.txt", "**/*.html"},
		DebounceDelay: "500ms",
		ExcludeDirs:   []string{".git", "node_modules", "vendor"},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.NotesDir == "" {
		return fmt.Errorf("notes_dir is required")
	}
	for _, p := range c.Patterns {
		if !doublestar.ValidatePattern(p) {
			return fmt.Errorf("invalid glob pattern %q", p)
		}
	}
	if c.DebounceDelay != "" {
		if _, err := time.ParseDuration(c.DebounceDelay); err != nil {
			return fmt.Errorf("invalid debounce_delay format: %w", err)
		}
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be between 0 and 1, got %v", c.MinConfidence)
	}
	return nil
}

// extractOptions returns the extractor tuning derived from config.
func (c *Config) extractOptions() []extract.Option {
	if c.MinConfidence <= 0 {
		return nil
	}
	return []extract.Option{extract.WithMinConfidence(c.MinConfidence)}
}

// GetDebounceDelay returns the debounce delay as a duration.
func (c *Config) GetDebounceDelay() time.Duration {
	if c.DebounceDelay == "" {
		return 500 * time.Millisecond
	}
	d, err := time.ParseDuration(c.DebounceDelay)
	if err != nil {
		return 500 * time.Millisecond
	}
	return d
}

// patterns returns the configured globs, defaulting when empty.
func (c *Config) patterns() []string {
	if len(c.Patterns) == 0 {
		return []string{"**/*.md", "**/*.txt", "**/*.html"}
	}
	return c.Patterns
}

// excludeDirs returns the configured exclusions, defaulting when empty.
func (c *Config) excludeDirs() []string {
	if len(c.ExcludeDirs) == 0 {
		return []string{".git", "node_modules", "vendor"}
	}
	return c.ExcludeDirs
}
