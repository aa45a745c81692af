package builderapi

import (
	"fmt"
	"reflect"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/specdialog/conversation"
	"github.com/c360studio/specdialog/diagram"
	"github.com/c360studio/specdialog/extract"
	"github.com/c360studio/specdialog/scenario"
)

// builderAPISchema holds the configuration schema generated from Config.
var builderAPISchema = component.GenerateConfigSchema(reflect.TypeOf(Config{}))

// Default timing values, used when the corresponding field is empty.
const (
	defaultIdleTimeout   = 30 * time.Minute
	defaultReplyTimeout  = 30 * time.Second
	defaultSweepInterval = time.Minute
)

// Config holds configuration for the builder-api component.
type Config struct {
	// IdleTimeout is how long a session may sit untouched before the
	// sweeper destroys it, as a Go duration string.
	IdleTimeout string `json:"idle_timeout" schema:"type:string,description:Session idle timeout,category:basic,default:30m"`

	// ReplyTimeout bounds each LLM reply call, as a Go duration string.
	ReplyTimeout string `json:"reply_timeout" schema:"type:string,description:LLM reply timeout,category:basic,default:30s"`

	// SweepInterval is how often idle sessions are swept, as a Go
	// duration string.
	SweepInterval string `json:"sweep_interval" schema:"type:string,description:Idle session sweep interval,category:advanced,default:1m"`

	// Thresholds override the phase transition counts. Zero values fall
	// back to the defaults.
	Thresholds conversation.Thresholds `json:"thresholds,omitempty" schema:"type:object,description:Phase transition thresholds,category:advanced"`

	// PhaseKeywords override the keyword triggers per phase name.
	PhaseKeywords map[string][]string `json:"phase_keywords,omitempty" schema:"type:object,description:Phase trigger keywords,category:advanced"`

	// MinConfidence drops extraction results scored below it. Zero keeps
	// everything.
	MinConfidence float64 `json:"min_confidence,omitempty" schema:"type:number,description:Minimum extraction confidence,category:advanced"`

	// VagueWords override the vague-language lexicon used in scenario
	// scoring and validation.
	VagueWords []string `json:"vague_words,omitempty" schema:"type:array,description:Vague language lexicon,category:advanced"`

	// UntestablePhrases override the untestable-outcome lexicon used in
	// scenario validation.
	UntestablePhrases []string `json:"untestable_phrases,omitempty" schema:"type:array,description:Untestable outcome lexicon,category:advanced"`

	// DiagramSpacing overrides the node spacing for generated diagrams.
	DiagramSpacing float64 `json:"diagram_spacing,omitempty" schema:"type:number,description:Diagram node spacing,category:advanced"`

	// GridColumns sets the column count for grid diagram layouts.
	GridColumns int `json:"grid_columns,omitempty" schema:"type:integer,description:Grid layout columns,category:advanced"`

	// Ports declares optional HTTP port configuration.
	Ports *component.PortConfig `json:"ports,omitempty" schema:"type:ports,description:Port configuration,category:basic"`
}

// DefaultConfig returns sensible default configuration.
func DefaultConfig() Config {
	return Config{}
}

// Validate verifies the configuration is consistent.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"idle_timeout":   c.IdleTimeout,
		"reply_timeout":  c.ReplyTimeout,
		"sweep_interval": c.SweepInterval,
	} {
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return fmt.Errorf("min_confidence must be between 0 and 1, got %v", c.MinConfidence)
	}
	if c.DiagramSpacing < 0 {
		return fmt.Errorf("diagram_spacing must not be negative, got %v", c.DiagramSpacing)
	}
	if c.GridColumns < 0 {
		return fmt.Errorf("grid_columns must not be negative, got %d", c.GridColumns)
	}
	return nil
}

func (c *Config) idleTimeout() time.Duration {
	return durationOr(c.IdleTimeout, defaultIdleTimeout)
}

func (c *Config) replyTimeout() time.Duration {
	return durationOr(c.ReplyTimeout, defaultReplyTimeout)
}

func (c *Config) sweepInterval() time.Duration {
	return durationOr(c.SweepInterval, defaultSweepInterval)
}

// phaseKeywords converts the configured keyword map to phase keys,
// dropping names that are not valid phases. Returns nil when nothing is
// configured so the phase machine keeps its defaults.
func (c *Config) phaseKeywords() map[conversation.Phase][]string {
	if len(c.PhaseKeywords) == 0 {
		return nil
	}
	out := make(map[conversation.Phase][]string, len(c.PhaseKeywords))
	for name, words := range c.PhaseKeywords {
		p := conversation.Phase(name)
		if !p.IsValid() {
			continue
		}
		out[p] = words
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// extractOptions returns the extractor tuning derived from config.
func (c *Config) extractOptions() []extract.Option {
	if c.MinConfidence <= 0 {
		return nil
	}
	return []extract.Option{extract.WithMinConfidence(c.MinConfidence)}
}

// scenarioOptions returns the builder lexicon overrides.
func (c *Config) scenarioOptions() []scenario.Option {
	var opts []scenario.Option
	if len(c.VagueWords) > 0 {
		opts = append(opts, scenario.WithVagueWords(c.VagueWords))
	}
	if len(c.UntestablePhrases) > 0 {
		opts = append(opts, scenario.WithUntestablePhrases(c.UntestablePhrases))
	}
	return opts
}

// diagramOptions returns the synthesizer geometry overrides.
func (c *Config) diagramOptions() []diagram.Option {
	var opts []diagram.Option
	if c.DiagramSpacing > 0 {
		opts = append(opts, diagram.WithSpacing(c.DiagramSpacing))
	}
	if c.GridColumns > 0 {
		opts = append(opts, diagram.WithGridColumns(c.GridColumns))
	}
	return opts
}

// durationOr parses v, falling back for empty or invalid values.
// Validate has already rejected invalid config; the fallback guards
// direct struct construction in tests.
func durationOr(v string, fallback time.Duration) time.Duration {
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
