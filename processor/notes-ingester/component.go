// Package notesingester watches a design-notes directory and runs the
// stateless extractors over changed documents, publishing discovered
// entities, scenarios, and constraints to the knowledge graph.
package notesingester

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/specdialog/extract"
	"github.com/c360studio/specdialog/graph"
	"github.com/c360studio/specdialog/scenario"
	"github.com/c360studio/specdialog/source"
)

// Component implements the notes-ingester processor.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	converter   *source.Converter
	entities    *extract.EntityExtractor
	constraints *extract.ConstraintExtractor
	scenarios   *scenario.Builder
	watcher     *NotesWatcher

	// Lifecycle management
	running   bool
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc

	// Metrics
	notesIngested  atomic.Int64
	itemsPublished atomic.Int64
	errors         atomic.Int64
	lastActivityMu sync.RWMutex
	lastActivity   time.Time
}

// NewComponent creates a new notes-ingester processor component.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	config := DefaultConfig()
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := deps.GetLogger()

	return &Component{
		name:        "notes-ingester",
		config:      config,
		natsClient:  deps.NATSClient,
		logger:      logger,
		converter:   source.NewConverter(),
		entities:    extract.NewEntityExtractor(logger, config.extractOptions()...),
		constraints: extract.NewConstraintExtractor(logger, config.extractOptions()...),
		scenarios:   scenario.NewBuilder(logger),
	}, nil
}

// Initialize prepares the component.
func (c *Component) Initialize() error {
	return nil
}

// Start begins watching the notes directory. A missing NATS client is
// tolerated; extraction still runs but nothing reaches the graph.
func (c *Component) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("component already running")
	}
	c.running = true
	c.startTime = time.Now()
	c.mu.Unlock()

	if c.natsClient == nil {
		c.logger.Warn("No NATS client, notes will be extracted but not published")
	}

	watcher, err := NewNotesWatcher(c.config, c.logger)
	if err != nil {
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		return fmt.Errorf("create notes watcher: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	c.watcher = watcher
	c.cancel = cancel
	c.mu.Unlock()

	if err := watcher.Start(runCtx); err != nil {
		cancel()
		c.mu.Lock()
		c.running = false
		c.mu.Unlock()
		return fmt.Errorf("start notes watcher: %w", err)
	}

	go c.consumeEvents(runCtx, watcher)

	c.logger.Info("Notes ingester started",
		"notes_dir", c.config.NotesDir,
		"patterns", c.config.patterns())
	return nil
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	watcher := c.watcher
	cancel := c.cancel
	c.watcher = nil
	c.cancel = nil
	c.mu.Unlock()

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			c.logger.Warn("Watcher stop failed", "error", err)
		}
	}
	if cancel != nil {
		cancel()
	}

	c.logger.Info("Notes ingester stopped")
	return nil
}

// consumeEvents ingests changed files until the watcher closes.
func (c *Component) consumeEvents(ctx context.Context, watcher *NotesWatcher) {
	for event := range watcher.Events() {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if event.Operation == WatchOpDelete {
			c.logger.Debug("Note removed", "path", event.Path)
			continue
		}

		if err := c.ingestFile(ctx, event.AbsPath, event.Path); err != nil {
			c.errors.Add(1)
			c.logger.Error("Note ingestion failed",
				"path", event.Path,
				"error", err)
		}
	}
}

// ingestFile runs the extraction pipeline over one note file and
// publishes the results to the knowledge graph.
func (c *Component) ingestFile(ctx context.Context, absPath, relPath string) error {
	content, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("read note: %w", err)
	}

	doc, err := c.converter.ExtractText(content, relPath)
	if err != nil {
		return fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(doc.Text) == "" {
		c.logger.Debug("Note has no readable text", "path", relPath)
		return nil
	}

	entities := c.entities.Extract(doc.Text, "")
	names := make([]string, 0, len(entities))
	for _, e := range entities {
		names = append(names, e.Name)
	}
	scenarios := c.scenarios.Extract(doc.Text, names)
	constraints := c.constraints.Extract(doc.Text)

	c.notesIngested.Add(1)
	c.touchActivity()

	c.logger.Info("Note ingested",
		"path", relPath,
		"title", doc.Title,
		"entities", len(entities),
		"scenarios", len(scenarios),
		"constraints", len(constraints))

	if c.natsClient == nil {
		return nil
	}

	noteID := noteSessionID(relPath)
	for i := range entities {
		if err := graph.PublishEntity(ctx, c.natsClient, noteID, &entities[i]); err != nil {
			return fmt.Errorf("publish entity: %w", err)
		}
		c.itemsPublished.Add(1)
	}
	for i := range scenarios {
		if err := graph.PublishScenario(ctx, c.natsClient, noteID, &scenarios[i]); err != nil {
			return fmt.Errorf("publish scenario: %w", err)
		}
		c.itemsPublished.Add(1)
	}
	for i := range constraints {
		if err := graph.PublishConstraint(ctx, c.natsClient, noteID, &constraints[i]); err != nil {
			return fmt.Errorf("publish constraint: %w", err)
		}
		c.itemsPublished.Add(1)
	}

	return nil
}

// noteSessionID derives a stable session-less record id from the note's
// relative path.
func noteSessionID(relPath string) string {
	slug := strings.ToLower(filepath.ToSlash(relPath))
	slug = strings.TrimSuffix(slug, filepath.Ext(slug))
	slug = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' {
			return r
		}
		return '-'
	}, slug)
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	slug = strings.Trim(slug, "-")
	return "notes-" + slug
}

func (c *Component) touchActivity() {
	c.lastActivityMu.Lock()
	c.lastActivity = time.Now()
	c.lastActivityMu.Unlock()
}

func (c *Component) getLastActivity() time.Time {
	c.lastActivityMu.RLock()
	defer c.lastActivityMu.RUnlock()
	return c.lastActivity
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "notes-ingester",
		Type:        "processor",
		Description: "Design-notes watcher feeding bulk extraction into the knowledge graph",
		Version:     "0.1.0",
	}
}

// InputPorts returns an empty port list; input arrives from the
// filesystem, not NATS.
func (c *Component) InputPorts() []component.Port {
	return []component.Port{}
}

// OutputPorts returns an empty port list. Graph publishing goes straight
// to the ingest stream rather than through a declared port.
func (c *Component) OutputPorts() []component.Port {
	return []component.Port{}
}

// ConfigSchema returns the configuration schema.
func (c *Component) ConfigSchema() component.ConfigSchema {
	return notesIngesterSchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	c.mu.RLock()
	running := c.running
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	if running {
		status = "running"
	}

	return component.HealthStatus{
		Healthy:    running,
		LastCheck:  time.Now(),
		ErrorCount: int(c.errors.Load()),
		Uptime:     time.Since(startTime),
		Status:     status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{
		MessagesPerSecond: 0,
		BytesPerSecond:    0,
		ErrorRate:         0,
		LastActivity:      c.getLastActivity(),
	}
}
