// Package builderapi provides the HTTP endpoints of the specification
// discovery engine: session state, message processing, stateless scenario
// extraction, and diagram synthesis.
package builderapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360studio/semstreams/component"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/specdialog/conversation"
	"github.com/c360studio/specdialog/diagram"
	"github.com/c360studio/specdialog/extract"
	"github.com/c360studio/specdialog/llm"
	"github.com/c360studio/specdialog/model"
	"github.com/c360studio/specdialog/scenario"
	"github.com/c360studio/specdialog/storage"
)

// Component implements the builder-api component.
type Component struct {
	name       string
	config     Config
	natsClient *natsclient.Client
	logger     *slog.Logger

	engine  *conversation.Engine
	synth   *diagram.Synthesizer
	builder *scenario.Builder

	// Lifecycle state machine
	// States: 0=stopped, 1=starting, 2=running, 3=stopping
	state     atomic.Int32
	startTime time.Time
	mu        sync.RWMutex
	cancel    context.CancelFunc
	store     *conversation.Store
}

const (
	stateStopped  = 0
	stateStarting = 1
	stateRunning  = 2
	stateStopping = 3
)

// NewComponent constructs a builder-api Component from raw JSON config and deps.
func NewComponent(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	var config Config
	if err := json.Unmarshal(rawConfig, &config); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger := deps.GetLogger()

	builder := scenario.NewBuilder(logger, config.scenarioOptions()...)

	replyer := llm.NewCollaborator(llm.NewClient(model.Global()), model.CapabilityConversing)
	engine := conversation.NewEngine(logger,
		conversation.WithReplyer(replyer),
		conversation.WithReplyTimeout(config.replyTimeout()),
		conversation.WithPhaseMachine(conversation.NewPhaseMachine(config.Thresholds, config.phaseKeywords())),
		conversation.WithEntityExtractor(extract.NewEntityExtractor(logger, config.extractOptions()...)),
		conversation.WithConstraintExtractor(extract.NewConstraintExtractor(logger, config.extractOptions()...)),
		conversation.WithScenarioBuilder(builder),
	)

	return &Component{
		name:       "builder-api",
		config:     config,
		natsClient: deps.NATSClient,
		logger:     logger,
		engine:     engine,
		synth:      diagram.NewSynthesizer(logger, config.diagramOptions()...),
		builder:    builder,
	}, nil
}

// Initialize prepares the component for startup.
func (c *Component) Initialize() error {
	c.logger.Debug("Initialized builder-api",
		"idle_timeout", c.config.idleTimeout(),
		"nats", c.natsClient != nil)
	return nil
}

// Start begins serving the component. The session store is built here so
// it can attach durable persistence when a NATS connection exists; without
// one the store runs memory-only.
func (c *Component) Start(ctx context.Context) error {
	if !c.state.CompareAndSwap(stateStopped, stateStarting) {
		current := c.state.Load()
		if current == stateRunning || current == stateStarting {
			return fmt.Errorf("component already running or starting")
		}
		return fmt.Errorf("component in invalid state: %d", current)
	}

	defer func() {
		if c.state.Load() == stateStarting {
			c.state.Store(stateStopped)
		}
	}()

	runCtx, cancel := context.WithCancel(context.Background())

	storeOpts := []conversation.StoreOption{
		conversation.WithIdleTimeout(c.config.idleTimeout()),
	}
	if c.natsClient != nil {
		if persister, err := c.newPersister(ctx); err != nil {
			c.logger.Warn("Session persistence unavailable, running memory-only", "error", err)
		} else {
			storeOpts = append(storeOpts, conversation.WithPersister(persister))
		}
	}
	store := conversation.NewStore(c.logger, storeOpts...)

	c.mu.Lock()
	c.cancel = cancel
	c.store = store
	c.startTime = time.Now()
	c.mu.Unlock()

	go store.RunSweeper(runCtx, c.config.sweepInterval())

	c.state.Store(stateRunning)
	c.logger.Info("builder-api started", "persistent", c.natsClient != nil)
	return nil
}

// newPersister builds the JetStream-backed session store.
func (c *Component) newPersister(ctx context.Context) (*storage.SessionStore, error) {
	js, err := c.natsClient.JetStream()
	if err != nil {
		return nil, fmt.Errorf("get jetstream context: %w", err)
	}
	return storage.NewSessionStore(ctx, js)
}

// Stop gracefully stops the component.
func (c *Component) Stop(_ time.Duration) error {
	if !c.state.CompareAndSwap(stateRunning, stateStopping) {
		current := c.state.Load()
		if current == stateStopped || current == stateStopping {
			return nil
		}
		return fmt.Errorf("component in unexpected state: %d", current)
	}

	c.mu.Lock()
	cancel := c.cancel
	c.cancel = nil
	c.store = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	c.state.Store(stateStopped)
	c.logger.Info("builder-api stopped")
	return nil
}

// sessions returns the running session store, or nil before Start.
func (c *Component) sessions() *conversation.Store {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.store
}

// Meta returns component metadata.
func (c *Component) Meta() component.Metadata {
	return component.Metadata{
		Name:        "builder-api",
		Type:        "processor",
		Description: "HTTP endpoints for specification discovery sessions and diagrams",
		Version:     "0.1.0",
	}
}

// InputPorts returns an empty port list; this component has no NATS inputs.
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
	return builderAPISchema
}

// Health returns the current health status.
func (c *Component) Health() component.HealthStatus {
	state := c.state.Load()
	running := state == stateRunning

	c.mu.RLock()
	startTime := c.startTime
	c.mu.RUnlock()

	status := "stopped"
	switch state {
	case stateStarting:
		status = "starting"
	case stateRunning:
		status = "running"
	case stateStopping:
		status = "stopping"
	}

	return component.HealthStatus{
		Healthy:   running,
		LastCheck: time.Now(),
		Uptime:    time.Since(startTime),
		Status:    status,
	}
}

// DataFlow returns current data flow metrics.
func (c *Component) DataFlow() component.FlowMetrics {
	return component.FlowMetrics{}
}
