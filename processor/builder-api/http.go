package builderapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/c360studio/specdialog/conversation"
	"github.com/c360studio/specdialog/diagram"
	"github.com/c360studio/specdialog/extract"
	"github.com/c360studio/specdialog/graph"
	"github.com/c360studio/specdialog/scenario"
)

// maxRequestBodySize limits POST body sizes to prevent DoS.
const maxRequestBodySize = 1 << 20 // 1 MB

// errorResponse is the JSON body for all error status codes.
type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RegisterHTTPHandlers registers all builder-api HTTP handlers under the
// given prefix. The prefix should be the path segment without a trailing
// slash (e.g. "api/builder"). Handlers are registered as:
//
//	GET  <prefix>/session/{id}/state
//	POST <prefix>/session/{id}/reset
//	POST <prefix>/session/{id}/message
//	POST <prefix>/scenarios/extract
//	POST <prefix>/diagram
func (c *Component) RegisterHTTPHandlers(prefix string, mux *http.ServeMux) {
	if !strings.HasPrefix(prefix, "/") {
		prefix = "/" + prefix
	}
	if !strings.HasSuffix(prefix, "/") {
		prefix = prefix + "/"
	}

	sessionPrefix := prefix + "session/"
	mux.HandleFunc(sessionPrefix, func(w http.ResponseWriter, r *http.Request) {
		c.handleSession(w, r, sessionPrefix)
	})
	mux.HandleFunc(prefix+"scenarios/extract", c.handleScenariosExtract)
	mux.HandleFunc(prefix+"diagram", c.handleDiagram)
}

// ----------------------------------------------------------------------------
// /session/{id}/{state,reset,message}
// ----------------------------------------------------------------------------

// handleSession routes the per-session endpoints. The path after the
// prefix must be exactly "{id}/{action}".
func (c *Component) handleSession(w http.ResponseWriter, r *http.Request, prefix string) {
	rest := strings.TrimPrefix(r.URL.Path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		writeError(w, http.StatusNotFound, "NotFound", "unknown session endpoint")
		return
	}
	sessionID, action := parts[0], parts[1]

	store := c.sessions()
	if store == nil {
		writeError(w, http.StatusServiceUnavailable, "NotStarted", "component is not running")
		return
	}

	switch action {
	case "state":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		c.handleSessionState(w, r, store, sessionID)

	case "reset":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		c.handleSessionReset(w, r, store, sessionID)

	case "message":
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		c.handleSessionMessage(w, r, store, sessionID)

	default:
		writeError(w, http.StatusNotFound, "NotFound", "unknown session endpoint")
	}
}

// handleSessionState returns the full session state snapshot.
func (c *Component) handleSessionState(w http.ResponseWriter, r *http.Request, store *conversation.Store, sessionID string) {
	state, err := store.Snapshot(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, conversation.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "SessionNotFound", "no session with id "+sessionID)
			return
		}
		c.logger.Error("Snapshot failed", "session", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal", "snapshot failed")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// handleSessionReset discards all session state and returns the fresh
// initial state.
func (c *Component) handleSessionReset(w http.ResponseWriter, r *http.Request, store *conversation.Store, sessionID string) {
	state := store.Reset(r.Context(), sessionID)
	c.logger.Info("Session reset", "session", sessionID)
	writeJSON(w, http.StatusOK, state)
}

// MessageRequest is the request body for POST /session/{id}/message.
type MessageRequest struct {
	Message string `json:"message"`
}

// handleSessionMessage processes one utterance through the discovery
// pipeline and returns the reply, phase, extraction summary, and
// progress.
func (c *Component) handleSessionMessage(w http.ResponseWriter, r *http.Request, store *conversation.Store, sessionID string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req MessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "message is required")
		return
	}

	var result *conversation.Result
	err := store.WithSession(r.Context(), sessionID, func(state *conversation.State) error {
		result = c.engine.ProcessMessage(r.Context(), state, req.Message)
		return nil
	})
	if err != nil {
		c.logger.Error("Message processing failed", "session", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal", "message processing failed")
		return
	}

	c.publishDiscoveries(r, result)

	writeJSON(w, http.StatusOK, result)
}

// publishDiscoveries pushes the session's discoveries to the knowledge
// graph. Failures are logged, never surfaced; the HTTP response does not
// depend on graph availability.
func (c *Component) publishDiscoveries(r *http.Request, result *conversation.Result) {
	if c.natsClient == nil || result == nil || result.State == nil {
		return
	}
	ctx := r.Context()
	state := result.State

	if err := graph.PublishSession(ctx, c.natsClient, state); err != nil {
		c.logger.Warn("Graph publish failed", "kind", "session", "error", err)
	}
	if result.NewEntities > 0 {
		for i := range state.Entities {
			if err := graph.PublishEntity(ctx, c.natsClient, state.SessionID, &state.Entities[i]); err != nil {
				c.logger.Warn("Graph publish failed", "kind", "entity", "error", err)
			}
		}
	}
	if result.NewScenarios > 0 {
		for i := range state.Scenarios {
			if err := graph.PublishScenario(ctx, c.natsClient, state.SessionID, &state.Scenarios[i]); err != nil {
				c.logger.Warn("Graph publish failed", "kind", "scenario", "error", err)
			}
		}
	}
	if result.NewConstraints > 0 {
		for i := range state.Constraints {
			if err := graph.PublishConstraint(ctx, c.natsClient, state.SessionID, &state.Constraints[i]); err != nil {
				c.logger.Warn("Graph publish failed", "kind", "constraint", "error", err)
			}
		}
	}
}

// ----------------------------------------------------------------------------
// POST /scenarios/extract
// ----------------------------------------------------------------------------

// ExtractScenariosRequest is the request body for POST /scenarios/extract.
type ExtractScenariosRequest struct {
	// Text is the free-form document or message to extract from.
	Text string `json:"text"`

	// EntityNames are known entity names that bias component detection.
	EntityNames []string `json:"entity_names,omitempty"`
}

// ExtractScenariosResponse is the response body for POST /scenarios/extract.
type ExtractScenariosResponse struct {
	Scenarios []scenario.Scenario `json:"scenarios"`
	Count     int                 `json:"count"`
}

// handleScenariosExtract runs stateless bulk scenario extraction. No
// session is touched; the response carries suggestion and validation
// payloads on each scenario.
func (c *Component) handleScenariosExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req ExtractScenariosRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "text is required")
		return
	}

	scenarios := c.builder.Extract(req.Text, req.EntityNames)
	if scenarios == nil {
		scenarios = []scenario.Scenario{}
	}

	writeJSON(w, http.StatusOK, ExtractScenariosResponse{
		Scenarios: scenarios,
		Count:     len(scenarios),
	})
}

// ----------------------------------------------------------------------------
// POST /diagram
// ----------------------------------------------------------------------------

// DiagramRequest is the request body for POST /diagram. Either a session
// id or explicit state must be provided; a session id wins when both are
// present.
type DiagramRequest struct {
	SessionID string `json:"session_id,omitempty"`

	// Type is one of entity_relationship, scenario_flow, architecture,
	// or auto. Empty means auto.
	Type string `json:"type,omitempty"`

	Entities    []extract.Entity     `json:"entities,omitempty"`
	Scenarios   []scenario.Scenario  `json:"scenarios,omitempty"`
	Constraints []extract.Constraint `json:"constraints,omitempty"`
}

// DiagramResponse is the response body for POST /diagram.
type DiagramResponse struct {
	Diagram    *diagram.Diagram   `json:"diagram"`
	Statistics diagram.Statistics `json:"statistics"`
}

// handleDiagram synthesizes a diagram from a session snapshot or from
// explicit state in the request body.
func (c *Component) handleDiagram(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)

	var req DiagramRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", "invalid request body")
		return
	}

	in := diagram.Input{
		Entities:    req.Entities,
		Scenarios:   req.Scenarios,
		Constraints: req.Constraints,
	}

	if req.SessionID != "" {
		store := c.sessions()
		if store == nil {
			writeError(w, http.StatusServiceUnavailable, "NotStarted", "component is not running")
			return
		}
		state, err := store.Snapshot(r.Context(), req.SessionID)
		if err != nil {
			if errors.Is(err, conversation.ErrSessionNotFound) {
				writeError(w, http.StatusNotFound, "SessionNotFound", "no session with id "+req.SessionID)
				return
			}
			c.logger.Error("Snapshot failed", "session", req.SessionID, "error", err)
			writeError(w, http.StatusInternalServerError, "Internal", "snapshot failed")
			return
		}
		in = diagram.Input{
			Entities:    state.Entities,
			Scenarios:   state.Scenarios,
			Constraints: state.Constraints,
		}
	}

	d, err := c.synth.Generate(in, req.Type)
	if err != nil {
		if errors.Is(err, diagram.ErrUnsupportedDiagramType) {
			writeError(w, http.StatusBadRequest, "UnsupportedDiagramType", err.Error())
			return
		}
		c.logger.Error("Diagram generation failed", "type", req.Type, "error", err)
		writeError(w, http.StatusInternalServerError, "Internal", "diagram generation failed")
		return
	}

	writeJSON(w, http.StatusOK, DiagramResponse{
		Diagram:    d,
		Statistics: diagram.Stats(d),
	})
}

// ----------------------------------------------------------------------------
// Helpers
// ----------------------------------------------------------------------------

// writeJSON marshals v as JSON and writes it to w with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		// Response is already partially written; nothing to recover.
		_ = err
	}
}

// writeError writes a JSON error body with a stable error code.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: code, Message: message})
}
