package builderapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/c360studio/specdialog/conversation"
	"github.com/c360studio/specdialog/diagram"
	"github.com/c360studio/specdialog/extract"
	"github.com/c360studio/specdialog/pattern"
	"github.com/c360studio/specdialog/scenario"
)

// setupTestComponent creates a Component with a memory-only session store
// and no reply backend, so replies come from the fallback rotation.
func setupTestComponent(t *testing.T) *Component {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Component{
		name:    "builder-api",
		config:  Config{},
		logger:  logger,
		engine:  conversation.NewEngine(logger),
		synth:   diagram.NewSynthesizer(logger),
		builder: scenario.NewBuilder(logger),
		store:   conversation.NewStore(logger),
	}
}

// registerHandlers wires the component's handlers into a fresh mux and
// returns a test server.
func registerHandlers(c *Component) *httptest.Server {
	mux := http.NewServeMux()
	c.RegisterHTTPHandlers("api/builder", mux)
	return httptest.NewServer(mux)
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestSessionState_UnknownSession(t *testing.T) {
	c := setupTestComponent(t)
	srv := registerHandlers(c)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/builder/session/nope/state")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	body := decodeBody[errorResponse](t, resp)
	if body.Error != "SessionNotFound" {
		t.Errorf("error code = %q, want SessionNotFound", body.Error)
	}
}

func TestSessionMessage_CreatesSession(t *testing.T) {
	c := setupTestComponent(t)
	srv := registerHandlers(c)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/builder/session/sess-1/message", MessageRequest{
		Message: "The customer places an order and the admin manages the product catalog.",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	result := decodeBody[conversation.Result](t, resp)
	if result.Reply == "" {
		t.Error("reply should not be empty")
	}
	if !result.FallbackReply {
		t.Error("reply should come from the fallback rotation without a backend")
	}
	if result.State == nil || result.State.SessionID != "sess-1" {
		t.Fatalf("state = %+v, want session sess-1", result.State)
	}
	if result.Phase == "" {
		t.Error("phase should be set")
	}

	// The session is now visible via GET state.
	stateResp, err := http.Get(srv.URL + "/api/builder/session/sess-1/state")
	if err != nil {
		t.Fatalf("GET state: %v", err)
	}
	if stateResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after message, got %d", stateResp.StatusCode)
	}
	state := decodeBody[conversation.State](t, stateResp)
	if state.SessionID != "sess-1" {
		t.Errorf("SessionID = %q", state.SessionID)
	}
	if len(state.History) != 2 {
		t.Errorf("history length = %d, want user + assistant turn", len(state.History))
	}
}

func TestSessionMessage_EmptyMessage(t *testing.T) {
	c := setupTestComponent(t)
	srv := registerHandlers(c)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/builder/session/sess-1/message", MessageRequest{Message: "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if body.Error != "InvalidRequest" {
		t.Errorf("error code = %q", body.Error)
	}
}

func TestSessionReset(t *testing.T) {
	c := setupTestComponent(t)
	srv := registerHandlers(c)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/builder/session/sess-2/message", MessageRequest{
		Message: "The user creates an account and the system sends a confirmation email.",
	})
	resp.Body.Close()

	resetResp := postJSON(t, srv.URL+"/api/builder/session/sess-2/reset", struct{}{})
	if resetResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resetResp.StatusCode)
	}

	state := decodeBody[conversation.State](t, resetResp)
	if state.Phase != conversation.PhaseDiscovery {
		t.Errorf("phase after reset = %q, want discovery", state.Phase)
	}
	if state.ProgressScore != 0 {
		t.Errorf("progress after reset = %d, want 0", state.ProgressScore)
	}
	if len(state.Entities) != 0 || len(state.History) != 0 {
		t.Error("reset should discard entities and history")
	}
}

func TestSessionRouting(t *testing.T) {
	c := setupTestComponent(t)
	srv := registerHandlers(c)
	defer srv.Close()

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"missing action", http.MethodGet, "/api/builder/session/sess-1", http.StatusNotFound},
		{"unknown action", http.MethodGet, "/api/builder/session/sess-1/bogus", http.StatusNotFound},
		{"wrong method on state", http.MethodPost, "/api/builder/session/sess-1/state", http.StatusMethodNotAllowed},
		{"wrong method on message", http.MethodGet, "/api/builder/session/sess-1/message", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, srv.URL+tt.path, nil)
			if err != nil {
				t.Fatal(err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestScenariosExtract(t *testing.T) {
	c := setupTestComponent(t)
	srv := registerHandlers(c)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/builder/scenarios/extract", ExtractScenariosRequest{
		Text:        "Given the user is logged in, when they submit the checkout form, then an order is created.",
		EntityNames: []string{"user", "order"},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody[ExtractScenariosResponse](t, resp)
	if body.Count != len(body.Scenarios) {
		t.Errorf("count = %d, scenarios = %d", body.Count, len(body.Scenarios))
	}
	if body.Count == 0 {
		t.Fatal("expected at least one scenario from an explicit given/when/then sentence")
	}
	sc := body.Scenarios[0]
	if len(sc.Given) == 0 || len(sc.When) == 0 || len(sc.Then) == 0 {
		t.Errorf("scenario components incomplete: %+v", sc)
	}
}

func TestScenariosExtract_MissingText(t *testing.T) {
	c := setupTestComponent(t)
	srv := registerHandlers(c)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/builder/scenarios/extract", ExtractScenariosRequest{})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDiagram_ExplicitState(t *testing.T) {
	c := setupTestComponent(t)
	srv := registerHandlers(c)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/builder/diagram", DiagramRequest{
		Type: diagram.TypeEntityRelationship,
		Entities: []extract.Entity{
			{ID: "ent-1", Name: "Customer", CanonicalName: "customer", Type: pattern.EntityActor, Confidence: 0.9},
			{ID: "ent-2", Name: "Order", CanonicalName: "order", Type: pattern.EntityData, Confidence: 0.8},
		},
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decodeBody[DiagramResponse](t, resp)
	if body.Diagram == nil {
		t.Fatal("diagram missing")
	}
	if len(body.Diagram.Nodes) != 2 {
		t.Errorf("nodes = %d, want 2", len(body.Diagram.Nodes))
	}
	if body.Statistics.TotalNodes != 2 {
		t.Errorf("TotalNodes = %d, want 2", body.Statistics.TotalNodes)
	}
}

func TestDiagram_FromSession(t *testing.T) {
	c := setupTestComponent(t)
	srv := registerHandlers(c)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/builder/session/sess-3/message", MessageRequest{
		Message: "The customer browses the product catalog and the system stores orders in the database.",
	})
	resp.Body.Close()

	diagResp := postJSON(t, srv.URL+"/api/builder/diagram", DiagramRequest{
		SessionID: "sess-3",
	})
	if diagResp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", diagResp.StatusCode)
	}
	body := decodeBody[DiagramResponse](t, diagResp)
	if body.Diagram == nil {
		t.Fatal("diagram missing")
	}
	if body.Diagram.Type == "" {
		t.Error("auto selection should pick a concrete type")
	}
}

func TestDiagram_UnknownSession(t *testing.T) {
	c := setupTestComponent(t)
	srv := registerHandlers(c)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/builder/diagram", DiagramRequest{SessionID: "nope"})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if body.Error != "SessionNotFound" {
		t.Errorf("error code = %q", body.Error)
	}
}

func TestDiagram_UnsupportedType(t *testing.T) {
	c := setupTestComponent(t)
	srv := registerHandlers(c)
	defer srv.Close()

	resp := postJSON(t, srv.URL+"/api/builder/diagram", DiagramRequest{Type: "mind_map"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	body := decodeBody[errorResponse](t, resp)
	if body.Error != "UnsupportedDiagramType" {
		t.Errorf("error code = %q", body.Error)
	}
}

func TestConfigTuningOptions(t *testing.T) {
	empty := Config{}
	if got := empty.extractOptions(); got != nil {
		t.Errorf("extractOptions() = %v options without config", len(got))
	}
	if got := empty.scenarioOptions(); got != nil {
		t.Errorf("scenarioOptions() = %v options without config", len(got))
	}
	if got := empty.diagramOptions(); got != nil {
		t.Errorf("diagramOptions() = %v options without config", len(got))
	}

	tuned := Config{
		MinConfidence:     0.5,
		VagueWords:        []string{"speedily"},
		UntestablePhrases: []string{"feels right"},
		DiagramSpacing:    240,
		GridColumns:       3,
	}
	if got := tuned.extractOptions(); len(got) != 1 {
		t.Errorf("extractOptions() = %d options, want 1", len(got))
	}
	if got := tuned.scenarioOptions(); len(got) != 2 {
		t.Errorf("scenarioOptions() = %d options, want 2", len(got))
	}
	if got := tuned.diagramOptions(); len(got) != 2 {
		t.Errorf("diagramOptions() = %d options, want 2", len(got))
	}

	// The tuned synthesizer geometry flows into generated diagrams.
	d := diagram.NewSynthesizer(nil, tuned.diagramOptions()...).EntityRelationship(nil)
	if d.Layout.Spacing != 240 {
		t.Errorf("spacing = %v, want 240", d.Layout.Spacing)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"empty config", Config{}, false},
		{"valid durations", Config{IdleTimeout: "15m", ReplyTimeout: "10s", SweepInterval: "30s"}, false},
		{"bad duration", Config{IdleTimeout: "soon"}, true},
		{"negative duration", Config{ReplyTimeout: "-5s"}, true},
		{"valid tuning", Config{MinConfidence: 0.3, DiagramSpacing: 200, GridColumns: 3}, false},
		{"min_confidence too high", Config{MinConfidence: 1.2}, true},
		{"negative min_confidence", Config{MinConfidence: -0.1}, true},
		{"negative spacing", Config{DiagramSpacing: -10}, true},
		{"negative columns", Config{GridColumns: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
