package main

import (
	"encoding/json"
	"testing"

	appconfig "github.com/c360studio/specdialog/config"
)

func TestResolveNATSURL(t *testing.T) {
	t.Setenv("NATS_URL", "")
	t.Setenv("SPECDIALOG_NATS_URL", "")

	if got := resolveNATSURL(""); got != "nats://localhost:4222" {
		t.Errorf("default = %q", got)
	}
	if got := resolveNATSURL("nats://demo:4222"); got != "nats://demo:4222" {
		t.Errorf("configured = %q", got)
	}

	t.Setenv("SPECDIALOG_NATS_URL", "nats://app-env:4222")
	if got := resolveNATSURL("nats://demo:4222"); got != "nats://app-env:4222" {
		t.Errorf("app env = %q", got)
	}

	t.Setenv("NATS_URL", "nats://env:4222")
	if got := resolveNATSURL("nats://demo:4222"); got != "nats://env:4222" {
		t.Errorf("env = %q", got)
	}
}

func TestBuildRuntimeConfigUsesResolvedURL(t *testing.T) {
	appCfg := appconfig.Default()
	cfg := buildRuntimeConfig(appCfg, "nats://other:4222")

	if len(cfg.NATS.URLs) != 1 || cfg.NATS.URLs[0] != "nats://other:4222" {
		t.Errorf("NATS.URLs = %v, want the resolved URL", cfg.NATS.URLs)
	}
	if _, ok := cfg.Components["builder-api"]; !ok {
		t.Error("builder-api component missing from runtime config")
	}
	if _, ok := cfg.Components["notes-ingester"]; ok {
		t.Error("notes-ingester enabled without a notes dir")
	}
}

func TestBuildRuntimeConfigThreadsTuning(t *testing.T) {
	appCfg := appconfig.Default()
	appCfg.Extract.MinConfidence = 0.5
	appCfg.Extract.VagueWords = []string{"speedily"}
	appCfg.Diagram.Spacing = 240
	appCfg.Diagram.GridColumns = 3

	cfg := buildRuntimeConfig(appCfg, "nats://localhost:4222")
	comp, ok := cfg.Components["builder-api"]
	if !ok {
		t.Fatal("builder-api component missing")
	}

	var parsed map[string]any
	if err := json.Unmarshal(comp.Config, &parsed); err != nil {
		t.Fatalf("unmarshal component config: %v", err)
	}
	if parsed["min_confidence"] != 0.5 {
		t.Errorf("min_confidence = %v, want 0.5", parsed["min_confidence"])
	}
	if parsed["diagram_spacing"] != 240.0 {
		t.Errorf("diagram_spacing = %v, want 240", parsed["diagram_spacing"])
	}
	if parsed["grid_columns"] != 3.0 {
		t.Errorf("grid_columns = %v, want 3", parsed["grid_columns"])
	}
	words, _ := parsed["vague_words"].([]any)
	if len(words) != 1 || words[0] != "speedily" {
		t.Errorf("vague_words = %v", parsed["vague_words"])
	}
}

func TestBuildRuntimeConfigEnablesNotesIngester(t *testing.T) {
	appCfg := appconfig.Default()
	appCfg.Notes.Dir = "design-notes"

	cfg := buildRuntimeConfig(appCfg, "nats://localhost:4222")
	comp, ok := cfg.Components["notes-ingester"]
	if !ok {
		t.Fatal("notes-ingester component missing")
	}

	var parsed map[string]any
	if err := json.Unmarshal(comp.Config, &parsed); err != nil {
		t.Fatalf("unmarshal component config: %v", err)
	}
	if parsed["notes_dir"] != "design-notes" {
		t.Errorf("notes_dir = %v", parsed["notes_dir"])
	}
	if parsed["min_confidence"] != 0.3 {
		t.Errorf("min_confidence = %v, want the extraction default", parsed["min_confidence"])
	}
}
