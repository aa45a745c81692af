// Package graph publishes discovered specification elements to the
// knowledge graph as RDF-style triples.
package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/c360studio/semstreams/message"
	"github.com/c360studio/semstreams/natsclient"

	"github.com/c360studio/specdialog/conversation"
	"github.com/c360studio/specdialog/extract"
	"github.com/c360studio/specdialog/scenario"
	vocab "github.com/c360studio/specdialog/vocabulary/specdialog"
)

// GraphIngestSubject is the subject for graph ingestion.
const GraphIngestSubject = "graph.ingest.entity"

// tripleSource tags all triples published by this module.
const tripleSource = "specdialog.discover"

// PublishEntity publishes a discovered entity to the knowledge graph.
// A nil NATS client skips publishing (graceful degradation).
func PublishEntity(ctx context.Context, nc *natsclient.Client, sessionID string, e *extract.Entity) error {
	if nc == nil {
		return nil
	}

	entityID := EntityID(e.CanonicalName)
	now := time.Now()

	triples := []message.Triple{
		triple(entityID, vocab.PredicateEntityName, e.Name, e.Confidence, now),
		triple(entityID, vocab.PredicateEntityCanonical, e.CanonicalName, e.Confidence, now),
		triple(entityID, vocab.PredicateEntityType, string(e.Type), e.Confidence, now),
		triple(entityID, vocab.PredicateEntityConfidence, e.Confidence, 1.0, now),
		triple(entityID, vocab.PredicateEntitySession, SessionEntityID(sessionID), 1.0, now),
	}
	if e.Description != "" {
		triples = append(triples, triple(entityID, vocab.PredicateEntityDescription, e.Description, e.Confidence, now))
	}
	for _, syn := range e.Synonyms {
		triples = append(triples, triple(entityID, vocab.PredicateEntitySynonym, syn, e.Confidence, now))
	}
	for _, rel := range e.Relationships {
		triples = append(triples, triple(entityID, vocab.PredicateEntityRelationship, rel, e.Confidence, now))
	}

	return publish(ctx, nc, entityID, triples, now)
}

// PublishScenario publishes an assembled scenario to the knowledge graph.
func PublishScenario(ctx context.Context, nc *natsclient.Client, sessionID string, sc *scenario.Scenario) error {
	if nc == nil {
		return nil
	}

	entityID := ScenarioEntityID(sc.ID)
	now := time.Now()

	triples := []message.Triple{
		triple(entityID, vocab.PredicateScenarioTitle, sc.Title, sc.Confidence, now),
		triple(entityID, vocab.PredicateScenarioGiven, componentText(sc.Given), sc.Confidence, now),
		triple(entityID, vocab.PredicateScenarioWhen, componentText(sc.When), sc.Confidence, now),
		triple(entityID, vocab.PredicateScenarioThen, componentText(sc.Then), sc.Confidence, now),
		triple(entityID, vocab.PredicateScenarioStatus, string(sc.Status), 1.0, now),
		triple(entityID, vocab.PredicateScenarioConfidence, sc.Confidence, 1.0, now),
		triple(entityID, vocab.PredicateScenarioSession, SessionEntityID(sessionID), 1.0, now),
	}

	return publish(ctx, nc, entityID, triples, now)
}

// PublishConstraint publishes an extracted constraint to the knowledge graph.
func PublishConstraint(ctx context.Context, nc *natsclient.Client, sessionID string, c *extract.Constraint) error {
	if nc == nil {
		return nil
	}

	entityID := ConstraintEntityID(c.ID)
	now := time.Now()

	triples := []message.Triple{
		triple(entityID, vocab.PredicateConstraintName, c.Name, c.Confidence, now),
		triple(entityID, vocab.PredicateConstraintCategory, string(c.Category), c.Confidence, now),
		triple(entityID, vocab.PredicateConstraintRequirement, c.Requirement, c.Confidence, now),
		triple(entityID, vocab.PredicateConstraintPriority, string(c.Priority), 1.0, now),
		triple(entityID, vocab.PredicateConstraintSession, SessionEntityID(sessionID), 1.0, now),
	}

	return publish(ctx, nc, entityID, triples, now)
}

// PublishSession publishes a session's phase and progress to the
// knowledge graph.
func PublishSession(ctx context.Context, nc *natsclient.Client, state *conversation.State) error {
	if nc == nil {
		return nil
	}

	entityID := SessionEntityID(state.SessionID)
	now := time.Now()

	triples := []message.Triple{
		triple(entityID, vocab.PredicateSessionPhase, string(state.Phase), 1.0, now),
		triple(entityID, vocab.PredicateSessionProgress, state.ProgressScore, 1.0, now),
	}

	return publish(ctx, nc, entityID, triples, now)
}

func publish(ctx context.Context, nc *natsclient.Client, entityID string, triples []message.Triple, now time.Time) error {
	payload := EntityPayload{
		EntityID_:  entityID,
		TripleData: triples,
		UpdatedAt:  now,
	}

	data, err := json.Marshal(&payload)
	if err != nil {
		return fmt.Errorf("marshal graph entity: %w", err)
	}

	if err := nc.PublishToStream(ctx, GraphIngestSubject, data); err != nil {
		return fmt.Errorf("publish graph entity: %w", err)
	}
	return nil
}

func triple(subject, predicate string, object any, confidence float64, ts time.Time) message.Triple {
	return message.Triple{
		Subject:    subject,
		Predicate:  predicate,
		Object:     object,
		Source:     tripleSource,
		Timestamp:  ts,
		Confidence: confidence,
	}
}

func componentText(components []scenario.Component) string {
	text := ""
	for i, c := range components {
		if i > 0 {
			text += " "
		}
		text += c.Content
	}
	return text
}

// EntityID generates a consistent graph id for a discovered entity.
// Format: specdialog.local.discovery.entity.<canonical_name>
func EntityID(canonicalName string) string {
	return fmt.Sprintf("specdialog.local.discovery.entity.%s", canonicalName)
}

// ScenarioEntityID generates a consistent graph id for a scenario.
func ScenarioEntityID(id string) string {
	return fmt.Sprintf("specdialog.local.discovery.scenario.%s", id)
}

// ConstraintEntityID generates a consistent graph id for a constraint.
func ConstraintEntityID(id string) string {
	return fmt.Sprintf("specdialog.local.discovery.constraint.%s", id)
}

// SessionEntityID generates a consistent graph id for a session.
func SessionEntityID(sessionID string) string {
	return fmt.Sprintf("specdialog.local.discovery.session.%s", sessionID)
}
