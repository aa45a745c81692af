package graph

import (
	"context"
	"testing"
	"time"

	"github.com/c360studio/specdialog/extract"
	"github.com/c360studio/specdialog/scenario"
	vocab "github.com/c360studio/specdialog/vocabulary/specdialog"
)

func TestPublishNilClientIsNoOp(t *testing.T) {
	ctx := context.Background()

	e := &extract.Entity{Name: "Order", CanonicalName: "order"}
	if err := PublishEntity(ctx, nil, "sess-1", e); err != nil {
		t.Errorf("PublishEntity with nil client: %v", err)
	}

	sc := &scenario.Scenario{ID: "sc-1", Title: "Checkout"}
	if err := PublishScenario(ctx, nil, "sess-1", sc); err != nil {
		t.Errorf("PublishScenario with nil client: %v", err)
	}

	c := &extract.Constraint{ID: "con-1", Name: "Response time"}
	if err := PublishConstraint(ctx, nil, "sess-1", c); err != nil {
		t.Errorf("PublishConstraint with nil client: %v", err)
	}
}

func TestEntityIDFormats(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"entity", EntityID("payment_gateway"), "specdialog.local.discovery.entity.payment_gateway"},
		{"scenario", ScenarioEntityID("sc-42"), "specdialog.local.discovery.scenario.sc-42"},
		{"constraint", ConstraintEntityID("con-7"), "specdialog.local.discovery.constraint.con-7"},
		{"session", SessionEntityID("sess-1"), "specdialog.local.discovery.session.sess-1"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s id = %q, want %q", tt.name, tt.got, tt.want)
		}
	}
}

func TestTripleConstruction(t *testing.T) {
	now := time.Now()
	tr := triple("specdialog.local.discovery.entity.order", vocab.PredicateEntityName, "Order", 0.85, now)

	if tr.Subject != "specdialog.local.discovery.entity.order" {
		t.Errorf("Subject = %q", tr.Subject)
	}
	if tr.Predicate != vocab.PredicateEntityName {
		t.Errorf("Predicate = %q", tr.Predicate)
	}
	if tr.Object != "Order" {
		t.Errorf("Object = %v", tr.Object)
	}
	if tr.Source != tripleSource {
		t.Errorf("Source = %q, want %q", tr.Source, tripleSource)
	}
	if tr.Confidence != 0.85 {
		t.Errorf("Confidence = %v", tr.Confidence)
	}
	if !tr.Timestamp.Equal(now) {
		t.Errorf("Timestamp = %v, want %v", tr.Timestamp, now)
	}
}

func TestComponentText(t *testing.T) {
	components := []scenario.Component{
		{Content: "the user is logged in"},
		{Content: "the cart has items"},
	}
	got := componentText(components)
	want := "the user is logged in the cart has items"
	if got != want {
		t.Errorf("componentText = %q, want %q", got, want)
	}
	if componentText(nil) != "" {
		t.Error("componentText(nil) should be empty")
	}
}

func TestEntityPayloadValidate(t *testing.T) {
	p := EntityPayload{}
	if err := p.Validate(); err == nil {
		t.Error("expected error for empty entity ID")
	}
	p.EntityID_ = EntityID("checkout")
	if err := p.Validate(); err != nil {
		t.Errorf("Validate() = %v", err)
	}
	if p.Schema() != EntityType {
		t.Errorf("Schema() = %v", p.Schema())
	}
}
