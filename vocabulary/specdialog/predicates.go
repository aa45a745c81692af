package specdialog

import "github.com/c360studio/semstreams/vocabulary"

// Namespace for specdialog predicates.
const Namespace = "https://specdialog.dev/vocabulary/discovery#"

// Entity predicates.
const (
	// PredicateEntityName is the display name of a discovered entity.
	PredicateEntityName = "specdialog.entity.name"

	// PredicateEntityCanonical is the normalized merge identifier.
	PredicateEntityCanonical = "specdialog.entity.canonical_name"

	// PredicateEntityType is the entity category.
	// Values: actor, data_entity, system_component, business_concept, action_concept
	PredicateEntityType = "specdialog.entity.type"

	// PredicateEntityDescription is the extraction context.
	PredicateEntityDescription = "specdialog.entity.description"

	// PredicateEntityConfidence is the extraction confidence [0,1].
	PredicateEntityConfidence = "specdialog.entity.confidence"

	// PredicateEntitySynonym is an alternate surface form.
	PredicateEntitySynonym = "specdialog.entity.synonym"

	// PredicateEntityRelationship is a recorded "verb:Target" relation.
	PredicateEntityRelationship = "specdialog.entity.relationship"

	// PredicateEntitySession links an entity to its discovery session.
	PredicateEntitySession = "specdialog.entity.session"
)

// Scenario predicates.
const (
	// PredicateScenarioTitle is the scenario title.
	PredicateScenarioTitle = "specdialog.scenario.title"

	// PredicateScenarioGiven is the precondition text.
	PredicateScenarioGiven = "specdialog.scenario.given"

	// PredicateScenarioWhen is the trigger text.
	PredicateScenarioWhen = "specdialog.scenario.when"

	// PredicateScenarioThen is the outcome text.
	PredicateScenarioThen = "specdialog.scenario.then"

	// PredicateScenarioStatus is the lifecycle status.
	// Values: draft, validated, complete
	PredicateScenarioStatus = "specdialog.scenario.status"

	// PredicateScenarioConfidence is the assembly confidence [0,1].
	PredicateScenarioConfidence = "specdialog.scenario.confidence"

	// PredicateScenarioSession links a scenario to its discovery session.
	PredicateScenarioSession = "specdialog.scenario.session"
)

// Constraint predicates.
const (
	// PredicateConstraintName is the derived constraint name.
	PredicateConstraintName = "specdialog.constraint.name"

	// PredicateConstraintCategory is the constraint category.
	// Values: performance, security, reliability, scalability
	PredicateConstraintCategory = "specdialog.constraint.category"

	// PredicateConstraintRequirement is the captured requirement text.
	PredicateConstraintRequirement = "specdialog.constraint.requirement"

	// PredicateConstraintPriority is the default priority for the category.
	// Values: low, medium, high
	PredicateConstraintPriority = "specdialog.constraint.priority"

	// PredicateConstraintSession links a constraint to its discovery session.
	PredicateConstraintSession = "specdialog.constraint.session"
)

// Session predicates.
const (
	// PredicateSessionPhase is the conversation phase.
	// Values: discovery, scenario_building, constraint_definition, review
	PredicateSessionPhase = "specdialog.session.phase"

	// PredicateSessionProgress is the progress score [0,100].
	PredicateSessionProgress = "specdialog.session.progress"
)

func init() {
	vocabulary.Register(PredicateEntityName,
		vocabulary.WithDescription("Discovered entity display name"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"entityName"))

	vocabulary.Register(PredicateEntityCanonical,
		vocabulary.WithDescription("Normalized entity merge identifier"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateEntityType,
		vocabulary.WithDescription("Entity category"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateEntityDescription,
		vocabulary.WithDescription("Extraction context for the entity"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateEntityConfidence,
		vocabulary.WithDescription("Extraction confidence"),
		vocabulary.WithDataType("float"))

	vocabulary.Register(PredicateEntitySynonym,
		vocabulary.WithDescription("Alternate surface form"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateEntityRelationship,
		vocabulary.WithDescription("Recorded entity relationship"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateEntitySession,
		vocabulary.WithDescription("Owning discovery session"),
		vocabulary.WithDataType("entity_id"))

	vocabulary.Register(PredicateScenarioTitle,
		vocabulary.WithDescription("Scenario title"),
		vocabulary.WithDataType("string"),
		vocabulary.WithIRI(Namespace+"scenarioTitle"))

	vocabulary.Register(PredicateScenarioGiven,
		vocabulary.WithDescription("Scenario precondition"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateScenarioWhen,
		vocabulary.WithDescription("Scenario trigger"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateScenarioThen,
		vocabulary.WithDescription("Scenario outcome"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateScenarioStatus,
		vocabulary.WithDescription("Scenario lifecycle status"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateScenarioConfidence,
		vocabulary.WithDescription("Scenario assembly confidence"),
		vocabulary.WithDataType("float"))

	vocabulary.Register(PredicateScenarioSession,
		vocabulary.WithDescription("Owning discovery session"),
		vocabulary.WithDataType("entity_id"))

	vocabulary.Register(PredicateConstraintName,
		vocabulary.WithDescription("Constraint name"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateConstraintCategory,
		vocabulary.WithDescription("Constraint category"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateConstraintRequirement,
		vocabulary.WithDescription("Captured requirement text"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateConstraintPriority,
		vocabulary.WithDescription("Constraint priority"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateConstraintSession,
		vocabulary.WithDescription("Owning discovery session"),
		vocabulary.WithDataType("entity_id"))

	vocabulary.Register(PredicateSessionPhase,
		vocabulary.WithDescription("Conversation phase"),
		vocabulary.WithDataType("string"))

	vocabulary.Register(PredicateSessionProgress,
		vocabulary.WithDescription("Session progress score"),
		vocabulary.WithDataType("int"))
}
