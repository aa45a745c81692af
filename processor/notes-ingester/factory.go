package notesingester

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface needed for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the notes-ingester processor component with the
// given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "notes-ingester",
		Factory:     NewComponent,
		Schema:      notesIngesterSchema,
		Type:        "processor",
		Protocol:    "nats",
		Domain:      "specdialog",
		Description: "Design-notes watcher feeding bulk extraction into the knowledge graph",
		Version:     "0.1.0",
	})
}
