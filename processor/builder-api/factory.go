package builderapi

import (
	"fmt"

	"github.com/c360studio/semstreams/component"
)

// RegistryInterface defines the minimal interface required for registration.
type RegistryInterface interface {
	RegisterWithConfig(component.RegistrationConfig) error
}

// Register registers the builder-api component with the given registry.
func Register(registry RegistryInterface) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "builder-api",
		Factory:     NewComponent,
		Schema:      builderAPISchema,
		Type:        "processor",
		Protocol:    "http",
		Domain:      "specdialog",
		Description: "HTTP endpoints for specification discovery sessions and diagrams",
		Version:     "0.1.0",
	})
}
