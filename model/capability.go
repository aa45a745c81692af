// Package model provides capability-based model selection for the
// conversation engine. Callers ask for a capability ("conversing",
// "fast") and the registry resolves it to available endpoints with
// fallback chains and circuit-breaker health tracking.
package model

// Capability represents a semantic capability for model selection.
// Callers specify what they need done, not a model name.
type Capability string

const (
	// CapabilityConversing is for discovery dialogue: phase-aware
	// replies and follow-up questions during specification sessions.
	CapabilityConversing Capability = "conversing"

	// CapabilityFast is for quick responses, simple tasks.
	CapabilityFast Capability = "fast"
)

// IsValid checks if a capability string is a known capability.
func (c Capability) IsValid() bool {
	switch c {
	case CapabilityConversing, CapabilityFast:
		return true
	}
	return false
}

// String returns the string representation of the capability.
func (c Capability) String() string {
	return string(c)
}

// ParseCapability converts a string to a Capability, returning empty for
// invalid values.
func ParseCapability(s string) Capability {
	c := Capability(s)
	if c.IsValid() {
		return c
	}
	return ""
}
