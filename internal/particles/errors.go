package particles

import "fmt"

// TypeConflictError reports a field name registered twice with
// different element types. Recoverable: the caller can pick another
// name.
type TypeConflictError struct {
	Name      string
	Existing  string
	Requested string
}

func (e *TypeConflictError) Error() string {
	return fmt.Sprintf("particles: field %q already registered with type %s, requested %s",
		e.Name, e.Existing, e.Requested)
}

// CapacityError reports growth beyond the configured hard ceiling.
// The run cannot continue past it; callers surface it and abort.
type CapacityError struct {
	Requested int
	Ceiling   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("particles: growing to %d particles exceeds ceiling %d",
		e.Requested, e.Ceiling)
}
