package core

import "github.com/google/uuid"

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	// Use UUID v7 for time-ordered, sortable IDs
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to v4 if v7 fails
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	RunID        ID
	EvaluationID ID
)

// String conversions for domain IDs
func (id RunID) String() string        { return ID(id).String() }
func (id EvaluationID) String() string { return ID(id).String() }

// NewRunID creates an identifier for a batch of evaluations
func NewRunID() RunID { return RunID(NewID()) }

// NewEvaluationID creates an identifier for a single likelihood evaluation
func NewEvaluationID() EvaluationID { return EvaluationID(NewID()) }
