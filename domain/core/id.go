package core

import (
	"fmt"

	"github.com/google/uuid"
)

// RunID identifies a single pipeline run. All per-run artifacts and log
// files carry it so outputs can be correlated.
type RunID string

// NewRunID creates a new time-ordered run identifier using UUID v7,
// falling back to v4 if v7 generation fails.
func NewRunID() RunID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return RunID(id.String())
}

// String returns the string representation.
func (id RunID) String() string { return string(id) }

// IsEmpty checks if the ID is empty.
func (id RunID) IsEmpty() bool { return id == "" }

// HypothesisID identifies one hypothesis within a run ("HYP-OVERALL-ROAS",
// "HYP-001", ...). IDs are assigned in generation order and are stable for
// identical inputs.
type HypothesisID string

// String returns the string representation.
func (id HypothesisID) String() string { return string(id) }

// OverallHypothesisID is the fixed ID of the account-level ROAS hypothesis.
const OverallHypothesisID HypothesisID = "HYP-OVERALL-ROAS"

// SequentialHypothesisID formats the nth campaign-level hypothesis ID.
func SequentialHypothesisID(n int) HypothesisID {
	return HypothesisID(fmt.Sprintf("HYP-%03d", n))
}
