package operations

import (
	"time"
)

// Pipeline step identifiers
const (
	StepIDStandardize  = "standardize"
	StepIDMaster       = "master"
	StepIDPrevalentZip = "prevalent_zip"
	StepIDCoordinates  = "coordinates"
)

// Pipeline step names
const (
	StepNameStandardize  = "Standardize Extracts"
	StepNameMaster       = "Build Master Tables"
	StepNamePrevalentZip = "Assign Prevalent ZIP"
	StepNameCoordinates  = "Attach Coordinates"
)

// StepAll requests every registered step
const StepAll = "all"

// Context keys for data shared between steps
const (
	ContextKeyDictionary = "dictionary"
	ContextKeyPeriods    = "periods"
	ContextKeyEnriched   = "enriched_energy"
)

// Step metadata keys recorded for run summaries
const (
	MetadataFiles    = "files"
	MetadataRows     = "rows"
	MetadataMapped   = "mapped"
	MetadataUnmapped = "unmapped"
	MetadataSkipped  = "skipped"
	MetadataOutputs  = "outputs"
)

// MetadataCollisions counts reference keys overwritten while building a mapping
const MetadataCollisions = "collisions"

// DefaultStepTimeout bounds a single step
const DefaultStepTimeout = 30 * time.Minute

// OperationRequest represents a request to execute an operation
type OperationRequest struct {
	ID string `json:"id"`
	// Step names one step to run with its dependencies. Empty or StepAll
	// runs every registered step.
	Step string `json:"step,omitempty"`
	// Parameters are copied into the operation config
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// OperationResponse represents the response from an operation execution
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Order    []string              `json:"order"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`
}
