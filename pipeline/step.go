package pipeline

import (
	"encoding/json"
	"strings"
)

// Step is one entry in a pipeline's step sequence. It will be a pointer to
// one of:
// - CommandStep
// - WaitStep
// - BlockStep
// - TriggerStep
type Step interface {
	stepTag() // allow only the step types above

	selfInterpolater
}

// Branches is an ordered list of branch-match patterns. The wire format
// wants a single space-joined string, so that is how it marshals.
type Branches []string

// MarshalJSON marshals the patterns as one space-joined string.
func (b Branches) MarshalJSON() ([]byte, error) {
	return json.Marshal(strings.Join(b, " "))
}

// MarshalYAML marshals the patterns as one space-joined string.
func (b Branches) MarshalYAML() (any, error) {
	return strings.Join(b, " "), nil
}
