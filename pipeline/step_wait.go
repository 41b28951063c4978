package pipeline

import "encoding/json"

// WaitStep models a wait step: the build pauses until every earlier step has
// finished.
type WaitStep struct {
	// ContinueOnFailure lets steps after the wait run even when an earlier
	// step failed.
	ContinueOnFailure bool
}

// MarshalJSON marshals a plain wait step as the literal string "wait". The
// continue-on-failure form takes the mapping shape the consumer expects.
func (s *WaitStep) MarshalJSON() ([]byte, error) {
	if !s.ContinueOnFailure {
		return json.Marshal("wait")
	}
	return json.Marshal(map[string]map[string]bool{
		"wait": {"continue_on_failure": true},
	})
}

// MarshalYAML returns the same two shapes for YAML encoding.
func (s *WaitStep) MarshalYAML() (any, error) {
	if !s.ContinueOnFailure {
		return "wait", nil
	}
	return map[string]map[string]bool{
		"wait": {"continue_on_failure": true},
	}, nil
}

func (s *WaitStep) interpolate(stringTransformer) error {
	return nil
}

func (*WaitStep) stepTag() {}
