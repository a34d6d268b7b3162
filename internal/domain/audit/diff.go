package audit

import "fmt"

// Change is the old and new value of one field.
type Change struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Diff calculates the difference between old and new states.
func Diff(oldState, newState map[string]any) map[string]Change {
	changes := make(map[string]Change)

	for key, newVal := range newState {
		oldVal, exists := oldState[key]
		if !exists {
			changes[key] = Change{Old: nil, New: newVal}
		} else if !equal(oldVal, newVal) {
			changes[key] = Change{Old: oldVal, New: newVal}
		}
	}

	for key, oldVal := range oldState {
		if _, exists := newState[key]; !exists {
			changes[key] = Change{Old: oldVal, New: nil}
		}
	}

	return changes
}

// equal compares by printed form, which is what the audit trail shows.
func equal(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}
