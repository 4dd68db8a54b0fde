// Package interp implements the variable interpolator: a pure
// string/JSON transformer that resolves "{name}" substitutions against a
// variables environment, applied recursively to JSON.
package interp

import (
	"fmt"

	"pipewatch/internal/graph"
)

// maxIterations bounds runaway expansion cycles, per the spec.
const maxIterations = 16

// Error is returned for an unknown variable key or an unbalanced brace,
// both fatal to the enclosing hub interpretation.
type Error struct {
	Reason string
}

func (e *Error) Error() string { return "interpolation: " + e.Reason }

// Process repeatedly finds the last "{" and its matching "}", substitutes
// the keyed value, and rescans from the new last "{" — innermost-nested
// expansion first, so "{a{b}c}" resolves "{b}" before "{a...c}". An
// unknown key or an unmatched "{" is fatal. A hard iteration cap (16)
// guards against a cyclic or pathological input.
func Process(s string, vars graph.Variables) (string, error) {
	for i := 0; i < maxIterations; i++ {
		open := lastIndexByte(s, '{')
		if open == -1 {
			return s, nil
		}
		close := indexByteFrom(s, '}', open)
		if close == -1 {
			return "", &Error{Reason: fmt.Sprintf("unbalanced brace at %d in %q", open, s)}
		}
		key := s[open+1 : close]
		val, ok := vars[key]
		if !ok {
			return "", &Error{Reason: fmt.Sprintf("unknown variable %q", key)}
		}
		s = s[:open] + val + s[close+1:]
	}
	return "", &Error{Reason: fmt.Sprintf("iteration cap exceeded processing %q", s)}
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}

func indexByteFrom(s string, b byte, from int) int {
	for i := from; i < len(s); i++ {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// ProcessJSON walks j recursively, replacing every string leaf with
// Process(leaf, vars). Non-string leaves are returned untouched. j must
// be a value produced by encoding/json's generic decode (map[string]any,
// []any, string, float64, bool, nil).
func ProcessJSON(j any, vars graph.Variables) (any, error) {
	switch v := j.(type) {
	case string:
		return Process(v, vars)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			processed, err := ProcessJSON(val, vars)
			if err != nil {
				return nil, err
			}
			out[k] = processed
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			processed, err := ProcessJSON(val, vars)
			if err != nil {
				return nil, err
			}
			out[i] = processed
		}
		return out, nil
	default:
		return v, nil
	}
}

// Adapt applies defs — a JSON array of single-entry objects [{k: v}, ...]
// — onto vars in place. Both key and value are interpolated against the
// current vars before assignment, so later entries can reference earlier
// ones; later entries shadow earlier ones with the same key.
func Adapt(vars graph.Variables, defs []any) error {
	for _, raw := range defs {
		entry, ok := raw.(map[string]any)
		if !ok {
			return &Error{Reason: "vars entry is not an object"}
		}
		for k, rawVal := range entry {
			val, ok := rawVal.(string)
			if !ok {
				return &Error{Reason: fmt.Sprintf("vars entry %q is not a string", k)}
			}
			procKey, err := Process(k, vars)
			if err != nil {
				return err
			}
			procVal, err := Process(val, vars)
			if err != nil {
				return err
			}
			vars[procKey] = procVal
		}
	}
	return nil
}
