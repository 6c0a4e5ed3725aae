package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// MalformedOutputError is returned when a completion expected to be
// structured data cannot be parsed. Raw carries the full model output for
// diagnosis; it is never silently coerced into an empty structure.
type MalformedOutputError struct {
	Raw string
	Err error
}

func (e *MalformedOutputError) Error() string {
	return fmt.Sprintf("malformed model output: %v", e.Err)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Err
}

// ExtractJSON parses the first JSON object embedded in a completion into v.
// Models often wrap JSON in prose or code fences, so the object is located by
// its outermost brace window before unmarshaling.
func ExtractJSON(raw string, v any) error {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < start {
		return &MalformedOutputError{Raw: raw, Err: fmt.Errorf("no JSON object found")}
	}

	if err := json.Unmarshal([]byte(raw[start:end+1]), v); err != nil {
		return &MalformedOutputError{Raw: raw, Err: err}
	}
	return nil
}
