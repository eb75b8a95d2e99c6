package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invite-sh/server/internal/model"
)

// Violation records one field-level schema failure.
type Violation struct {
	Field  string
	Reason string
}

func (v Violation) String() string { return v.Field + ": " + v.Reason }

// Violations aggregates every failure found in a model response. Any
// violation fails the whole extraction; a partially-validated invite set is
// worse than none.
type Violations []Violation

func (vs Violations) Error() string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = v.String()
	}
	return "schema violations: " + strings.Join(parts, "; ")
}

// decodeEvents enforces the output contract: a single object whose only field
// is an ordered events array.
func decodeEvents(raw string) ([]json.RawMessage, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	var top struct {
		Events *[]json.RawMessage `json:"events"`
	}
	if err := dec.Decode(&top); err != nil {
		return nil, fmt.Errorf("response is not the expected object: %w", err)
	}
	if top.Events == nil {
		return nil, fmt.Errorf("response is missing the events field")
	}
	return *top.Events, nil
}

// validateEvent coerces one raw event into a model.Event, collecting a
// violation per failed field rather than stopping at the first.
func validateEvent(idx int, raw json.RawMessage) (model.Event, Violations) {
	field := func(name string) string { return fmt.Sprintf("events[%d].%s", idx, name) }

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return model.Event{}, Violations{{Field: fmt.Sprintf("events[%d]", idx), Reason: "not an object"}}
	}

	var vs Violations
	ev := model.Event{AllDay: false, Busy: true}

	requireText := func(name string, dst *string) {
		r, ok := fields[name]
		if !ok {
			vs = append(vs, Violation{Field: field(name), Reason: "required field absent"})
			return
		}
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			vs = append(vs, Violation{Field: field(name), Reason: "must be a string"})
			return
		}
		if s == "" {
			vs = append(vs, Violation{Field: field(name), Reason: "must not be empty"})
			return
		}
		*dst = s
	}
	requireText("title", &ev.Title)
	requireText("start", &ev.Start)
	requireText("end", &ev.End)

	optionalBool := func(name string, dst *bool) {
		r, ok := fields[name]
		if !ok || string(r) == "null" {
			return
		}
		var b bool
		if err := json.Unmarshal(r, &b); err != nil {
			vs = append(vs, Violation{Field: field(name), Reason: "must be a boolean"})
			return
		}
		*dst = b
	}
	optionalBool("allDay", &ev.AllDay)
	optionalBool("busy", &ev.Busy)

	optionalText := func(name string, dst **string) {
		r, ok := fields[name]
		if !ok || string(r) == "null" {
			return
		}
		var s string
		if err := json.Unmarshal(r, &s); err != nil {
			vs = append(vs, Violation{Field: field(name), Reason: "must be a string"})
			return
		}
		if s == "" {
			return
		}
		*dst = &s
	}
	optionalText("rRule", &ev.RRule)
	optionalText("description", &ev.Description)
	optionalText("location", &ev.Location)

	if len(vs) > 0 {
		return model.Event{}, vs
	}
	return ev, nil
}
