package recipe

import (
	"encoding/json"
	"fmt"
	"time"

	"gopkg.in/guregu/null.v3"
)

// Action identifies the kind of a step. The values are part of the persisted
// wire format and must not change.
type Action string

const (
	ActionNavigate Action = "navigate"
	ActionClick    Action = "click"
	ActionFill     Action = "fill"
	ActionWait     Action = "wait"
)

// Step is one atomic browser action within a recipe. Only the fields
// belonging to its Action are meaningful; Validate enforces the per-kind
// required fields so that a malformed step is rejected at construction or
// load time instead of surprising a replay halfway through.
//
// Timestamp records when the step was captured. It is informational only;
// the position in the recipe's step sequence is what determines replay
// order.
type Step struct {
	Action    Action
	Timestamp time.Time

	// Navigate
	URL string

	// Click and Fill
	Selector string

	// Click only. Human-readable label of the clicked element, kept for
	// diagnostics. Never used to locate the element.
	Text null.String

	// Fill only
	Value string

	// Wait only, in milliseconds.
	Duration int64
}

// Navigate returns a navigate step for url.
func Navigate(url string) Step {
	return Step{Action: ActionNavigate, Timestamp: time.Now(), URL: url}
}

// Click returns a click step for selector. text is the element label at
// capture time and may be empty.
func Click(selector, text string) Step {
	s := Step{Action: ActionClick, Timestamp: time.Now(), Selector: selector}
	if text != "" {
		s.Text = null.StringFrom(text)
	}
	return s
}

// Fill returns a fill step writing value into the element at selector.
func Fill(selector, value string) Step {
	return Step{Action: ActionFill, Timestamp: time.Now(), Selector: selector, Value: value}
}

// Wait returns a wait step sleeping for the given number of milliseconds.
func Wait(ms int64) Step {
	return Step{Action: ActionWait, Timestamp: time.Now(), Duration: ms}
}

// Validate checks that the step carries the fields its action requires.
func (s Step) Validate() error {
	switch s.Action {
	case ActionNavigate:
		if s.URL == "" {
			return &ValidationError{Reason: "navigate step without url"}
		}
	case ActionClick:
		if s.Selector == "" {
			return &ValidationError{Reason: "click step without selector"}
		}
	case ActionFill:
		if s.Selector == "" {
			return &ValidationError{Reason: "fill step without selector"}
		}
	case ActionWait:
		if s.Duration < 0 {
			return &ValidationError{Reason: fmt.Sprintf("wait step with negative duration %d", s.Duration)}
		}
	default:
		return &ValidationError{Reason: fmt.Sprintf("unknown action %q", s.Action)}
	}
	return nil
}

// placeholders returns the placeholder names referenced by the step's string
// fields, in order of appearance.
func (s Step) placeholders() []string {
	var names []string
	for _, f := range s.stringFields() {
		names = append(names, placeholderNames(f)...)
	}
	return names
}

func (s Step) stringFields() []string {
	fields := []string{s.URL, s.Selector, s.Value}
	if s.Text.Valid {
		fields = append(fields, s.Text.String)
	}
	return fields
}

// stepJSON is the wire form of a Step. Field names and the action values are
// a persistence contract (see the store package).
type stepJSON struct {
	Action    Action  `json:"action"`
	Timestamp string  `json:"timestamp,omitempty"`
	URL       string  `json:"url,omitempty"`
	Selector  string  `json:"selector,omitempty"`
	Text      *string `json:"text,omitempty"`
	Value     string  `json:"value,omitempty"`
	Duration  *int64  `json:"duration,omitempty"`
}

// MarshalJSON writes only the fields relevant to the step's action.
func (s Step) MarshalJSON() ([]byte, error) {
	out := stepJSON{Action: s.Action}
	if !s.Timestamp.IsZero() {
		out.Timestamp = s.Timestamp.Format(time.RFC3339Nano)
	}
	switch s.Action {
	case ActionNavigate:
		out.URL = s.URL
	case ActionClick:
		out.Selector = s.Selector
		out.Text = s.Text.Ptr()
	case ActionFill:
		out.Selector = s.Selector
		out.Value = s.Value
	case ActionWait:
		d := s.Duration
		out.Duration = &d
	}
	return json.Marshal(out)
}

// UnmarshalJSON parses the wire form and validates it.
func (s *Step) UnmarshalJSON(data []byte) error {
	var in stepJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = Step{
		Action:   in.Action,
		URL:      in.URL,
		Selector: in.Selector,
		Text:     null.StringFromPtr(in.Text),
		Value:    in.Value,
	}
	if in.Duration != nil {
		s.Duration = *in.Duration
	}
	if in.Timestamp != "" {
		ts, err := time.Parse(time.RFC3339Nano, in.Timestamp)
		if err != nil {
			return &ValidationError{Reason: fmt.Sprintf("bad step timestamp %q", in.Timestamp)}
		}
		s.Timestamp = ts
	}
	return s.Validate()
}
