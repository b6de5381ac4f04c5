package wizard

import (
	"errors"
	"fmt"
)

// FieldKey names the answer slot a step writes to.
type FieldKey string

// Answers maps field keys to the collected string values.
type Answers map[FieldKey]string

// Clone returns an independent copy.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Option is a fixed answer offered by a step.
type Option struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Condition decides whether a step is shown. A step is visible when every
// configured clause holds: Equals is an any-of match, NotEquals a none-of
// match, and Predicate an arbitrary check over the answers collected so far.
type Condition struct {
	Field     FieldKey           `json:"field"`
	Equals    []string           `json:"equals,omitempty"`
	NotEquals []string           `json:"not_equals,omitempty"`
	Predicate func(Answers) bool `json:"-"`
}

// Holds evaluates the condition. A nil condition always holds.
func (c *Condition) Holds(answers Answers) bool {
	if c == nil {
		return true
	}
	v, answered := answers[c.Field]
	if len(c.Equals) > 0 && (!answered || !contains(c.Equals, v)) {
		return false
	}
	if len(c.NotEquals) > 0 && answered && contains(c.NotEquals, v) {
		return false
	}
	if c.Predicate != nil && !c.Predicate(answers) {
		return false
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Step is one question of a flow.
type Step struct {
	Title   string     `json:"title"`
	Field   FieldKey   `json:"field"`
	Options []Option   `json:"options,omitempty"`
	When    *Condition `json:"when,omitempty"`
}

// FreeText reports whether the step takes typed text rather than an option.
func (s Step) FreeText() bool {
	return len(s.Options) == 0
}

func (s Step) hasOption(value string) bool {
	for _, o := range s.Options {
		if o.Value == value {
			return true
		}
	}
	return false
}

var (
	ErrEmptyFlow     = errors.New("wizard: flow has no steps")
	ErrCompleted     = errors.New("wizard: flow already completed")
	ErrUnknownOption = errors.New("wizard: value is not one of the step options")
	ErrFreeTextStep  = errors.New("wizard: step expects typed text")
	ErrOptionStep    = errors.New("wizard: step expects an option")
)

// StepError reports an invalid step definition.
type StepError struct {
	Index  int
	Field  FieldKey
	Reason string
}

func (e *StepError) Error() string {
	return fmt.Sprintf("wizard: step %d (%q): %s", e.Index, e.Field, e.Reason)
}
