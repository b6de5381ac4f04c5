package wizard

// Flow is an immutable ordered list of steps.
type Flow struct {
	steps []Step
}

// NewFlow validates steps and returns a flow over a private copy of them.
func NewFlow(steps []Step) (*Flow, error) {
	if len(steps) == 0 {
		return nil, ErrEmptyFlow
	}
	seen := make(map[FieldKey]struct{}, len(steps))
	for i, s := range steps {
		if s.Field == "" {
			return nil, &StepError{Index: i, Field: s.Field, Reason: "empty field key"}
		}
		if _, dup := seen[s.Field]; dup {
			return nil, &StepError{Index: i, Field: s.Field, Reason: "duplicate field key"}
		}
		seen[s.Field] = struct{}{}
	}
	cp := make([]Step, len(steps))
	copy(cp, steps)
	return &Flow{steps: cp}, nil
}

// Len returns the number of steps.
func (f *Flow) Len() int {
	return len(f.steps)
}

// Step returns the step at i.
func (f *Flow) Step(i int) (Step, bool) {
	if i < 0 || i >= len(f.steps) {
		return Step{}, false
	}
	return f.steps[i], true
}

// Steps returns a copy of the step list.
func (f *Flow) Steps() []Step {
	cp := make([]Step, len(f.steps))
	copy(cp, f.steps)
	return cp
}

// NextVisible returns the smallest index j > from whose step is visible
// against answers, or Len() when every remaining step is skipped.
func (f *Flow) NextVisible(from int, answers Answers) int {
	for j := from + 1; j < len(f.steps); j++ {
		if f.steps[j].When.Holds(answers) {
			return j
		}
	}
	return len(f.steps)
}
