package wizard

// Run is the progress of one participant through a flow. The pointer only
// moves forward; once it passes the last step the run is completed.
type Run struct {
	flow    *Flow
	index   int
	answers Answers
}

// NewRun starts a run on the first visible step.
func NewRun(flow *Flow) *Run {
	r := &Run{flow: flow, answers: Answers{}}
	r.index = flow.NextVisible(-1, r.answers)
	return r
}

// Index is the current step position; Len() of the flow once completed.
func (r *Run) Index() int {
	return r.index
}

// Done reports whether the run reached the terminal state.
func (r *Run) Done() bool {
	return r.index >= r.flow.Len()
}

// Current returns the step awaiting an answer.
func (r *Run) Current() (Step, bool) {
	if r.Done() {
		return Step{}, false
	}
	return r.flow.Step(r.index)
}

// Answers returns a copy of the collected answers.
func (r *Run) Answers() Answers {
	return r.answers.Clone()
}

// Progress is the completed share of the flow in percent.
func (r *Run) Progress() float64 {
	n := r.flow.Len()
	idx := r.index
	if idx > n {
		idx = n
	}
	return float64(idx) / float64(n) * 100
}

// Select answers the current option step with value.
func (r *Run) Select(value string) error {
	step, ok := r.Current()
	if !ok {
		return ErrCompleted
	}
	if step.FreeText() {
		return ErrFreeTextStep
	}
	if !step.hasOption(value) {
		return ErrUnknownOption
	}
	r.apply(step, value)
	return nil
}

// Answer answers the current free-text step with text.
func (r *Run) Answer(text string) error {
	step, ok := r.Current()
	if !ok {
		return ErrCompleted
	}
	if !step.FreeText() {
		return ErrOptionStep
	}
	r.apply(step, text)
	return nil
}

func (r *Run) apply(step Step, value string) {
	r.answers[step.Field] = value
	r.index = r.flow.NextVisible(r.index, r.answers)
}

// State is a serializable view of a run.
type State struct {
	Index    int     `json:"index"`
	Total    int     `json:"total"`
	Done     bool    `json:"done"`
	Progress float64 `json:"progress"`
	Current  *Step   `json:"current,omitempty"`
	Answers  Answers `json:"answers"`
}

// Snapshot captures the run for rendering.
func (r *Run) Snapshot() State {
	st := State{
		Index:    r.index,
		Total:    r.flow.Len(),
		Done:     r.Done(),
		Progress: r.Progress(),
		Answers:  r.Answers(),
	}
	if step, ok := r.Current(); ok {
		st.Current = &step
	}
	return st
}
