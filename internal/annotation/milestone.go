package annotation

import (
	"errors"
	"fmt"
	"sort"

	"github.com/talkincode/storebuilder/config"
)

// Milestone is a paid unlock tier gated by validated comments.
type Milestone struct {
	ID               int     `json:"id"`
	Name             string  `json:"name"`
	Price            float64 `json:"price"`
	RequiredComments int     `json:"required_comments"`
}

// DefaultMilestones is the catalog offered when none is configured.
func DefaultMilestones() []Milestone {
	return []Milestone{
		{ID: 1, Name: "Store Setup", Price: 99, RequiredComments: 1},
		{ID: 2, Name: "Product Upload", Price: 199, RequiredComments: 3},
		{ID: 3, Name: "Payment Integration", Price: 299, RequiredComments: 5},
		{ID: 4, Name: "Launch", Price: 499, RequiredComments: 8},
	}
}

// MilestonesFromConfig converts configured milestones; an empty list yields
// the defaults.
func MilestonesFromConfig(cfgs []config.MilestoneConfig) []Milestone {
	if len(cfgs) == 0 {
		return DefaultMilestones()
	}
	out := make([]Milestone, 0, len(cfgs))
	for _, c := range cfgs {
		out = append(out, Milestone{ID: c.ID, Name: c.Name, Price: c.Price, RequiredComments: c.RequiredComments})
	}
	return out
}

var (
	ErrMilestoneNotFound   = errors.New("milestone: not found")
	ErrMilestoneCompleted  = errors.New("milestone: already completed")
	ErrNoMilestoneSelected = errors.New("milestone: none selected")
)

// ThresholdError is returned when a milestone is completed before enough
// comments were validated.
type ThresholdError struct {
	MilestoneID int
	Required    int
	Validated   int
}

func (e *ThresholdError) Error() string {
	return fmt.Sprintf("milestone %d: %d validated comments, %d required", e.MilestoneID, e.Validated, e.Required)
}

// Tracker keeps the completed-set and the milestone picked for payment.
type Tracker struct {
	catalog   []Milestone
	completed map[int]struct{}
	selected  int
}

// NewTracker creates a tracker over catalog.
func NewTracker(catalog []Milestone) *Tracker {
	return &Tracker{
		catalog:   append([]Milestone(nil), catalog...),
		completed: make(map[int]struct{}),
	}
}

// Catalog returns the milestones in display order.
func (t *Tracker) Catalog() []Milestone {
	return append([]Milestone(nil), t.catalog...)
}

// Get looks a milestone up by id.
func (t *Tracker) Get(id int) (Milestone, error) {
	for _, m := range t.catalog {
		if m.ID == id {
			return m, nil
		}
	}
	return Milestone{}, ErrMilestoneNotFound
}

// Eligible reports whether validated comments meet the milestone threshold.
func (t *Tracker) Eligible(id, validated int) bool {
	m, err := t.Get(id)
	if err != nil {
		return false
	}
	return validated >= m.RequiredComments
}

// Select picks a milestone for payment. Completed milestones cannot be picked.
func (t *Tracker) Select(id int) error {
	if _, err := t.Get(id); err != nil {
		return err
	}
	if t.IsCompleted(id) {
		return ErrMilestoneCompleted
	}
	t.selected = id
	return nil
}

// Selected returns the picked milestone, if any.
func (t *Tracker) Selected() (Milestone, bool) {
	if t.selected == 0 {
		return Milestone{}, false
	}
	m, err := t.Get(t.selected)
	return m, err == nil
}

// Complete pays for the selected milestone. It succeeds only when validated
// meets the threshold; the selection is cleared on success.
func (t *Tracker) Complete(validated int) (Milestone, error) {
	m, ok := t.Selected()
	if !ok {
		return Milestone{}, ErrNoMilestoneSelected
	}
	if _, err := t.Unlock(m.ID, validated); err != nil {
		return Milestone{}, err
	}
	t.selected = 0
	return m, nil
}

// Unlock adds id to the completed-set when validated meets its threshold.
// Unlocking a completed milestone again changes nothing.
func (t *Tracker) Unlock(id, validated int) (Milestone, error) {
	m, err := t.Get(id)
	if err != nil {
		return Milestone{}, err
	}
	if validated < m.RequiredComments {
		return Milestone{}, &ThresholdError{MilestoneID: m.ID, Required: m.RequiredComments, Validated: validated}
	}
	t.completed[m.ID] = struct{}{}
	return m, nil
}

// CompleteUngated marks a milestone completed without checking the threshold.
//
// Deprecated: unlocking must go through Complete so the validated-comment
// threshold is enforced.
func (t *Tracker) CompleteUngated(id int) error {
	if _, err := t.Get(id); err != nil {
		return err
	}
	t.completed[id] = struct{}{}
	if t.selected == id {
		t.selected = 0
	}
	return nil
}

// IsCompleted reports membership in the completed-set.
func (t *Tracker) IsCompleted(id int) bool {
	_, ok := t.completed[id]
	return ok
}

// Completed returns the completed ids in ascending order.
func (t *Tracker) Completed() []int {
	out := make([]int, 0, len(t.completed))
	for id := range t.completed {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// MilestoneView is a catalog entry with its state for a given validated count.
type MilestoneView struct {
	Milestone
	Completed bool `json:"completed"`
	Eligible  bool `json:"eligible"`
	Selected  bool `json:"selected"`
}

// Views renders the catalog against the validated count.
func (t *Tracker) Views(validated int) []MilestoneView {
	out := make([]MilestoneView, 0, len(t.catalog))
	for _, m := range t.catalog {
		out = append(out, MilestoneView{
			Milestone: m,
			Completed: t.IsCompleted(m.ID),
			Eligible:  validated >= m.RequiredComments,
			Selected:  t.selected == m.ID,
		})
	}
	return out
}
