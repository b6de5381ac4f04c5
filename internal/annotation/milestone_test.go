package annotation

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talkincode/storebuilder/config"
)

func TestMilestoneGatedByValidatedComments(t *testing.T) {
	b := newEnabledBoard(t)
	c1 := addComment(t, b, "one")
	c2 := addComment(t, b, "two")
	addComment(t, b, "three")
	_, err := b.Validate(c1.ID)
	require.NoError(t, err)
	_, err = b.Validate(c2.ID)
	require.NoError(t, err)

	tr := NewTracker([]Milestone{
		{ID: 1, Name: "needs two", Price: 99, RequiredComments: 2},
		{ID: 2, Name: "needs three", Price: 199, RequiredComments: 3},
	})

	require.NoError(t, tr.Select(2))
	_, err = tr.Complete(b.ValidatedCount())
	var te *ThresholdError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 3, te.Required)
	assert.Equal(t, 2, te.Validated)
	assert.False(t, tr.IsCompleted(2))

	require.NoError(t, tr.Select(1))
	m, err := tr.Complete(b.ValidatedCount())
	require.NoError(t, err)
	assert.Equal(t, 1, m.ID)
	assert.True(t, tr.IsCompleted(1))
	_, selected := tr.Selected()
	assert.False(t, selected)
}

func TestCompletionIsIdempotent(t *testing.T) {
	tr := NewTracker(DefaultMilestones())
	_, err := tr.Unlock(1, 5)
	require.NoError(t, err)
	_, err = tr.Unlock(1, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, tr.Completed())

	assert.ErrorIs(t, tr.Select(1), ErrMilestoneCompleted)
}

func TestCompleteUngatedIsStillSetSemantics(t *testing.T) {
	tr := NewTracker(DefaultMilestones())
	require.NoError(t, tr.CompleteUngated(4))
	require.NoError(t, tr.CompleteUngated(4))
	assert.Equal(t, []int{4}, tr.Completed())
	assert.ErrorIs(t, tr.CompleteUngated(42), ErrMilestoneNotFound)
}

func TestCompleteWithoutSelection(t *testing.T) {
	tr := NewTracker(DefaultMilestones())
	_, err := tr.Complete(10)
	assert.ErrorIs(t, err, ErrNoMilestoneSelected)
	assert.ErrorIs(t, tr.Select(99), ErrMilestoneNotFound)
}

func TestViews(t *testing.T) {
	tr := NewTracker(DefaultMilestones())
	require.NoError(t, tr.Select(2))
	_, err := tr.Unlock(1, 1)
	require.NoError(t, err)

	views := tr.Views(3)
	require.Len(t, views, 4)
	assert.True(t, views[0].Completed)
	assert.True(t, views[1].Eligible)
	assert.True(t, views[1].Selected)
	assert.False(t, views[2].Eligible)
	assert.True(t, tr.Eligible(2, 3))
	assert.False(t, tr.Eligible(99, 100))
}

func TestMilestonesFromConfig(t *testing.T) {
	assert.Equal(t, DefaultMilestones(), MilestonesFromConfig(nil))
	got := MilestonesFromConfig([]config.MilestoneConfig{{ID: 7, Name: "Custom", Price: 10, RequiredComments: 4}})
	assert.Equal(t, []Milestone{{ID: 7, Name: "Custom", Price: 10, RequiredComments: 4}}, got)
}
