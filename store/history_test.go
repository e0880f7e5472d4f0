package store_test

import (
	"strconv"
	"testing"

	"capacity-planner/models"
	"capacity-planner/store"

	"github.com/stretchr/testify/assert"
)

func TestHistory_UndoRedo(t *testing.T) {
	lob := seedLOB("lob-1", "WFS", "Care", "A", "B")
	first := store.New([]models.RawLoBEntry{lob})
	history := store.NewHistory(first, 0)

	second := first.SetTeamField("lob-1", "A", periodP, models.FieldVolumeMix, "60")
	history.Push(second)
	third := second.SetTeamField("lob-1", "A", periodP, models.FieldVolumeMix, "80")
	history.Push(third)

	assert.Same(t, third, history.Current())

	snap, ok := history.Undo()
	assert.True(t, ok)
	assert.Same(t, second, snap)

	snap, ok = history.Undo()
	assert.True(t, ok)
	assert.Same(t, first, snap)

	_, ok = history.Undo()
	assert.False(t, ok)

	snap, ok = history.Redo()
	assert.True(t, ok)
	assert.Same(t, second, snap)

	snap, ok = history.Redo()
	assert.True(t, ok)
	assert.Same(t, third, snap)

	_, ok = history.Redo()
	assert.False(t, ok)
}

func TestHistory_PushDiscardsRedoTail(t *testing.T) {
	lob := seedLOB("lob-1", "WFS", "Care", "A", "B")
	first := store.New([]models.RawLoBEntry{lob})
	history := store.NewHistory(first, 0)

	second := first.SetTeamField("lob-1", "A", periodP, models.FieldVolumeMix, "60")
	history.Push(second)
	history.Undo()

	branch := first.SetTeamField("lob-1", "B", periodP, models.FieldVolumeMix, "25")
	history.Push(branch)

	_, ok := history.Redo()
	assert.False(t, ok)
	assert.Same(t, branch, history.Current())
}

func TestHistory_PushNoOpSnapshotIgnored(t *testing.T) {
	lob := seedLOB("lob-1", "WFS", "Care", "A", "B")
	first := store.New([]models.RawLoBEntry{lob})
	history := store.NewHistory(first, 0)

	// A rejected edit returns the same snapshot; pushing it must not create
	// an empty undo step.
	same := first.SetTeamField("lob-1", "A", periodP, models.FieldVolumeMix, "garbage")
	history.Push(same)
	history.Push(nil)

	_, ok := history.Undo()
	assert.False(t, ok)
}

func TestHistory_LimitTrimsOldest(t *testing.T) {
	lob := seedLOB("lob-1", "WFS", "Care", "A", "B")
	snap := store.New([]models.RawLoBEntry{lob})
	history := store.NewHistory(snap, 3)

	for i := 1; i <= 5; i++ {
		snap = snap.SetTeamField("lob-1", "A", periodP, models.FieldVolumeMix, strconv.Itoa(i*10))
		history.Push(snap)
	}

	steps := 0
	for {
		if _, ok := history.Undo(); !ok {
			break
		}
		steps++
	}
	assert.Equal(t, 3, steps)
}
