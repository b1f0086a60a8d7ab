package state

import (
	tuitree "github.com/glabrego/tidings/internal/tui/tree"
)

func ClampCursor(cursor, size int) int {
	if size <= 0 {
		return 0
	}
	if cursor >= size {
		return size - 1
	}
	if cursor < 0 {
		return 0
	}
	return cursor
}

// HalfPageStep is the ctrl+d/ctrl+u distance for a list region of the
// given height.
func HalfPageStep(height int) int {
	if height <= 0 {
		return 5
	}
	step := height / 2
	if step < 1 {
		step = 1
	}
	return step
}

func CenteredWindow(totalRows, cursor, height int) (int, int) {
	if totalRows <= 0 {
		return 0, 0
	}
	if height <= 0 || totalRows <= height {
		return 0, totalRows
	}
	cursor = ClampCursor(cursor, totalRows)
	start := cursor - height/2
	if start < 0 {
		start = 0
	}
	maxStart := totalRows - height
	if start > maxStart {
		start = maxStart
	}
	return start, start + height
}

// Anchor remembers what the cursor pointed at before a tree rebuild.
// EntryID is zero when the cursor sat on a feed row.
type Anchor struct {
	FeedID  int64
	EntryID int64
	Index   int
}

func AnchorOf(tr *tuitree.Tree, cursor int) Anchor {
	a := Anchor{Index: cursor}
	row, ok := tr.RowAt(cursor)
	if !ok {
		return a
	}
	a.FeedID = row.FeedID
	a.EntryID = row.EntryID
	return a
}

// RestoreCursor finds the anchored identity in the rebuilt tree: the exact
// entry first, then its feed's row, then the nearest preceding index.
func RestoreCursor(tr *tuitree.Tree, a Anchor) int {
	if a.EntryID != 0 {
		if i := tr.IndexOfEntry(a.EntryID); i >= 0 {
			return i
		}
	}
	if a.FeedID != 0 {
		if i := tr.IndexOfFeed(a.FeedID); i >= 0 {
			return i
		}
	}
	return ClampCursor(a.Index-1, tr.RowCount())
}
