package study

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
)

func makeEntries(n int, isRecheck bool) []Entry {
	entries := make([]Entry, n)
	for i := range entries {
		entries[i] = Entry{
			ItemID:    uuid.New(),
			WordID:    uuid.New(),
			Word:      fmt.Sprintf("word-%d-%v", i, isRecheck),
			IsRecheck: isRecheck,
		}
	}
	return entries
}

func TestInterleaveSmallNewPool(t *testing.T) {
	t.Parallel()

	// 2 new, 5 pending: new items first, then all pending items.
	a := makeEntries(2, false)
	b := makeEntries(5, true)

	out := Interleave(a, b)

	if len(out) != 7 {
		t.Fatalf("len = %d, want 7", len(out))
	}
	for i := 0; i < 2; i++ {
		if out[i].IsRecheck {
			t.Errorf("position %d: want new item, got recheck", i)
		}
	}
	for i := 2; i < 7; i++ {
		if !out[i].IsRecheck {
			t.Errorf("position %d: want recheck item, got new", i)
		}
	}
}

func TestInterleaveSmallRecheckPool(t *testing.T) {
	t.Parallel()

	// 10 new, 2 pending: the pending items form one contiguous block
	// immediately after the 3rd new item.
	a := makeEntries(10, false)
	b := makeEntries(2, true)

	out := Interleave(a, b)

	if len(out) != 12 {
		t.Fatalf("len = %d, want 12", len(out))
	}
	if !out[3].IsRecheck || !out[4].IsRecheck {
		t.Errorf("positions 3-4 should hold the recheck block, got %v %v",
			out[3].IsRecheck, out[4].IsRecheck)
	}
	for i, entry := range out {
		if i == 3 || i == 4 {
			continue
		}
		if entry.IsRecheck {
			t.Errorf("position %d: unexpected recheck item", i)
		}
	}
}

func TestInterleaveBlocksOfThree(t *testing.T) {
	t.Parallel()

	// 10 new, 10 pending: blocks of 3 pending items after new items 3, 6,
	// 9 and after the final new item.
	a := makeEntries(10, false)
	b := makeEntries(10, true)

	out := Interleave(a, b)

	if len(out) != 20 {
		t.Fatalf("len = %d, want 20", len(out))
	}

	recheckAt := map[int]bool{}
	for i, entry := range out {
		if entry.IsRecheck {
			recheckAt[i] = true
		}
	}
	// Layout: a a a [b b b] a a a [b b b] a a a [b b b] a [b]
	wantRecheck := []int{3, 4, 5, 9, 10, 11, 15, 16, 17, 19}
	if len(recheckAt) != len(wantRecheck) {
		t.Fatalf("recheck count = %d, want %d", len(recheckAt), len(wantRecheck))
	}
	for _, pos := range wantRecheck {
		if !recheckAt[pos] {
			t.Errorf("position %d: want recheck item", pos)
		}
	}

	// No duplicates, and the output covers exactly A union B.
	seen := map[uuid.UUID]bool{}
	for _, entry := range out {
		if seen[entry.ItemID] {
			t.Errorf("duplicate item %s in output", entry.ItemID)
		}
		seen[entry.ItemID] = true
	}
	for _, entry := range append(a, b...) {
		if !seen[entry.ItemID] {
			t.Errorf("item %s missing from output", entry.ItemID)
		}
	}
}

func TestInterleaveEmptyRecheckPool(t *testing.T) {
	t.Parallel()

	a := makeEntries(7, false)
	out := Interleave(a, nil)

	if len(out) != 7 {
		t.Fatalf("len = %d, want 7", len(out))
	}
	for i, entry := range out {
		if entry.ItemID != a[i].ItemID {
			t.Errorf("position %d: order changed", i)
		}
	}
}

func TestInterleaveNoDoubleBlockOnAlignedEnd(t *testing.T) {
	t.Parallel()

	// |A| = 9: the final item is also a 3rd item; only one block follows it.
	a := makeEntries(9, false)
	b := makeEntries(9, true)

	out := Interleave(a, b)

	if len(out) != 18 {
		t.Fatalf("len = %d, want 18", len(out))
	}
	// Layout: a a a [b b b] a a a [b b b] a a a [b b b]
	for _, pos := range []int{3, 4, 5, 9, 10, 11, 15, 16, 17} {
		if !out[pos].IsRecheck {
			t.Errorf("position %d: want recheck item", pos)
		}
	}
}

func TestModeValid(t *testing.T) {
	t.Parallel()

	for _, mode := range []Mode{ModeNew, ModeReview, ModeRandom, ModeFinal} {
		if !mode.Valid() {
			t.Errorf("mode %q should be valid", mode)
		}
	}
	if Mode("cram").Valid() {
		t.Error("unknown mode should be invalid")
	}
}

func TestOutcomeValid(t *testing.T) {
	t.Parallel()

	for _, o := range []Outcome{OutcomeCorrect, OutcomeIncorrect, OutcomeSkip} {
		if !o.Valid() {
			t.Errorf("outcome %q should be valid", o)
		}
	}
	if Outcome("maybe").Valid() {
		t.Error("unknown outcome should be invalid")
	}
}
