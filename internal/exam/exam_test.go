package exam

import (
	"testing"

	"github.com/google/uuid"
)

func TestPartitionCount(t *testing.T) {
	t.Parallel()

	cases := []struct {
		n    int
		want int
	}{
		{9, 1},
		{40, 1},
		{49, 1},
		{50, 2},
		{120, 2},
		{149, 2},
		{150, 5},
		{250, 5},
		{299, 5},
		{300, 10},
		{500, 10},
	}

	for _, tc := range cases {
		if got := PartitionCount(tc.n); got != tc.want {
			t.Errorf("PartitionCount(%d) = %d, want %d", tc.n, got, tc.want)
		}
	}
}

func TestPartitionBalanced(t *testing.T) {
	t.Parallel()

	for _, n := range []int{40, 120, 250, 500} {
		ids := make([]uuid.UUID, n)
		for i := range ids {
			ids[i] = uuid.New()
		}

		k := PartitionCount(n)
		groups := Partition(ids, k)

		if len(groups) != k {
			t.Fatalf("n=%d: got %d groups, want %d", n, len(groups), k)
		}

		total := 0
		minSize, maxSize := n, 0
		seen := map[uuid.UUID]bool{}
		for _, group := range groups {
			total += len(group)
			if len(group) < minSize {
				minSize = len(group)
			}
			if len(group) > maxSize {
				maxSize = len(group)
			}
			for _, id := range group {
				if seen[id] {
					t.Errorf("n=%d: id %s assigned twice", n, id)
				}
				seen[id] = true
			}
		}

		if total != n {
			t.Errorf("n=%d: partition sizes sum to %d", n, total)
		}
		if maxSize-minSize > 1 {
			t.Errorf("n=%d: partition sizes differ by %d", n, maxSize-minSize)
		}
	}
}

func TestSentenceCountFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		candidates int
		want       int
	}{
		{1, 3},
		{4, 3},
		{6, 3},
		{7, 3},
		{8, 4},
		{9, 4},
		{10, 5},
	}

	for _, tc := range cases {
		if got := sentenceCountFor(tc.candidates); got != tc.want {
			t.Errorf("sentenceCountFor(%d) = %d, want %d", tc.candidates, got, tc.want)
		}
	}
}
