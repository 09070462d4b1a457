package report

import "github.com/google/uuid"

// tally counts ids in insertion order. Ties go to the id seen first.
type tally struct {
	order  []uuid.UUID
	counts map[uuid.UUID]int
}

func newTally() *tally {
	return &tally{counts: make(map[uuid.UUID]int)}
}

func (t *tally) add(id uuid.UUID) {
	if _, seen := t.counts[id]; !seen {
		t.order = append(t.order, id)
	}
	t.counts[id]++
}

// top returns the most frequent id, or false when nothing was added.
func (t *tally) top() (uuid.UUID, bool) {
	var best uuid.UUID
	bestCount := 0
	for _, id := range t.order {
		if n := t.counts[id]; n > bestCount {
			best, bestCount = id, n
		}
	}
	return best, bestCount > 0
}
