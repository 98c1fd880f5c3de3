package scheduler

import (
	"container/heap"
	"time"
)

// Occurrence is one run time produced by a Timeline.
type Occurrence struct {
	Label      string
	Expression *Expression
	Time       time.Time
}

// entry represents one expression's pending occurrence in the heap.
type entry struct {
	label   string
	cursor  *Cursor
	nextRun time.Time
	seq     int
}

// entryHeap is a min-heap of entries ordered by nextRun (earliest
// first), ties broken by insertion order.
type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].nextRun.Equal(h[j].nextRun) {
		return h[i].seq < h[j].seq
	}
	return h[i].nextRun.Before(h[j].nextRun)
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x any)   { *h = append(*h, x.(entry)) }
func (h *entryHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// Timeline merges the occurrences of several expressions into a single
// ascending sequence. Like Cursor, it is owned by one caller.
type Timeline struct {
	start time.Time
	heap  entryHeap
	seq   int
	// err is the most recent failure to advance an exhausted entry.
	err error
}

// NewTimeline creates an empty Timeline whose occurrences all fall
// strictly after start.
func NewTimeline(start time.Time) *Timeline {
	return &Timeline{start: start}
}

// Add registers an expression under label. It fails if the expression
// has no occurrence within the lookahead horizon.
func (tl *Timeline) Add(label string, expr *Expression) error {
	cursor := NewCursor(expr, tl.start)
	next, err := cursor.Next()
	if err != nil {
		return err
	}
	heap.Push(&tl.heap, entry{label: label, cursor: cursor, nextRun: next, seq: tl.seq})
	tl.seq++
	return nil
}

// Len returns the number of expressions that still have occurrences.
func (tl *Timeline) Len() int { return tl.heap.Len() }

// Next pops the earliest pending occurrence. An expression whose
// following occurrence lies beyond the horizon leaves the timeline;
// once every expression has left, Next returns the last such error. A
// timeline that never held an expression reports a *ComputeError with
// an empty Expression.
func (tl *Timeline) Next() (Occurrence, error) {
	if tl.heap.Len() == 0 {
		if tl.err != nil {
			return Occurrence{}, tl.err
		}
		return Occurrence{}, &ComputeError{Kind: NoMatchFound, From: tl.start.UTC().Truncate(time.Minute)}
	}

	e := heap.Pop(&tl.heap).(entry)
	occ := Occurrence{Label: e.label, Expression: e.cursor.Expression(), Time: e.nextRun}

	next, err := e.cursor.Next()
	if err != nil {
		tl.err = err
		return occ, nil
	}
	e.nextRun = next
	heap.Push(&tl.heap, e)
	return occ, nil
}

// Take returns the next n occurrences across all expressions.
func (tl *Timeline) Take(n int) ([]Occurrence, error) {
	out := make([]Occurrence, 0, max(n, 0))
	for i := 0; i < n; i++ {
		occ, err := tl.Next()
		if err != nil {
			return nil, err
		}
		out = append(out, occ)
	}
	return out, nil
}
