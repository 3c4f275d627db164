package risk

import (
	"container/heap"
	"sort"

	"github.com/riskledger/riskledger/internal/model"
)

// DefaultTopK is the number of alerts kept when none is given.
const DefaultTopK = 20

// outranks reports whether a sorts ahead of b: higher score first, then
// earlier arrival.
func outranks(a, b model.Alert) bool {
	if a.RiskScore != b.RiskScore {
		return a.RiskScore > b.RiskScore
	}
	return a.Seq < b.Seq
}

// alertHeap keeps the weakest retained alert at the root.
type alertHeap []model.Alert

func (h alertHeap) Len() int           { return len(h) }
func (h alertHeap) Less(i, j int) bool { return outranks(h[j], h[i]) }
func (h alertHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *alertHeap) Push(x any) { *h = append(*h, x.(model.Alert)) }

func (h *alertHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Selector retains the top K alerts at or above a score threshold across a
// stream of offers. Memory is O(K) regardless of how many rows are offered.
type Selector struct {
	threshold int
	k         int
	h         alertHeap
}

// NewSelector creates a Selector. A non-positive k falls back to DefaultTopK.
func NewSelector(threshold, k int) *Selector {
	if k <= 0 {
		k = DefaultTopK
	}
	return &Selector{threshold: threshold, k: k, h: make(alertHeap, 0, k)}
}

// Offer considers a for retention.
func (s *Selector) Offer(a model.Alert) {
	if a.RiskScore < s.threshold {
		return
	}
	if s.h.Len() < s.k {
		heap.Push(&s.h, a)
		return
	}
	if outranks(a, s.h[0]) {
		s.h[0] = a
		heap.Fix(&s.h, 0)
	}
}

// Merge offers every alert retained by other. Because ranking is a total
// order on (score, seq), merge order does not change the result.
func (s *Selector) Merge(other *Selector) {
	if other == nil {
		return
	}
	for _, a := range other.h {
		s.Offer(a)
	}
}

// Alerts returns the retained alerts sorted by score descending, ties in
// arrival order.
func (s *Selector) Alerts() []model.Alert {
	out := append([]model.Alert(nil), s.h...)
	sort.Slice(out, func(i, j int) bool { return outranks(out[i], out[j]) })
	return out
}
