package aggregate

import (
	"container/heap"
	"sort"

	"github.com/shopspring/decimal"
)

// volumeHeap is a min-heap on (volume, reverse name): the root is the entry
// that would be evicted first.
type volumeHeap []BankVolume

func (h volumeHeap) Len() int { return len(h) }

func (h volumeHeap) Less(i, j int) bool {
	if c := h[i].Volume.Cmp(h[j].Volume); c != 0 {
		return c < 0
	}
	return h[i].Bank > h[j].Bank
}

func (h volumeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *volumeHeap) Push(x any) { *h = append(*h, x.(BankVolume)) }

func (h *volumeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topBanks returns the n largest volumes, descending, ties by bank name.
func topBanks(m map[string]decimal.Decimal, n int) []BankVolume {
	h := make(volumeHeap, 0, n+1)
	for bank, vol := range m {
		heap.Push(&h, BankVolume{Bank: bank, Volume: vol})
		if h.Len() > n {
			heap.Pop(&h)
		}
	}

	out := []BankVolume(h)
	sort.Slice(out, func(i, j int) bool {
		if c := out[i].Volume.Cmp(out[j].Volume); c != 0 {
			return c > 0
		}
		return out[i].Bank < out[j].Bank
	})
	return out
}
