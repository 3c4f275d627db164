package anomaly

import (
	"sort"
	"strings"
)

// Encoder one-hot encodes categorical values over a fixed vocabulary.
type Encoder struct {
	categories []string
	index      map[string]int
}

// NewEncoder builds a vocabulary from the distinct values observed, compared
// after trimming and lower-casing. Categories are sorted so the column order
// does not depend on row order.
func NewEncoder(values []string) *Encoder {
	index := make(map[string]int)
	for _, v := range values {
		index[normalize(v)] = 0
	}
	cats := make([]string, 0, len(index))
	for k := range index {
		cats = append(cats, k)
	}
	sort.Strings(cats)
	for i, c := range cats {
		index[c] = i
	}
	return &Encoder{categories: cats, index: index}
}

// Categories returns the sorted vocabulary.
func (e *Encoder) Categories() []string {
	return append([]string(nil), e.categories...)
}

// Encode returns one row per value. Values outside the vocabulary encode to
// all zeros.
func (e *Encoder) Encode(values []string) [][]float64 {
	out := make([][]float64, len(values))
	for i, v := range values {
		row := make([]float64, len(e.categories))
		if j, ok := e.index[normalize(v)]; ok {
			row[j] = 1
		}
		out[i] = row
	}
	return out
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
