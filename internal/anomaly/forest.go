package anomaly

import (
	"fmt"
	"math"
	"math/rand"
)

// eulerGamma approximates the harmonic number tail in averagePathLength.
const eulerGamma = 0.5772156649

// Config controls isolation forest fitting.
type Config struct {
	Trees      int
	SampleSize int
	Seed       int64
}

// DefaultConfig returns the forest parameters used when none are configured.
func DefaultConfig() Config {
	return Config{
		Trees:      100,
		SampleSize: 256,
		Seed:       42,
	}
}

type node struct {
	feature     int
	split       float64
	left, right *node
	size        int
}

func (n *node) leaf() bool { return n.left == nil }

// Forest is a fitted isolation forest.
type Forest struct {
	trees []*node
	psi   int
	width int
}

// Fit grows an isolation forest over data. Each tree sees a subsample of
// min(SampleSize, len(data)) rows drawn without replacement. Fitting is
// deterministic for a given Seed.
func Fit(data [][]float64, cfg Config) (*Forest, error) {
	if len(data) < 2 {
		return nil, &ModelFitError{Reason: fmt.Sprintf("need at least 2 rows, got %d", len(data))}
	}
	if cfg.Trees <= 0 {
		cfg.Trees = DefaultConfig().Trees
	}
	if cfg.SampleSize < 2 {
		cfg.SampleSize = DefaultConfig().SampleSize
	}

	width := len(data[0])
	for i, row := range data {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d features, want %d", i, len(row), width)
		}
	}

	psi := min(cfg.SampleSize, len(data))
	limit := int(math.Ceil(math.Log2(float64(psi))))
	rng := rand.New(rand.NewSource(cfg.Seed))

	f := &Forest{trees: make([]*node, cfg.Trees), psi: psi, width: width}
	for i := range f.trees {
		idx := rng.Perm(len(data))[:psi]
		f.trees[i] = grow(data, idx, 0, limit, rng)
	}
	return f, nil
}

func grow(data [][]float64, idx []int, depth, limit int, rng *rand.Rand) *node {
	if depth >= limit || len(idx) <= 1 {
		return &node{size: len(idx)}
	}

	// Only features that vary within this node can split it.
	var (
		candidates []int
		lows, highs []float64
	)
	for f := range data[idx[0]] {
		lo, hi := data[idx[0]][f], data[idx[0]][f]
		for _, i := range idx[1:] {
			v := data[i][f]
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		if hi > lo {
			candidates = append(candidates, f)
			lows = append(lows, lo)
			highs = append(highs, hi)
		}
	}
	if len(candidates) == 0 {
		return &node{size: len(idx)}
	}

	c := rng.Intn(len(candidates))
	split := lows[c] + rng.Float64()*(highs[c]-lows[c])
	feature := candidates[c]

	var left, right []int
	for _, i := range idx {
		if data[i][feature] < split {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &node{
		feature: feature,
		split:   split,
		left:    grow(data, left, depth+1, limit, rng),
		right:   grow(data, right, depth+1, limit, rng),
	}
}

// Score returns the normalized anomaly score 2^(-E[h(x)]/c(psi)) for x.
// Scores near 1 are anomalous; scores well below 0.5 are normal.
func (f *Forest) Score(x []float64) float64 {
	var total float64
	for _, t := range f.trees {
		total += pathLength(x, t, 0)
	}
	mean := total / float64(len(f.trees))
	return math.Pow(2, -mean/averagePathLength(f.psi))
}

// Predict flags rows whose score exceeds 0.5.
func (f *Forest) Predict(data [][]float64) []bool {
	out := make([]bool, len(data))
	for i, x := range data {
		out[i] = f.Score(x) > 0.5
	}
	return out
}

func pathLength(x []float64, n *node, depth int) float64 {
	for !n.leaf() {
		if x[n.feature] < n.split {
			n = n.left
		} else {
			n = n.right
		}
		depth++
	}
	return float64(depth) + averagePathLength(n.size)
}

// averagePathLength is the expected path length of an unsuccessful search in
// a binary search tree of n points.
func averagePathLength(n int) float64 {
	switch {
	case n <= 1:
		return 0
	case n == 2:
		return 1
	}
	m := float64(n - 1)
	return 2*(math.Log(m)+eulerGamma) - 2*m/float64(n)
}
