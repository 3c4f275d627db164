package risk

import (
	"math"

	"github.com/riskledger/riskledger/internal/model"
)

// AccountBaseline summarizes one sending account's amounts within a batch.
type AccountBaseline struct {
	Count  int
	Mean   float64
	StdDev float64 // sample standard deviation; 0 for a single observation
}

// Baselines maps from_account to its baseline.
type Baselines map[string]AccountBaseline

// ComputeBaselines builds per-account baselines over txns using Welford's
// online algorithm. Rows without a from_account are ignored.
func ComputeBaselines(txns []model.Transaction) Baselines {
	type acc struct {
		n    int
		mean float64
		m2   float64
	}
	accs := make(map[string]*acc)
	for _, t := range txns {
		if t.FromAccount == "" {
			continue
		}
		a, ok := accs[t.FromAccount]
		if !ok {
			a = &acc{}
			accs[t.FromAccount] = a
		}
		x := t.Amount.InexactFloat64()
		a.n++
		delta := x - a.mean
		a.mean += delta / float64(a.n)
		a.m2 += delta * (x - a.mean)
	}

	out := make(Baselines, len(accs))
	for k, a := range accs {
		b := AccountBaseline{Count: a.n, Mean: a.mean}
		if a.n > 1 {
			b.StdDev = math.Sqrt(a.m2 / float64(a.n-1))
		}
		out[k] = b
	}
	return out
}
