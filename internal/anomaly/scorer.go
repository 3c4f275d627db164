package anomaly

import (
	"fmt"

	"github.com/riskledger/riskledger/internal/model"
)

// ModelFitError reports that a batch could not be modeled. Callers treat the
// batch as having no anomalies.
type ModelFitError struct {
	Reason string
}

func (e *ModelFitError) Error() string {
	return "anomaly model: " + e.Reason
}

// Scorer flags outliers among a batch of transactions by payment format.
// Every batch is fit independently, so flags are only comparable within the
// batch that produced them.
type Scorer struct {
	cfg Config
}

// NewScorer creates a Scorer.
func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score returns one flag per transaction, in input order. When the batch
// cannot be fit it returns all-false flags together with a *ModelFitError.
func (s *Scorer) Score(txns []model.Transaction) ([]bool, error) {
	flags := make([]bool, len(txns))
	if len(txns) < 2 {
		return flags, &ModelFitError{Reason: fmt.Sprintf("need at least 2 rows, got %d", len(txns))}
	}

	formats := make([]string, len(txns))
	for i, t := range txns {
		formats[i] = t.PaymentFormat
	}
	enc := NewEncoder(formats)
	if len(enc.Categories()) < 2 {
		return flags, &ModelFitError{Reason: "single payment format in batch"}
	}

	features := enc.Encode(formats)
	forest, err := Fit(features, s.cfg)
	if err != nil {
		return flags, err
	}
	return forest.Predict(features), nil
}
