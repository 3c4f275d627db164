package model

import (
	"github.com/shopspring/decimal"
)

// Transaction represents one normalized ledger row.
type Transaction struct {
	Seq           int64 // arrival order across the whole input, starting at 0
	Line          int   // 1-based line in the source file
	Amount        decimal.Decimal
	PaymentFormat string
	IsLaundering  bool
	FromAccount   string
	ToAccount     string
	FromBank      string
	ToBank        string
	Timestamp     string // passthrough, never parsed

	MLAnomaly bool
	RiskScore int
	RiskLevel RiskLevel
}

// Scored returns a copy of t with the derived risk fields set.
func (t Transaction) Scored(anomaly bool, score int, level RiskLevel) Transaction {
	t.MLAnomaly = anomaly
	t.RiskScore = score
	t.RiskLevel = level
	return t
}
