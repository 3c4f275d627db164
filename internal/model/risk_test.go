package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBreakdown_SumAndReasons(t *testing.T) {
	b := Breakdown{Amount: 50, PaymentFormat: 20, Laundering: 50}
	assert.Equal(t, 120, b.Sum())
	assert.Equal(t, []string{"amount", "payment_format", "declared_laundering"}, b.Reasons())
}

func TestBreakdown_Empty(t *testing.T) {
	var b Breakdown
	assert.Equal(t, 0, b.Sum())
	assert.Nil(t, b.Reasons())
}

func TestTransaction_ScoredDoesNotMutate(t *testing.T) {
	txn := Transaction{Seq: 3, Amount: decimal.NewFromInt(10)}
	scored := txn.Scored(true, 80, RiskHigh)

	assert.False(t, txn.MLAnomaly)
	assert.Equal(t, 0, txn.RiskScore)
	assert.True(t, scored.MLAnomaly)
	assert.Equal(t, 80, scored.RiskScore)
	assert.Equal(t, RiskHigh, scored.RiskLevel)
}

func TestNewAlert(t *testing.T) {
	txn := Transaction{
		Seq:           7,
		Line:          9,
		FromAccount:   "A1",
		ToBank:        "B2",
		Amount:        decimal.RequireFromString("2000000"),
		PaymentFormat: "Wire",
		IsLaundering:  true,
	}.Scored(false, 100, RiskHigh)

	a := NewAlert(txn, Breakdown{Amount: 50, PaymentFormat: 20, Laundering: 50})
	assert.Equal(t, int64(7), a.Seq)
	assert.Equal(t, 9, a.Line)
	assert.Equal(t, "A1", a.FromAccount)
	assert.Equal(t, "B2", a.ToBank)
	assert.Equal(t, 100, a.RiskScore)
	assert.Equal(t, RiskHigh, a.RiskLevel)
	assert.True(t, a.IsLaundering)
	assert.Equal(t, 120, a.Breakdown.Sum())
}
