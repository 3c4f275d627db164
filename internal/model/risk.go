package model

import (
	"github.com/shopspring/decimal"
)

// RiskLevel is the ordinal band a risk score falls into.
type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

// Breakdown holds the points each scoring component contributed.
type Breakdown struct {
	Amount        int `json:"amount"`
	PaymentFormat int `json:"payment_format"`
	Laundering    int `json:"laundering"`
	Deviation     int `json:"deviation"`
	Anomaly       int `json:"anomaly"`
}

// Sum returns the unclamped total of all components.
func (b Breakdown) Sum() int {
	return b.Amount + b.PaymentFormat + b.Laundering + b.Deviation + b.Anomaly
}

// Reasons lists the names of components that contributed points.
func (b Breakdown) Reasons() []string {
	var out []string
	if b.Amount != 0 {
		out = append(out, "amount")
	}
	if b.PaymentFormat != 0 {
		out = append(out, "payment_format")
	}
	if b.Laundering != 0 {
		out = append(out, "declared_laundering")
	}
	if b.Deviation != 0 {
		out = append(out, "account_deviation")
	}
	if b.Anomaly != 0 {
		out = append(out, "ml_anomaly")
	}
	return out
}

// Alert is the presentation projection of a high-risk transaction.
type Alert struct {
	Seq           int64           `json:"seq"`
	Line          int             `json:"line"`
	FromAccount   string          `json:"from_account"`
	ToAccount     string          `json:"to_account,omitempty"`
	FromBank      string          `json:"from_bank,omitempty"`
	ToBank        string          `json:"to_bank,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentFormat string          `json:"payment_format"`
	Timestamp     string          `json:"timestamp,omitempty"`
	IsLaundering  bool            `json:"is_laundering"`
	MLAnomaly     bool            `json:"is_ml_anomaly"`
	RiskScore     int             `json:"risk_score"`
	RiskLevel     RiskLevel       `json:"risk_level"`
	Breakdown     Breakdown       `json:"breakdown"`
}

// NewAlert projects a scored transaction into an Alert.
func NewAlert(t Transaction, b Breakdown) Alert {
	return Alert{
		Seq:           t.Seq,
		Line:          t.Line,
		FromAccount:   t.FromAccount,
		ToAccount:     t.ToAccount,
		FromBank:      t.FromBank,
		ToBank:        t.ToBank,
		Amount:        t.Amount,
		PaymentFormat: t.PaymentFormat,
		Timestamp:     t.Timestamp,
		IsLaundering:  t.IsLaundering,
		MLAnomaly:     t.MLAnomaly,
		RiskScore:     t.RiskScore,
		RiskLevel:     t.RiskLevel,
		Breakdown:     b,
	}
}
