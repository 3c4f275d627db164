package ingest

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/riskledger/riskledger/internal/model"
)

// Bounds on accepted amounts. Anything outside them is rejected before it can
// reach decimal arithmetic, where a huge exponent costs time and memory on
// every later comparison.
const (
	maxAmountLen    = 64
	maxAmountDigits = 30
	maxAmountScale  = 18
)

// Normalizer turns raw records into transactions using a resolved ColumnMap.
type Normalizer struct {
	cols ColumnMap
}

// NewNormalizer creates a Normalizer for cols.
func NewNormalizer(cols ColumnMap) *Normalizer {
	return &Normalizer{cols: cols}
}

// Normalize converts a single record. Unparsable or negative amounts are
// rejected rather than defaulted.
func (n *Normalizer) Normalize(rec Record) (model.Transaction, error) {
	txn, reason := n.convert(rec)
	if reason != "" {
		return model.Transaction{}, ParseError{Line: rec.Line, Reason: reason}
	}
	return txn, nil
}

// NormalizeBatch converts every record in b, preserving order. Rejected rows
// from the reader are carried over ahead of normalization failures.
func (n *Normalizer) NormalizeBatch(b *Batch) ([]model.Transaction, []ParseError) {
	txns := make([]model.Transaction, 0, len(b.Records))
	rejected := append([]ParseError(nil), b.Rejected...)
	for _, rec := range b.Records {
		txn, reason := n.convert(rec)
		if reason != "" {
			rejected = append(rejected, ParseError{Line: rec.Line, Reason: reason})
			continue
		}
		txns = append(txns, txn)
	}
	return txns, rejected
}

func (n *Normalizer) convert(rec Record) (model.Transaction, string) {
	raw := n.field(rec, FieldAmount)
	if raw == "" {
		return model.Transaction{}, "missing amount"
	}
	if len(raw) > maxAmountLen {
		return model.Transaction{}, fmt.Sprintf("amount too long (%d bytes)", len(raw))
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Transaction{}, fmt.Sprintf("parsing amount %q", raw)
	}
	if exp := amount.Exponent(); exp < -maxAmountScale || exp > maxAmountScale || amount.NumDigits() > maxAmountDigits {
		return model.Transaction{}, fmt.Sprintf("amount out of range %q", raw)
	}
	if amount.IsNegative() {
		return model.Transaction{}, fmt.Sprintf("negative amount %q", raw)
	}

	return model.Transaction{
		Seq:           rec.Seq,
		Line:          rec.Line,
		Amount:        amount,
		PaymentFormat: n.field(rec, FieldPaymentFormat),
		IsLaundering:  parseFlag(n.field(rec, FieldIsLaundering)),
		FromAccount:   n.field(rec, FieldFromAccount),
		ToAccount:     n.field(rec, FieldToAccount),
		FromBank:      n.field(rec, FieldFromBank),
		ToBank:        n.field(rec, FieldToBank),
		Timestamp:     n.field(rec, FieldTimestamp),
	}, ""
}

func (n *Normalizer) field(rec Record, f Field) string {
	p, ok := n.cols.Position(f)
	if !ok || p >= len(rec.Fields) {
		return ""
	}
	return strings.TrimSpace(rec.Fields[p])
}

func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "1", "1.0", "true", "t", "yes", "y":
		return true
	}
	return false
}
