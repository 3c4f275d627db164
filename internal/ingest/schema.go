package ingest

import (
	"strings"
	"unicode"
)

// Field is a canonical transaction field.
type Field int

const (
	FieldAmount Field = iota
	FieldPaymentFormat
	FieldIsLaundering
	FieldFromAccount
	FieldToAccount
	FieldFromBank
	FieldToBank
	FieldTimestamp
	numFields
)

var fieldNames = [numFields]string{
	FieldAmount:        "amount",
	FieldPaymentFormat: "payment_format",
	FieldIsLaundering:  "is_laundering",
	FieldFromAccount:   "from_account",
	FieldToAccount:     "to_account",
	FieldFromBank:      "from_bank",
	FieldToBank:        "to_bank",
	FieldTimestamp:     "timestamp",
}

func (f Field) String() string {
	if f < 0 || f >= numFields {
		return "unknown"
	}
	return fieldNames[f]
}

// accountColumn is the shared name of the sender/receiver columns in
// two-sided ledgers.
const accountColumn = "account"

// synonyms is the single source of truth for accepted header names, in
// priority order per field. Names are in normalized form (see normalizeName).
var synonyms = [numFields][]string{
	FieldAmount:        {"amount", "amount paid", "amount received", "transaction amount"},
	FieldPaymentFormat: {"payment format", "payment type", "payment method"},
	FieldIsLaundering:  {"is laundering", "laundering", "is suspicious"},
	FieldFromAccount:   {"from account", "customer id", "customer", "sender account", accountColumn},
	FieldToAccount:     {"to account", "receiver account", "beneficiary account"},
	FieldFromBank:      {"from bank", "sending bank", "origin bank"},
	FieldToBank:        {"to bank", "receiving bank", "beneficiary bank"},
	FieldTimestamp:     {"timestamp", "date", "transaction date", "time"},
}

// Header is the ordered, position-indexed header row. Names may repeat.
type Header []string

// NewHeader normalizes raw header cells.
func NewHeader(raw []string) Header {
	h := make(Header, len(raw))
	for i, name := range raw {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		h[i] = normalizeName(name)
	}
	return h
}

// Positions returns every position holding name, in column order.
func (h Header) Positions(name string) []int {
	var out []int
	for i, n := range h {
		if n == name {
			out = append(out, i)
		}
	}
	return out
}

// normalizeName lower-cases and trims a header cell and collapses runs of
// spaces, underscores and hyphens into one space.
func normalizeName(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.TrimSpace(s) {
		if r == '_' || r == '-' || unicode.IsSpace(r) {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte(' ')
			pendingSep = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// ColumnMap maps each canonical field to its source column position.
type ColumnMap struct {
	pos      [numFields]int
	TwoSided bool
	Width    int // number of columns in the header
}

// Position returns the column for f and whether f was resolved.
func (m ColumnMap) Position(f Field) (int, bool) {
	p := m.pos[f]
	return p, p >= 0
}

// ResolveOptions controls header resolution.
type ResolveOptions struct {
	TwoSided bool
	Required []Field // in addition to amount and payment_format
}

// Resolve maps a header onto the canonical field set.
//
// For two-sided ledgers the header must contain exactly two account columns;
// the first occurrence becomes from_account and the second to_account.
func Resolve(h Header, opts ResolveOptions) (ColumnMap, error) {
	m := ColumnMap{TwoSided: opts.TwoSided, Width: len(h)}
	for i := range m.pos {
		m.pos[i] = -1
	}

	if opts.TwoSided {
		accounts := h.Positions(accountColumn)
		if len(accounts) != 2 {
			return ColumnMap{}, &SchemaError{
				Missing: []string{FieldFromAccount.String(), FieldToAccount.String()},
				Reason:  "duplicate account columns missing",
			}
		}
		m.pos[FieldFromAccount] = accounts[0]
		m.pos[FieldToAccount] = accounts[1]
	}

	for f := Field(0); f < numFields; f++ {
		if m.pos[f] >= 0 {
			continue
		}
		for _, name := range synonyms[f] {
			if p := h.Positions(name); len(p) > 0 {
				m.pos[f] = p[0]
				break
			}
		}
	}

	required := append([]Field{FieldAmount, FieldPaymentFormat}, opts.Required...)
	var missing []string
	seen := make(map[Field]bool, len(required))
	for _, f := range required {
		if seen[f] {
			continue
		}
		seen[f] = true
		if m.pos[f] < 0 {
			missing = append(missing, f.String())
		}
	}
	if len(missing) > 0 {
		return ColumnMap{}, &SchemaError{Missing: missing}
	}
	return m, nil
}
