package present

import (
	"strings"

	"github.com/riskledger/riskledger/internal/report"
)

// DisplayReport is a report with every number already formatted for people.
type DisplayReport struct {
	Source          string          `json:"source"`
	SHA256          string          `json:"sha256"`
	Profile         string          `json:"profile"`
	RowsAccepted    string          `json:"rows_accepted"`
	RowsRejected    string          `json:"rows_rejected"`
	Batches         string          `json:"batches"`
	DegradedBatches string          `json:"degraded_batches"`
	TotalVolume     string          `json:"total_volume"`
	Average         string          `json:"average_amount"`
	Min             string          `json:"min_amount"`
	Max             string          `json:"max_amount"`
	Anomalies       string          `json:"anomalies"`
	Levels          DisplayLevels   `json:"risk_levels"`
	PaymentFormats  []DisplayFormat `json:"payment_formats"`
	TopFromBanks    []DisplayBank   `json:"top_from_banks"`
	TopToBanks      []DisplayBank   `json:"top_to_banks"`
	AlertThreshold  int             `json:"alert_threshold"`
	Alerts          []DisplayAlert  `json:"alerts"`
}

// DisplayLevels holds formatted risk-level counts.
type DisplayLevels struct {
	Low    string `json:"low"`
	Medium string `json:"medium"`
	High   string `json:"high"`
}

// DisplayFormat is one payment-format row.
type DisplayFormat struct {
	Format string `json:"format"`
	Count  string `json:"count"`
	Share  string `json:"share"`
}

// DisplayBank is one top-bank row.
type DisplayBank struct {
	Bank   string `json:"bank"`
	Volume string `json:"volume"`
}

// DisplayAlert is one ranked alert.
type DisplayAlert struct {
	Rank          int    `json:"rank"`
	Score         int    `json:"risk_score"`
	Level         string `json:"risk_level"`
	Line          int    `json:"line"`
	FromAccount   string `json:"from_account"`
	ToAccount     string `json:"to_account"`
	Counterparty  string `json:"counterparty"`
	Amount        string `json:"amount"`
	PaymentFormat string `json:"payment_format"`
	Timestamp     string `json:"timestamp"`
	Reasons       string `json:"reasons"`
}

// View projects r into display strings. r is not modified.
func View(r *report.Report) DisplayReport {
	s := r.Summary
	v := DisplayReport{
		Source:          r.Meta.Source,
		SHA256:          r.Meta.SHA256,
		Profile:         r.Meta.Profile,
		RowsAccepted:    Count(r.Meta.RowsAccepted),
		RowsRejected:    Count(r.Meta.RowsRejected),
		Batches:         Count(int64(r.Meta.Batches)),
		DegradedBatches: Count(int64(r.Meta.DegradedBatches)),
		TotalVolume:     Money(s.TotalVolume),
		Average:         Money(s.Average),
		Min:             Money(s.Min),
		Max:             Money(s.Max),
		Anomalies:       Count(s.Anomalies),
		Levels: DisplayLevels{
			Low:    Count(s.Levels.Low),
			Medium: Count(s.Levels.Medium),
			High:   Count(s.Levels.High),
		},
		AlertThreshold: r.Meta.AlertThreshold,
		PaymentFormats: make([]DisplayFormat, 0, len(s.PaymentFormats)),
		TopFromBanks:   make([]DisplayBank, 0, len(s.TopFromBanks)),
		TopToBanks:     make([]DisplayBank, 0, len(s.TopToBanks)),
		Alerts:         make([]DisplayAlert, 0, len(r.Alerts)),
	}

	for _, f := range s.PaymentFormats {
		v.PaymentFormats = append(v.PaymentFormats, DisplayFormat{
			Format: f.Format,
			Count:  Count(f.Count),
			Share:  Percent(f.Count, s.TotalCount),
		})
	}
	for _, b := range s.TopFromBanks {
		v.TopFromBanks = append(v.TopFromBanks, DisplayBank{Bank: b.Bank, Volume: Money(b.Volume)})
	}
	for _, b := range s.TopToBanks {
		v.TopToBanks = append(v.TopToBanks, DisplayBank{Bank: b.Bank, Volume: Money(b.Volume)})
	}
	for i, a := range r.Alerts {
		counterparty := a.ToAccount
		if counterparty == "" {
			counterparty = a.ToBank
		}
		v.Alerts = append(v.Alerts, DisplayAlert{
			Rank:          i + 1,
			Score:         a.RiskScore,
			Level:         string(a.RiskLevel),
			Line:          a.Line,
			FromAccount:   a.FromAccount,
			ToAccount:     a.ToAccount,
			Counterparty:  counterparty,
			Amount:        Money(a.Amount),
			PaymentFormat: a.PaymentFormat,
			Timestamp:     a.Timestamp,
			Reasons:       strings.Join(a.Breakdown.Reasons(), ", "),
		})
	}
	return v
}
