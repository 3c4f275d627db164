package report

import (
	"github.com/riskledger/riskledger/internal/aggregate"
	"github.com/riskledger/riskledger/internal/ingest"
	"github.com/riskledger/riskledger/internal/model"
)

// Meta describes the run that produced a report.
type Meta struct {
	Source          string              `json:"source"`
	SHA256          string              `json:"sha256"`
	Profile         string              `json:"profile"`
	TwoSided        bool                `json:"two_sided"`
	BatchSize       int                 `json:"batch_size"`
	Batches         int                 `json:"batches"`
	RowsAccepted    int64               `json:"rows_accepted"`
	RowsRejected    int64               `json:"rows_rejected"`
	Rejections      []ingest.ParseError `json:"rejections,omitempty"`
	DegradedBatches int                 `json:"degraded_batches"`
	AlertThreshold  int                 `json:"alert_threshold"`
}

// Report is the final result of one ingestion. It carries raw numeric values;
// formatting belongs to the presentation layer.
type Report struct {
	Meta    Meta              `json:"meta"`
	Summary aggregate.Summary `json:"summary"`
	Alerts  []model.Alert     `json:"alerts"`
}

// Assemble merges run metadata, finalized aggregates and ranked alerts into a
// Report. Every slice is copied so later changes to the inputs cannot reach
// the Report.
func Assemble(meta Meta, summary aggregate.Summary, alerts []model.Alert) *Report {
	meta.Rejections = clone(meta.Rejections)

	summary.PaymentFormats = clone(summary.PaymentFormats)
	summary.TopFromBanks = clone(summary.TopFromBanks)
	summary.TopToBanks = clone(summary.TopToBanks)

	out := clone(alerts)
	if out == nil {
		out = []model.Alert{}
	}

	return &Report{
		Meta:    meta,
		Summary: summary,
		Alerts:  out,
	}
}

func clone[T any](s []T) []T {
	if s == nil {
		return nil
	}
	return append(make([]T, 0, len(s)), s...)
}
