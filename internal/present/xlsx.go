package present

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/riskledger/riskledger/internal/report"
)

// Workbook sheet names.
const (
	SheetSummary  = "Summary"
	SheetAlerts   = "Alerts"
	SheetFormats  = "Payment Formats"
	SheetTopBanks = "Top Banks"
)

// moneyFormat is the built-in "#,##0.00" number format.
const moneyFormat = 4

// WriteXLSX renders r as a workbook. Amounts are numeric cells so they stay
// sortable; the money number format supplies the separators.
func WriteXLSX(w io.Writer, r *report.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return fmt.Errorf("naming summary sheet: %w", err)
	}
	for _, name := range []string{SheetAlerts, SheetFormats, SheetTopBanks} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	money, err := f.NewStyle(&excelize.Style{NumFmt: moneyFormat})
	if err != nil {
		return fmt.Errorf("creating money style: %w", err)
	}

	s := r.Summary
	summary := [][]any{
		{"Source", r.Meta.Source},
		{"SHA-256", r.Meta.SHA256},
		{"Profile", r.Meta.Profile},
		{"Rows accepted", r.Meta.RowsAccepted},
		{"Rows rejected", r.Meta.RowsRejected},
		{"Batches", r.Meta.Batches},
		{"Degraded batches", r.Meta.DegradedBatches},
		{"Total volume", s.TotalVolume.InexactFloat64()},
		{"Average amount", s.Average.InexactFloat64()},
		{"Min amount", s.Min.InexactFloat64()},
		{"Max amount", s.Max.InexactFloat64()},
		{"Anomalies", s.Anomalies},
		{"Low risk", s.Levels.Low},
		{"Medium risk", s.Levels.Medium},
		{"High risk", s.Levels.High},
	}
	if err := writeRows(f, SheetSummary, summary); err != nil {
		return err
	}
	if err := styleCells(f, SheetSummary, "A1", fmt.Sprintf("A%d", len(summary)), bold); err != nil {
		return err
	}
	if err := styleCells(f, SheetSummary, "B8", "B11", money); err != nil {
		return err
	}

	alerts := [][]any{{"Rank", "Score", "Level", "Line", "From account", "To account",
		"From bank", "To bank", "Amount", "Payment format", "Timestamp", "Reasons"}}
	for i, a := range r.Alerts {
		row := MarshalAlert(i+1, a)
		alerts = append(alerts, []any{i + 1, a.RiskScore, row[colLevel], a.Line, a.FromAccount, a.ToAccount,
			a.FromBank, a.ToBank, a.Amount.InexactFloat64(), a.PaymentFormat, a.Timestamp, row[colReasons]})
	}
	if err := writeRows(f, SheetAlerts, alerts); err != nil {
		return err
	}
	if err := styleHeader(f, SheetAlerts, bold); err != nil {
		return err
	}
	if len(r.Alerts) > 0 {
		if err := styleCells(f, SheetAlerts, "I2", fmt.Sprintf("I%d", len(r.Alerts)+1), money); err != nil {
			return err
		}
	}

	formats := [][]any{{"Payment format", "Count"}}
	for _, fc := range s.PaymentFormats {
		formats = append(formats, []any{fc.Format, fc.Count})
	}
	if err := writeRows(f, SheetFormats, formats); err != nil {
		return err
	}
	if err := styleHeader(f, SheetFormats, bold); err != nil {
		return err
	}

	banks := [][]any{{"Side", "Bank", "Volume"}}
	for _, b := range s.TopFromBanks {
		banks = append(banks, []any{"sending", b.Bank, b.Volume.InexactFloat64()})
	}
	for _, b := range s.TopToBanks {
		banks = append(banks, []any{"receiving", b.Bank, b.Volume.InexactFloat64()})
	}
	if err := writeRows(f, SheetTopBanks, banks); err != nil {
		return err
	}
	if err := styleHeader(f, SheetTopBanks, bold); err != nil {
		return err
	}
	if len(banks) > 1 {
		if err := styleCells(f, SheetTopBanks, "C2", fmt.Sprintf("C%d", len(banks)), money); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func styleCells(f *excelize.File, sheet, from, to string, style int) error {
	if err := f.SetCellStyle(sheet, from, to, style); err != nil {
		return fmt.Errorf("styling %s %s:%s: %w", sheet, from, to, err)
	}
	return nil
}

func styleHeader(f *excelize.File, sheet string, style int) error {
	if err := f.SetRowStyle(sheet, 1, 1, style); err != nil {
		return fmt.Errorf("styling %s header: %w", sheet, err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("addressing %s row %d: %w", sheet, i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
