package present

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/riskledger/riskledger/internal/aggregate"
	"github.com/riskledger/riskledger/internal/ingest"
	"github.com/riskledger/riskledger/internal/model"
	"github.com/riskledger/riskledger/internal/report"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func sampleReport() *report.Report {
	meta := report.Meta{
		Source:         "scenario.csv",
		SHA256:         "abc123",
		Profile:        "customer",
		RowsAccepted:   3,
		RowsRejected:   1,
		Rejections:     []ingest.ParseError{{Line: 5, Reason: `parsing amount "x"`}},
		Batches:        1,
		AlertThreshold: 60,
	}
	summary := aggregate.Summary{
		TotalVolume: d("2020100"),
		TotalCount:  3,
		Average:     d("673366.666666"),
		Min:         d("100"),
		Max:         d("2000000"),
		PaymentFormats: []aggregate.FormatCount{
			{Format: "wire", Count: 2},
			{Format: "cash", Count: 1},
		},
		TopToBanks: []aggregate.BankVolume{
			{Bank: "Bank C", Volume: d("2000000")},
			{Bank: "Bank B", Volume: d("20000")},
		},
		Anomalies: 1,
		Levels:    aggregate.LevelCounts{Low: 1, High: 2},
	}
	alerts := []model.Alert{
		{
			Seq: 2, Line: 4, FromAccount: "A3", ToBank: "Bank C",
			Amount: d("2000000"), PaymentFormat: "wire", IsLaundering: true,
			RiskScore: 100, RiskLevel: model.RiskHigh,
			Breakdown: model.Breakdown{Amount: 50, PaymentFormat: 20, Laundering: 50},
		},
		{
			Seq: 1, Line: 3, FromAccount: "A2", ToBank: "Bank B",
			Amount: d("20000"), PaymentFormat: "cash", MLAnomaly: true,
			RiskScore: 80, RiskLevel: model.RiskHigh,
			Breakdown: model.Breakdown{Amount: 20, PaymentFormat: 30, Anomaly: 30},
		},
	}
	return report.Assemble(meta, summary, alerts)
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "$1,234,567.89", Money(d("1234567.891")))
	assert.Equal(t, "$0.00", Money(decimal.Zero))
	assert.Equal(t, "$999.00", Money(d("999")))
	assert.Equal(t, "$0.01", Money(d("0.01")))
	assert.Equal(t, "-$1,500.50", Money(d("-1500.5")))
	assert.Equal(t, "$2,000,000.00", Money(d("2000000")))
}

func TestCountAndPercent(t *testing.T) {
	assert.Equal(t, "1,234,567", Count(1234567))
	assert.Equal(t, "7", Count(7))
	assert.Equal(t, "33.3%", Percent(1, 3))
	assert.Equal(t, "0.0%", Percent(1, 0))
}

func TestView(t *testing.T) {
	r := sampleReport()
	v := View(r)

	assert.Equal(t, "$2,020,100.00", v.TotalVolume)
	assert.Equal(t, "$673,366.67", v.Average)
	assert.Equal(t, "3", v.RowsAccepted)
	assert.Equal(t, DisplayFormat{Format: "wire", Count: "2", Share: "66.7%"}, v.PaymentFormats[0])
	assert.Equal(t, DisplayBank{Bank: "Bank C", Volume: "$2,000,000.00"}, v.TopToBanks[0])
	assert.Empty(t, v.TopFromBanks)

	require.Len(t, v.Alerts, 2)
	assert.Equal(t, 1, v.Alerts[0].Rank)
	assert.Equal(t, "Bank C", v.Alerts[0].Counterparty)
	assert.Equal(t, "amount, payment_format, declared_laundering", v.Alerts[0].Reasons)
	assert.Equal(t, "amount, payment_format, ml_anomaly", v.Alerts[1].Reasons)

	// The report itself keeps raw numbers.
	assert.Equal(t, "2020100", r.Summary.TotalVolume.String())
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleReport()))
	out := buf.String()

	assert.Contains(t, out, "scenario.csv")
	assert.Contains(t, out, "$2,020,100.00")
	assert.Contains(t, out, "RECEIVING BANK")
	assert.NotContains(t, out, "SENDING BANK")
	assert.Contains(t, out, `parsing amount "x"`)
	assert.Contains(t, out, "declared_laundering")

	lines := strings.Split(out, "\n")
	var alertLines []string
	for _, l := range lines {
		if strings.Contains(l, "High") && strings.Contains(l, "$") {
			alertLines = append(alertLines, l)
		}
	}
	require.Len(t, alertLines, 2)
	assert.Contains(t, alertLines[0], "A3")
}

func TestWriteText_NoAlerts(t *testing.T) {
	r := report.Assemble(report.Meta{Source: "quiet.csv", AlertThreshold: 60}, aggregate.Summary{TotalCount: 1}, nil)
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, r))
	assert.Contains(t, buf.String(), "No transactions scored 60 or higher.")
}

func TestWriteAlertsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAlertsCSV(&buf, sampleReport().Alerts))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, strings.Split(AlertsHeader, ","), records[0])

	first := records[1]
	assert.Len(t, first, numAlertFields)
	assert.Equal(t, "1", first[colRank])
	assert.Equal(t, "100", first[colScore])
	assert.Equal(t, "A3", first[colFromAccount])
	assert.Equal(t, "2000000.00", first[colAmount])
	assert.Equal(t, "true", first[colIsLaundering])
	assert.Equal(t, "amount;payment_format;declared_laundering", first[colReasons])
	assert.Equal(t, "true", records[2][colIsAnomaly])
}

func TestWriteAlertsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAlertsCSV(&buf, nil))
	assert.Equal(t, AlertsHeader+"\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetSummary, SheetAlerts, SheetFormats, SheetTopBanks}, f.GetSheetList())

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Equal(t, []string{"Source", "scenario.csv"}, summary[0])

	alerts, err := f.GetRows(SheetAlerts)
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	assert.Equal(t, "Rank", alerts[0][0])
	assert.Equal(t, "A3", alerts[1][4])
	assert.Equal(t, "100", alerts[1][1])

	banks, err := f.GetRows(SheetTopBanks)
	require.NoError(t, err)
	require.Len(t, banks, 3)
	assert.Equal(t, []string{"receiving", "Bank C"}, banks[1][:2])
}

func TestWriteXLSX_MoneyStyleApplied(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleReport()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	style, err := f.GetCellStyle(SheetSummary, "B8")
	require.NoError(t, err)
	assert.NotZero(t, style)
}

func TestStyleHelpers_ReportErrors(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()

	err := styleCells(f, "Sheet1", "A1", "A2", 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "styling Sheet1 A1:A2")

	err = styleHeader(f, "Sheet1", 999)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "styling Sheet1 header")
}
