package present

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/riskledger/riskledger/internal/model"
)

// AlertsHeader is the CSV header written by WriteAlertsCSV.
const AlertsHeader = "rank,risk_score,risk_level,line,from_account,to_account,from_bank,to_bank,amount,payment_format,timestamp,is_laundering,is_ml_anomaly,reasons"

const (
	numAlertFields  = 14
	colRank         = 0
	colScore        = 1
	colLevel        = 2
	colLine         = 3
	colFromAccount  = 4
	colToAccount    = 5
	colFromBank     = 6
	colToBank       = 7
	colAmount       = 8
	colFormat       = 9
	colTimestamp    = 10
	colIsLaundering = 11
	colIsAnomaly    = 12
	colReasons      = 13
)

// MarshalAlert converts a ranked alert to a CSV row. Amounts keep their raw
// decimal form so the file stays machine-readable.
func MarshalAlert(rank int, a model.Alert) []string {
	row := make([]string, numAlertFields)
	row[colRank] = strconv.Itoa(rank)
	row[colScore] = strconv.Itoa(a.RiskScore)
	row[colLevel] = string(a.RiskLevel)
	row[colLine] = strconv.Itoa(a.Line)
	row[colFromAccount] = a.FromAccount
	row[colToAccount] = a.ToAccount
	row[colFromBank] = a.FromBank
	row[colToBank] = a.ToBank
	row[colAmount] = a.Amount.StringFixed(2)
	row[colFormat] = a.PaymentFormat
	row[colTimestamp] = a.Timestamp
	row[colIsLaundering] = strconv.FormatBool(a.IsLaundering)
	row[colIsAnomaly] = strconv.FormatBool(a.MLAnomaly)
	row[colReasons] = strings.Join(a.Breakdown.Reasons(), ";")
	return row
}

// WriteAlertsCSV writes alerts in rank order with a header row.
func WriteAlertsCSV(w io.Writer, alerts []model.Alert) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(AlertsHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, a := range alerts {
		if err := cw.Write(MarshalAlert(i+1, a)); err != nil {
			return fmt.Errorf("writing alert %d: %w", i+1, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
