package present

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/riskledger/riskledger/internal/report"
)

// WriteText renders a human-readable summary of r.
func WriteText(w io.Writer, r *report.Report) error {
	v := View(r)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	fmt.Fprintf(tw, "Source:\t%s\n", v.Source)
	fmt.Fprintf(tw, "SHA-256:\t%s\n", v.SHA256)
	fmt.Fprintf(tw, "Profile:\t%s\n", v.Profile)
	fmt.Fprintf(tw, "Rows accepted:\t%s\n", v.RowsAccepted)
	fmt.Fprintf(tw, "Rows rejected:\t%s\n", v.RowsRejected)
	fmt.Fprintf(tw, "Batches:\t%s (%s without anomaly model)\n", v.Batches, v.DegradedBatches)
	fmt.Fprintf(tw, "Total volume:\t%s\n", v.TotalVolume)
	fmt.Fprintf(tw, "Average amount:\t%s\n", v.Average)
	fmt.Fprintf(tw, "Min / max:\t%s / %s\n", v.Min, v.Max)
	fmt.Fprintf(tw, "Anomalies:\t%s\n", v.Anomalies)
	fmt.Fprintf(tw, "Risk levels:\tLow %s, Medium %s, High %s\n", v.Levels.Low, v.Levels.Medium, v.Levels.High)

	fmt.Fprintf(tw, "\nPAYMENT FORMAT\tCOUNT\tSHARE\n")
	for _, f := range v.PaymentFormats {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", f.Format, f.Count, f.Share)
	}

	writeBanks(tw, "SENDING BANK", v.TopFromBanks)
	writeBanks(tw, "RECEIVING BANK", v.TopToBanks)

	if len(r.Meta.Rejections) > 0 {
		fmt.Fprintf(tw, "\nREJECTED LINE\tREASON\n")
		for _, pe := range r.Meta.Rejections {
			fmt.Fprintf(tw, "%d\t%s\n", pe.Line, pe.Reason)
		}
	}

	if len(v.Alerts) == 0 {
		fmt.Fprintf(tw, "\nNo transactions scored %d or higher.\n", v.AlertThreshold)
		return tw.Flush()
	}
	fmt.Fprintf(tw, "\n#\tSCORE\tLEVEL\tLINE\tFROM\tTO\tAMOUNT\tFORMAT\tREASONS\n")
	for _, a := range v.Alerts {
		fmt.Fprintf(tw, "%d\t%d\t%s\t%d\t%s\t%s\t%s\t%s\t%s\n",
			a.Rank, a.Score, a.Level, a.Line, a.FromAccount, a.Counterparty, a.Amount, a.PaymentFormat, a.Reasons)
	}
	return tw.Flush()
}

func writeBanks(w io.Writer, title string, banks []DisplayBank) {
	if len(banks) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\tVOLUME\n", title)
	for _, b := range banks {
		fmt.Fprintf(w, "%s\t%s\n", b.Bank, b.Volume)
	}
}
