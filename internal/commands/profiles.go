package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/riskledger/riskledger/internal/ingest"
)

func newProfilesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "profiles",
		Short: "List schema profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTWO-SIDED\tREQUIRED\tDESCRIPTION")
			for _, p := range ingest.DefaultRegistry().All() {
				required := []string{ingest.FieldAmount.String(), ingest.FieldPaymentFormat.String()}
				for _, f := range p.Required {
					required = append(required, f.String())
				}
				fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", p.Name, p.TwoSided, strings.Join(required, ","), p.Description)
			}
			return tw.Flush()
		},
	}
}
