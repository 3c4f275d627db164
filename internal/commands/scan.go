package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/riskledger/riskledger/internal/pipeline"
	"github.com/riskledger/riskledger/internal/present"
	"github.com/riskledger/riskledger/internal/report"
	"github.com/riskledger/riskledger/internal/upload"
)

type scanOptions struct {
	jsonOut   bool
	xlsxPath  string
	alertsCSV string
}

func newScanCommand() *cobra.Command {
	var opts scanOptions

	cmd := &cobra.Command{
		Use:   "scan <file.csv|->",
		Short: "Score a ledger CSV and print the risk report",
		Long: "Score a ledger CSV and print the risk report.\n\n" +
			"Use - to read the ledger from stdin.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runScan(ctx, cmd, args[0], opts)
		},
	}

	addIngestFlags(cmd.Flags())
	cmd.Flags().BoolVar(&opts.jsonOut, "json", false, "print the report as JSON")
	cmd.Flags().StringVar(&opts.xlsxPath, "xlsx", "", "also write an XLSX workbook to this path")
	cmd.Flags().StringVar(&opts.alertsCSV, "alerts-csv", "", "also write ranked alerts to this CSV path")

	return cmd
}

func runScan(ctx context.Context, cmd *cobra.Command, src string, opts scanOptions) error {
	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	engine := pipeline.NewEngine(cfg, logger)

	var rep *report.Report
	if src == "-" {
		err = upload.With(cfg.Server.UploadDir, "stdin.csv", cmd.InOrStdin(), 0, func(st *upload.Staged) error {
			rep, err = engine.Run(ctx, pipeline.Request{Path: st.Path, Source: "stdin"})
			return err
		})
	} else {
		rep, err = engine.Run(ctx, pipeline.Request{Path: src})
	}
	if err != nil {
		return err
	}

	if opts.xlsxPath != "" {
		if err := writeFile(opts.xlsxPath, func(w io.Writer) error { return present.WriteXLSX(w, rep) }); err != nil {
			return fmt.Errorf("writing workbook: %w", err)
		}
	}
	if opts.alertsCSV != "" {
		if err := writeFile(opts.alertsCSV, func(w io.Writer) error { return present.WriteAlertsCSV(w, rep.Alerts) }); err != nil {
			return fmt.Errorf("writing alerts CSV: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	if opts.jsonOut {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}
	return present.WriteText(out, rep)
}

// addIngestFlags registers the flags that override the ingest section of the
// config. Zero values mean "not set"; loadSettings only applies changed flags.
func addIngestFlags(fs *pflag.FlagSet) {
	fs.String("profile", "", "schema profile, see 'riskledger profiles' (default from config: generic)")
	fs.Bool("two-sided", false, "require duplicate sender/receiver Account columns (default from profile)")
	fs.Int("batch-size", 0, "rows per batch (default from config: 10000)")
	fs.Int("workers", 0, "batches processed concurrently (default from config: 1)")
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
