package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/riskledger/riskledger/internal/api"
	"github.com/riskledger/riskledger/internal/pipeline"
)

func newServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the upload API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadSettings(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg)
			if err != nil {
				return err
			}
			defer logger.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(cfg, pipeline.NewEngine(cfg, logger), logger)
			return srv.Run(ctx, fmt.Sprintf(":%d", cfg.Server.Port))
		},
	}

	cmd.Flags().Int("port", 0, "listen port (default from config: 8080)")
	cmd.Flags().String("upload-dir", "", "directory for staged uploads (default: system temp dir)")

	return cmd
}
