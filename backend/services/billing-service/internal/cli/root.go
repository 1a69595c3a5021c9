package cli

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"evcdr/backend/libs/logging"
)

// Execute is the main entry point called from cdrctl's main.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

type rootOptions struct {
	logLevel string
}

// NewRootCommand builds the cdrctl command tree.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "cdrctl",
		Short:         "Price charging sessions offline",
		Long:          "Compute charge detail records from tariff documents and recorded metering streams.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")

	root.AddCommand(newPriceCommand(opts), newValidateCommand())
	return root
}

func (o *rootOptions) logger() *zap.Logger {
	logger, err := logging.NewLogger(logging.Options{Level: o.logLevel, Development: true, OutputPaths: []string{"stderr"}})
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
