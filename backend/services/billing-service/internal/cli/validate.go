package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"evcdr/backend/libs/cdr"
)

func newValidateCommand() *cobra.Command {
	var tariffFile string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a tariff document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tariff, err := cdr.LoadTariffFile(tariffFile)
			if err != nil {
				return err
			}
			present := 0
			for _, c := range cdr.Categories() {
				if tariff.Category(c) != nil {
					present++
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "tariff %s (%s) is valid: %d price categories\n", tariff.ID, tariff.Currency, present)
			return nil
		},
	}
	cmd.Flags().StringVar(&tariffFile, "tariff", "", "Tariff document (.yaml, .toml or .json)")
	_ = cmd.MarkFlagRequired("tariff")
	return cmd
}
