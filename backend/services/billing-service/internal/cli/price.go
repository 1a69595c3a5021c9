package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lorenzodonini/ocpp-go/ocpp1.6/types"
	"github.com/spf13/cobra"

	"evcdr/backend/libs/cdr"
	"evcdr/backend/services/billing-service/internal/models"
)

type priceOptions struct {
	tariffFile string
	samples    string
	events     string
	ocpp       bool
	places     int32
	currency   string
	energyStep int64
}

func newPriceCommand(root *rootOptions) *cobra.Command {
	opts := &priceOptions{}
	cmd := &cobra.Command{
		Use:   "price",
		Short: "Compute a CDR and print it as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPrice(cmd, root, opts)
		},
	}
	cmd.Flags().StringVar(&opts.tariffFile, "tariff", "", "Tariff document (.yaml, .toml or .json)")
	cmd.Flags().StringVar(&opts.samples, "samples", "", "JSON file with meter samples")
	cmd.Flags().StringVar(&opts.events, "events", "", "JSON file with charging state events")
	cmd.Flags().BoolVar(&opts.ocpp, "ocpp", false, "Samples file holds OCPP 1.6 MeterValues")
	cmd.Flags().Int32Var(&opts.places, "places", 4, "Decimal places of printed amounts")
	cmd.Flags().StringVar(&opts.currency, "currency", "", "Expected currency")
	cmd.Flags().Int64Var(&opts.energyStep, "energy-step", cdr.DefaultEnergyStep, "Energy step in Wh for tiers without one")
	_ = cmd.MarkFlagRequired("tariff")
	_ = cmd.MarkFlagRequired("samples")
	return cmd
}

func runPrice(cmd *cobra.Command, root *rootOptions, opts *priceOptions) error {
	tariff, err := cdr.LoadTariffFile(opts.tariffFile)
	if err != nil {
		return err
	}
	samples, err := loadSamples(opts.samples, opts.ocpp)
	if err != nil {
		return err
	}
	var events []cdr.ChargingStateEvent
	if opts.events != "" {
		if err := readJSON(opts.events, &events); err != nil {
			return err
		}
	}

	engine := cdr.New(cdr.WithLogger(root.logger()), cdr.WithDefaultEnergyStep(opts.energyStep))
	rec, err := engine.Compute(cdr.Input{
		Samples:        samples,
		Events:         events,
		Tariff:         tariff,
		TariffVerified: true,
		Context:        cdr.PricingContext{Currency: opts.currency},
	})
	if err != nil {
		return fmt.Errorf("%s: %w", cdr.ErrorKind(err), err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(models.NewCDR(0, rec.Rounded(opts.places)))
}

func loadSamples(path string, ocpp bool) ([]cdr.MeterSample, error) {
	if !ocpp {
		var samples []cdr.MeterSample
		if err := readJSON(path, &samples); err != nil {
			return nil, err
		}
		return samples, nil
	}
	var values []types.MeterValue
	if err := readJSON(path, &values); err != nil {
		return nil, err
	}
	return cdr.SamplesFromMeterValues(values)
}

func readJSON(path string, dst interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
