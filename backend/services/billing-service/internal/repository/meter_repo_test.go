package repository

import (
	"testing"
	"time"

	"github.com/lorenzodonini/ocpp-go/ocpp1.6/types"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"evcdr/backend/services/billing-service/internal/models"
)

func TestSampleFromRow(t *testing.T) {
	at := time.Date(2024, 3, 4, 7, 0, 0, 0, time.UTC)
	sample := sampleFromRow(models.MeterSampleRow{
		RecordedAt: at,
		Value:      decimal.RequireFromString("12.5"),
		Measurand:  "Energy.Active.Import.Register",
		Unit:       "kWh",
		Multiplier: 0,
		Context:    "Sample.Periodic",
		Location:   "Outlet",
	})

	require.Equal(t, at, sample.Timestamp)
	require.Equal(t, types.MeasurandEnergyActiveImportRegister, sample.Measurand)
	require.Equal(t, types.UnitOfMeasureKWh, sample.Unit)
	require.Equal(t, types.ReadingContextSamplePeriodic, sample.Context)
	require.Equal(t, types.LocationOutlet, sample.Location)

	wh, err := sample.WattHours()
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(12500).Equal(wh))
}
