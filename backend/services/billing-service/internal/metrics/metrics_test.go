package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestObserversAreNoopsBeforeInit(t *testing.T) {
	if cdrTotal != nil {
		t.Skip("metrics already initialised")
	}
	require.NotPanics(t, func() {
		ObserveCDR("session", "", time.Millisecond)
		IncUnmatched("IdleTime")
		IncTariffLookup("cache")
		IncInvoice("pdf", ResultSuccess)
		AddBilledEnergy(10)
	})
}

func TestObserveAfterInit(t *testing.T) {
	Init(nil)
	Init(nil)

	before := testutil.ToFloat64(cdrTotal.WithLabelValues("inline", ResultSuccess))
	ObserveCDR("inline", "", 20*time.Millisecond)
	require.Equal(t, before+1, testutil.ToFloat64(cdrTotal.WithLabelValues("inline", ResultSuccess)))

	ObserveCDR("inline", "InsufficientData", time.Millisecond)
	require.GreaterOrEqual(t, testutil.ToFloat64(cdrTotal.WithLabelValues("inline", "InsufficientData")), 1.0)

	IncUnmatched("IdleTime")
	require.GreaterOrEqual(t, testutil.ToFloat64(unmatchedTotal.WithLabelValues("IdleTime")), 1.0)

	energy := testutil.ToFloat64(billedEnergyWh)
	AddBilledEnergy(1500)
	AddBilledEnergy(-3)
	require.Equal(t, energy+1500, testutil.ToFloat64(billedEnergyWh))
}
