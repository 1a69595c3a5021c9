package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"evcdr/backend/libs/cdr"
	"evcdr/backend/services/billing-service/internal/models"
	"evcdr/backend/services/billing-service/internal/service"
)

type fakeCalculator struct {
	sessionInput service.SessionCDRInput
	inlineInput  service.InlineInput
	err          error
}

func (f *fakeCalculator) SessionCDR(_ context.Context, in service.SessionCDRInput) (*models.CDR, error) {
	f.sessionInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.CDR{SessionID: in.SessionID, TariffID: "t-1", Currency: "EUR", TotalEnergyWh: decimal.NewFromInt(1000)}, nil
}

func (f *fakeCalculator) PriceInline(_ context.Context, in service.InlineInput) (*models.CDR, error) {
	f.inlineInput = in
	if f.err != nil {
		return nil, f.err
	}
	return &models.CDR{TariffID: "inline", Currency: "EUR"}, nil
}

func newMux(calc Calculator) *http.ServeMux {
	h := NewCDRHandler(calc, time.Second, zap.NewNop())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /billing/sessions/{id}/cdr", h.SessionCDR)
	mux.HandleFunc("POST /billing/cdr", h.InlineCDR)
	mux.HandleFunc("GET /billing/sessions/{id}/invoice", h.Invoice)
	return mux
}

func do(mux http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestSessionCDR(t *testing.T) {
	calc := &fakeCalculator{}
	rec := do(newMux(calc), http.MethodPost, "/billing/sessions/42/cdr", `{"tariff_id":"t-1","context":{"currency":"EUR"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(42), calc.sessionInput.SessionID)
	require.Equal(t, "t-1", calc.sessionInput.TariffID)
	require.Equal(t, "EUR", calc.sessionInput.Context.Currency)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "1000", body["total_energy_wh"])
}

func TestSessionCDRAcceptsEmptyBody(t *testing.T) {
	calc := &fakeCalculator{}
	rec := do(newMux(calc), http.MethodPost, "/billing/sessions/9/cdr", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Empty(t, calc.sessionInput.TariffID)
}

func TestSessionCDRBadRequests(t *testing.T) {
	mux := newMux(&fakeCalculator{})
	require.Equal(t, http.StatusBadRequest, do(mux, http.MethodPost, "/billing/sessions/abc/cdr", "").Code)
	require.Equal(t, http.StatusBadRequest, do(mux, http.MethodPost, "/billing/sessions/0/cdr", "").Code)
	require.Equal(t, http.StatusBadRequest, do(mux, http.MethodPost, "/billing/sessions/1/cdr", "{").Code)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
		kind string
	}{
		{fmt.Errorf("%w: 1 billable samples", cdr.ErrInsufficientData), http.StatusUnprocessableEntity, "InsufficientData"},
		{cdr.ErrTariffNotVerified, http.StatusUnprocessableEntity, "TariffNotVerified"},
		{cdr.ErrCurrencyMismatch, http.StatusUnprocessableEntity, "CurrencyMismatch"},
		{service.ErrTariffNotFound, http.StatusNotFound, "tariff not found"},
		{service.ErrInvalidInput, http.StatusBadRequest, service.ErrInvalidInput.Error()},
		{fmt.Errorf("db down"), http.StatusInternalServerError, "billing calculation failed"},
	}
	for _, tt := range tests {
		rec := do(newMux(&fakeCalculator{err: tt.err}), http.MethodPost, "/billing/sessions/1/cdr", "")
		require.Equal(t, tt.code, rec.Code, tt.err.Error())

		var body map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		require.Equal(t, tt.kind, body["error"])
		if tt.code == http.StatusUnprocessableEntity {
			require.Equal(t, tt.err.Error(), body["detail"])
		}
	}
}

func TestInlineCDRConvertsMeterValues(t *testing.T) {
	calc := &fakeCalculator{}
	body := `{
		"meter_values": [
			{"timestamp": "2024-03-04T07:00:00Z", "sampledValue": [{"value": "1", "unit": "kWh"}]},
			{"timestamp": "2024-03-04T08:00:00Z", "sampledValue": [{"value": "11", "unit": "kWh"}]}
		],
		"events": [{"timestamp": "2024-03-04T07:30:00Z", "state": "SuspendedEV"}],
		"tariff": {"id": "inline", "currency": "EUR", "energy": {"tiers": [{"price": "0.30"}]}}
	}`
	rec := do(newMux(calc), http.MethodPost, "/billing/cdr", body)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, calc.inlineInput.Samples, 2)
	wh, err := calc.inlineInput.Samples[1].WattHours()
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(11000).Equal(wh))
	require.Len(t, calc.inlineInput.Events, 1)
	require.Equal(t, cdr.ChargingStateSuspendedEV, calc.inlineInput.Events[0].State)
	require.NotNil(t, calc.inlineInput.Tariff)
	require.Equal(t, "inline", calc.inlineInput.Tariff.ID)
}

func TestInlineCDRRejectsBadMeterValues(t *testing.T) {
	rec := do(newMux(&fakeCalculator{}), http.MethodPost, "/billing/cdr", `{"meter_values":[{"sampledValue":[{"value":"1"}]}]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInvoice(t *testing.T) {
	calc := &fakeCalculator{}
	mux := newMux(calc)

	rec := do(mux, http.MethodGet, "/billing/sessions/5/invoice?tariff_id=t-1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	require.Contains(t, rec.Header().Get("Content-Disposition"), "invoice-5.pdf")
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	require.Equal(t, "t-1", calc.sessionInput.TariffID)

	rec = do(mux, http.MethodGet, "/billing/sessions/5/invoice?format=xlsx", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))

	rec = do(mux, http.MethodGet, "/billing/sessions/5/invoice?format=docx", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
