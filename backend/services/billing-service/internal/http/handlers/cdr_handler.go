package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lorenzodonini/ocpp-go/ocpp1.6/types"
	"go.uber.org/zap"

	"evcdr/backend/libs/cdr"
	"evcdr/backend/services/billing-service/internal/http/middleware"
	"evcdr/backend/services/billing-service/internal/invoice"
	"evcdr/backend/services/billing-service/internal/metrics"
	"evcdr/backend/services/billing-service/internal/models"
	"evcdr/backend/services/billing-service/internal/service"
)

// Calculator prices charging sessions.
type Calculator interface {
	SessionCDR(ctx context.Context, input service.SessionCDRInput) (*models.CDR, error)
	PriceInline(ctx context.Context, input service.InlineInput) (*models.CDR, error)
}

// CDRHandler serves the CDR and invoice endpoints.
type CDRHandler struct {
	calc    Calculator
	timeout time.Duration
	logger  *zap.Logger
}

// NewCDRHandler builds handler. A positive timeout bounds each computation.
func NewCDRHandler(calc Calculator, timeout time.Duration, logger *zap.Logger) *CDRHandler {
	return &CDRHandler{calc: calc, timeout: timeout, logger: logger}
}

type sessionCDRRequest struct {
	TariffID string             `json:"tariff_id"`
	Context  cdr.PricingContext `json:"context"`
}

type inlineCDRRequest struct {
	Samples     []cdr.MeterSample        `json:"samples"`
	MeterValues []types.MeterValue       `json:"meter_values"`
	Events      []cdr.ChargingStateEvent `json:"events"`
	TariffID    string                   `json:"tariff_id"`
	Tariff      *cdr.Tariff              `json:"tariff"`
	Context     cdr.PricingContext       `json:"context"`
}

func (h *CDRHandler) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout > 0 {
		return context.WithTimeout(r.Context(), h.timeout)
	}
	return context.WithCancel(r.Context())
}

// SessionCDR handles POST /billing/sessions/{id}/cdr.
func (h *CDRHandler) SessionCDR(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	var req sessionCDRRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()
	record, err := h.calc.SessionCDR(ctx, service.SessionCDRInput{
		SessionID: sessionID,
		TariffID:  req.TariffID,
		Context:   req.Context,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// InlineCDR handles POST /billing/cdr.
func (h *CDRHandler) InlineCDR(w http.ResponseWriter, r *http.Request) {
	var req inlineCDRRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	samples := req.Samples
	if len(req.MeterValues) > 0 {
		converted, err := cdr.SamplesFromMeterValues(req.MeterValues)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		samples = append(samples, converted...)
	}

	subject, _ := middleware.SubjectFromContext(r.Context())
	h.logger.Debug("inline pricing requested", zap.String("subject", subject), zap.Int("samples", len(samples)))

	ctx, cancel := h.withTimeout(r)
	defer cancel()
	record, err := h.calc.PriceInline(ctx, service.InlineInput{
		Samples:  samples,
		Events:   req.Events,
		TariffID: req.TariffID,
		Tariff:   req.Tariff,
		Context:  req.Context,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// Invoice handles GET /billing/sessions/{id}/invoice?format=pdf|xlsx&tariff_id=.
func (h *CDRHandler) Invoice(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := sessionIDFromPath(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = invoice.FormatPDF
	}
	if format != invoice.FormatPDF && format != invoice.FormatXLSX {
		writeError(w, http.StatusBadRequest, "unsupported invoice format")
		return
	}

	ctx, cancel := h.withTimeout(r)
	defer cancel()
	record, err := h.calc.SessionCDR(ctx, service.SessionCDRInput{
		SessionID: sessionID,
		TariffID:  r.URL.Query().Get("tariff_id"),
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	data, err := invoice.Render(format, record)
	if err != nil {
		metrics.IncInvoice(format, "error")
		writeServiceError(w, h.logger, err)
		return
	}
	metrics.IncInvoice(format, metrics.ResultSuccess)

	w.Header().Set("Content-Type", invoice.ContentType(format))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"invoice-%d.%s\"", sessionID, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
