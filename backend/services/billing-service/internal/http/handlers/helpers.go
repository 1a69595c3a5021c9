package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"evcdr/backend/libs/cdr"
	"evcdr/backend/services/billing-service/internal/invoice"
	"evcdr/backend/services/billing-service/internal/service"
)

const maxBodyBytes = 8 << 20

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps billing and engine errors to HTTP responses.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error) {
	if kind := cdr.ErrorKind(err); kind != "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error":  kind,
			"detail": err.Error(),
		})
		return
	}
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, invoice.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrTariffNotFound):
		writeError(w, http.StatusNotFound, "tariff not found")
	default:
		logger.Error("billing request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "billing calculation failed")
	}
}

// decodeBody decodes an optional JSON body. An empty body leaves dst untouched.
func decodeBody(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func sessionIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(r.PathValue("id")), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
