package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/wattwise/bill-ingest-service/internal/dispatch"
	"github.com/wattwise/bill-ingest-service/internal/models"
)

// RetryCall re-executes one failed billing call. A call that still fails after
// every attempt is reported with ok=false and a 200 status.
func (h *Handler) RetryCall(w http.ResponseWriter, r *http.Request) {
	if h.deps.Retrier == nil {
		h.sendError(w, http.StatusServiceUnavailable, "retry is not configured")
		return
	}

	var req dispatch.RetryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxUploadSize)).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	result, err := h.deps.Retrier.Retry(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidInput), errors.Is(err, models.ErrUnknownService):
			h.sendError(w, http.StatusBadRequest, err.Error())
		default:
			zerolog.Ctx(r.Context()).Warn().Err(err).Str("service", req.Service).Msg("retry aborted")
			h.sendError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	h.sendJSON(w, http.StatusOK, result)
}
