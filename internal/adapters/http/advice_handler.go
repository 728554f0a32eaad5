package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"finmon/internal/adapters/http/middleware"
	"finmon/internal/domain"
	"finmon/internal/logger"
)

// AdviceHandler fronts the stateless proxy to the completion API. It owns no
// state; the session middleware supplies the caller identity.
type AdviceHandler struct {
	svc domain.AdviceService
	log logger.Logger
}

func NewAdviceHandler(svc domain.AdviceService, log logger.Logger) *AdviceHandler {
	return &AdviceHandler{
		svc: svc,
		log: log,
	}
}

func (h *AdviceHandler) Advise(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req domain.AdviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if issues := ValidateStruct(&req); len(issues) > 0 {
		writeValidationError(w, issues)
		return
	}

	advice, err := h.svc.Advise(r.Context(), userID, req)
	if err != nil {
		var upstream *domain.UpstreamError

		switch {
		case errors.Is(err, domain.ErrNoAPIKey):
			writeError(w, http.StatusInternalServerError, "Missing OpenAI API key")
		case errors.As(err, &upstream):
			writeError(w, upstream.Status, upstream.Message)
		case errors.Is(err, domain.ErrEmptyCompletion):
			writeError(w, http.StatusInternalServerError, "Empty response from OpenAI")
		default:
			h.log.Error("advice: upstream call failed", "error", err)
			writeServerError(w)
		}
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"advice": advice})
}
