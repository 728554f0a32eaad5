package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"finmon/internal/adapters/http/middleware"
	"finmon/internal/config"
	"finmon/internal/domain"
	"finmon/internal/logger"
)

type AuthHandler struct {
	svc domain.AuthService
	cfg *config.Config
	log logger.Logger
}

func NewAuthHandler(svc domain.AuthService, cfg *config.Config, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		svc: svc,
		cfg: cfg,
		log: log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if issues := ValidateStruct(&req); len(issues) > 0 {
		writeValidationError(w, issues)
		return
	}

	res, err := h.svc.Register(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrEmailTaken) {
			writeError(w, http.StatusConflict, "Email already in use")
			return
		}

		h.log.Error("auth: registration failed", "error", err)
		writeServerError(w)
		return
	}

	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User created successfully",
		"token":   res.Token,
		"user":    res.User,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if issues := ValidateStruct(&req); len(issues) > 0 {
		writeValidationError(w, issues)
		return
	}

	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		h.log.Error("auth: login failed", "error", err)
		writeServerError(w)
		return
	}

	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Login successful",
		"token":   res.Token,
		"user":    res.User,
	})
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	user, err := h.svc.Me(r.Context(), userID)
	if err != nil {
		// The token can outlive its user record.
		if errors.Is(err, domain.ErrUserNotFound) {
			writeError(w, http.StatusNotFound, "User not found")
			return
		}

		h.log.Error("auth: current-user lookup failed", "error", err)
		writeServerError(w)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (h *AuthHandler) Update(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "No token provided")
		return
	}

	var req domain.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Empty() {
		writeError(w, http.StatusBadRequest, "No fields to update")
		return
	}

	if issues := ValidateStruct(&req); len(issues) > 0 {
		writeValidationError(w, issues)
		return
	}

	res, err := h.svc.Update(r.Context(), userID, req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmailTaken):
			writeError(w, http.StatusConflict, "Email already in use")
		case errors.Is(err, domain.ErrUserNotFound):
			writeError(w, http.StatusNotFound, "User not found")
		default:
			h.log.Error("auth: update failed", "error", err)
			writeServerError(w)
		}
		return
	}

	h.setSessionCookie(w, res.Token)
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"token":   res.Token,
		"user":    res.User,
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})

	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(h.cfg.JWTExpiry),
		MaxAge:   int(h.cfg.JWTExpiry.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.Production(),
		SameSite: http.SameSiteLaxMode,
	})
}
