package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"finmon/internal/adapters/memory"
	"finmon/internal/config"
	"finmon/internal/core/auth"
	"finmon/internal/domain"
)

type fakeAdvice struct {
	advice string
	err    error

	gotUserID uuid.UUID
	gotReq    domain.AdviceRequest
}

func (f *fakeAdvice) Advise(_ context.Context, userID uuid.UUID, req domain.AdviceRequest) (string, error) {
	f.gotUserID = userID
	f.gotReq = req
	return f.advice, f.err
}

func newAdviceRouter(t *testing.T, svc domain.AdviceService) (http.Handler, string) {
	t.Helper()

	cfg := &config.Config{
		JWTSecret: testSecret,
		JWTExpiry: 7 * 24 * time.Hour,
		AppEnv:    "development",
	}
	log := slog.New(slog.DiscardHandler)

	repo := memory.NewUserRepository()
	hasher := auth.NewPasswordHasher(bcrypt.MinCost)
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	authSvc := auth.NewService(repo, hasher, issuer)

	router := NewRouter(cfg, &RouterDeps{
		Auth:   NewAuthHandler(authSvc, cfg, log),
		Advice: NewAdviceHandler(svc, log),
		Health: NewHealthHandler(nil),

		Verifier: issuer,
	})

	return router, registerUser(t, router, "advice@x.com")
}

func advicePayload() map[string]any {
	return map[string]any{
		"focus":        "overview",
		"goal":         "understand my spending",
		"currency":     "USD",
		"totals":       map[string]float64{"income": 3000},
		"transactions": []map[string]any{{"amount": -12.5}},
	}
}

func TestAdvice(t *testing.T) {
	t.Parallel()

	fake := &fakeAdvice{advice: "spend less"}
	router, token := newAdviceRouter(t, fake)

	rec := doJSON(t, router, http.MethodPost, "/api/advice", advicePayload(), bearer(token))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "spend less", decodeBody(t, rec)["advice"])

	assert.NotEqual(t, uuid.Nil, fake.gotUserID)
	assert.Equal(t, "overview", fake.gotReq.Focus)
	assert.JSONEq(t, `{"income":3000}`, string(fake.gotReq.Totals))
}

func TestAdvice_Unauthenticated(t *testing.T) {
	t.Parallel()

	router, _ := newAdviceRouter(t, &fakeAdvice{advice: "unused"})

	rec := doJSON(t, router, http.MethodPost, "/api/advice", advicePayload(), nil)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "No token provided", decodeBody(t, rec)["error"])
}

func TestAdvice_InvalidPayload(t *testing.T) {
	t.Parallel()

	router, token := newAdviceRouter(t, &fakeAdvice{advice: "unused"})

	payload := advicePayload()
	payload["focus"] = "everything"
	delete(payload, "goal")

	rec := doJSON(t, router, http.MethodPost, "/api/advice", payload, bearer(token))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Invalid payload", body["error"])

	issues := body["issues"].(map[string]any)
	assert.Contains(t, issues, "focus")
	assert.Contains(t, issues, "goal")
}

func TestAdvice_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "missing api key",
			err:        domain.ErrNoAPIKey,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Missing OpenAI API key",
		},
		{
			name:       "upstream rate limit",
			err:        &domain.UpstreamError{Status: http.StatusTooManyRequests, Message: "OpenAI rate limit reached. Please wait a moment and try again, or check your billing at platform.openai.com/settings/billing."},
			wantStatus: http.StatusTooManyRequests,
			wantError:  "OpenAI rate limit reached. Please wait a moment and try again, or check your billing at platform.openai.com/settings/billing.",
		},
		{
			name:       "empty completion",
			err:        domain.ErrEmptyCompletion,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Empty response from OpenAI",
		},
		{
			name:       "unexpected failure",
			err:        context.DeadlineExceeded,
			wantStatus: http.StatusInternalServerError,
			wantError:  "Server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router, token := newAdviceRouter(t, &fakeAdvice{err: tt.err})

			rec := doJSON(t, router, http.MethodPost, "/api/advice", advicePayload(), bearer(token))

			require.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantError, decodeBody(t, rec)["error"])
		})
	}
}

func TestAdvice_TotalsPassedThroughVerbatim(t *testing.T) {
	t.Parallel()

	fake := &fakeAdvice{advice: "ok"}
	router, token := newAdviceRouter(t, fake)

	payload := advicePayload()
	payload["transactions"] = json.RawMessage(`[{"amount":-1,"note":"кофе"}]`)

	rec := doJSON(t, router, http.MethodPost, "/api/advice", payload, bearer(token))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"amount":-1,"note":"кофе"}]`, string(fake.gotReq.Transactions))
}
