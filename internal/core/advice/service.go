// Package advice proxies transaction data to an external completion API and
// returns the generated financial advice verbatim. The proxy keeps no state
// of its own.
package advice

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"finmon/internal/config"
	"finmon/internal/domain"
	"finmon/internal/logger"
)

const openAIEndpoint = "https://api.openai.com/v1/chat/completions"

const cacheTTL = 10 * time.Minute

var focusHints = map[string]string{
	"overview": "Summarize spending patterns and key risks/opportunities.",
	"savings":  "Give a realistic savings plan based on income vs expenses.",
	"cuts":     "Suggest concrete expense reductions and quick wins.",
	"budget":   "Recommend category-level budget controls and limits.",
}

// Cache stores completed advice for a short while so repeated submissions of
// the same payload skip the upstream call. A nil Cache disables caching.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type service struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	cache    Cache
	group    singleflight.Group
	log      logger.Logger
}

func NewService(cfg *config.Config, cache Cache, log logger.Logger) domain.AdviceService {
	return &service{
		apiKey:   cfg.OpenAIAPIKey,
		model:    cfg.OpenAIModel,
		endpoint: openAIEndpoint,
		client:   &http.Client{Timeout: 60 * time.Second},
		cache:    cache,
		log:      log,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (s *service) Advise(ctx context.Context, userID uuid.UUID, req domain.AdviceRequest) (string, error) {
	if s.apiKey == "" {
		return "", domain.ErrNoAPIKey
	}

	key := cacheKey(userID, req)

	if s.cache != nil {
		if cached, ok, err := s.cache.Get(ctx, key); err != nil {
			s.log.Warn("advice: cache read failed", "error", err)
		} else if ok {
			return cached, nil
		}
	}

	// Identical concurrent submissions share one upstream round trip.
	result, err, _ := s.group.Do(key, func() (any, error) {
		return s.complete(ctx, req)
	})
	if err != nil {
		return "", err
	}

	content := result.(string)

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, content, cacheTTL); err != nil {
			s.log.Warn("advice: cache write failed", "error", err)
		}
	}

	return content, nil
}

func (s *service) complete(ctx context.Context, req domain.AdviceRequest) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       s.model,
		Messages:    buildMessages(req),
		Temperature: 0.3,
		MaxTokens:   450,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("call completion API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)

		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return "", &domain.UpstreamError{
				Status:  http.StatusTooManyRequests,
				Message: "OpenAI rate limit reached. Please wait a moment and try again, or check your billing at platform.openai.com/settings/billing.",
			}
		case http.StatusUnauthorized:
			return "", &domain.UpstreamError{
				Status:  http.StatusUnauthorized,
				Message: "Invalid OpenAI API key. Check your OPENAI_API_KEY environment variable.",
			}
		default:
			return "", &domain.UpstreamError{
				Status:  resp.StatusCode,
				Message: string(body),
			}
		}
	}

	var data chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}

	if len(data.Choices) == 0 {
		return "", domain.ErrEmptyCompletion
	}

	content := strings.TrimSpace(data.Choices[0].Message.Content)
	if content == "" {
		return "", domain.ErrEmptyCompletion
	}

	return content, nil
}

func buildMessages(req domain.AdviceRequest) []chatMessage {
	languageName := "English"
	if req.Language == "ru" {
		languageName = "Russian"
	}

	var user strings.Builder
	fmt.Fprintf(&user, "User goal/problem: %s\n", req.Goal)
	fmt.Fprintf(&user, "Focus: %s (%s)\n", req.Focus, focusHints[req.Focus])
	fmt.Fprintf(&user, "Currency: %s\n", req.Currency)
	fmt.Fprintf(&user, "Totals: %s\n", rawOrNull(req.Totals))
	fmt.Fprintf(&user, "Transactions (most recent first):\n%s", rawOrNull(req.Transactions))

	return []chatMessage{
		{
			Role: "system",
			Content: "You are a practical personal finance assistant. " +
				"Analyze the user's transactions and give concise, actionable advice. " +
				"Return 4-6 bullet points and end with 2 next-step actions. " +
				"Reply in " + languageName + ".",
		},
		{
			Role:    "user",
			Content: user.String(),
		},
	}
}

func rawOrNull(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "null"
	}
	return string(raw)
}

func cacheKey(userID uuid.UUID, req domain.AdviceRequest) string {
	h := sha256.New()
	h.Write([]byte(req.Focus))
	h.Write([]byte(req.Goal))
	h.Write([]byte(req.Currency))
	h.Write([]byte(req.Language))
	h.Write(req.Totals)
	h.Write(req.Transactions)

	return "advice:" + userID.String() + ":" + hex.EncodeToString(h.Sum(nil))
}
