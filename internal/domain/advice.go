package domain

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrEmptyCompletion = errors.New("empty response from upstream")
	ErrNoAPIKey        = errors.New("missing OpenAI API key")
)

// UpstreamError carries a failure from the external completion API so the
// transport layer can pass the status through.
type UpstreamError struct {
	Status  int
	Message string
}

func (e *UpstreamError) Error() string {
	return e.Message
}

type AdviceRequest struct {
	Focus        string          `json:"focus" validate:"required,oneof=overview savings cuts budget"`
	Goal         string          `json:"goal" validate:"required"`
	Currency     string          `json:"currency" validate:"required"`
	Language     string          `json:"language"`
	Totals       json.RawMessage `json:"totals"`
	Transactions json.RawMessage `json:"transactions"`
}

type AdviceService interface {
	Advise(ctx context.Context, userID uuid.UUID, req AdviceRequest) (string, error)
}
