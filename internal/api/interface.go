package api

import (
	"context"

	"github.com/diogo/ai29/internal/models"
)

// ChatAPI is the backend surface the chat controller depends on
type ChatAPI interface {
	FetchHistory(ctx context.Context) ([]models.Message, error)
	SendMessage(ctx context.Context, text string) (string, error)
	ClearHistory(ctx context.Context) error
}

var _ ChatAPI = (*Client)(nil)
