package logger

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// NewRequestID returns a random identifier for correlating log lines
func NewRequestID() string {
	return uuid.New().String()
}

// WithRequestID stores id in ctx for WithContext
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the ID stored by WithRequestID, or ""
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(ctxKey{}).(string); ok {
		return id
	}
	return ""
}
