package logging

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

var logKey contextKey = "log"

// GetLogger returns the logger attached to ctx, or the global logger.
func GetLogger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return zap.L()
	}
	l, ok := ctx.Value(logKey).(*zap.Logger)
	if !ok || l == nil {
		return zap.L()
	}
	return l
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, logKey, logger)
}
