package slogx

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/passgate/pkg/secctx"
)

// WithContext stores logger in the execution-context snapshot carried by
// ctx, so it follows the request across worker hand-offs.
func WithContext(ctx context.Context, logger *slog.Logger) context.Context {
	ctx, _ = secctx.Restore(ctx, secctx.Capture(ctx).WithLogger(logger))
	return ctx
}

// FromContext returns the request logger, or slog.Default.
func FromContext(ctx context.Context) *slog.Logger {
	return secctx.Capture(ctx).Logger()
}

func WithRequestID(ctx context.Context, reqID string) context.Context {
	return WithContext(ctx, FromContext(ctx).With("req_id", reqID))
}
