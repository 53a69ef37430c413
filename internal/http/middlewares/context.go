package middlewares

import "context"

type ctxKey string

const (
	ctxRequestIDKey ctxKey = "request_id"
	ctxUserIDKey    ctxKey = "user_id"
	ctxEmailKey     ctxKey = "email"
)

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// WithUserID injects the authenticated user ID into the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserIDKey, userID)
}

// WithEmail injects the authenticated email into the context.
func WithEmail(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, ctxEmailKey, email)
}

// GetRequestID returns the request ID or "".
func GetRequestID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return s
	}
	return ""
}

// GetUserID returns the authenticated user ID or "".
func GetUserID(ctx context.Context) string {
	if s, ok := ctx.Value(ctxUserIDKey).(string); ok {
		return s
	}
	return ""
}

// GetEmail returns the authenticated email or "".
func GetEmail(ctx context.Context) string {
	if s, ok := ctx.Value(ctxEmailKey).(string); ok {
		return s
	}
	return ""
}
