// Package logger provides the structured logging layer for the whole service.
//
// It wraps zap behind a small API:
//
//	logger.Init(logger.Config{Env: "prod", Level: "info"})
//	defer logger.Sync()
//
//	log := logger.From(ctx).With(logger.Component("oauth"))
//	log.Info("callback validated", logger.Provider("google"))
//
// Middlewares inject a request-scoped logger into the context; From(ctx)
// falls back to the process singleton when no request logger is present.
package logger
