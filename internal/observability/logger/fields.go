package logger

import (
	"time"

	"go.uber.org/zap"
)

// HTTP fields.

func RequestID(v string) zap.Field       { return zap.String("request_id", v) }
func Method(v string) zap.Field          { return zap.String("method", v) }
func Path(v string) zap.Field            { return zap.String("path", v) }
func Status(v int) zap.Field             { return zap.Int("status", v) }
func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }
func DurationMs(v int64) zap.Field       { return zap.Int64("duration_ms", v) }
func Bytes(v int) zap.Field              { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field        { return zap.String("client_ip", v) }

// Domain fields.

// Provider tags the OAuth identity provider involved in the operation.
func Provider(v string) zap.Field { return zap.String("provider", v) }

// StateKey tags the opaque state token key. Only the key is ever logged,
// never client secrets or provider access tokens.
func StateKey(v string) zap.Field { return zap.String("state_key", v) }

func UserID(v string) zap.Field { return zap.String("user_id", v) }

// Email logs an email address; use sparingly in prod.
func Email(v string) zap.Field { return zap.String("email", v) }

// System fields.

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

// Generic fields.

func Count(v int) zap.Field            { return zap.Int("count", v) }
func String(key, v string) zap.Field   { return zap.String(key, v) }
func Int(key string, v int) zap.Field  { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field  { return zap.Any(key, v) }
