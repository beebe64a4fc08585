package logger

import "context"

type ctxKey struct{}

// LoggerCtxKey is the context key under which a Logger is stored
var LoggerCtxKey = ctxKey{}

// ContextWithLogger returns a copy of ctx carrying l
func ContextWithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, LoggerCtxKey, l)
}

// FromContext returns the logger stored in ctx, or the default logger
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(LoggerCtxKey).(Logger); ok && l != nil {
		return l
	}
	return GetDefault()
}
