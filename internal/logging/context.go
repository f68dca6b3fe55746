package logging

import "context"

type argsKey struct{}

// ContextWith returns a copy of ctx carrying key-value pairs that every
// SlogLogger call made with that context will include. Pairs accumulate
// across nested calls.
func ContextWith(ctx context.Context, args ...any) context.Context {
	prev := contextArgs(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, argsKey{}, merged)
}

// contextArgs returns a fresh slice, so callers may append to it.
func contextArgs(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	v, _ := ctx.Value(argsKey{}).([]any)
	if len(v) == 0 {
		return nil
	}
	return append([]any(nil), v...)
}
