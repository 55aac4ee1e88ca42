package respbuilder

import "context"

type respCtxKey struct{}

// Tracer identifies the request in every envelope and in the Tracer-ID header.
type Tracer struct {
	RemoteAddr string
	AppTraceID string
}

func Inject(ctx context.Context, t Tracer) context.Context {
	return context.WithValue(ctx, respCtxKey{}, t)
}

func Extract(ctx context.Context) (Tracer, bool) {
	t, ok := ctx.Value(respCtxKey{}).(Tracer)
	return t, ok
}

// MustExtract returns an empty Tracer when none was injected.
func MustExtract(ctx context.Context) Tracer {
	t, _ := Extract(ctx)
	return t
}
