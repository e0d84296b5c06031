// Package requestid carries a request ID through contexts, including into
// detached background work.
package requestid

import "context"

// Header is the HTTP header used to propagate request IDs.
const Header = "X-Request-Id"

type key struct{}

// With attaches id to ctx. Empty IDs leave ctx unchanged.
func With(ctx context.Context, id string) context.Context {
	if ctx == nil || id == "" {
		return ctx
	}
	return context.WithValue(ctx, key{}, id)
}

// From returns the request ID stored in ctx, or "".
func From(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(key{}).(string); ok {
		return id
	}
	return ""
}

// Detach returns a fresh background context that keeps only the request ID,
// for work that must outlive the originating request.
func Detach(ctx context.Context) context.Context {
	return With(context.Background(), From(ctx))
}
