package auth

import "context"

type contextKey struct{}

// Principal is the verified identity behind a request.
type Principal struct {
	// Address is the checksummed caller address taken from the token subject.
	Address string
	TokenID string
}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(Principal)
	return p, ok
}

// Address returns the caller address, or "" for anonymous requests.
func Address(ctx context.Context) string {
	p, ok := FromContext(ctx)
	if !ok {
		return ""
	}
	return p.Address
}
