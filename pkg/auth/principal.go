package auth

import (
	"context"
	"strings"
)

// Principal is an authenticated caller.
type Principal struct {
	Username     string
	Capabilities []string
}

// Has reports whether the principal was granted the capability.
func (p *Principal) Has(capability string) bool {
	if p == nil {
		return false
	}
	for _, c := range p.Capabilities {
		if strings.EqualFold(c, capability) {
			return true
		}
	}
	return false
}

type principalKey struct{}

// WithPrincipal stores the principal on the context.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal or nil for anonymous requests.
func PrincipalFromContext(ctx context.Context) *Principal {
	if ctx == nil {
		return nil
	}
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}
