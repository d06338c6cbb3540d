package httpx

import (
	"context"

	"github.com/aussiebroadwan/passgate/pkg/jwtx"
	"github.com/aussiebroadwan/passgate/pkg/secctx"
)

// withBearer installs the account named by a verified access token as the
// principal of ctx. The claims ride along as the principal's details.
func withBearer(ctx context.Context, c jwtx.Claims) context.Context {
	return secctx.WithPrincipal(ctx, &secctx.Principal{
		Kind:          secctx.KindAccount,
		ID:            c.Subject,
		Name:          c.Username,
		Authorities:   c.Authorities,
		Authenticated: true,
		Details:       c,
	})
}

// ClaimsFromContext returns the access-token claims of the bearer principal.
func ClaimsFromContext(ctx context.Context) (jwtx.Claims, bool) {
	p := secctx.Capture(ctx).Principal()
	if p == nil || !p.Authenticated {
		return jwtx.Claims{}, false
	}
	c, ok := p.Details.(jwtx.Claims)
	return c, ok
}

func scopesFromCtx(ctx context.Context) []string {
	c, _ := ClaimsFromContext(ctx)
	return c.Scopes
}
