package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/aussiebroadwan/passgate/internal/auth/domain"
	"github.com/aussiebroadwan/passgate/internal/auth/service"
	"github.com/aussiebroadwan/passgate/pkg/authsdk"
	"github.com/aussiebroadwan/passgate/pkg/httpx"
	"github.com/aussiebroadwan/passgate/pkg/secctx"
	"github.com/aussiebroadwan/passgate/pkg/slogx"
)

// ClientAuthMiddleware authenticates the OAuth2 client with
// client_secret_basic, client_secret_post or none, and installs it as the
// request principal. Requests that name no client continue as anonymous;
// the endpoint decides whether that is acceptable.
func ClientAuthMiddleware(clients *service.ClientService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !parseForm(w, r) {
				return
			}
			ctx := r.Context()

			clientID, secret, method, ok := clientCredentials(r)
			if !ok {
				next.ServeHTTP(w, r.WithContext(secctx.WithPrincipal(ctx, secctx.AnonymousPrincipal())))
				return
			}

			principal, err := clients.Authenticate(ctx, clientID, secret, method)
			if err != nil {
				if !errors.Is(err, service.ErrInvalidClient) {
					slogx.FromContext(ctx).Error("client authentication failed", "err", err)
					authsdk.ErrServerError.WriteError(w)
					return
				}
				if method == domain.AuthMethodSecretBasic {
					w.Header().Set("WWW-Authenticate", `Basic realm="passgate"`)
				}
				authsdk.ErrInvalidClient.WriteError(w)
				return
			}

			ctx = secctx.WithPrincipal(ctx, principal)
			ctx = slogx.WithContext(ctx, slogx.FromContext(ctx).With("client_id", principal.ID))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// clientCredentials reads client credentials from the Basic header or the
// form. Basic credentials are form-encoded per RFC 6749 section 2.3.1.
func clientCredentials(r *http.Request) (id, secret, method string, ok bool) {
	if user, pass, basic := r.BasicAuth(); basic {
		if u, err := url.QueryUnescape(user); err == nil {
			user = u
		}
		if p, err := url.QueryUnescape(pass); err == nil {
			pass = p
		}
		return user, pass, domain.AuthMethodSecretBasic, true
	}

	id = r.PostForm.Get("client_id")
	if id == "" {
		return "", "", "", false
	}
	if r.PostForm.Has("client_secret") {
		return id, r.PostForm.Get("client_secret"), domain.AuthMethodSecretPost, true
	}
	return id, "", domain.AuthMethodNone, true
}
