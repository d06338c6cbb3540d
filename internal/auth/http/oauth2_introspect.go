package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/passgate/internal/auth/service"
	"github.com/aussiebroadwan/passgate/pkg/authsdk"
	"github.com/aussiebroadwan/passgate/pkg/httpx"
	"github.com/aussiebroadwan/passgate/pkg/secctx"
)

// IntrospectHandler serves POST /auth/introspect following RFC 7662. Any
// authenticated client may introspect; the answer comes from the
// authorization records, so revoked tokens read as inactive even while
// their JWT signature is still valid.
type IntrospectHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Introspection Endpoint
//	@Description	Reports whether an access or refresh token is active (RFC 7662). Requires client authentication.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			token			formData	string							true	"The token to introspect"
//	@Param			token_type_hint	formData	string							false	"Hint about token type"	Enums(access_token, refresh_token)
//	@Success		200				{object}	authsdk.IntrospectionResponse	"Token introspection result"
//	@Failure		400				{object}	authsdk.ErrorResponse			"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse			"error, error_description"
//	@Header			200				{string}	Cache-Control					"no-store"
//	@Header			200				{string}	Pragma							"no-cache"
//	@Router			/auth/introspect [post].
func (h *IntrospectHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	ctx := r.Context()

	info, err := h.TokenService.Introspect(ctx, secctx.Capture(ctx).Principal(), r.PostForm.Get("token"))
	if err != nil {
		writeServiceError(w, r, "introspection", err)
		return
	}
	if !info.Active {
		httpx.WriteJSON(w, http.StatusOK, authsdk.IntrospectionResponse{Active: false})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.IntrospectionResponse{
		Active:    true,
		Scope:     strings.Join(info.Scopes, " "),
		ClientID:  info.ClientID,
		Username:  info.Username,
		TokenType: info.TokenType.String(),
		Exp:       info.ExpiresAt,
		Iat:       info.IssuedAt,
		Sub:       info.Subject,
		SessionID: info.SessionID,
	})
}
