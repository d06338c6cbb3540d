package http

import (
	"net/http"

	"github.com/aussiebroadwan/passgate/internal/auth/service"
	"github.com/aussiebroadwan/passgate/pkg/httpx"
	"github.com/aussiebroadwan/passgate/pkg/secctx"
)

// RevokeHandler serves POST /auth/revoke following RFC 7009. Revoking
// either token of a pair invalidates both. Unknown tokens return 200 OK so
// the endpoint cannot be used to probe for valid tokens.
type RevokeHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Revocation Endpoint
//	@Description	Revokes a previously issued access or refresh token (RFC 7009). Requires client authentication.
//	@Description	The endpoint is idempotent and returns 200 OK even for invalid or unknown tokens.
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			token			formData	string	true	"The token to revoke"
//	@Param			token_type_hint	formData	string	false	"Hint about token type"	Enums(access_token, refresh_token)
//	@Success		200				"Token revoked (or was already invalid)"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Header			200				{string}	Pragma					"no-cache"
//	@Router			/auth/revoke [post].
func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if !parseForm(w, r) {
		return
	}
	ctx := r.Context()

	// token_type_hint is advisory only; both token kinds are looked up by
	// fingerprint.
	if err := h.TokenService.Revoke(ctx, secctx.Capture(ctx).Principal(), r.PostForm.Get("token")); err != nil {
		writeServiceError(w, r, "revocation", err)
		return
	}

	httpx.NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("{}"))
}
