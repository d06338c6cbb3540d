package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/passgate/internal/auth/service"
	"github.com/aussiebroadwan/passgate/pkg/httpx"
)

// TokenHandler serves POST /auth/token.
type TokenHandler struct {
	Extractors   service.ExtractorChain
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		OAuth2 Token Endpoint
//	@Description	Issues an access token (JWT) and a refresh token using the password or refresh_token grant.
//	@Description	The password must be encrypted with the key from GET /auth/key (RSA PKCS#1 v1.5, Base64).
//	@Tags			OAuth2
//	@Accept			application/x-www-form-urlencoded
//	@Produce		json
//	@Param			grant_type		formData	string					true	"Grant type"	Enums(password, refresh_token)
//	@Param			username		formData	string					false	"Login email (password grant)"
//	@Param			password		formData	string					false	"Encrypted password (password grant)"
//	@Param			refresh_token	formData	string					false	"Refresh token (refresh_token grant)"
//	@Param			client_id		formData	string					false	"Client identifier (client_secret_post)"
//	@Param			client_secret	formData	string					false	"Client secret (client_secret_post)"
//	@Param			scope			formData	string					false	"Space-delimited list of scopes"
//	@Success		200				{object}	authsdk.TokenResponse	"access_token, refresh_token, token_type, expires_in, scope"
//	@Failure		400				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		401				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		429				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		500				{object}	authsdk.ErrorResponse	"error, error_description"
//	@Header			200				{string}	Cache-Control			"no-store"
//	@Header			200				{string}	Pragma					"no-cache"
//	@Router			/auth/token [post].
func (h *TokenHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// 1. Parse the form body (already done when client auth ran)
	if !parseForm(w, r) {
		return
	}
	ctx := r.Context()

	// 2. Build the grant request
	req, err := h.Extractors.Extract(ctx, r.PostForm)
	if err != nil {
		writeServiceError(w, r, "token request", err)
		return
	}

	// 3. Run the grant
	res, err := h.TokenService.Exchange(ctx, req)
	if err != nil {
		writeServiceError(w, r, req.Kind.String()+" grant", err)
		return
	}

	// 4. Respond. Additional parameters never override the standard fields.
	body := map[string]any{
		"access_token":  res.AccessToken.Value,
		"refresh_token": res.RefreshToken.Value,
		"token_type":    "Bearer",
		"expires_in":    int64(res.AccessToken.ExpiresAt.Sub(res.AccessToken.IssuedAt).Seconds()),
		"scope":         strings.Join(res.Scopes, " "),
	}
	for k, v := range res.AdditionalParameters {
		if _, taken := body[k]; !taken {
			body[k] = v
		}
	}

	httpx.WriteJSON(w, http.StatusOK, body)
}
