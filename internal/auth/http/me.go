package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/passgate/internal/auth/service"
	"github.com/aussiebroadwan/passgate/pkg/authsdk"
	"github.com/aussiebroadwan/passgate/pkg/httpx"
	"github.com/aussiebroadwan/passgate/pkg/slogx"
)

// MeHandler resolves the bearer token's subject back to its account.
type MeHandler struct {
	AccountService *service.AccountService
}

// ServeHTTP godoc
//
//	@Summary		Current Member
//	@Description	Returns the member summary of the account named by the access token subject.
//	@Tags			Account
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	authsdk.MemberSummary	"id, username, name"
//	@Failure		401	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Failure		403	{string}	string					"insufficient_scope"
//	@Failure		404	{object}	authsdk.ErrorResponse	"error, error_description"
//	@Router			/auth/me [get].
func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	claims, ok := httpx.ClaimsFromContext(ctx)
	if !ok || claims.Subject == "" {
		authsdk.ErrInvalidToken.WriteError(w)
		return
	}

	account, err := h.AccountService.GetByID(ctx, claims.Subject)
	if errors.Is(err, service.ErrAccountNotFound) {
		authsdk.ErrNotFound.WriteError(w)
		return
	}
	if err != nil {
		slogx.FromContext(ctx).Error("account lookup failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
		return
	}

	s := account.Summary()
	httpx.WriteJSON(w, http.StatusOK, authsdk.MemberSummary{ID: s.ID, Username: s.Username, Name: s.Name})
}
