package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/passgate/internal/auth/service"
	"github.com/aussiebroadwan/passgate/pkg/authsdk"
	"github.com/aussiebroadwan/passgate/pkg/slogx"
)

// writeServiceError maps service sentinels onto OAuth2 error responses.
// Anything unrecognised is logged and reported as server_error.
func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		authsdk.ErrInvalidRequest.WriteError(w)
	case errors.Is(err, service.ErrUnsupportedGrantType):
		authsdk.ErrUnsupportedGrantType.WriteError(w)
	case errors.Is(err, service.ErrInvalidScope):
		authsdk.ErrInvalidScope.WriteError(w)
	case errors.Is(err, service.ErrInvalidClient):
		authsdk.ErrInvalidClient.WriteError(w)
	case errors.Is(err, service.ErrInvalidGrant):
		authsdk.ErrInvalidGrant.WriteError(w)
	default:
		slogx.FromContext(r.Context()).Error(op+" failed", "err", err)
		authsdk.ErrServerError.WriteError(w)
	}
}
