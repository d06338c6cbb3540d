package http

import (
	"net/http"
	"strings"

	"github.com/aussiebroadwan/passgate/pkg/authsdk"
)

// maxFormBytes bounds form bodies on the OAuth2 endpoints.
const maxFormBytes = 64 << 10

// parseForm checks the content type and parses the body once. It writes
// the error response itself and reports whether the caller may continue.
func parseForm(w http.ResponseWriter, r *http.Request) bool {
	if r.PostForm != nil {
		return true
	}

	if ct := r.Header.Get("Content-Type"); ct != "" &&
		!strings.HasPrefix(ct, "application/x-www-form-urlencoded") {
		authsdk.ErrInvalidContentType.WriteError(w)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		authsdk.ErrInvalidFormBody.WriteError(w)
		return false
	}
	return true
}

// FormMiddleware parses the form body before anything downstream reads a
// form value, so the size and content type limits always apply.
func FormMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !parseForm(w, r) {
			return
		}
		next.ServeHTTP(w, r)
	})
}
