package http

import (
	"net/http"
)

// KeyHandler serves the Base64 PKIX public key clients encrypt passwords
// with.
//
//	@Summary		Password Encryption Key
//	@Description	Returns the Base64 PKIX RSA public key. Encrypt the password with it (PKCS#1 v1.5) before calling the token endpoint.
//	@Tags			OAuth2
//	@Produce		plain
//	@Success		200	{string}	string	"Base64 public key"
//	@Router			/auth/key [get].
func KeyHandler(publicKey string) http.HandlerFunc {
	body := []byte(publicKey)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(body)
	}
}
