/*
Package authsdk provides a client SDK for the passgate authorization service.

# Overview

The service issues JWT access tokens and opaque refresh tokens through the
OAuth2 password grant. Passwords never travel in clear text: the client fetches
the server's RSA public key from GET /auth/key, encrypts the password with
PKCS#1 v1.5 and submits the Base64 ciphertext as the password field. The SDK
does this for you.

The token endpoint calls go through golang.org/x/oauth2, with client
credentials sent as form parameters.

# SDKClient vs Session

  - SDKClient: unauthenticated operations and grant requests
  - Session: a token pair that refreshes itself

	client := authsdk.NewSDKClient("https://auth.example.com", "public", "public")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Password grant, returning the raw token response
	tokens, err := client.PasswordGrant(ctx, "member@example.com", "correct-password", nil)

	// Or wrap it in a session
	session, err := client.AuthenticateWithPassword(ctx, "member@example.com", "correct-password", []string{"user"})
	me, err := session.Me(ctx)

# Refresh Tokens

Refresh tokens are single use. Every refresh returns a new pair and the old
refresh token stops working:

	next, err := client.RefreshGrant(ctx, tokens.RefreshToken)

Sessions refresh 30 seconds before the access token expires and always use the
latest refresh token.

# Error Handling

Every endpoint error is returned as *OAuth2Error:

	_, err := client.PasswordGrant(ctx, username, password, nil)
	var oerr *authsdk.OAuth2Error
	if errors.As(err, &oerr) && oerr.Code == authsdk.ErrorCodeInvalidGrant {
		// wrong username or password, the server does not say which
	}

The server uses the same type to write its responses.
*/
package authsdk
