package authsdk

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"golang.org/x/oauth2"
)

// maxPublicKeySize bounds the GET /auth/key body.
const maxPublicKeySize = 8 << 10

// PublicKey fetches the Base64 PKIX RSA key that passwords must be encrypted
// with before they are sent to the token endpoint.
func (c *SDKClient) PublicKey(ctx context.Context) (string, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/auth/key", nil, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPublicKeySize))
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", parseErrorResponse(resp, body)
	}

	return strings.TrimSpace(string(body)), nil
}

// EncryptPassword fetches the public key and encrypts password with it.
func (c *SDKClient) EncryptPassword(ctx context.Context, password string) (string, error) {
	pub, err := c.PublicKey(ctx)
	if err != nil {
		return "", err
	}

	ciphertext, err := cryptox.EncryptWithPublicKey(pub, password)
	if err != nil {
		return "", fmt.Errorf("failed to encrypt password: %w", err)
	}
	return ciphertext, nil
}

// PasswordGrant requests tokens with the resource owner's credentials. The
// password is encrypted with the server's public key before it leaves the
// process.
func (c *SDKClient) PasswordGrant(
	ctx context.Context,
	username, password string,
	scopes []string,
) (*TokenResponse, error) {
	tok, err := c.passwordToken(ctx, username, password, scopes)
	if err != nil {
		return nil, err
	}
	return tokenResponse(tok), nil
}

// RefreshGrant exchanges a refresh token for a new token pair. The refresh
// token is single use.
func (c *SDKClient) RefreshGrant(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	tok, err := c.refreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}
	return tokenResponse(tok), nil
}

// RevokeToken revokes an access or refresh token (RFC 7009).
func (c *SDKClient) RevokeToken(ctx context.Context, token, hint string) error {
	data := url.Values{"token": {token}}
	if hint != "" {
		data.Set("token_type_hint", hint)
	}

	resp, err := c.postForm(ctx, "/auth/revoke", data)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return parseErrorResponse(resp, body)
	}
	return nil
}

// Introspect reports whether a token is active (RFC 7662).
func (c *SDKClient) Introspect(ctx context.Context, token string) (*IntrospectionResponse, error) {
	resp, err := c.postForm(ctx, "/auth/introspect", url.Values{"token": {token}})
	if err != nil {
		return nil, err
	}

	var out IntrospectionResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *SDKClient) passwordToken(
	ctx context.Context,
	username, password string,
	scopes []string,
) (*oauth2.Token, error) {
	ciphertext, err := c.EncryptPassword(ctx, password)
	if err != nil {
		return nil, err
	}

	tok, err := c.oauth2Config(scopes).PasswordCredentialsToken(c.oauth2Context(ctx), username, ciphertext)
	if err != nil {
		return nil, fromRetrieveError(err)
	}
	return tok, nil
}

func (c *SDKClient) refreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	src := c.oauth2Config(nil).TokenSource(c.oauth2Context(ctx), &oauth2.Token{RefreshToken: refreshToken})
	tok, err := src.Token()
	if err != nil {
		return nil, fromRetrieveError(err)
	}
	return tok, nil
}

// postForm sends a form request authenticated with client_secret_post.
func (c *SDKClient) postForm(ctx context.Context, path string, data url.Values) (*http.Response, error) {
	data.Set("client_id", c.ClientID)
	if c.ClientSecret != "" {
		data.Set("client_secret", c.ClientSecret)
	}

	return c.doRequest(ctx, http.MethodPost, path, strings.NewReader(data.Encode()), map[string]string{
		"Content-Type": "application/x-www-form-urlencoded",
	})
}

// tokenResponse flattens an x/oauth2 token back into the wire shape,
// including the extension fields x/oauth2 keeps in Extra.
func tokenResponse(tok *oauth2.Token) *TokenResponse {
	out := &TokenResponse{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    int(tok.ExpiresIn),
	}
	if out.ExpiresIn == 0 && !tok.Expiry.IsZero() {
		out.ExpiresIn = int(time.Until(tok.Expiry).Round(time.Second).Seconds())
	}
	if scope, ok := tok.Extra("scope").(string); ok {
		out.Scope = scope
	}
	if user, ok := tok.Extra("user").(map[string]any); ok {
		out.User = &MemberSummary{}
		out.User.ID, _ = user["id"].(string)
		out.User.Username, _ = user["username"].(string)
		out.User.Name, _ = user["name"].(string)
	}
	return out
}
