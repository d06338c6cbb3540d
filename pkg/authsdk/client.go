package authsdk

import (
	"context"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// SDKClient is a client for the passgate authorization service.
// It provides access to unauthenticated operations and can create authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// ClientID and ClientSecret identify the OAuth client every grant is
	// made on behalf of. They are sent as form parameters
	// (client_secret_post).
	ClientID     string
	ClientSecret string
}

// NewSDKClient creates a new auth service client.
func NewSDKClient(baseURL, clientID, clientSecret string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		ClientID:     clientID,
		ClientSecret: clientSecret,
	}
}

// AuthenticateWithPassword runs the password grant and wraps the result in a
// Session that refreshes itself.
func (c *SDKClient) AuthenticateWithPassword(
	ctx context.Context,
	username, password string,
	scopes []string,
) (*Session, error) {
	tok, err := c.passwordToken(ctx, username, password, scopes)
	if err != nil {
		return nil, err
	}

	return newSession(ctx, c, tok), nil
}

// AuthenticateWithRefreshToken creates an authenticated session from an existing refresh token.
func (c *SDKClient) AuthenticateWithRefreshToken(ctx context.Context, refreshToken string) (*Session, error) {
	tok, err := c.refreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	return newSession(ctx, c, tok), nil
}

// oauth2Config describes the token endpoint to x/oauth2. Client credentials
// always travel in the form body.
func (c *SDKClient) oauth2Config(scopes []string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.url("/auth/token"),
			AuthStyle: oauth2.AuthStyleInParams,
		},
		Scopes: scopes,
	}
}

// oauth2Context makes x/oauth2 use this client's HTTP client.
func (c *SDKClient) oauth2Context(ctx context.Context) context.Context {
	if c.HTTPClient == nil {
		return ctx
	}
	return context.WithValue(ctx, oauth2.HTTPClient, c.HTTPClient)
}
