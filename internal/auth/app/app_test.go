package app

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestApplicationServesSeededLogin(t *testing.T) {
	dir := t.TempDir()
	cfg := Config{
		Issuer:                 "passgate-test",
		EphemeralKeys:          true,
		RSABits:                2048,
		AccessTokenTTLSeconds:  60,
		RefreshTokenTTLSeconds: 120,
		DatabaseFile:           filepath.Join(dir, "auth.db"),
		PepperFile:             filepath.Join(dir, "pepper"),
		Workers:                2,
		ClientID:               "public",
		ClientSecret:           "public",
		ClientScopes:           []string{"user"},
		SeedEmail:              "member@example.com",
		SeedName:               "Member",
		SeedPassword:           "correct-password",
		Env:                    "test",
		LogLevel:               "error",
		LogFormat:              "json",
		ShutdownGracePeriod:    time.Second,
		HousekeepingInterval:   time.Hour,
	}
	require.NoError(t, cfg.Validate())

	application, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Shutdown() })

	ciphertext, err := cryptox.EncryptWithPublicKey(application.keys.Cipher.PublicKey(), cfg.SeedPassword)
	require.NoError(t, err)

	form := url.Values{
		"grant_type":    {"password"},
		"client_id":     {cfg.ClientID},
		"client_secret": {cfg.ClientSecret},
		"username":      {cfg.SeedEmail},
		"password":      {ciphertext},
	}
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	application.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Contains(t, rec.Body.String(), `"refresh_token"`)
	require.Contains(t, rec.Body.String(), `"username":"member@example.com"`)
}
