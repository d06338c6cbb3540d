//go:build e2e

package auth_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/aussiebroadwan/passgate/pkg/authsdk"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

/*
 * Common constants and helper functions for auth service end-to-end tests.
 * The image is built once, every test gets a fresh container with ephemeral
 * keys and a seeded client and account.
 */

const (
	testImageName = "passgate-auth-test:latest"

	clientID     = "public"
	clientSecret = "public"

	memberEmail    = "member@example.com"
	memberName     = "Member"
	memberPassword = "correct-password"
)

func TestMain(m *testing.M) {
	fmt.Fprintf(os.Stdout, "Building Auth Service Docker image...")

	if err := buildDockerImage(); err != nil {
		fmt.Fprintf(os.Stderr, "\nFailed to build Docker image: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stdout, " done\n")

	exitCode := m.Run()

	fmt.Fprintf(os.Stdout, "Cleaning up Auth Service Docker image...")
	cleanupDockerImage()
	fmt.Fprintf(os.Stdout, " done\n")

	os.Exit(exitCode)
}

func buildDockerImage() error {
	cmd := exec.CommandContext(context.Background(), "docker", "build",
		"-t", testImageName,
		"-f", "../../../cmd/auth/Dockerfile",
		"../../../")
	cmd.Stdout = os.Stdout
	return cmd.Run()
}

func cleanupDockerImage() {
	_ = exec.CommandContext(context.Background(), "docker", "rmi", "-f", testImageName).Run()
}

// setupAuthContainer starts the service and returns its base URL. extraEnv
// overrides the defaults.
func setupAuthContainer(t *testing.T, extraEnv map[string]string) string {
	t.Helper()
	ctx := context.Background()

	env := map[string]string{
		"AUTH_DATABASE_FILE":  "/data/auth.db",
		"AUTH_PEPPER_FILE":    "/data/pepper",
		"AUTH_ISSUER":         "passgate-e2e",
		"AUTH_EPHEMERAL_KEYS": "true",
		"AUTH_CLIENT_ID":      clientID,
		"AUTH_CLIENT_SECRET":  clientSecret,
		"AUTH_CLIENT_SCOPES":  "user,admin",
		"AUTH_SEED_EMAIL":     memberEmail,
		"AUTH_SEED_NAME":      memberName,
		"AUTH_SEED_PASSWORD":  memberPassword,
		"ENV":                 "test",
		"LOG_LEVEL":           "info",
		"LOG_FORMAT":          "json",
		// Tests log in far more often than the production limit allows.
		"RATELIMIT_STRICT_REQUESTS":   "1000",
		"RATELIMIT_STRICT_BURST":      "1000",
		"RATELIMIT_MODERATE_REQUESTS": "1000",
		"RATELIMIT_MODERATE_BURST":    "1000",
	}
	for k, v := range extraEnv {
		env[k] = v
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        testImageName,
			ExposedPorts: []string{"8080/tcp"},
			Env:          env,
			WaitingFor: wait.ForHTTP("/livez").
				WithPort("8080/tcp").
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	mappedPort, err := container.MappedPort(ctx, "8080")
	require.NoError(t, err)
	host, err := container.Host(ctx)
	require.NoError(t, err)

	return fmt.Sprintf("http://%s:%s", host, mappedPort.Port())
}

// performLogin runs the password grant for the seeded member.
func performLogin(t *testing.T, client *authsdk.SDKClient, scopes ...string) *authsdk.TokenResponse {
	t.Helper()
	resp, err := client.PasswordGrant(t.Context(), memberEmail, memberPassword, scopes)
	require.NoError(t, err, "login should succeed")
	assertTokenResponse(t, resp)
	return resp
}

func assertTokenResponse(t *testing.T, resp *authsdk.TokenResponse) {
	t.Helper()
	require.NotNil(t, resp)
	require.NotEmpty(t, resp.AccessToken, "Access token should not be empty")
	require.NotEmpty(t, resp.RefreshToken, "Refresh token should not be empty")
	require.Equal(t, "Bearer", resp.TokenType, "Token type should be Bearer")
	require.Positive(t, resp.ExpiresIn)
	require.NotEmpty(t, resp.Scope, "Scope should not be empty")
}

// assertOAuth2Error checks the status and error code of an endpoint failure.
func assertOAuth2Error(t *testing.T, err error, status int, code string) {
	t.Helper()
	require.Error(t, err)
	var oerr *authsdk.OAuth2Error
	require.True(t, errors.As(err, &oerr), "expected *OAuth2Error, got %T: %v", err, err)
	require.Equal(t, status, oerr.StatusCode)
	require.Equal(t, code, oerr.Code)
}
