package service_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aussiebroadwan/passgate/internal/auth/domain"
	"github.com/aussiebroadwan/passgate/internal/auth/service"
	"github.com/aussiebroadwan/passgate/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/aussiebroadwan/passgate/pkg/jwtx"
	"github.com/aussiebroadwan/passgate/pkg/secctx"
	"github.com/stretchr/testify/require"
)

const (
	testIssuer   = "https://auth.example.test"
	testEmail    = "member@example.com"
	testPassword = "correct-password"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "passgate-service")
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper"))

	code := m.Run()
	_ = os.RemoveAll(dir)
	os.Exit(code)
}

// countingAccounts records how often the token service asked for an
// account.
type countingAccounts struct {
	*service.AccountService
	lookups  atomic.Int32
	verifies atomic.Int32
}

func (c *countingAccounts) VerifySecret(raw, storedHash string) bool {
	c.verifies.Add(1)
	return c.AccountService.VerifySecret(raw, storedHash)
}

// countingCipher records how often a password was decrypted.
type countingCipher struct {
	service.Decrypter
	decrypts atomic.Int32
}

func (c *countingCipher) Decrypt(ciphertextB64 string) (string, error) {
	c.decrypts.Add(1)
	return c.Decrypter.Decrypt(ciphertextB64)
}

func (c *countingAccounts) FindByLoginID(ctx context.Context, loginID string) (domain.Account, error) {
	c.lookups.Add(1)
	return c.AccountService.FindByLoginID(ctx, loginID)
}

type harness struct {
	store    *sqlite.Store
	cipher   *cryptox.RSACipher
	keys     *jwtx.KeyManager
	accounts *countingAccounts
	clients  *service.ClientService
	tokens   *service.TokenService
	account  domain.Account
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	priv, pub, err := cryptox.GenerateRSAKeyPairBase64(2048)
	require.NoError(t, err)
	cipher, err := cryptox.NewRSACipher(priv, pub)
	require.NoError(t, err)

	km, err := jwtx.NewEphemeralKeyManager(jwtx.KeyManagerOptions{Issuer: testIssuer}, 2048)
	require.NoError(t, err)

	pool := secctx.NewPool(2)
	t.Cleanup(func() { _ = pool.Close() })

	accounts := &countingAccounts{AccountService: &service.AccountService{Store: st}}
	clients := &service.ClientService{Store: st}

	boot := &service.BootstrapService{Clients: clients, Accounts: accounts.AccountService}
	require.NoError(t, boot.Seed(ctx, service.SeedConfig{
		ClientID:        "public",
		ClientSecret:    "public",
		ClientScopes:    []string{"user", "admin"},
		AccessTTL:       time.Hour,
		RefreshTTL:      24 * time.Hour,
		AccountEmail:    testEmail,
		AccountName:     "Member",
		AccountPassword: testPassword,
	}))

	account, err := accounts.FindByLoginID(ctx, testEmail)
	require.NoError(t, err)
	accounts.lookups.Store(0)

	return &harness{
		store:    st,
		cipher:   cipher,
		keys:     km,
		accounts: accounts,
		clients:  clients,
		account:  account,
		tokens: &service.TokenService{
			Store:      st,
			Accounts:   accounts,
			Cipher:     cipher,
			Generator:  jwtx.NewTokenGenerator(km),
			Pool:       pool,
			AccessTTL:  time.Hour,
			RefreshTTL: 24 * time.Hour,
		},
	}
}

func (h *harness) client(t *testing.T) *secctx.Principal {
	t.Helper()
	p, err := h.clients.Authenticate(context.Background(), "public", "public", domain.AuthMethodSecretPost)
	require.NoError(t, err)
	return p
}

func (h *harness) encrypt(t *testing.T, password string) string {
	t.Helper()
	ct, err := h.cipher.Encrypt(password)
	require.NoError(t, err)
	return ct
}

func (h *harness) passwordRequest(t *testing.T, username, password string) *domain.GrantRequest {
	t.Helper()
	return &domain.GrantRequest{
		Kind:   service.GrantPassword,
		Client: h.client(t),
		Params: map[string]any{"username": username, "password": h.encrypt(t, password)},
	}
}

func (h *harness) login(t *testing.T) *domain.TokenResult {
	t.Helper()
	res, err := h.tokens.Exchange(context.Background(), h.passwordRequest(t, testEmail, testPassword))
	require.NoError(t, err)
	return res
}

func (h *harness) refreshRequest(t *testing.T, refresh string) *domain.GrantRequest {
	t.Helper()
	return &domain.GrantRequest{
		Kind:         service.GrantRefreshToken,
		Client:       h.client(t),
		Params:       map[string]any{},
		RefreshToken: refresh,
	}
}
