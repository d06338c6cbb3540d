package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/passgate/internal/auth/domain"
	"github.com/aussiebroadwan/passgate/internal/auth/store"
	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/aussiebroadwan/passgate/pkg/idx"
	"github.com/aussiebroadwan/passgate/pkg/jwtx"
	"github.com/aussiebroadwan/passgate/pkg/secctx"
	"github.com/aussiebroadwan/passgate/pkg/slogx"
)

var (
	ErrInvalidRequest       = errors.New("invalid_request")
	ErrInvalidClient        = errors.New("invalid_client")
	ErrInvalidGrant         = errors.New("invalid_grant")
	ErrInvalidScope         = errors.New("invalid_scope")
	ErrUnsupportedGrantType = errors.New("unsupported_grant_type")
)

// errBadCredentials never leaves this package; it collapses into
// ErrInvalidGrant.
var errBadCredentials = errors.New("bad credentials")

// Decrypter recovers a password encrypted with the service public key.
type Decrypter interface {
	Decrypt(ciphertextB64 string) (string, error)
}

type TokenService struct {
	Store     store.Store
	Accounts  AccountLookup
	Cipher    Decrypter
	Generator jwtx.TokenGenerator

	// Pool runs password decryption and hashing off the request goroutine.
	// Nil runs them inline.
	Pool *secctx.Pool

	// Fallback lifetimes for clients registered without one.
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	Now func() time.Time
}

func (s *TokenService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Exchange runs the grant named by req.Kind. A nil result with a nil error
// is never returned: either both tokens are issued or an error explains why
// not.
func (s *TokenService) Exchange(ctx context.Context, req *domain.GrantRequest) (*domain.TokenResult, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	switch req.Kind {
	case GrantPassword:
		return s.authenticatePassword(ctx, req)
	case GrantRefreshToken:
		return s.rotateRefresh(ctx, req)
	default:
		return nil, ErrUnsupportedGrantType
	}
}

// Supports reports whether kind is a grant Exchange can run.
func (s *TokenService) Supports(kind GrantKind) bool {
	return kind == GrantPassword || kind == GrantRefreshToken
}

func (s *TokenService) authenticatePassword(ctx context.Context, req *domain.GrantRequest) (*domain.TokenResult, error) {
	l := slogx.FromContext(ctx)

	// 1. The client must have authenticated and be allowed this grant
	client, err := grantClient(req.Client, GrantPassword)
	if err != nil {
		return nil, err
	}

	// 2. Credentials
	username := strings.TrimSpace(req.Param("username"))
	password := req.Param("password")
	if username == "" || password == "" {
		return nil, ErrInvalidRequest
	}

	// 3. Scope
	scopes, err := resolveScopes(req.Param("scope"), client.Scopes)
	if err != nil {
		return nil, err
	}

	// 4. Account. A miss still pays for the decrypt and hash below so that
	// every rejection costs the same.
	account, err := s.Accounts.FindByLoginID(ctx, username)
	found := err == nil
	if err != nil && !errors.Is(err, ErrAccountNotFound) {
		return nil, err
	}
	storedHash := account.PasswordHash
	if !found {
		storedHash = cryptox.DummyPasswordHash()
	}

	// 5. Decrypt and verify off the request goroutine. Both steps always
	// run; after a failed decrypt the raw form value is verified instead and
	// the grant is rejected regardless.
	err = s.do(ctx, func(ctx context.Context) error {
		raw, decryptErr := s.Cipher.Decrypt(password)
		if decryptErr != nil {
			raw = password
		}
		match := s.Accounts.VerifySecret(raw, storedHash)

		var reason string
		switch {
		case !found:
			reason = "unknown_account"
		case decryptErr != nil:
			reason = "decrypt"
		case !match:
			reason = "mismatch"
		default:
			return nil
		}
		slogx.FromContext(ctx).Info("password grant rejected",
			"client_id", client.ID,
			"account_id", account.ID,
			"reason", reason,
		)
		return errBadCredentials
	})
	if errors.Is(err, errBadCredentials) {
		return nil, ErrInvalidGrant
	}
	if err != nil {
		return nil, err
	}

	// 6. Tokens for a new session
	sessionID := idx.New().String()
	issued, err := s.issue(ctx, client, account, scopes, sessionID)
	if err != nil {
		return nil, err
	}

	// 7. Persist
	rec := s.record(client, account, GrantPassword, scopes, sessionID, issued)
	err = s.Store.WithTx(ctx, "password-grant", func(ctx context.Context, tx store.Tx) error {
		return tx.Authorizations().SaveAuthorization(ctx, rec)
	})
	if err != nil {
		return nil, fmt.Errorf("save authorization: %w", err)
	}

	l.Info("password grant issued",
		"client_id", client.ID,
		"account_id", account.ID,
		"session_id", rec.SessionID,
		"scopes", scopes,
	)

	// 8. Result
	return &domain.TokenResult{
		Client:       req.Client,
		AccessToken:  issued.access,
		RefreshToken: issued.refresh,
		Scopes:       scopes,
		AdditionalParameters: map[string]any{
			"user": account.Summary(),
		},
	}, nil
}

// rotateRefresh exchanges a refresh token for a new pair. The old token is
// retired with a compare-and-swap so that two concurrent exchanges of the
// same token cannot both succeed.
func (s *TokenService) rotateRefresh(ctx context.Context, req *domain.GrantRequest) (*domain.TokenResult, error) {
	l := slogx.FromContext(ctx)
	now := s.now()

	client, err := grantClient(req.Client, GrantRefreshToken)
	if err != nil {
		return nil, err
	}

	hash := cryptox.FingerprintToken(req.RefreshToken)
	prev, err := s.Store.Authorizations().FindByToken(ctx, hash)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidGrant
	}
	if err != nil {
		return nil, err
	}

	meta, typ, ok := prev.Lookup(hash)
	if !ok || typ != jwtx.TokenTypeRefresh || !meta.Active(now) {
		l.Info("refresh grant rejected", "client_id", client.ID, "authorization_id", prev.ID, "reason", "inactive")
		return nil, ErrInvalidGrant
	}
	if prev.ClientID != client.ID {
		l.Warn("refresh token presented by another client",
			"client_id", client.ID,
			"owner_client_id", prev.ClientID,
			"authorization_id", prev.ID,
		)
		return nil, ErrInvalidGrant
	}

	account, err := s.Accounts.GetByID(ctx, prev.AccountID)
	if errors.Is(err, ErrAccountNotFound) {
		return nil, ErrInvalidGrant
	}
	if err != nil {
		return nil, err
	}

	// A refresh may narrow the original scope, never widen it.
	scopes, err := resolveScopes(req.Param("scope"), prev.Scopes)
	if err != nil {
		return nil, err
	}

	issued, err := s.issue(ctx, client, account, scopes, prev.SessionID)
	if err != nil {
		return nil, err
	}
	next := s.record(client, account, GrantRefreshToken, scopes, prev.SessionID, issued)

	err = s.Store.WithTx(ctx, "refresh-rotation", func(ctx context.Context, tx store.Tx) error {
		swapped, err := tx.Authorizations().InvalidateRefreshToken(ctx, hash)
		if err != nil {
			return err
		}
		if !swapped {
			return ErrInvalidGrant
		}
		return tx.Authorizations().SaveAuthorization(ctx, next)
	})
	if errors.Is(err, ErrInvalidGrant) {
		l.Info("refresh grant lost rotation race", "authorization_id", prev.ID)
		return nil, ErrInvalidGrant
	}
	if err != nil {
		return nil, fmt.Errorf("rotate refresh token: %w", err)
	}

	l.Info("refresh token rotated",
		"client_id", client.ID,
		"account_id", account.ID,
		"session_id", next.SessionID,
	)

	return &domain.TokenResult{
		Client:       req.Client,
		AccessToken:  issued.access,
		RefreshToken: issued.refresh,
		Scopes:       scopes,
	}, nil
}

// Revoke invalidates both tokens of the authorization that token belongs
// to. Unknown tokens and tokens of other clients succeed silently.
func (s *TokenService) Revoke(ctx context.Context, caller *secctx.Principal, token string) error {
	client, err := authenticatedClient(caller)
	if err != nil {
		return err
	}
	if strings.TrimSpace(token) == "" {
		return ErrInvalidRequest
	}

	rec, err := s.Store.Authorizations().FindByToken(ctx, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if rec.ClientID != client.ID {
		slogx.FromContext(ctx).Warn("revocation for another client's token ignored",
			"client_id", client.ID,
			"authorization_id", rec.ID,
		)
		return nil
	}

	err = s.Store.WithTx(ctx, "revoke", func(ctx context.Context, tx store.Tx) error {
		return tx.Authorizations().Invalidate(ctx, rec.ID)
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("authorization revoked", "authorization_id", rec.ID, "session_id", rec.SessionID)
	return nil
}

// Introspect describes token for an authenticated client. Unknown,
// expired and revoked tokens come back inactive with no other fields.
func (s *TokenService) Introspect(ctx context.Context, caller *secctx.Principal, token string) (domain.Introspection, error) {
	if _, err := authenticatedClient(caller); err != nil {
		return domain.Introspection{}, err
	}
	if strings.TrimSpace(token) == "" {
		return domain.Introspection{}, ErrInvalidRequest
	}

	hash := cryptox.FingerprintToken(token)
	var rec domain.AuthorizationRecord
	err := s.Store.WithReadOnlyTx(ctx, "introspect", func(ctx context.Context, tx store.Tx) error {
		r, err := tx.Authorizations().FindByToken(ctx, hash)
		rec = r
		return err
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Introspection{}, nil
	}
	if err != nil {
		return domain.Introspection{}, err
	}

	meta, typ, ok := rec.Lookup(hash)
	if !ok || !meta.Active(s.now()) {
		return domain.Introspection{}, nil
	}

	return domain.Introspection{
		Active:    true,
		Scopes:    rec.Scopes,
		ClientID:  rec.ClientID,
		Username:  rec.PrincipalName,
		TokenType: typ,
		Subject:   rec.AccountID,
		SessionID: rec.SessionID,
		IssuedAt:  meta.IssuedAt.Unix(),
		ExpiresAt: meta.ExpiresAt.Unix(),
	}, nil
}

type issuedPair struct {
	access  *jwtx.IssuedToken
	refresh *jwtx.IssuedToken
}

// issue mints an access and a refresh token. Generation that yields no
// token is a failed grant, never a half-issued one.
func (s *TokenService) issue(
	ctx context.Context,
	client domain.Client,
	account domain.Account,
	scopes []string,
	sessionID string,
) (issuedPair, error) {
	tc := jwtx.TokenContext{
		Format:      client.AccessTokenFormat,
		Subject:     account.ID,
		Username:    account.Email,
		Name:        account.Name,
		ClientID:    client.ID,
		SessionID:   sessionID,
		Scopes:      scopes,
		Authorities: account.Authorities,
		Now:         s.now(),
	}
	if tc.Format == "" {
		tc.Format = jwtx.FormatSelfContained
	}

	var out issuedPair
	for _, t := range []struct {
		typ jwtx.TokenType
		ttl time.Duration
		dst **jwtx.IssuedToken
	}{
		{jwtx.TokenTypeAccess, ttlOr(client.AccessTokenTTL, s.AccessTTL), &out.access},
		{jwtx.TokenTypeRefresh, ttlOr(client.RefreshTokenTTL, s.RefreshTTL), &out.refresh},
	} {
		tc.Type = t.typ
		tc.TTL = t.ttl

		tok, err := s.Generator.Generate(ctx, tc)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return issuedPair{}, ctxErr
		}
		if err != nil || tok == nil {
			slogx.FromContext(ctx).Error("token generation failed",
				"client_id", client.ID,
				"token_type", t.typ.String(),
				"error", err,
			)
			return issuedPair{}, ErrInvalidGrant
		}
		*t.dst = tok
	}
	return out, nil
}

func (s *TokenService) record(
	client domain.Client,
	account domain.Account,
	kind GrantKind,
	scopes []string,
	sessionID string,
	issued issuedPair,
) domain.AuthorizationRecord {
	return domain.AuthorizationRecord{
		ID:            idx.New().String(),
		ClientID:      client.ID,
		AccountID:     account.ID,
		PrincipalName: account.Email,
		GrantType:     kind,
		Scopes:        scopes,
		SessionID:     sessionID,
		AccessToken:   metadata(issued.access),
		RefreshToken:  metadata(issued.refresh),
		CreatedAt:     s.now(),
	}
}

func (s *TokenService) do(ctx context.Context, fn func(ctx context.Context) error) error {
	if s.Pool == nil {
		return fn(ctx)
	}
	return s.Pool.Do(ctx, fn)
}

func metadata(tok *jwtx.IssuedToken) domain.TokenMetadata {
	m := domain.TokenMetadata{
		Hash:      cryptox.FingerprintToken(tok.Value),
		IssuedAt:  tok.IssuedAt,
		ExpiresAt: tok.ExpiresAt,
	}
	if tok.HasClaims() {
		m.Claims = tok.Claims
	}
	return m
}

// grantClient unwraps the authenticated client behind p and checks it may
// use kind.
func grantClient(p *secctx.Principal, kind GrantKind) (domain.Client, error) {
	client, err := authenticatedClient(p)
	if err != nil {
		return domain.Client{}, err
	}
	if !client.AllowsGrant(kind) {
		return domain.Client{}, ErrInvalidClient
	}
	return client, nil
}

func authenticatedClient(p *secctx.Principal) (domain.Client, error) {
	if p == nil || !p.Authenticated || p.Kind != secctx.KindClient {
		return domain.Client{}, ErrInvalidClient
	}
	client, ok := p.Details.(domain.Client)
	if !ok {
		return domain.Client{}, ErrInvalidClient
	}
	return client, nil
}

// resolveScopes returns the requested scopes when every one of them is
// allowed, or all allowed scopes when none were requested.
func resolveScopes(requested string, allowed []string) ([]string, error) {
	fields := strings.Fields(requested)
	if len(fields) == 0 {
		return slices.Clone(allowed), nil
	}

	out := make([]string, 0, len(fields))
	for _, scope := range fields {
		if !slices.Contains(allowed, scope) {
			return nil, ErrInvalidScope
		}
		if !slices.Contains(out, scope) {
			out = append(out, scope)
		}
	}
	return out, nil
}

func ttlOr(ttl, fallback time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return fallback
}
