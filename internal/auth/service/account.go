package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/passgate/internal/auth/domain"
	"github.com/aussiebroadwan/passgate/internal/auth/store"
	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/aussiebroadwan/passgate/pkg/idx"
	"github.com/aussiebroadwan/passgate/pkg/slogx"
)

// ErrAccountNotFound covers both missing and unverified accounts so callers
// cannot tell them apart.
var ErrAccountNotFound = errors.New("account_not_found")

// AccountLookup is what the token service needs from the account side.
type AccountLookup interface {
	FindByLoginID(ctx context.Context, loginID string) (domain.Account, error)
	GetByID(ctx context.Context, id string) (domain.Account, error)
	VerifySecret(raw, storedHash string) bool
}

type AccountService struct {
	Store store.Store
}

var _ AccountLookup = (*AccountService)(nil)

// FindByLoginID loads a verified account by email in a read-only
// transaction.
func (s *AccountService) FindByLoginID(ctx context.Context, loginID string) (domain.Account, error) {
	loginID = strings.TrimSpace(loginID)
	if loginID == "" {
		return domain.Account{}, ErrAccountNotFound
	}

	var account domain.Account
	err := s.Store.WithReadOnlyTx(ctx, "account-lookup", func(ctx context.Context, tx store.Tx) error {
		a, err := tx.Accounts().GetAccountByEmail(ctx, loginID)
		if err != nil {
			return err
		}
		account = a
		return nil
	})
	if errors.Is(err, store.ErrNotFound) {
		return domain.Account{}, ErrAccountNotFound
	}
	if err != nil {
		return domain.Account{}, err
	}

	if !account.Verified {
		slogx.FromContext(ctx).Debug("login attempt for unverified account", "account_id", account.ID)
		return domain.Account{}, ErrAccountNotFound
	}
	return account, nil
}

// GetByID loads an account by id. Unverified accounts are treated as
// missing.
func (s *AccountService) GetByID(ctx context.Context, id string) (domain.Account, error) {
	account, err := s.Store.Accounts().GetAccountByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) || (err == nil && !account.Verified) {
		return domain.Account{}, ErrAccountNotFound
	}
	return account, err
}

// VerifySecret reports whether raw matches storedHash.
func (s *AccountService) VerifySecret(raw, storedHash string) bool {
	return cryptox.VerifyPassword(raw, storedHash) == nil
}

// CreateAccount hashes password and stores a new account.
func (s *AccountService) CreateAccount(
	ctx context.Context,
	email, name, password string,
	verified bool,
	authorities []string,
) (domain.Account, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.Account{}, ErrInvalidRequest
	}

	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return domain.Account{}, fmt.Errorf("hash password: %w", err)
	}

	account := domain.Account{
		ID:           idx.New().String(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
		Verified:     verified,
		Authorities:  authorities,
	}
	if err := s.Store.Accounts().CreateAccount(ctx, account); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}
