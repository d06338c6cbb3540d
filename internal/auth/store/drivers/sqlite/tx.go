package sqlite

import (
	"database/sql"

	"github.com/aussiebroadwan/passgate/internal/auth/store"
)

// txStore hands out repositories bound to one transaction. Commit and
// rollback belong to Store.withTx.
type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Accounts() store.Accounts             { return &accountsRepo{db: t.tx} }
func (t *txStore) Clients() store.Clients               { return &clientsRepo{db: t.tx} }
func (t *txStore) Authorizations() store.Authorizations { return &authorizationsRepo{db: t.tx} }
