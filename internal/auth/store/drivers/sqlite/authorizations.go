package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aussiebroadwan/passgate/internal/auth/domain"
	"github.com/aussiebroadwan/passgate/pkg/jwtx"
)

type authorizationsRepo struct {
	db dbtx
}

const authorizationColumns = `id, client_id, account_id, principal_name, grant_type, scopes, session_id,
	access_token_hash, access_issued_at, access_expires_at, access_claims, access_invalidated,
	refresh_token_hash, refresh_issued_at, refresh_expires_at, refresh_invalidated,
	created_at`

func (r *authorizationsRepo) SaveAuthorization(ctx context.Context, rec domain.AuthorizationRecord) error {
	if err := checkWritable(ctx); err != nil {
		return err
	}

	claims, err := marshalClaims(rec.AccessToken.Claims)
	if err != nil {
		return err
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO authorizations (`+authorizationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		rec.ClientID,
		rec.AccountID,
		rec.PrincipalName,
		rec.GrantType.String(),
		joinFields(rec.Scopes),
		rec.SessionID,
		rec.AccessToken.Hash,
		toMillis(rec.AccessToken.IssuedAt),
		toMillis(rec.AccessToken.ExpiresAt),
		claims,
		rec.AccessToken.Invalidated,
		rec.RefreshToken.Hash,
		toMillis(rec.RefreshToken.IssuedAt),
		toMillis(rec.RefreshToken.ExpiresAt),
		rec.RefreshToken.Invalidated,
		toMillis(rec.CreatedAt),
	)
	return mapConstraint(err)
}

func (r *authorizationsRepo) FindByToken(ctx context.Context, hash string) (domain.AuthorizationRecord, error) {
	var (
		rec                       domain.AuthorizationRecord
		grantType, scopes         string
		claims                    sql.NullString
		accessIssued, accessExp   int64
		refreshIssued, refreshExp int64
		created                   int64
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT `+authorizationColumns+` FROM authorizations
		 WHERE access_token_hash = ? OR refresh_token_hash = ?`,
		hash, hash,
	).Scan(
		&rec.ID,
		&rec.ClientID,
		&rec.AccountID,
		&rec.PrincipalName,
		&grantType,
		&scopes,
		&rec.SessionID,
		&rec.AccessToken.Hash,
		&accessIssued,
		&accessExp,
		&claims,
		&rec.AccessToken.Invalidated,
		&rec.RefreshToken.Hash,
		&refreshIssued,
		&refreshExp,
		&rec.RefreshToken.Invalidated,
		&created,
	)
	if err != nil {
		return domain.AuthorizationRecord{}, mapNotFound(err)
	}

	rec.GrantType = domain.ParseGrantKind(grantType)
	rec.Scopes = splitFields(scopes)
	rec.AccessToken.IssuedAt = fromMillis(accessIssued)
	rec.AccessToken.ExpiresAt = fromMillis(accessExp)
	rec.RefreshToken.IssuedAt = fromMillis(refreshIssued)
	rec.RefreshToken.ExpiresAt = fromMillis(refreshExp)
	rec.CreatedAt = fromMillis(created)

	if claims.Valid {
		var c jwtx.Claims
		if err := json.Unmarshal([]byte(claims.String), &c); err != nil {
			return domain.AuthorizationRecord{}, fmt.Errorf("decode access claims: %w", err)
		}
		rec.AccessToken.Claims = &c
	}
	return rec, nil
}

func (r *authorizationsRepo) Invalidate(ctx context.Context, id string) error {
	if err := checkWritable(ctx); err != nil {
		return err
	}
	return execOne(ctx, r.db,
		`UPDATE authorizations SET access_invalidated = 1, refresh_invalidated = 1 WHERE id = ?`, id)
}

// InvalidateRefreshToken is a compare-and-swap on refresh_invalidated. The
// superseded access token is invalidated with it.
func (r *authorizationsRepo) InvalidateRefreshToken(ctx context.Context, hash string) (bool, error) {
	if err := checkWritable(ctx); err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE authorizations
		 SET refresh_invalidated = 1, access_invalidated = 1
		 WHERE refresh_token_hash = ? AND refresh_invalidated = 0`,
		hash,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *authorizationsRepo) DeleteExpiredAuthorizations(ctx context.Context, now time.Time) (int64, error) {
	if err := checkWritable(ctx); err != nil {
		return 0, err
	}

	ms := toMillis(now)
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM authorizations WHERE refresh_expires_at <= ? AND access_expires_at <= ?`,
		ms, ms,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func marshalClaims(c *jwtx.Claims) (sql.NullString, error) {
	if c == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(c)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("encode access claims: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
