// Package secctx carries the security principal, transaction marker and
// request logger of a unit of work. Code reads that state through Capture
// and installs it through Restore; nothing else touches the context keys.
package secctx

import (
	"context"
	"log/slog"
	"slices"
)

// PrincipalKind tells apart the parties that can be authenticated.
type PrincipalKind int

const (
	KindAnonymous PrincipalKind = iota
	KindClient
	KindAccount
)

func (k PrincipalKind) String() string {
	switch k {
	case KindClient:
		return "client"
	case KindAccount:
		return "account"
	default:
		return "anonymous"
	}
}

// Principal is the authenticated party of a request. Details holds the
// loaded record behind the principal (for example a domain.Client).
type Principal struct {
	Kind          PrincipalKind
	ID            string
	Name          string
	Authorities   []string
	Authenticated bool
	Details       any
}

// AnonymousPrincipal is used before client authentication has happened.
func AnonymousPrincipal() *Principal {
	return &Principal{Kind: KindAnonymous, Name: "anonymousUser"}
}

// HasAuthority reports whether the principal was granted the authority.
func (p *Principal) HasAuthority(a string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Authorities, a)
}

// Transaction marks the unit of work as running inside a named transaction.
type Transaction struct {
	Name     string
	ReadOnly bool
}

// Snapshot is an immutable view of the execution context. The zero value is
// the empty context: no principal, no transaction, default logger.
type Snapshot struct {
	principal *Principal
	tx        *Transaction
	logger    *slog.Logger
}

// Principal returns the captured principal, nil when none was set.
func (s Snapshot) Principal() *Principal { return s.principal }

// Transaction returns the captured transaction marker, nil outside a transaction.
func (s Snapshot) Transaction() *Transaction { return s.tx }

// Logger returns the captured logger or slog.Default.
func (s Snapshot) Logger() *slog.Logger {
	if s.logger == nil {
		return slog.Default()
	}
	return s.logger
}

// InTransaction reports whether a transaction marker is present.
func (s Snapshot) InTransaction() bool { return s.tx != nil }

// ReadOnly reports whether the current transaction is read-only.
func (s Snapshot) ReadOnly() bool { return s.tx != nil && s.tx.ReadOnly }

// WithPrincipal returns a copy with the principal replaced.
func (s Snapshot) WithPrincipal(p *Principal) Snapshot {
	if p != nil {
		cp := *p
		cp.Authorities = slices.Clone(p.Authorities)
		p = &cp
	}
	s.principal = p
	return s
}

// WithTransaction returns a copy with the transaction marker replaced. A
// nil marker clears it.
func (s Snapshot) WithTransaction(tx *Transaction) Snapshot {
	if tx != nil {
		cp := *tx
		tx = &cp
	}
	s.tx = tx
	return s
}

// WithLogger returns a copy carrying the logger.
func (s Snapshot) WithLogger(l *slog.Logger) Snapshot {
	s.logger = l
	return s
}

type ctxKey struct{}

// Capture reads the snapshot attached to ctx.
func Capture(ctx context.Context) Snapshot {
	if s, ok := ctx.Value(ctxKey{}).(Snapshot); ok {
		return s
	}
	return Snapshot{}
}

// Restore installs s on ctx and returns the new context together with the
// snapshot it replaced, so the caller can pop back to it later. The new
// snapshot replaces the old one wholesale.
func Restore(ctx context.Context, s Snapshot) (context.Context, Snapshot) {
	prev := Capture(ctx)
	return context.WithValue(ctx, ctxKey{}, s), prev
}

// WithPrincipal is shorthand for capturing, replacing the principal and
// restoring the result.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	ctx, _ = Restore(ctx, Capture(ctx).WithPrincipal(p))
	return ctx
}

// WithTransaction is shorthand for marking ctx as inside a transaction.
func WithTransaction(ctx context.Context, tx Transaction) context.Context {
	ctx, _ = Restore(ctx, Capture(ctx).WithTransaction(&tx))
	return ctx
}
