package service_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/aussiebroadwan/passgate/internal/auth/service"
	"github.com/aussiebroadwan/passgate/pkg/cryptox"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingCleanup(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res := h.login(t)

	hk := service.NewHousekeepingService(h.store, slog.New(slog.DiscardHandler), time.Minute)
	require.Zero(t, hk.Cleanup(ctx))

	hk.Now = func() time.Time { return time.Now().Add(48 * time.Hour) }
	require.EqualValues(t, 1, hk.Cleanup(ctx))

	info, err := h.tokens.Introspect(ctx, h.client(t), res.RefreshToken.Value)
	require.NoError(t, err)
	require.False(t, info.Active)

	_, err = h.store.Authorizations().FindByToken(ctx, cryptox.FingerprintToken(res.RefreshToken.Value))
	require.Error(t, err)
}

func TestHousekeepingStartStop(t *testing.T) {
	h := newHarness(t)

	hk := service.NewHousekeepingService(h.store, slog.New(slog.DiscardHandler), 0)
	require.Equal(t, time.Hour, hk.Interval)

	hk.Start()
	hk.Stop()
}
