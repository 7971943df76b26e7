package memory

import (
	"context"
	"testing"

	"github.com/OscarPele/market-analyzer/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seed(t *testing.T) *LiquidationRepository {
	t.Helper()
	repo := NewLiquidationRepository()
	events := []domain.LiquidationEvent{
		{Symbol: "BTCUSDT", Side: domain.SideBuy, Price: 100, Qty: 1, Notional: 100, Ts: 1000},
		{Symbol: "BTCUSDT", Side: domain.SideSell, Price: 200, Qty: 1, Notional: 200, Ts: 2000},
		{Symbol: "BTCUSDT", Side: domain.SideSell, Price: 300, Qty: 1, Notional: 300, Ts: 3000},
		{Symbol: "ETHUSDT", Side: domain.SideBuy, Price: 50, Qty: 2, Notional: 100, Ts: 2500},
	}
	require.NoError(t, repo.InsertBatch(context.Background(), events))
	return repo
}

func TestLiquidationRepository_CountSince(t *testing.T) {
	repo := seed(t)
	ctx := context.Background()

	count, err := repo.CountSince(ctx, "BTCUSDT", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = repo.CountSince(ctx, "BTCUSDT", 2000)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count, "since boundary is inclusive")

	count, err = repo.CountSince(ctx, "XRPUSDT", 0)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLiquidationRepository_CountBySideSince(t *testing.T) {
	repo := seed(t)
	ctx := context.Background()

	sells, err := repo.CountBySideSince(ctx, "BTCUSDT", domain.SideSell, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), sells)

	buys, err := repo.CountBySideSince(ctx, "BTCUSDT", "buy", 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), buys, "side match is case-insensitive")
}

func TestLiquidationRepository_SumNotionalSince(t *testing.T) {
	repo := seed(t)
	ctx := context.Background()

	sum, err := repo.SumNotionalSince(ctx, "BTCUSDT", 2000)
	require.NoError(t, err)
	assert.Equal(t, 500.0, sum)

	sum, err = repo.SumNotionalSince(ctx, "XRPUSDT", 0)
	require.NoError(t, err)
	assert.Zero(t, sum, "empty range sums to 0, not an error")
}

func TestLiquidationRepository_DeleteOlderThan(t *testing.T) {
	repo := seed(t)
	ctx := context.Background()

	deleted, err := repo.DeleteOlderThan(ctx, 2500)
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)
	assert.Equal(t, 2, repo.Len())

	// purging the same cutoff again is a no-op
	deleted, err = repo.DeleteOlderThan(ctx, 2500)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestLiquidationRepository_InsertEmptyBatch(t *testing.T) {
	repo := NewLiquidationRepository()
	require.NoError(t, repo.InsertBatch(context.Background(), nil))
	assert.Zero(t, repo.Len())
}
