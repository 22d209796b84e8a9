package redisstore

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/etnz/holdings"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return New(client, "test:ledger"), mr
}

func TestStore_ReadAll(t *testing.T) {
	s, mr := setupTestStore(t)
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		_, err := s.ReadAll(ctx)
		assert.ErrorIs(t, err, holdings.ErrNotFound)
	})

	t.Run("existing key", func(t *testing.T) {
		require.NoError(t, mr.Set("test:ledger", "[]"))
		data, err := s.ReadAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, "[]", string(data))
	})

	t.Run("server down", func(t *testing.T) {
		mr.SetError("ERR server gone")
		defer mr.SetError("")
		_, err := s.ReadAll(ctx)
		require.Error(t, err)
		assert.False(t, errors.Is(err, holdings.ErrNotFound))
	})
}

func TestStore_WriteAll(t *testing.T) {
	s, mr := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.WriteAll(ctx, []byte("[1]")))
	require.NoError(t, s.WriteAll(ctx, []byte("[2]")))

	got, err := mr.Get("test:ledger")
	require.NoError(t, err)
	assert.Equal(t, "[2]", got)
	assert.Equal(t, "test:ledger", s.Key())
}

func TestStore_DefaultKey(t *testing.T) {
	s := New(nil, "")
	assert.Equal(t, DefaultKey, s.Key())
}

func TestStore_Ledger(t *testing.T) {
	s, _ := setupTestStore(t)
	ctx := context.Background()
	store := holdings.NewStore(s)

	empty, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Len())

	l := holdings.NewLedger(holdings.Asset{
		Symbol:       "00700",
		Type:         holdings.Equity,
		Market:       holdings.HongKong,
		Currency:     holdings.Foreign,
		Shares:       holdings.Q(100),
		CostPrice:    decimal.RequireFromString("300"),
		Name:         "腾讯控股",
		CurrentPrice: decimal.RequireFromString("320.2"),
	})
	require.NoError(t, store.Save(ctx, l))

	got, err := store.Load(ctx)
	require.NoError(t, err)
	assert.True(t, got.Equal(l), "loaded %v, want %v", got.Assets(), l.Assets())
}

func TestDial(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	ctx := context.Background()

	s, err := Dial(ctx, mr.Addr(), "")
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, DefaultKey, s.Key())

	mr.Close()
	_, err = Dial(ctx, mr.Addr(), "")
	assert.Error(t, err)
}
