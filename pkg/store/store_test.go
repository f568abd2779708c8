package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/play/fortytwo/pkg/fortytwo"
)

func newRedisClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

// dealtGame 四人入座并已发牌
func dealtGame(t *testing.T, id string) *fortytwo.GameState {
	t.Helper()
	gs := fortytwo.NewGame(id, fortytwo.WithSeed(42))
	for _, p := range []string{"n", "e", "s", "w"} {
		_, err := gs.Join(fortytwo.JoinRequest{GameId: id, PlayerId: p, PlayerName: p})
		require.NoError(t, err)
	}
	require.True(t, gs.IsDealt())
	return gs
}

func TestEncodeDecode(t *testing.T) {
	gs := dealtGame(t, "g1")
	require.NoError(t, gs.SubmitBid(fortytwo.Bid{PlayerId: "e", Amount: 31, Trump: fortytwo.SuitDoubles}))

	data, err := Encode(gs)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, gs, got)
}

func TestEncode_Invalid(t *testing.T) {
	_, err := Encode(nil)
	assert.ErrorIs(t, err, ErrInvalidGame)

	_, err = Encode(&fortytwo.GameState{})
	assert.ErrorIs(t, err, ErrInvalidGame)

	_, err = Decode([]byte("not json"))
	assert.Error(t, err)
}

func testStore(t *testing.T, s Store) {
	ctx := context.Background()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrGameNotFound)

	gs := dealtGame(t, "g1")
	require.NoError(t, s.Save(ctx, gs))

	got, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, gs, got)

	// 修改取出的状态不影响存储
	got.Phase = fortytwo.PhaseFinished
	again, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, fortytwo.PhaseBidding, again.Phase)

	require.NoError(t, s.Delete(ctx, "g1"))
	assert.ErrorIs(t, s.Delete(ctx, "g1"), ErrGameNotFound)
	_, err = s.Get(ctx, "g1")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestMemoryStore(t *testing.T) {
	testStore(t, NewMemory())
}

func TestMemoryStore_Evicts(t *testing.T) {
	s := NewMemory(WithSize(2), WithTTL(time.Hour))
	ctx := context.Background()
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, s.Save(ctx, fortytwo.NewGame(id)))
	}
	assert.Equal(t, 2, s.Len())
	_, err := s.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestRedisStore(t *testing.T) {
	_, rdb := newRedisClient(t)
	testStore(t, NewRedis(rdb))
}

func TestRedisStore_Expiration(t *testing.T) {
	mr, rdb := newRedisClient(t)
	s := NewRedis(rdb, WithKeyPrefix("t:"), WithExpiration(time.Minute))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, fortytwo.NewGame("g1")))
	assert.True(t, mr.Exists("t:g1"))
	assert.Equal(t, time.Minute, mr.TTL("t:g1"))

	mr.FastForward(2 * time.Minute)
	_, err := s.Get(ctx, "g1")
	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestRedisStore_Corrupt(t *testing.T) {
	mr, rdb := newRedisClient(t)
	s := NewRedis(rdb)
	require.NoError(t, mr.Set(defaultKeyPrefix+"bad", "{"))

	_, err := s.Get(context.Background(), "bad")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrGameNotFound)
}
