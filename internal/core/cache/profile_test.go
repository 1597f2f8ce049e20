package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestProfileCache(t *testing.T, ttl time.Duration) (*ProfileCache, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	c := New(NewClient(s.Addr(), "", 0))
	return NewProfileCache(c, ttl, zap.NewNop()), s
}

type proj struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func TestProfileWriteReadBitForBit(t *testing.T) {
	t.Parallel()
	p, _ := newTestProfileCache(t, time.Minute)
	ctx := context.Background()

	in := proj{ID: 7, Username: "alice"}
	p.Write(ctx, 7, in)

	raw, ok := p.Read(ctx, 7)
	require.True(t, ok)

	// 读回的字节必须就是写入时的序列化结果
	want, err := json.Marshal(in)
	require.NoError(t, err)
	require.Equal(t, json.RawMessage(want), raw)
}

func TestProfileReadMiss(t *testing.T) {
	t.Parallel()
	p, _ := newTestProfileCache(t, time.Minute)

	_, ok := p.Read(context.Background(), 12345)
	require.False(t, ok)
}

func TestProfileInvalidate(t *testing.T) {
	t.Parallel()
	p, _ := newTestProfileCache(t, time.Minute)
	ctx := context.Background()

	p.Write(ctx, 7, proj{ID: 7, Username: "alice"})
	p.Invalidate(ctx, 7)

	_, ok := p.Read(ctx, 7)
	require.False(t, ok)
}

func TestProfileTTLExpiry(t *testing.T) {
	t.Parallel()
	p, s := newTestProfileCache(t, 30*time.Minute)
	ctx := context.Background()

	p.Write(ctx, 7, proj{ID: 7, Username: "alice"})
	require.True(t, s.Exists(p.Key(7)))

	s.FastForward(30*time.Minute + time.Second)
	_, ok := p.Read(ctx, 7)
	require.False(t, ok)
}

func TestProfileWriteResetsTTL(t *testing.T) {
	t.Parallel()
	p, s := newTestProfileCache(t, 30*time.Minute)
	ctx := context.Background()

	p.Write(ctx, 7, proj{ID: 7, Username: "alice"})
	s.FastForward(20 * time.Minute)
	p.Write(ctx, 7, proj{ID: 7, Username: "alice2"})
	s.FastForward(20 * time.Minute)

	// 第二次写重置了 TTL，20 分钟后仍在
	_, ok := p.Read(ctx, 7)
	require.True(t, ok)
}

func TestProfileDegradesWhenRedisDown(t *testing.T) {
	t.Parallel()
	p, s := newTestProfileCache(t, time.Minute)
	ctx := context.Background()
	s.Close()

	// 全部降级为 miss / no-op，不 panic 不报错
	p.Write(ctx, 7, proj{ID: 7})
	_, ok := p.Read(ctx, 7)
	require.False(t, ok)
	p.Invalidate(ctx, 7)
}

func TestGetOrLoadJSONCachesResult(t *testing.T) {
	t.Parallel()
	s := miniredis.RunT(t)
	c := New(NewClient(s.Addr(), "", 0))
	ctx := context.Background()

	calls := 0
	load := func(ctx context.Context) (*proj, error) {
		calls++
		return &proj{ID: 1, Username: "alice"}, nil
	}

	got, err := GetOrLoadJSON[proj](c, ctx, "user:1", time.Minute, load)
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
	require.Equal(t, 1, calls)

	// 第二次命中缓存，loader 不再执行
	got, err = GetOrLoadJSON[proj](c, ctx, "user:1", time.Minute, func(ctx context.Context) (*proj, error) {
		return nil, errors.New("should not be called")
	})
	require.NoError(t, err)
	require.Equal(t, "alice", got.Username)
}

func TestGetOrLoadJSONPropagatesLoadError(t *testing.T) {
	t.Parallel()
	s := miniredis.RunT(t)
	c := New(NewClient(s.Addr(), "", 0))

	sentinel := errors.New("db down")
	_, err := GetOrLoadJSON[proj](c, context.Background(), "user:2", time.Minute, func(ctx context.Context) (*proj, error) {
		return nil, sentinel
	})
	require.ErrorIs(t, err, sentinel)
	// 失败不落缓存
	require.False(t, s.Exists("user:2"))
}
