package repository

import (
	"context"
	"testing"
	"truelens-go/internal/relay"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
)

// SnapshotRepository 必须满足中继的存储契约。
var _ relay.Store = (*SnapshotRepository)(nil)

// noopWindows 满足 relay.WindowSystem，这里只关心存储路径。
type noopWindows struct{}

func (noopWindows) CurrentWindow(ctx context.Context) (relay.Window, error) {
	return relay.Window{ID: 1, Width: 1200, Height: 800}, nil
}
func (noopWindows) Focus(ctx context.Context, windowID int) error { return nil }
func (noopWindows) CreatePopup(ctx context.Context, url string, geom relay.Geometry) (relay.Window, error) {
	return relay.Window{ID: 2}, nil
}
func (noopWindows) OpenTab(ctx context.Context, url string) error { return nil }

func newTestSnapshotRepo(t *testing.T) (*SnapshotRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSnapshotRepository(client), mr
}

func TestSnapshotRepositoryGetMissingKey(t *testing.T) {
	repo, _ := newTestSnapshotRepo(t)

	val, ok, err := repo.Get(context.Background(), "lastSnapshot")
	require.NoError(t, err)
	require.False(t, ok)
	require.Empty(t, val)
}

func TestSnapshotRepositorySetAndGet(t *testing.T) {
	repo, mr := newTestSnapshotRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "lastSnapshot", `{"action":"articleDetected"}`))

	val, ok, err := repo.Get(ctx, "lastSnapshot")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, `{"action":"articleDetected"}`, val)

	// 键带 relay: 前缀并设置了兜底过期时间
	require.True(t, mr.Exists("relay:lastSnapshot"))
	require.Greater(t, mr.TTL("relay:lastSnapshot").Seconds(), 0.0)
}

func TestSnapshotRepositoryOverwrite(t *testing.T) {
	repo, _ := newTestSnapshotRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "k", "old"))
	require.NoError(t, repo.Set(ctx, "k", "new"))

	val, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "new", val)
}

func TestRelayDispatchThroughRedisStore(t *testing.T) {
	repo, mr := newTestSnapshotRepo(t)
	r := relay.New(repo, noopWindows{}, "panel.html", nil)
	ctx := context.Background()

	resp := r.Dispatch(ctx, relay.Message{Action: relay.ActionArticleDetected, Text: "story body"})
	require.Equal(t, relay.Response{"success": true}, resp)

	snap, ok := r.Snapshot(ctx)
	require.True(t, ok)
	require.Equal(t, "story body", snap.Text)

	// 快照真正落在了 Redis 里
	require.True(t, mr.Exists("relay:lastSnapshot"))

	require.NoError(t, r.SeedConfig(ctx, `{"theme":"light"}`))
	require.True(t, mr.Exists("relay:panelConfig"))
}
