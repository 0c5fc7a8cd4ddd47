package resultstore

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestExchanges(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	{
		res, err := store.ListExchanges(ctx, 10)
		require.NoError(t, err)
		require.Len(t, res, 0)
	}

	base := time.UnixMilli(1_700_000_000_000)
	for i, cmd := range []string{"request.get", "sessions.create", "request.post"} {
		id, err := store.RecordExchange(ctx, Exchange{
			Time:     base.Add(time.Duration(i) * time.Second),
			Cmd:      cmd,
			Url:      "https://example.com",
			Request:  json.RawMessage(`{"cmd":"` + cmd + `"}`),
			Response: json.RawMessage(`{"data":"success"}`),
			Data:     "success",
		})
		require.NoError(t, err)
		require.Equal(t, int64(i+1), id)
	}
	_, err = store.RecordExchange(ctx, Exchange{
		Time:       base.Add(time.Minute),
		Cmd:        "request.get",
		Request:    json.RawMessage(`{}`),
		StatusCode: 502,
		Error:      "bad gateway",
	})
	require.NoError(t, err)

	latest, err := store.ListExchanges(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	require.Equal(t, 502, latest[0].StatusCode)
	require.Equal(t, "bad gateway", latest[0].Error)
	require.Nil(t, latest[0].Response)
	require.Equal(t, "request.post", latest[1].Cmd)
	require.JSONEq(t, `{"cmd":"request.post"}`, string(latest[1].Request))
	require.True(t, latest[1].Time.Equal(base.Add(2*time.Second)))

	all, err := store.ListExchanges(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
}

func TestTrackedSessions(t *testing.T) {
	store, err := Open(":memory:")
	require.NoError(t, err)
	defer store.Close()
	ctx := context.Background()

	created := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, store.TrackSession(ctx, "b", created))
	require.NoError(t, store.TrackSession(ctx, "a", created.Add(time.Second)))
	require.NoError(t, store.TrackSession(ctx, "b", created.Add(time.Hour)))

	sessions, err := store.TrackedSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, "b", sessions[0].Id)
	require.True(t, sessions[0].Created.Equal(created))
	require.True(t, sessions[0].LastUsed.Equal(created.Add(time.Hour)))
	require.Equal(t, "a", sessions[1].Id)

	require.NoError(t, store.ForgetSession(ctx, "b"))
	require.NoError(t, store.ForgetSession(ctx, "missing"))

	sessions, err = store.TrackedSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	require.Equal(t, "a", sessions[0].Id)
}

func TestOpenFileIsReopenable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")

	store, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, store.TrackSession(context.Background(), "s", time.Now()))
	require.NoError(t, store.Close())

	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()
	sessions, err := store.TrackedSessions(context.Background())
	require.NoError(t, err)
	require.Len(t, sessions, 1)
}

func TestOpenRequiresPath(t *testing.T) {
	_, err := Open("")
	require.Error(t, err)
	require.True(t, isRemote("libsql://db.example.turso.io"))
	require.False(t, isRemote("./history.db"))
}
