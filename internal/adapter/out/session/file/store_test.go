package file

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"feedctl/internal/model"

	"github.com/stretchr/testify/require"
)

func TestStore_RoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "session.yaml")
	s := New(path)

	token, err := s.AccessToken(ctx)
	require.NoError(t, err)
	require.Empty(t, token, "missing file means logged out")

	sess := model.Session{
		AccessToken: "tok-1",
		Profile:     model.Profile{Name: "ann", Email: "ann@stud.noroff.no"},
	}
	require.NoError(t, s.SaveSession(ctx, sess))

	got, err := New(path).Session(ctx)
	require.NoError(t, err)
	require.Equal(t, sess, got)

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		require.NoError(t, err)
		require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	require.NoError(t, s.SaveSession(ctx, model.Session{AccessToken: "tok-2"}))
	token, err = s.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok-2", token)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx), "clearing twice is fine")
	token, err = s.AccessToken(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
}

func TestStore_Corrupt(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("access_token: [unterminated\n"), 0o600))

	_, err := New(path).AccessToken(context.Background())
	require.Error(t, err)
}
