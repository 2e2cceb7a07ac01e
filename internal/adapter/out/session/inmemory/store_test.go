package inmemory

import (
	"context"
	"testing"

	"feedctl/internal/model"

	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s := New()

	token, err := s.AccessToken(ctx)
	require.NoError(t, err)
	require.Empty(t, token)

	sess := model.Session{AccessToken: "tok", Profile: model.Profile{Name: "ann"}}
	require.NoError(t, s.SaveSession(ctx, sess))

	token, err = s.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "tok", token)

	got, err := s.Session(ctx)
	require.NoError(t, err)
	require.Equal(t, sess, got)

	require.NoError(t, s.Clear(ctx))
	got, err = s.Session(ctx)
	require.NoError(t, err)
	require.False(t, got.Authenticated())
}
