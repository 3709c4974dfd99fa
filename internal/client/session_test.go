package client

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteSessionStore {
	t.Helper()
	s, err := OpenSessionStore(context.Background(), filepath.Join(t.TempDir(), "session.db"), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteSessionStore_SaveGetClear(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, ok := s.Get(ctx)
	assert.False(t, ok)

	require.NoError(t, s.Save(ctx, "first"))
	require.NoError(t, s.Save(ctx, "second"))
	token, ok := s.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "second", token)

	require.NoError(t, s.Clear(ctx))
	_, ok = s.Get(ctx)
	assert.False(t, ok)
	require.NoError(t, s.Clear(ctx))
}

func TestSQLiteSessionStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")
	ctx := context.Background()

	s, err := OpenSessionStore(ctx, path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, "persisted"))
	require.NoError(t, s.Close())

	s, err = OpenSessionStore(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()
	token, ok := s.Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, "persisted", token)
}

func TestSQLiteSessionStore_ReadFailureIsAbsence(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "token"))
	require.NoError(t, s.Close())

	token, ok := s.Get(ctx)

	assert.False(t, ok)
	assert.Empty(t, token)
}
