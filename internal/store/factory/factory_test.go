package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MBUFFMIRE/AICamera/internal/store"
)

func TestDefaultsToInMemorySQLite(t *testing.T) {
	st, err := New(store.Config{})
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	require.NoError(t, st.EnsureSchema(context.Background()))
}

func TestSQLiteWithPath(t *testing.T) {
	st, err := New(store.Config{Type: "SQLite", Path: t.TempDir() + "/runs.db"})
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	require.NoError(t, st.EnsureSchema(context.Background()))
}

func TestUnsupportedType(t *testing.T) {
	_, err := New(store.Config{Type: "mongodb"})
	require.Error(t, err)
}
