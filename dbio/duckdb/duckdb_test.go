package duckdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-data-exporter/factio/dbio"
)

func TestRegistered(t *testing.T) {
	assert.Contains(t, dbio.Schemes(), "duckdb")
}

func TestWriteThenRead(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "facts.duckdb")
	url := "jdbc:duckdb:" + path

	w, err := dbio.OpenWriter(ctx, url)
	require.NoError(t, err)
	require.NoError(t, w.Execute(ctx, "CREATE TABLE facts (name VARCHAR, qty INTEGER)"))
	require.NoError(t, w.SetAutoCommit(ctx, false))

	stmt, err := w.Prepare(ctx, "INSERT INTO facts VALUES (?, ?)")
	require.NoError(t, err)
	require.NoError(t, stmt.SetString(0, "widget"))
	require.NoError(t, stmt.SetInt64(1, 3))
	_, err = stmt.ExecuteUpdate(ctx)
	require.NoError(t, err)
	require.NoError(t, w.Commit(ctx))
	require.NoError(t, w.Close())

	_, err = os.Stat(path)
	require.NoError(t, err, "database file was not created")

	c, err := dbio.OpenCursor(ctx, url, "SELECT name, qty FROM facts")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	ok, err := c.Next()
	require.NoError(t, err)
	require.True(t, ok)
	qty, err := c.Row().Int32Named("qty")
	require.NoError(t, err)
	assert.Equal(t, int32(3), qty)
	name, err := c.Row().StringAt(0)
	require.NoError(t, err)
	assert.Equal(t, "widget", name)
}

func TestOpen_InMemory(t *testing.T) {
	c, err := dbio.OpenCursor(context.Background(), "jdbc:duckdb::memory:", "SELECT 42 AS answer")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	ok, err := c.Next()
	require.NoError(t, err)
	require.True(t, ok)
	answer, err := c.Row().Int64Named("answer")
	require.NoError(t, err)
	assert.Equal(t, int64(42), answer)
}
