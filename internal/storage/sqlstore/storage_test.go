package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/gameofchests/internal/storage"
	"github.com/mcoot/gameofchests/internal/storage/storagetest"
)

var dbCounter atomic.Int64

func newTestStorage(t *testing.T) *Storage {
	dsn := fmt.Sprintf("file:chests_test_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := sql.Open(DriverSQLite, dsn)
	require.NoError(t, err)
	db.SetMaxOpenConns(1)

	cfg := DefaultConfig()
	cfg.DSN = dsn
	cfg.PollInterval = 10 * time.Millisecond

	s, err := NewWithDB(context.Background(), db, cfg)
	require.NoError(t, err)
	return s
}

func TestStorageContract(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage {
			return newTestStorage(t)
		},
	})
}

func TestRebind(t *testing.T) {
	pg := &Storage{cfg: Config{Driver: DriverPostgres}}
	lite := &Storage{cfg: Config{Driver: DriverSQLite}}

	q := "UPDATE rooms SET data = ?, version = ? WHERE id = ? AND version = ?"
	assert.Equal(t, "UPDATE rooms SET data = $1, version = $2 WHERE id = $3 AND version = $4", pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestVersionColumnTracksRoom(t *testing.T) {
	s := newTestStorage(t)
	defer s.Close()
	ctx := context.Background()

	room := storagetest.NewRoom("r1")
	require.NoError(t, s.Write(ctx, room))
	require.NoError(t, s.Write(ctx, room))

	var version int64
	require.NoError(t, s.db.QueryRowContext(ctx, "SELECT version FROM rooms WHERE id = ?", "r1").Scan(&version))
	assert.Equal(t, int64(2), version)
}
