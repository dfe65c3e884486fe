package sqlstore

import (
	"context"
	"strconv"
	"strings"
)

const createRoomsTable = `CREATE TABLE IF NOT EXISTS rooms (
	id      TEXT PRIMARY KEY,
	data    TEXT NOT NULL,
	version BIGINT NOT NULL
)`

func (s *Storage) migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, createRoomsTable)
	return err
}

// rebind rewrites ? placeholders to $n for postgres
func (s *Storage) rebind(query string) string {
	if s.cfg.Driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
