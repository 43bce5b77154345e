package gateway

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// Connect opens the connection to the meetups backend. The backend owns the
// schema; no migrations run from this side.
func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect backend: %w", err)
	}
	return db, nil
}
