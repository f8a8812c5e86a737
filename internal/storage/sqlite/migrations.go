package sqlite

import "database/sql"

// schema holds the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Every document lives in one row; replacing a row is atomic.
const schema = `
CREATE TABLE IF NOT EXISTS records (
    key TEXT PRIMARY KEY,
    value BLOB NOT NULL,
    updated_at INTEGER NOT NULL
);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
