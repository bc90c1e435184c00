/*
Package database opens the connection pool and creates the schema.

# Drivers

Two database/sql drivers are registered and selected by DB_DRIVER:

  - pgx: PostgreSQL through github.com/jackc/pgx/v5/stdlib (default)
  - sqlite3: github.com/mattn/go-sqlite3, used for local runs and tests

Open pings the store and then calls EnsureSchema:

	db, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()

# Tables

  - users: id, username (unique), password, role, created_at
  - test_results: id, user_id -> users.id, test_name, score, hits, misses,
    false_alarms, extra (JSONB on postgres, TEXT on sqlite), created_at

Statements use IF NOT EXISTS, so EnsureSchema can run on every start.
SQLite connections are opened with _foreign_keys=on so the user_id
reference is enforced by both drivers.
*/
package database
