package sqlite

import "database/sql"

// EnsureSchema creates the ledger and account tables if they do not exist.
func EnsureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS grant_events (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            event_id TEXT NOT NULL UNIQUE,
            user_id TEXT NOT NULL,
            kind TEXT NOT NULL,
            xp_amount INTEGER NOT NULL CHECK (xp_amount > 0),
            description TEXT NOT NULL DEFAULT '',
            occurred_at TIMESTAMP NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS grant_events_user_time_idx
            ON grant_events(user_id, occurred_at);`,
		`CREATE TABLE IF NOT EXISTS accounts (
            seq INTEGER PRIMARY KEY AUTOINCREMENT,
            user_id TEXT NOT NULL UNIQUE,
            display_name TEXT NOT NULL DEFAULT '',
            avatar_ref TEXT NOT NULL DEFAULT '',
            total_xp INTEGER NOT NULL DEFAULT 0,
            weekly_xp INTEGER NOT NULL DEFAULT 0,
            week_anchor TIMESTAMP NOT NULL,
            level INTEGER NOT NULL DEFAULT 1,
            achievements TEXT NOT NULL DEFAULT '[]',
            created_at TIMESTAMP NOT NULL
        );`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
