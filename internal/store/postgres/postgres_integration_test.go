package postgres

import (
	"os"
	"testing"

	"github.com/Abtechguru/veritusblogs-engagement/internal/store"
	"github.com/Abtechguru/veritusblogs-engagement/internal/store/storetest"
)

// TestPostgresStoreConformance runs the shared suite against a real
// Postgres set via ENGAGEMENT_TEST_POSTGRES_DSN. Each run uses a fresh
// schema; point the DSN at a throwaway database.
func TestPostgresStoreConformance(t *testing.T) {
	dsn := os.Getenv("ENGAGEMENT_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ENGAGEMENT_TEST_POSTGRES_DSN not set")
	}

	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("open postgres: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	storetest.Run(t, func(t *testing.T) store.Store {
		for _, tbl := range []string{"grant_events", "accounts"} {
			if _, err := db.Exec("DROP TABLE IF EXISTS " + tbl); err != nil {
				t.Fatalf("drop %s: %v", tbl, err)
			}
		}
		if err := EnsureSchema(db); err != nil {
			t.Fatalf("ensure schema: %v", err)
		}
		return NewWithDB(db)
	})
}
