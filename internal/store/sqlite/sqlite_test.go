package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/Abtechguru/veritusblogs-engagement/internal/store"
	"github.com/Abtechguru/veritusblogs-engagement/internal/store/storetest"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "engagement.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	return s
}

func TestSqliteStoreConformance(t *testing.T) {
	storetest.Run(t, newTestStore)
}
