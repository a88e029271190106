package postgres

import (
	"os"
	"testing"

	"github.com/gametwin/gaming-twin/server/internal/store"
	"github.com/gametwin/gaming-twin/server/internal/store/storetest"
)

func makePGStore(t *testing.T) store.Store {
	t.Helper()
	dsn := os.Getenv("GAMING_TWIN_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("GAMING_TWIN_POSTGRES_DSN not set; skipping postgres store integration test")
	}
	db, err := Open(dsn)
	if err != nil {
		t.Fatalf("postgres open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	// Schema is normally applied by compose migrations; apply it here so the
	// suite can run against a blank database.
	for _, stmt := range store.DDLStatements() {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply ddl: %v", err)
		}
	}
	return NewWithDB(db)
}

func TestPostgresStore_Compliance(t *testing.T) {
	storetest.Run(t, makePGStore)
}
