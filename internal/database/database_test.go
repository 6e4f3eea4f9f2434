package database

import (
	"context"
	"path/filepath"
	"testing"
)

func TestOpenMemory(t *testing.T) {
	db, err := Open(Memory)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM blobs`).Scan(&n); err != nil {
		t.Fatalf("blobs table missing: %v", err)
	}
	if n != 0 {
		t.Errorf("fresh database has %d blobs", n)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "grocery.db")
	db, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO blobs (key, value) VALUES ('history', '[]')`); err != nil {
		t.Fatalf("insert: %v", err)
	}
	db.Close()

	db, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer db.Close()

	version, err := Migrate(context.Background(), db)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if version != 1 {
		t.Errorf("version = %d, want 1", version)
	}
	var value string
	if err := db.QueryRow(`SELECT value FROM blobs WHERE key = 'history'`).Scan(&value); err != nil {
		t.Fatalf("row lost across reopen: %v", err)
	}
}
