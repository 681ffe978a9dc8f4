//go:build integration

package testhelpers

import (
	"context"
	"testing"
)

func TestAppDB_HasSchema(t *testing.T) {
	appDB := GetAppDB(t)

	ctx := context.Background()

	var tableCount int
	err := appDB.DB.QueryRow(ctx, `
		SELECT COUNT(*) FROM information_schema.tables
		WHERE table_schema = 'public'
		  AND table_name IN ('users', 'buddies', 'divesites', 'dives', 'divetypes')`).
		Scan(&tableCount)
	if err != nil {
		t.Fatalf("failed to count tables: %v", err)
	}

	if tableCount != 5 {
		t.Errorf("expected 5 application tables, got %d", tableCount)
	}
}

func TestTruncateAll(t *testing.T) {
	appDB := GetAppDB(t)
	ctx := context.Background()

	_, err := appDB.DB.Exec(ctx,
		"INSERT INTO users (username, password_hash, first_name, last_name) VALUES ('truncate_me', 'x', 'A', 'B')")
	if err != nil {
		t.Fatalf("insert failed: %v", err)
	}

	TruncateAll(t, appDB.DB)

	var n int
	if err := appDB.DB.QueryRow(ctx, "SELECT COUNT(*) FROM users").Scan(&n); err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected empty users table, got %d rows", n)
	}
}
