package database

import (
	"strings"
	"testing"
)

func TestMigrationsAreEmbedded(t *testing.T) {
	entries, err := migrations.ReadDir("migrations")
	if err != nil {
		t.Fatalf("read embedded migrations: %v", err)
	}
	if len(entries) == 0 {
		t.Fatalf("no migrations embedded")
	}
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".sql") {
			t.Errorf("unexpected migration file %q", e.Name())
		}
	}
}

func TestMigrationsContainMonitoringTables(t *testing.T) {
	data, err := migrations.ReadFile("migrations/00001_create_monitoring_tables.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sql := string(data)
	for _, table := range []string{"capture_windows", "window_summaries"} {
		if !strings.Contains(sql, table) {
			t.Errorf("migration missing table %q", table)
		}
	}
	if !strings.Contains(sql, "-- +goose Down") {
		t.Errorf("migration missing down section")
	}
}
