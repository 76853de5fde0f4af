package db

import (
	"strings"
	"testing"
)

func TestRunMigrationsIsIdempotent(t *testing.T) {
	conn, err := Open("", ":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer conn.Close()

	for i := 0; i < 2; i++ {
		if err := RunMigrations(conn); err != nil {
			t.Fatalf("RunMigrations pass %d: %v", i+1, err)
		}
	}

	var tables []string
	if err := conn.Select(&tables, `SELECT name FROM sqlite_master WHERE type='table' ORDER BY name`); err != nil {
		t.Fatalf("listing tables: %v", err)
	}
	want := []string{"analytics", "completion_events", "goals", "habits", "job_runs", "notifications", "soulfuel_messages", "users"}
	if strings.Join(tables, ",") != strings.Join(want, ",") {
		t.Errorf("tables = %v, want %v", tables, want)
	}
}

func TestSchemaForDialects(t *testing.T) {
	pg := schemaFor(DriverPostgres)
	if !strings.Contains(pg, "TIMESTAMPTZ") || strings.Contains(pg, "{{") {
		t.Errorf("postgres schema not rendered")
	}
	lite := schemaFor(DriverSQLite)
	if strings.Contains(lite, "TIMESTAMPTZ") || !strings.Contains(lite, "CURRENT_TIMESTAMP") {
		t.Errorf("sqlite schema not rendered")
	}
}
