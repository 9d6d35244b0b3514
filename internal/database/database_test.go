package database

import "testing"

func TestOpenRunsMigrations(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	for _, table := range []string{"accounts", "tasks", "rewards", "balances", "counters", "sequences", "events"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		if err != nil {
			t.Errorf("table %s: %v", table, err)
		}
	}

	var counters int
	if err := db.QueryRow(`SELECT COUNT(*) FROM counters WHERE value = 0`).Scan(&counters); err != nil {
		t.Fatalf("count counters: %v", err)
	}
	if counters != 15 {
		t.Errorf("counters = %d, want 15", counters)
	}

	var next int64
	if err := db.QueryRow(`SELECT value FROM sequences WHERE name = 'task'`).Scan(&next); err != nil {
		t.Fatalf("read sequence: %v", err)
	}
	if next != 1 {
		t.Errorf("task sequence = %d, want 1", next)
	}
}

func TestOpenEnablesForeignKeys(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var on int
	if err := db.QueryRow(`PRAGMA foreign_keys`).Scan(&on); err != nil {
		t.Fatalf("pragma: %v", err)
	}
	if on != 1 {
		t.Errorf("foreign_keys = %d, want 1", on)
	}
}
