package storage

import (
	"strings"
	"testing"
)

func TestSQLiteConnString(t *testing.T) {
	t.Setenv("SYSAPP_LOCK_TIMEOUT", "5s")

	conn := SQLiteConnString("/tmp/sysapp.db", false)
	want := "file:/tmp/sysapp.db?_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	if conn != want {
		t.Fatalf("unexpected conn string\n got: %s\nwant: %s", conn, want)
	}

	ro := SQLiteConnString("/tmp/sysapp.db", true)
	if !strings.Contains(ro, "mode=ro") {
		t.Fatalf("expected read-only mode in %q", ro)
	}

	if got := SQLiteConnString("  ", false); got != "" {
		t.Fatalf("expected empty conn string for blank path, got %q", got)
	}
}

func TestSQLiteConnStringMemory(t *testing.T) {
	conn := SQLiteConnString(":memory:", false)
	if !strings.HasPrefix(conn, "file::memory:?cache=shared&") {
		t.Fatalf("unexpected memory conn string %q", conn)
	}
	if !strings.Contains(conn, "_pragma=foreign_keys(ON)") {
		t.Fatalf("expected foreign_keys pragma in %q", conn)
	}
}

func TestSQLiteConnStringKeepsExistingPragmas(t *testing.T) {
	conn := SQLiteConnString("file:x.db?_pragma=busy_timeout(1)", false)
	if strings.Count(conn, "busy_timeout") != 1 {
		t.Fatalf("busy_timeout duplicated in %q", conn)
	}
}
