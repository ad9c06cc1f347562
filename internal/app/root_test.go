package app

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestRootCommand(t *testing.T) {
	if RootCmd.Use != "lumen" {
		t.Errorf("expected Use to be 'lumen', got '%s'", RootCmd.Use)
	}

	if RootCmd.Short == "" {
		t.Error("expected Short description to be set")
	}

	if RootCmd.Long == "" {
		t.Error("expected Long description to be set")
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	commands := RootCmd.Commands()

	expected := []string{"scan", "query", "launch", "watch", "stats", "status"}
	found := make(map[string]bool)

	for _, cmd := range commands {
		found[cmd.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected command '%s' to be registered", name)
		}
	}
}

func TestRootCommandHasPersistentFlags(t *testing.T) {
	flag := RootCmd.PersistentFlags().Lookup("db")
	if flag == nil {
		t.Fatal("expected --db flag to be registered")
	}

	if flag.Usage == "" {
		t.Error("expected --db flag to have usage text")
	}
}

func TestGetDBPath_FlagOverride(t *testing.T) {
	orig := dbPath
	defer func() { dbPath = orig }()

	dbPath = "/tmp/custom.db"
	got, err := getDBPath()
	if err != nil {
		t.Fatalf("getDBPath() failed: %v", err)
	}
	if got != "/tmp/custom.db" {
		t.Errorf("getDBPath() = %q, want flag value", got)
	}
}

func TestGetDBPath_Default(t *testing.T) {
	orig := dbPath
	defer func() { dbPath = orig }()
	dbPath = ""

	got, err := getDBPath()
	if err != nil {
		t.Fatalf("getDBPath() failed: %v", err)
	}
	if filepath.Base(got) != "lumen.db" {
		t.Errorf("default database should be lumen.db, got %q", got)
	}
	if !strings.Contains(got, "lumen") {
		t.Errorf("default path should live under a lumen directory, got %q", got)
	}
}
