package database

import (
	"testing"

	"go-inventory-tracker/internal/config"
)

func TestSQLiteDSN_AddsForeignKeys(t *testing.T) {
	cases := map[string]string{
		"inventory.db":              "inventory.db?_foreign_keys=on",
		"file:x?mode=memory":        "file:x?mode=memory&_foreign_keys=on",
		"file:x?_foreign_keys=off":  "file:x?_foreign_keys=off",
		"file:x?cache=shared&_fk=1": "file:x?cache=shared&_fk=1",
	}
	for in, want := range cases {
		if got := SQLiteDSN(in); got != want {
			t.Fatalf("SQLiteDSN(%q): expected %q got %q", in, want, got)
		}
	}
}

func TestDialector_RejectsUnknownDriver(t *testing.T) {
	var cfg config.Config
	cfg.Database.Driver = "oracle"
	if _, err := Dialector(cfg); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
}

func TestDialector_KnownDrivers(t *testing.T) {
	for _, driver := range []string{"", "postgres", "mysql", "sqlite"} {
		var cfg config.Config
		cfg.Database.Driver = driver
		d, err := Dialector(cfg)
		if err != nil {
			t.Fatalf("driver %q: %v", driver, err)
		}
		want := driver
		if want == "" {
			want = "postgres"
		}
		if d.Name() != want {
			t.Fatalf("driver %q: expected dialector %q got %q", driver, want, d.Name())
		}
	}
}
