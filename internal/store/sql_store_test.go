package store

import (
	"testing"

	"multconst/internal/instr"
	"multconst/internal/profile"
)

func TestSQLStoreSaveAndLoadRoundTrip(t *testing.T) {
	p := profile.RISC()
	dsn := "sqlite://file::memory:?cache=shared"

	s, err := OpenSQL(dsn)
	if err != nil {
		t.Fatalf("OpenSQL(%s) error: %v", dsn, err)
	}
	defer s.Close()

	c := populatedCache(p)
	if err := s.Save(c); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := Load(dsn, p)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	assertSameFinishedEntries(t, c, loaded)
}

func TestDSNDriverRecognisesPrefixes(t *testing.T) {
	tests := []struct {
		dsn        string
		wantDriver string
	}{
		{"sqlite://file::memory:", "sqlite"},
		{"postgres://user@host/db", "postgres"},
		{"postgresql://user@host/db", "postgres"},
		{"mysql://user@tcp(host)/db", "mysql"},
		{"sqlserver://user@host?database=db", "sqlserver"},
	}
	for _, tt := range tests {
		driver, _, err := dsnDriver(tt.dsn)
		if err != nil {
			t.Errorf("dsnDriver(%q) error: %v", tt.dsn, err)
			continue
		}
		if driver != tt.wantDriver {
			t.Errorf("dsnDriver(%q) = %q, want %q", tt.dsn, driver, tt.wantDriver)
		}
	}
}

func TestDSNDriverRejectsUnknownPrefix(t *testing.T) {
	if _, _, err := dsnDriver("oracle://host/db"); err == nil {
		t.Error("dsnDriver(oracle://...) = nil error, want an error for an unrecognised prefix")
	}
}

func TestLoadParsesStoredSequence(t *testing.T) {
	p := profile.RISC()
	dsn := "sqlite://file::memory:?cache=shared&mode=rwc"
	s, err := OpenSQL(dsn)
	if err != nil {
		t.Fatalf("OpenSQL error: %v", err)
	}
	defer s.Close()

	c := populatedCache(p)
	if err := s.Save(c); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	loaded, err := Load(dsn, p)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	e, ok := loaded.Peek(7)
	if !ok {
		t.Fatal("entry(7) missing after Load")
	}
	want := instr.Sequence{
		{Op: instr.OpShift, Amount: 3, Cost: 1},
		{Op: instr.OpSubtract, Flag: instr.OperandFactor, Cost: 1},
	}
	if !e.Instrs.Equal(want) {
		t.Errorf("entry(7).Instrs = %v, want %v", e.Instrs, want)
	}
}
