package commands

import (
	"errors"
	"testing"

	"multconst/internal/engine"
	"multconst/internal/mcerrors"
	"multconst/internal/profile"
)

func newTestEngine() *engine.Engine {
	return engine.New(profile.RISC())
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"unsupported negation", mcerrors.NewUnsupportedNegation(-3), 2},
		{"other mcerrors kind", mcerrors.NewParseError("bad", "x", 0), 3},
		{"unclassified", errors.New("boom"), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestSolvePrefersBinaryMethodWhenRequested(t *testing.T) {
	eng := newTestEngine()
	binOnly, err := solve(eng, 51, true)
	if err != nil {
		t.Fatalf("solve(51, binaryOnly=true) error: %v", err)
	}
	searched, err := solve(eng, 51, false)
	if err != nil {
		t.Fatalf("solve(51, binaryOnly=false) error: %v", err)
	}
	if binOnly.Value() != 51 || searched.Value() != 51 {
		t.Fatalf("solve results don't realise 51: binary=%d searched=%d", binOnly.Value(), searched.Value())
	}
	if searched.Cost() > binOnly.Cost() {
		t.Errorf("searched cost %v exceeds binary-method cost %v", searched.Cost(), binOnly.Cost())
	}
}
