package main

import "testing"

func TestParseArgsMultipliers(t *testing.T) {
	opts, err := parseArgs([]string{"7", "51"})
	if err != nil {
		t.Fatalf("parseArgs error: %v", err)
	}
	if len(opts.Multipliers) != 2 || opts.Multipliers[0] != 7 || opts.Multipliers[1] != 51 {
		t.Errorf("parseArgs Multipliers = %v, want [7 51]", opts.Multipliers)
	}
}

func TestParseArgsFlags(t *testing.T) {
	opts, err := parseArgs([]string{"-S", "-d", "-b", "--compact", "--fmt", "json", "--to", "100", "--workers", "4", "51"})
	if err != nil {
		t.Fatalf("parseArgs error: %v", err)
	}
	if !opts.ShowCache || !opts.Debug || !opts.BinaryMethod || !opts.Compact {
		t.Errorf("parseArgs boolean flags not all set: %+v", opts)
	}
	if opts.Format != "json" {
		t.Errorf("parseArgs Format = %q, want json", opts.Format)
	}
	if opts.To == nil || *opts.To != 100 {
		t.Errorf("parseArgs To = %v, want 100", opts.To)
	}
	if opts.Workers != 4 {
		t.Errorf("parseArgs Workers = %d, want 4", opts.Workers)
	}
}

func TestParseArgsRejectsUnknownFlag(t *testing.T) {
	if _, err := parseArgs([]string{"--bogus"}); err == nil {
		t.Error("parseArgs(--bogus) = nil error, want an error")
	}
}

func TestParseArgsRejectsBadFormat(t *testing.T) {
	if _, err := parseArgs([]string{"--fmt", "xml"}); err == nil {
		t.Error("parseArgs(--fmt xml) = nil error, want an error")
	}
}

func TestParseArgsRequiresFlagValue(t *testing.T) {
	if _, err := parseArgs([]string{"--to"}); err == nil {
		t.Error("parseArgs(--to) with no value = nil error, want an error")
	}
}
