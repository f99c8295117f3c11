// Package commands implements multconst's command logic, kept separate
// from the flag dispatch in main.go.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"

	"multconst/internal/engine"
	"multconst/internal/instr"
	"multconst/internal/mcerrors"
	"multconst/internal/profile"
	"multconst/internal/store"
	"multconst/internal/trace"
)

// Options captures every flag and positional argument Run needs. Building
// it is main.go's job; interpreting it is this package's.
type Options struct {
	Multipliers  []int64
	To           *int64
	BinaryMethod bool
	ShowCache    bool
	Debug        bool
	DebugAddr    string
	Format       string // "text", "json", "yaml"
	Compact      bool
	Output       string
	SQL          string
	Workers      int
}

// Run executes one multconst invocation end to end: build the engine,
// wire tracing and persistence, solve every requested multiplier, and
// write the results (and, if asked, the cache) to Options.Output.
func Run(opts Options) error {
	p := profile.RISC()

	eng, cleanupCache, err := openEngine(p, opts.SQL)
	if err != nil {
		return err
	}
	defer cleanupCache()

	closeTrace, err := wireTrace(eng, opts)
	if err != nil {
		return err
	}
	defer closeTrace()

	out := os.Stdout
	if opts.Output != "" {
		f, err := os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("multconst: open output: %w", err)
		}
		defer f.Close()
		out = f
	}

	if opts.To != nil {
		if err := runSweep(eng, *opts.To, opts, out); err != nil {
			return err
		}
	} else {
		if err := runDirect(eng, opts, out); err != nil {
			return err
		}
	}

	if opts.ShowCache {
		if err := writeCacheDump(eng, p, opts, out); err != nil {
			return err
		}
	}

	if opts.SQL != "" {
		sqlStore, err := store.OpenSQL(opts.SQL)
		if err != nil {
			return err
		}
		defer sqlStore.Close()
		if err := sqlStore.Save(eng.Cache()); err != nil {
			return err
		}
	}

	return nil
}

func openEngine(p *profile.Profile, dsn string) (*engine.Engine, func(), error) {
	if dsn == "" {
		return engine.New(p), func() {}, nil
	}
	c, err := store.Load(dsn, p)
	if err != nil {
		return nil, nil, err
	}
	return engine.NewWithCache(p, c), func() {}, nil
}

func wireTrace(eng *engine.Engine, opts Options) (func() error, error) {
	switch {
	case opts.DebugAddr != "":
		sink := trace.NewWSSink(opts.DebugAddr)
		if err := sink.Serve(); err != nil {
			return nil, err
		}
		eng.SetTrace(sink)
		return sink.Close, nil
	case opts.Debug:
		eng.SetTrace(trace.StderrSink{W: os.Stderr})
		return func() error { return nil }, nil
	default:
		return func() error { return nil }, nil
	}
}

func runDirect(eng *engine.Engine, opts Options, out io.Writer) error {
	if len(opts.Multipliers) == 0 {
		return fmt.Errorf("multconst: at least one multiplier is required")
	}
	for _, k := range opts.Multipliers {
		seq, err := solve(eng, k, opts.BinaryMethod)
		if err != nil {
			return err
		}
		if err := writeResult(out, opts, k, seq); err != nil {
			return err
		}
	}
	return nil
}

func runSweep(eng *engine.Engine, to int64, opts Options, out io.Writer) error {
	if opts.BinaryMethod {
		for k := int64(2); k <= to; k++ {
			seq, err := eng.BinarySequence(k)
			if err != nil {
				return err
			}
			if err := writeResult(out, opts, k, seq); err != nil {
				return err
			}
		}
		return nil
	}

	results, err := eng.Sweep(context.Background(), 2, to, opts.Workers)
	if err != nil {
		return err
	}
	for _, r := range results {
		if r.Err != nil {
			return r.Err
		}
		if err := writeResult(out, opts, r.K, r.Seq); err != nil {
			return err
		}
	}
	fmt.Fprintf(os.Stderr, "multconst: swept %s multipliers\n", humanize.Comma(int64(len(results))))
	return nil
}

func solve(eng *engine.Engine, k int64, binaryOnly bool) (instr.Sequence, error) {
	if binaryOnly {
		return eng.BinarySequence(k)
	}
	return eng.Find(k)
}

func writeResult(out io.Writer, opts Options, k int64, seq instr.Sequence) error {
	status := "completed"
	if opts.BinaryMethod {
		status = "upper-bound"
	}
	rec := store.Record{Cost: seq.Cost(), Status: status, Sequence: instr.PrintSequence(seq)}

	switch opts.Format {
	case "json":
		var data []byte
		var err error
		if opts.Compact {
			data, err = json.Marshal(map[string]store.Record{fmt.Sprint(k): rec})
		} else {
			data, err = json.MarshalIndent(map[string]store.Record{fmt.Sprint(k): rec}, "", "  ")
		}
		if err != nil {
			return err
		}
		_, err = out.Write(append(data, '\n'))
		return err
	case "yaml":
		data, err := yaml.Marshal(map[string]store.Record{fmt.Sprint(k): rec})
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		if opts.Compact {
			fmt.Fprintf(out, "%d: %.6f %s\n", k, rec.Cost, rec.Sequence)
		} else {
			fmt.Fprintf(out, "%d\n  cost: %.6f\n  sequence: %s\n", k, rec.Cost, rec.Sequence)
		}
		return nil
	}
}

func writeCacheDump(eng *engine.Engine, p *profile.Profile, opts Options, out io.Writer) error {
	switch opts.Format {
	case "json":
		data, err := store.DumpJSON(p, eng.Cache())
		if err != nil {
			return err
		}
		_, err = out.Write(append(data, '\n'))
		return err
	case "yaml":
		data, err := store.DumpYAML(p, eng.Cache())
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		_, err := io.WriteString(out, store.DumpText(eng.Cache()))
		return err
	}
}

// exitCodeFor maps an error to a process exit code: 2 for
// UnsupportedNegation, 3 for any other mcerrors.Error (parse/invariant
// failures, treated as the I/O-failure bucket at this boundary), 1 for
// anything unclassified.
func exitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	if mcErr, ok := err.(*mcerrors.Error); ok {
		if mcErr.Kind == mcerrors.UnsupportedNegation {
			return 2
		}
		return 3
	}
	return 1
}

// ExitCode is exported for main.go to call after Run returns.
func ExitCode(err error) int { return exitCodeFor(err) }
