// cmd/multconst/main.go
package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"multconst/cmd/multconst/commands"
)

const version = "0.1.0"

// Build variables - can be set during build with ldflags.
var (
	buildDate = time.Now().Format("2006-01-02")
	gitCommit = "unknown"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		showUsage()
		os.Exit(1)
	}

	if args[0] == "--help" || args[0] == "-h" || args[0] == "help" {
		showUsage()
		return
	}
	if args[0] == "--version" || args[0] == "-v" || args[0] == "version" {
		showVersion()
		return
	}

	opts, err := parseArgs(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, "multconst:", err)
		os.Exit(1)
	}

	err = commands.Run(opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "multconst:", err)
	}
	os.Exit(commands.ExitCode(err))
}

// parseArgs hand-rolls flag parsing directly over os.Args rather than
// reaching for the standard flag package.
func parseArgs(args []string) (commands.Options, error) {
	opts := commands.Options{Format: "text"}

	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "-S", "--showcache":
			opts.ShowCache = true
		case "-d", "--debug":
			opts.Debug = true
		case "-b", "--binary-method":
			opts.BinaryMethod = true
		case "--compact":
			opts.Compact = true
		case "--debug-addr":
			v, err := requireValue(args, &i, a)
			if err != nil {
				return opts, err
			}
			opts.DebugAddr = v
		case "--to":
			v, err := requireValue(args, &i, a)
			if err != nil {
				return opts, err
			}
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return opts, fmt.Errorf("--to wants an integer, got %q", v)
			}
			opts.To = &n
		case "--fmt":
			v, err := requireValue(args, &i, a)
			if err != nil {
				return opts, err
			}
			switch v {
			case "text", "json", "yaml":
				opts.Format = v
			default:
				return opts, fmt.Errorf("--fmt wants one of text, json, yaml, got %q", v)
			}
		case "-o", "--output":
			v, err := requireValue(args, &i, a)
			if err != nil {
				return opts, err
			}
			opts.Output = v
		case "--sql":
			v, err := requireValue(args, &i, a)
			if err != nil {
				return opts, err
			}
			opts.SQL = v
		case "--workers":
			v, err := requireValue(args, &i, a)
			if err != nil {
				return opts, err
			}
			n, err := strconv.Atoi(v)
			if err != nil {
				return opts, fmt.Errorf("--workers wants an integer, got %q", v)
			}
			opts.Workers = n
		default:
			n, err := strconv.ParseInt(a, 10, 64)
			if err != nil {
				return opts, fmt.Errorf("unrecognised argument %q", a)
			}
			opts.Multipliers = append(opts.Multipliers, n)
		}
	}

	return opts, nil
}

func requireValue(args []string, i *int, flag string) (string, error) {
	if *i+1 >= len(args) {
		return "", fmt.Errorf("%s requires a value", flag)
	}
	*i++
	return args[*i], nil
}

func showUsage() {
	fmt.Println(`multconst - minimum-cost shift/add/subtract/negate sequences for integer multiplication

Usage:
  multconst [flags] K [K ...]
  multconst --to N [flags]

Flags:
  -S, --showcache        dump the cache after running
  -d, --debug            trace search decisions to stderr
      --debug-addr ADDR  stream trace events over a websocket at ADDR instead
  -b, --binary-method    use the binary-method seed only, skip alpha-beta search
      --to N             search every k in [2, N]
      --fmt FORMAT       text, json, or yaml (default text)
      --compact          single-line output
  -o, --output PATH      write results to PATH instead of stdout
      --sql DSN          load/save the cache via sqlite://, postgres://, mysql://, or sqlserver://
      --workers N        sweep concurrency for --to (default GOMAXPROCS)
  -h, --help             show this message
  -v, --version          show version information`)
}

func showVersion() {
	fmt.Printf("multconst %s (commit %s, built %s)\n", version, gitCommit, buildDate)
}
