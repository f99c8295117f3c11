package store

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"multconst/internal/cache"
	"multconst/internal/instr"
	"multconst/internal/mcerrors"
	"multconst/internal/profile"
)

// Record is the serialised form of one cache entry: a single cost figure
// (the entry's upper bound), a status distinguishing a proved optimum from
// a provisional bound, and the compact textual sequence.
type Record struct {
	Cost     float64 `json:"cost" yaml:"cost"`
	Status   string  `json:"search-status" yaml:"search-status"`
	Sequence string  `json:"sequence" yaml:"sequence"`
}

const (
	statusCompleted  = "completed"
	statusUpperBound = "upper-bound"
)

// Container is the top-level dumped document: a format version, the cost
// profile the cache was built under (informational — Load always takes
// its own *profile.Profile rather than reconstructing one from this), and
// every non-empty entry keyed by multiplier.
type Container struct {
	Version  string            `json:"version" yaml:"version"`
	Costs    map[string]float64 `json:"costs" yaml:"costs"`
	Products map[string]Record `json:"products" yaml:"products"`
}

const formatVersion = "1"

func buildContainer(p *profile.Profile, c *cache.Cache) Container {
	costs := make(map[string]float64)
	for op, cost := range p.Costs {
		costs[op.String()] = cost
	}
	products := make(map[string]Record)
	c.Each(func(k int64, e cache.Entry) {
		if len(e.Instrs) == 0 {
			return
		}
		products[strconv.FormatInt(k, 10)] = recordFor(e)
	})
	return Container{Version: formatVersion, Costs: costs, Products: products}
}

func recordFor(e cache.Entry) Record {
	status := statusUpperBound
	if e.Finished {
		status = statusCompleted
	}
	return Record{Cost: e.Upper, Status: status, Sequence: instr.PrintSequence(e.Instrs)}
}

func loadContainer(p *profile.Profile, products map[string]Record) (*cache.Cache, error) {
	out := cache.New(p)
	for key, rec := range products {
		k, err := strconv.ParseInt(key, 10, 64)
		if err != nil {
			return nil, mcerrors.NewParseError("malformed product key", key, 0)
		}
		seq, err := instr.ParseSequence(rec.Sequence)
		if err != nil {
			return nil, err
		}
		seq = p.Recost(seq)
		finished := rec.Status == statusCompleted
		lower := rec.Cost
		if !finished {
			lower = 0
		}
		out.Insert(k, lower, rec.Cost, finished, seq)
	}
	return out, nil
}

// DumpJSON renders c as a line-oriented JSON container document.
func DumpJSON(p *profile.Profile, c *cache.Cache) ([]byte, error) {
	return json.MarshalIndent(buildContainer(p, c), "", "  ")
}

// LoadJSON parses a document written by DumpJSON into a fresh cache built
// on p.
func LoadJSON(data []byte, p *profile.Profile) (*cache.Cache, error) {
	var doc Container
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, mcerrors.NewParseError("malformed JSON cache dump: "+err.Error(), string(data), 0)
	}
	return loadContainer(p, doc.Products)
}

// DumpYAML renders c as a YAML container document, via gopkg.in/yaml.v3.
func DumpYAML(p *profile.Profile, c *cache.Cache) ([]byte, error) {
	return yaml.Marshal(buildContainer(p, c))
}

// LoadYAML parses a document written by DumpYAML.
func LoadYAML(data []byte, p *profile.Profile) (*cache.Cache, error) {
	var doc Container
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, mcerrors.NewParseError("malformed YAML cache dump: "+err.Error(), string(data), 0)
	}
	return loadContainer(p, doc.Products)
}

// DumpTSV renders c with header "n\tcost\tsearch-status\tsequence", one row
// per non-empty entry in ascending key order.
func DumpTSV(c *cache.Cache) string {
	var sb strings.Builder
	sb.WriteString("n\tcost\tsearch-status\tsequence\n")
	c.Each(func(k int64, e cache.Entry) {
		if len(e.Instrs) == 0 {
			return
		}
		rec := recordFor(e)
		fmt.Fprintf(&sb, "%d\t%.6f\t%s\t%s\n", k, rec.Cost, rec.Status, rec.Sequence)
	})
	return sb.String()
}

// LoadTSV parses a document written by DumpTSV into a fresh cache built on
// p.
func LoadTSV(data string, p *profile.Profile) (*cache.Cache, error) {
	out := cache.New(p)
	lines := strings.Split(strings.TrimRight(data, "\n"), "\n")
	if len(lines) == 0 {
		return out, nil
	}
	for _, line := range lines[1:] { // skip header
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 4)
		if len(fields) != 4 {
			return nil, mcerrors.NewParseError("malformed TSV row (want 4 tab-separated fields)", line, 0)
		}
		k, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return nil, mcerrors.NewParseError("malformed multiplier column", fields[0], 0)
		}
		cost, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, mcerrors.NewParseError("malformed cost column", fields[1], 0)
		}
		finished := fields[2] == statusCompleted
		seq, err := instr.ParseSequence(fields[3])
		if err != nil {
			return nil, err
		}
		seq = p.Recost(seq)
		lower := cost
		if !finished {
			lower = 0
		}
		out.Insert(k, lower, cost, finished, seq)
	}
	return out, nil
}

// textLine matches a line produced by DumpText: the multiplier, a cost
// field (either "cost: V" or the bracketed "(lower, upper]"), and the
// sequence's compact text.
var textLine = regexp.MustCompile(`^\s*(-?\d+)\s+(cost: (-?[\d.eE+-]+)|\((-?[\d.eE+-]+), (-?[\d.eE+-]+)\])\s+seq: (.*)$`)

// DumpText renders c as fixed-field, human-readable lines: a flat "cost: v"
// for finished entries, a bracketed "(lower, upper]" for provisional ones.
// Of the file formats in this package it is the one that round-trips Lower
// for unfinished entries, since it is the only one that writes it down;
// JSON, YAML and TSV reload unfinished entries with Lower 0. The SQL store
// also keeps Lower.
func DumpText(c *cache.Cache) string {
	var sb strings.Builder
	c.Each(func(k int64, e cache.Entry) {
		if len(e.Instrs) == 0 {
			return
		}
		var costField string
		if e.Finished {
			costField = fmt.Sprintf("cost: %.6f", e.Upper)
		} else {
			costField = fmt.Sprintf("(%.6f, %.6f]", e.Lower, e.Upper)
		}
		fmt.Fprintf(&sb, "%-8d %-24s seq: %s\n", k, costField, instr.PrintSequence(e.Instrs))
	})
	return sb.String()
}

// LoadText parses a document written by DumpText into a fresh cache built
// on p.
func LoadText(data string, p *profile.Profile) (*cache.Cache, error) {
	out := cache.New(p)
	for _, line := range strings.Split(data, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		m := textLine.FindStringSubmatch(line)
		if m == nil {
			return nil, mcerrors.NewParseError("malformed text cache dump line", line, 0)
		}
		k, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return nil, mcerrors.NewParseError("malformed multiplier", m[1], 0)
		}
		seq, err := instr.ParseSequence(m[6])
		if err != nil {
			return nil, err
		}
		seq = p.Recost(seq)

		var lower, upper float64
		var finished bool
		if m[3] != "" {
			finished = true
			upper, err = strconv.ParseFloat(m[3], 64)
			if err != nil {
				return nil, mcerrors.NewParseError("malformed cost", m[3], 0)
			}
			lower = upper
		} else {
			lower, err = strconv.ParseFloat(m[4], 64)
			if err != nil {
				return nil, mcerrors.NewParseError("malformed lower bound", m[4], 0)
			}
			upper, err = strconv.ParseFloat(m[5], 64)
			if err != nil {
				return nil, mcerrors.NewParseError("malformed upper bound", m[5], 0)
			}
		}
		out.Insert(k, lower, upper, finished, seq)
	}
	return out, nil
}
