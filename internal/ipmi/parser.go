package ipmi

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"strconv"
	"strings"
)

// fieldSeparator is the column delimiter in `ipmitool sensor` output:
//
//	CPU1 Temp        | 45.000     | degrees C  | ok    | ...
const fieldSeparator = "|"

// minFields is the minimum column count for a data row: name, value,
// unit. Anything shorter is a header, separator, or truncated line.
const minFields = 3

// noReadingSentinels are value-field tokens meaning "sensor defined
// but no reading available". Rows carrying one still describe a valid
// sensor and are kept for discovery.
var noReadingSentinels = map[string]bool{
	"":           true,
	"na":         true,
	"no reading": true,
	"disabled":   true,
}

// knownStatuses are the ipmitool status codes we accept. Rows with any
// other status (typically garbage from a partially initialized BMC)
// are skipped.
var knownStatuses = map[string]bool{
	"ok": true,
	"ns": true,
	"nr": true,
	"nc": true,
	"cr": true,
}

// Fields is one data row split into its columns, whitespace-trimmed.
// Status is empty when the row had only three columns.
type Fields struct {
	Name   string
	Value  string
	Unit   string
	Status string
}

// ParseLine splits one raw output line into Fields. The second return
// is false for anything that is not a data row: blank lines, lines
// without the column separator, and rows with fewer than three
// columns. Malformed lines are never an error, only a skip.
func ParseLine(line string) (Fields, bool) {
	if !strings.Contains(line, fieldSeparator) {
		return Fields{}, false
	}

	parts := strings.Split(line, fieldSeparator)
	if len(parts) < minFields {
		return Fields{}, false
	}
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}

	f := Fields{
		Name:  parts[0],
		Value: parts[1],
		Unit:  parts[2],
	}
	if len(parts) > 3 {
		f.Status = parts[3]
	}
	return f, true
}

// buildReading assembles a Reading from a parsed row, or reports false
// when the row cannot yield one: empty name (no identity derivable) or
// an unrecognized status code. A non-numeric or sentinel value field
// is not a rejection; it produces a Reading with a nil Value.
func buildReading(f Fields) (Reading, bool) {
	if f.Name == "" {
		return Reading{}, false
	}
	if f.Status != "" && !knownStatuses[strings.ToLower(f.Status)] {
		return Reading{}, false
	}

	r := Reading{
		Name:    f.Name,
		UnitRaw: f.Unit,
		Unit:    ClassifyUnit(f.Unit),
	}

	if !noReadingSentinels[strings.ToLower(f.Value)] {
		if v, err := strconv.ParseFloat(f.Value, 64); err == nil {
			r.Value = &v
		}
	}
	return r, true
}

// ParseOutput runs every line of raw utility output through the line
// parser and record builder, returning the readings in input order.
// Lines that are not data rows are skipped silently; logger (optional)
// receives a trace entry per skipped line for format debugging.
func ParseOutput(output []byte, logger *slog.Logger) []Reading {
	var readings []Reading
	ctx := context.Background()

	sc := bufio.NewScanner(bytes.NewReader(output))
	for sc.Scan() {
		line := sc.Text()

		f, ok := ParseLine(line)
		if !ok {
			if logger != nil {
				logger.Log(ctx, slog.Level(-8), "skipped non-data line", "line", line) // config.LevelTrace
			}
			continue
		}

		r, ok := buildReading(f)
		if !ok {
			if logger != nil {
				logger.Log(ctx, slog.Level(-8), "skipped row", "name", f.Name, "status", f.Status) // config.LevelTrace
			}
			continue
		}
		readings = append(readings, r)
	}

	return readings
}
