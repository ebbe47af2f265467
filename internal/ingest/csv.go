// Package ingest loads operational readings from CSV uploads or the
// built-in demo sequence.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/prosentry/prosentry/internal/risk"
)

// Result summarizes a CSV parse.
type Result struct {
	Readings []risk.Reading
	Dropped  int
}

// ParseCSV parses a delimited reading table. The header row names the
// columns; unknown columns are ignored and matching is
// case-insensitive. Rows without a positive continuous_work_hours
// value are dropped. A missing timestamp gets a synthetic step label.
func ParseCSV(r io.Reader) (*Result, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	if _, ok := cols["continuous_work_hours"]; !ok {
		return nil, fmt.Errorf("missing required column continuous_work_hours")
	}

	res := &Result{}
	step := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed rows are dropped, not surfaced.
			res.Dropped++
			continue
		}

		step++
		reading := readingFrom(record, cols, step)
		if reading.WorkHours <= 0 {
			res.Dropped++
			continue
		}
		res.Readings = append(res.Readings, reading)
	}

	return res, nil
}

func readingFrom(record []string, cols map[string]int, step int) risk.Reading {
	cell := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	hours, _ := strconv.ParseFloat(cell("continuous_work_hours"), 64)
	nearMiss, _ := strconv.Atoi(cell("near_miss_count"))

	usage := cell("machine_usage_level")
	if usage == "" {
		usage = "low"
	}
	shift := cell("shift_type")
	if shift == "" {
		shift = "day"
	}
	ts := cell("timestamp")
	if ts == "" {
		ts = fmt.Sprintf("Step %d", step)
	}

	return risk.Reading{
		WorkHours:     hours,
		NearMissCount: nearMiss,
		MachineUsage:  usage,
		Shift:         shift,
		Timestamp:     ts,
	}
}
