package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/soltixdb/kcluster/internal/analytics"
)

// readInput parses CSV rows of either "value" or "time,value". A header row
// whose value column is not numeric is skipped. Rows with a time column are
// returned as points; plain rows as values.
func readInput(r io.Reader) ([]float64, analytics.TimeSeriesData, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var (
		values []float64
		points analytics.TimeSeriesData
	)

	line := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read CSV: %w", err)
		}
		line++

		if len(record) == 0 || (len(record) == 1 && strings.TrimSpace(record[0]) == "") {
			continue
		}
		if len(record) > 2 {
			return nil, nil, fmt.Errorf("line %d: expected 1 or 2 columns, got %d", line, len(record))
		}

		raw := strings.TrimSpace(record[len(record)-1])
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			if line == 1 {
				continue
			}
			return nil, nil, fmt.Errorf("line %d: invalid value %q: %w", line, raw, err)
		}

		if len(record) == 1 {
			if len(points) > 0 {
				return nil, nil, fmt.Errorf("line %d: missing time column", line)
			}
			values = append(values, v)
			continue
		}

		if len(values) > 0 {
			return nil, nil, fmt.Errorf("line %d: unexpected time column", line)
		}
		t, err := time.Parse(time.RFC3339, strings.TrimSpace(record[0]))
		if err != nil {
			return nil, nil, fmt.Errorf("line %d: invalid time %q: %w", line, record[0], err)
		}
		points = append(points, analytics.TimeSeriesPoint{Time: t, Value: v})
	}

	return values, points, nil
}
