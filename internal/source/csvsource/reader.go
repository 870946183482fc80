// Package csvsource reads CSV files into typed frames ready for bulk loading
// into PostgreSQL. The first row is the header; column types are inferred
// from the data.
package csvsource

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pgstage/pgstage/pkg/pgstage"
)

// ctxCheckInterval is how many data rows are read between context checks,
// so a cancelled run stops promptly even on multi-gigabyte files.
const ctxCheckInterval = 1000

// Reader implements pgstage.DatasetReader for local CSV files.
type Reader struct{}

// NewReader creates a CSV dataset reader.
func NewReader() *Reader {
	return &Reader{}
}

var _ pgstage.DatasetReader = (*Reader)(nil)

// Read loads the CSV file at source into a typed Frame. The whole file is
// materialized in memory; types are inferred after all rows are read.
func (r *Reader) Read(ctx context.Context, source string) (*pgstage.Frame, error) {
	file, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", source, err)
	}
	defer file.Close()

	frame, err := readFrame(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", source, err)
	}
	return frame, nil
}

// readFrame parses CSV from r into a Frame. Split from Read so tests can
// feed it strings directly.
func readFrame(ctx context.Context, r io.Reader) (*pgstage.Frame, error) {
	buffered := bufio.NewReader(r)
	if err := stripBOM(buffered); err != nil {
		return nil, err
	}

	csvReader := csv.NewReader(buffered)
	csvReader.ReuseRecord = false

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("file is empty, expected a header row")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	names := normalizeHeader(header)
	width := len(names)

	var records [][]string
	for row := 1; ; row++ {
		if row%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// encoding/csv enforces a uniform field count against the
			// header, so ragged rows surface here.
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		records = append(records, record)
	}

	types := inferTypes(records, width)

	columns := make([]pgstage.Column, width)
	for i, name := range names {
		columns[i] = pgstage.Column{Name: name, Type: types[i]}
	}

	rows := make([][]any, len(records))
	for i, record := range records {
		row := make([]any, width)
		for j, cell := range record {
			value, err := convertCell(cell, types[j])
			if err != nil {
				return nil, fmt.Errorf("row %d column %q: %w", i+1, names[j], err)
			}
			row[j] = value
		}
		rows[i] = row
	}

	return &pgstage.Frame{Columns: columns, Rows: rows}, nil
}

// stripBOM consumes a UTF-8 byte order mark if the stream starts with one.
// Excel exports routinely carry it and it would otherwise end up glued to
// the first column name.
func stripBOM(r *bufio.Reader) error {
	bom, err := r.Peek(3)
	if err != nil && err != io.EOF {
		return err
	}
	if len(bom) == 3 && bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		if _, err := r.Discard(3); err != nil {
			return err
		}
	}
	return nil
}

// normalizeHeader trims whitespace, replaces empty names with column_N, and
// disambiguates duplicates with a numeric suffix so every column can become
// a distinct PostgreSQL identifier.
func normalizeHeader(header []string) []string {
	names := make([]string, len(header))
	used := make(map[string]int, len(header))

	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}

		if n, taken := used[name]; taken {
			base := name
			for {
				n++
				candidate := fmt.Sprintf("%s_%d", base, n)
				if _, collides := used[candidate]; !collides {
					used[base] = n
					name = candidate
					break
				}
			}
		}

		used[name] = 1
		names[i] = name
	}
	return names
}
