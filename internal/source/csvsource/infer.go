package csvsource

import (
	"strconv"
	"strings"
	"time"

	"github.com/pgstage/pgstage/pkg/pgstage"
)

// Candidate types are tracked per column as a bitmask. A column starts with
// every candidate and each non-empty cell eliminates the ones it cannot
// satisfy; whatever survives with the highest priority wins. Text is the
// implicit fallback and never tracked.
type candidateSet uint8

const (
	candidateBool candidateSet = 1 << iota
	candidateBigInt
	candidateDouble
	candidateDate
	candidateTimestamp

	allCandidates = candidateBool | candidateBigInt | candidateDouble | candidateDate | candidateTimestamp
)

// timestampLayouts are tried in order. The bare date layout is included so a
// column mixing dates and timestamps resolves to timestamptz instead of text.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

const dateLayout = "2006-01-02"

// eliminate returns the candidates from set that the cell still satisfies.
// Empty cells are NULLs and never reach here.
func eliminate(set candidateSet, cell string) candidateSet {
	if set&candidateBool != 0 && !isBool(cell) {
		set &^= candidateBool
	}
	if set&candidateBigInt != 0 {
		if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
			set &^= candidateBigInt
		}
	}
	if set&candidateDouble != 0 {
		if _, err := strconv.ParseFloat(cell, 64); err != nil {
			set &^= candidateDouble
		}
	}
	if set&candidateDate != 0 {
		if _, err := time.Parse(dateLayout, cell); err != nil {
			set &^= candidateDate
		}
	}
	if set&candidateTimestamp != 0 && !isTimestamp(cell) {
		set &^= candidateTimestamp
	}
	return set
}

func isBool(cell string) bool {
	switch strings.ToLower(cell) {
	case "true", "false", "t", "f":
		return true
	}
	return false
}

func isTimestamp(cell string) bool {
	for _, layout := range timestampLayouts {
		if _, err := time.Parse(layout, cell); err == nil {
			return true
		}
	}
	return false
}

// columnType resolves a surviving candidate set to the column's type.
// Booleans beat integers so a pure t/f column is not mistaken for text,
// integers beat doubles because every integer also parses as a double,
// and dates beat timestamps because the timestamp layouts accept bare dates.
func columnType(set candidateSet) pgstage.ColumnType {
	switch {
	case set&candidateBool != 0:
		return pgstage.TypeBool
	case set&candidateBigInt != 0:
		return pgstage.TypeBigInt
	case set&candidateDouble != 0:
		return pgstage.TypeDouble
	case set&candidateDate != 0:
		return pgstage.TypeDate
	case set&candidateTimestamp != 0:
		return pgstage.TypeTimestamp
	default:
		return pgstage.TypeText
	}
}

// inferTypes scans every cell of the raw records and returns the inferred
// type for each of the width columns. A column with no non-empty cells is
// text.
func inferTypes(records [][]string, width int) []pgstage.ColumnType {
	sets := make([]candidateSet, width)
	seen := make([]bool, width)
	for i := range sets {
		sets[i] = allCandidates
	}

	for _, record := range records {
		for i, cell := range record {
			if cell == "" {
				continue
			}
			seen[i] = true
			if sets[i] != 0 {
				sets[i] = eliminate(sets[i], cell)
			}
		}
	}

	types := make([]pgstage.ColumnType, width)
	for i := range types {
		if !seen[i] {
			types[i] = pgstage.TypeText
			continue
		}
		types[i] = columnType(sets[i])
	}
	return types
}

// convertCell parses a raw cell into the Go value pgx writes for the column's
// type. Empty cells become NULL regardless of type.
func convertCell(cell string, typ pgstage.ColumnType) (any, error) {
	if cell == "" {
		return nil, nil
	}

	switch typ {
	case pgstage.TypeBool:
		switch strings.ToLower(cell) {
		case "true", "t":
			return true, nil
		default:
			return false, nil
		}
	case pgstage.TypeBigInt:
		return strconv.ParseInt(cell, 10, 64)
	case pgstage.TypeDouble:
		return strconv.ParseFloat(cell, 64)
	case pgstage.TypeDate:
		return time.Parse(dateLayout, cell)
	case pgstage.TypeTimestamp:
		var lastErr error
		for _, layout := range timestampLayouts {
			ts, err := time.Parse(layout, cell)
			if err == nil {
				return ts, nil
			}
			lastErr = err
		}
		return nil, lastErr
	default:
		return cell, nil
	}
}
