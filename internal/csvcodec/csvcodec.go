// Package csvcodec converts between CSV text and typed records using a
// per-resource column schema. Parsing and quoting follow RFC 4180 via
// encoding/csv; this package owns header matching and type coercion.
package csvcodec

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/ignite/marketing-console/internal/domain"
)

// FormatError reports CSV input that cannot be processed at all, as opposed
// to row-level validation failures which are soft.
type FormatError struct {
	Msg string
}

func (e *FormatError) Error() string { return e.Msg }

// Decode parses CSV text into records according to cols. The first line must
// be a header row and at least one data row must follow. Header cells are
// matched case-insensitively against the column Header, falling back to the
// Key; unmatched cells are ignored.
//
// Coercion: integer/number cells parse with a nil fallback for empty cells;
// boolean cells are true for exactly "true", "1", or "yes" and false
// otherwise; date and string cells pass through as strings (empty means
// absent). Dates are validated downstream.
func Decode(text string, cols []domain.Column) ([]domain.Record, error) {
	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1

	lines, err := reader.ReadAll()
	if err != nil {
		return nil, &FormatError{Msg: fmt.Sprintf("malformed CSV: %v", err)}
	}
	if len(lines) < 2 {
		return nil, &FormatError{Msg: "CSV must contain a header row and at least one data row"}
	}

	// Map each header position to a schema column.
	byPos := make([]*domain.Column, len(lines[0]))
	for i, cell := range lines[0] {
		header := strings.TrimSpace(cell)
		for j := range cols {
			if strings.EqualFold(cols[j].Header, header) || strings.EqualFold(cols[j].Key, header) {
				byPos[i] = &cols[j]
				break
			}
		}
	}

	rows := make([]domain.Record, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rec := domain.Record{}
		for i, cell := range line {
			if i >= len(byPos) || byPos[i] == nil {
				continue
			}
			col := byPos[i]
			if v, ok := coerce(cell, col.Type); ok {
				rec[col.Key] = v
			}
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

func coerce(cell string, typ domain.ColumnType) (any, bool) {
	cell = strings.TrimSpace(cell)
	switch typ {
	case domain.TypeInteger:
		if cell == "" {
			return nil, false
		}
		n, err := strconv.ParseInt(cell, 10, 64)
		if err != nil {
			// Keep the raw value so validation can report it per-field.
			return cell, true
		}
		return n, true
	case domain.TypeNumber:
		if cell == "" {
			return nil, false
		}
		n, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return cell, true
		}
		return n, true
	case domain.TypeBoolean:
		return cell == "true" || cell == "1" || cell == "yes", true
	default: // string, date
		if cell == "" {
			return nil, false
		}
		return cell, true
	}
}

// Encode renders rows as CSV text with a header row built from cols. Fields
// containing commas, quotes, or newlines are quoted with internal quotes
// doubled, per RFC 4180.
func Encode(rows []domain.Record, cols []domain.Column) (string, error) {
	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Header
	}
	if err := writer.Write(header); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}

	line := make([]string, len(cols))
	for _, row := range rows {
		for i, c := range cols {
			line[i] = format(row[c.Key])
		}
		if err := writer.Write(line); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("flush: %w", err)
	}
	return sb.String(), nil
}

func format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int:
		return strconv.Itoa(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
