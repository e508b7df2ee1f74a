package render

import (
	"fmt"
	"strings"
)

const (
	fieldSeparator = ','
	quoteChar      = '\''
)

// parseDelimited reads comma separated text where fields may be quoted
// with single quotes. Leading spaces after a separator are dropped, a
// doubled quote inside a quoted field is a literal quote, and quoted fields
// may span lines. Blank lines are skipped.
func parseDelimited(text string) ([][]string, error) {
	text = strings.ReplaceAll(text, "\r\n", "\n")

	var (
		records    [][]string
		record     []string
		field      strings.Builder
		hasContent bool
		fieldStart = true
		line       = 1
	)
	endRecord := func() {
		record = append(record, field.String())
		field.Reset()
		if hasContent {
			records = append(records, record)
		}
		record, hasContent, fieldStart = nil, false, true
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		if fieldStart && ch == ' ' {
			continue
		}
		if fieldStart && ch == quoteChar {
			end, err := readQuoted(text, i+1, &field)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", line, err)
			}
			line += strings.Count(text[i:end], "\n")
			hasContent, fieldStart = true, false
			i = end - 1
			continue
		}
		fieldStart = false
		switch ch {
		case fieldSeparator:
			record = append(record, field.String())
			field.Reset()
			hasContent, fieldStart = true, true
		case '\n':
			endRecord()
			line++
		default:
			field.WriteByte(ch)
			hasContent = true
		}
	}
	if hasContent {
		endRecord()
	}
	return records, nil
}

// readQuoted copies a quoted field starting after the opening quote and
// returns the index just past the closing quote.
func readQuoted(text string, start int, field *strings.Builder) (int, error) {
	for i := start; i < len(text); i++ {
		if text[i] != quoteChar {
			field.WriteByte(text[i])
			continue
		}
		if i+1 < len(text) && text[i+1] == quoteChar {
			field.WriteByte(quoteChar)
			i++
			continue
		}
		return i + 1, nil
	}
	return 0, fmt.Errorf("unterminated quoted field")
}

// frame is delimited data shaped into a header and equally wide rows.
type frame struct {
	header []string
	rows   [][]string
}

// newFrame shapes records into a frame. With withHeader the first record
// names the columns; otherwise columns are named by names. Short rows are
// padded with empty cells, long rows are an error.
func newFrame(records [][]string, withHeader bool, names ...string) (*frame, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("no data")
	}
	f := &frame{header: names}
	if withHeader {
		f.header = records[0]
		records = records[1:]
	}
	width := len(f.header)
	for i, rec := range records {
		if len(rec) > width {
			return nil, fmt.Errorf("row %d has %d fields, expected %d", i+1, len(rec), width)
		}
		row := make([]string, width)
		copy(row, rec)
		f.rows = append(f.rows, row)
	}
	return f, nil
}

// mapCells replaces every cell with fn(cell).
func (f *frame) mapCells(fn func(string) (string, error)) error {
	for _, row := range f.rows {
		for j, cell := range row {
			out, err := fn(cell)
			if err != nil {
				return err
			}
			row[j] = out
		}
	}
	return nil
}
