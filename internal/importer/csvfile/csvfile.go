// Package csvfile parses raw bank export files into a header row and
// a matrix of cell strings.
//
// The scanner is deliberately hand-rolled instead of using encoding/csv:
// bank exports routinely contain blank lines, all-comma filler rows and
// ragged records that encoding/csv rejects, while imports must tolerate
// them and proceed with the usable rows.
package csvfile

import (
	"errors"
	"strings"
)

// ErrEmptyFile is returned when a file contains no data rows.
var ErrEmptyFile = errors.New("the file does not contain any usable rows")

// File is the parsed representation of a CSV file.
type File struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// Parse splits the file content into a trimmed header row and data rows.
//
// It understands RFC 4180 quoting: fields wrapped in double quotes may
// contain commas, newlines and doubled quotes. Rows end on \n, \r or \r\n.
// Rows whose cells are all blank after trimming are dropped.
func Parse(content string) (File, error) {
	rows := scan(content)

	// Keep only rows that have at least one non-blank cell
	usable := rows[:0]
	for _, row := range rows {
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				usable = append(usable, row)
				break
			}
		}
	}

	// The header row alone is not enough, there must be data
	if len(usable) < 2 {
		return File{}, ErrEmptyFile
	}

	headers := usable[0]
	for i, header := range headers {
		headers[i] = strings.TrimSpace(header)
	}

	return File{Headers: headers, Rows: usable[1:]}, nil
}

// scan walks the content character by character and collects rows of fields.
func scan(content string) [][]string {
	// A byte order mark before the first header confuses column name
	// matching, drop it
	content = strings.TrimPrefix(content, "\uFEFF")

	var rows [][]string
	var row []string
	var field strings.Builder
	inQuotes := false

	runes := []rune(content)
	flushField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	flushRow := func() {
		flushField()
		rows = append(rows, row)
		row = nil
	}

	for i := 0; i < len(runes); i++ {
		char := runes[i]

		if inQuotes {
			if char == '"' {
				// A doubled quote inside a quoted field is an escaped literal quote
				if i+1 < len(runes) && runes[i+1] == '"' {
					field.WriteRune('"')
					i++
					continue
				}

				inQuotes = false
				continue
			}

			// Everything else, including commas and newlines, is literal content
			field.WriteRune(char)
			continue
		}

		switch char {
		case '"':
			inQuotes = true
		case ',':
			flushField()
		case '\r':
			// \r\n counts as a single row end
			if i+1 < len(runes) && runes[i+1] == '\n' {
				i++
			}
			flushRow()
		case '\n':
			flushRow()
		default:
			field.WriteRune(char)
		}
	}

	// Flush the last row even without a trailing newline
	if field.Len() > 0 || len(row) > 0 {
		flushRow()
	}

	return rows
}
