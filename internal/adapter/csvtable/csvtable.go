// Package csvtable reads metric tables: converted CSV files with a Jahr
// column and one column per region, and the raw DWD regional averages
// exports they are derived from.
package csvtable

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/couchcryptid/climate-choropleth/internal/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse reads a header row followed by data rows. The delimiter is ','
// unless the header contains more ';' than ','. Cells are kept as strings;
// an empty cell is a missing value.
func Parse(source string, data []byte) ([]domain.RawRow, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	header, _, _ := bytes.Cut(data, []byte("\n"))
	comma := ','
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		comma = ';'
	}
	return read(source, bytes.NewReader(data), comma, nil)
}

// headerFunc rewrites the header in place and returns the indexes of data
// columns to drop plus extra columns to append as copies of existing ones.
type headerFunc func(header []string) (drop map[int]bool, copies []columnCopy)

type columnCopy struct {
	from int
	name string
}

func read(source string, r io.Reader, comma rune, fix headerFunc) ([]domain.RawRow, error) {
	reader := csv.NewReader(r)
	reader.Comma = comma
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &domain.DataFormatError{Source: source, Reason: "empty table"}
	}
	if err != nil {
		return nil, &domain.DataFormatError{Source: source, Reason: fmt.Sprintf("read header: %v", err)}
	}
	header = trimFields(header)
	if comma == ';' {
		header = dropTrailingEmpty(header)
	}

	var drop map[int]bool
	var copies []columnCopy
	if fix != nil {
		drop, copies = fix(header)
	}

	seen := make(map[string]bool, len(header))
	for i, h := range header {
		if drop[i] {
			continue
		}
		if h == "" {
			return nil, &domain.DataFormatError{Source: source, Reason: fmt.Sprintf("empty header in column %d", i+1)}
		}
		if seen[h] {
			return nil, &domain.DataFormatError{Source: source, Reason: fmt.Sprintf("duplicate column %q", h)}
		}
		seen[h] = true
	}

	var rows []domain.RawRow
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, &domain.DataFormatError{Source: source, Row: line, Reason: err.Error()}
		}
		record = trimFields(record)
		if isBlank(record) {
			continue
		}
		if comma == ';' {
			record = dropTrailingEmpty(record)
		}
		if len(record) > len(header) {
			return nil, &domain.DataFormatError{Source: source, Row: line,
				Reason: fmt.Sprintf("%d fields, header has %d", len(record), len(header))}
		}

		row := make(domain.RawRow, len(header)+len(copies))
		for i, h := range header {
			if drop[i] {
				continue
			}
			if i < len(record) {
				row[h] = record[i]
			} else {
				row[h] = ""
			}
		}
		for _, c := range copies {
			if c.from < len(record) {
				row[c.name] = record[c.from]
			} else {
				row[c.name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Write encodes rows as a comma separated table with the Jahr column first
// and the remaining columns sorted by name.
func Write(w io.Writer, rows []domain.RawRow) error {
	cols := make(map[string]struct{})
	for _, r := range rows {
		for k := range r {
			if k != domain.YearColumn {
				cols[k] = struct{}{}
			}
		}
	}
	header := make([]string, 0, len(cols)+1)
	for k := range cols {
		header = append(header, k)
	}
	sort.Strings(header)
	header = append([]string{domain.YearColumn}, header...)

	bw := bufio.NewWriter(w)
	cw := csv.NewWriter(bw)
	if err := cw.Write(header); err != nil {
		return err
	}
	record := make([]string, len(header))
	for _, r := range rows {
		for i, h := range header {
			record[i] = r[h]
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}
	return bw.Flush()
}

func trimFields(fields []string) []string {
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}
	return fields
}

func dropTrailingEmpty(fields []string) []string {
	for len(fields) > 0 && fields[len(fields)-1] == "" {
		fields = fields[:len(fields)-1]
	}
	return fields
}

func isBlank(fields []string) bool {
	for _, f := range fields {
		if f != "" {
			return false
		}
	}
	return true
}
