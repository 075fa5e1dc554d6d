package dataset

import (
	"bytes"
	"encoding/csv"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func trimBOM(b []byte) []byte {
	return bytes.TrimPrefix(b, utf8BOM)
}

// readTable splits a headered CSV body into its header and data rows. Each
// line is parsed on its own, so a malformed line is dropped without taking
// the following ones with it. Rows keep their own length; callers decide
// how to treat mismatches.
func readTable(body []byte) ([]string, [][]string, bool) {
	body = bytes.TrimSpace(trimBOM(body))
	if len(body) == 0 {
		return nil, nil, false
	}

	lines := strings.Split(string(body), "\n")
	header, ok := parseLine(lines[0])
	if !ok {
		return nil, nil, false
	}
	for i, h := range header {
		header[i] = strings.TrimSpace(h)
	}

	records := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		if rec, ok := parseLine(line); ok {
			records = append(records, rec)
		}
	}
	return header, records, true
}

// parseLine reads one CSV record. Blank and unreadable lines report false.
func parseLine(line string) ([]string, bool) {
	line = strings.TrimRight(line, "\r")
	if strings.TrimSpace(line) == "" {
		return nil, false
	}
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rec, err := r.Read()
	if err != nil {
		return nil, false
	}
	return rec, true
}

// row maps header names to values of one record.
type row map[string]string

func newRow(header, values []string) row {
	r := make(row, len(header))
	for i, h := range header {
		if i < len(values) {
			r[h] = values[i]
		}
	}
	return r
}

func (r row) text(col string) string {
	return strings.TrimSpace(r[col])
}
