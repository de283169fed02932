package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/MrJamesThe3rd/divvy/internal/encoding"
)

var ErrNoHeader = errors.New("no header with description, amount and payer columns")

// Row is one expense line read from an import file. Amount is normalised to
// a plain decimal such as "1234.56".
type Row struct {
	Line        int
	Description string
	Amount      string
	Payer       string
}

type column int

const (
	colDescription column = iota
	colAmount
	colPayer
)

// headers lists the accepted header names for each column, lower-cased.
var headers = map[string]column{
	"description": colDescription,
	"desc":        colDescription,
	"item":        colDescription,
	"descrição":   colDescription,
	"amount":      colAmount,
	"total":       colAmount,
	"cost":        colAmount,
	"montante":    colAmount,
	"valor":       colAmount,
	"payer":       colPayer,
	"paid by":     colPayer,
	"paid_by":     colPayer,
	"pagador":     colPayer,
}

// Parse reads a delimited expense file in any common encoding. Comma and
// semicolon separated files are accepted; with semicolons, amounts use the
// European "1.234,56" notation. Lines before the header are skipped.
func Parse(r io.Reader) ([]Row, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	br := bufio.NewReader(utf8r)
	comma := sniffDelimiter(br)

	reader := csv.NewReader(br)
	reader.Comma = comma
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	var (
		cols map[column]int
		rows  []Row
	)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}

		line, _ := reader.FieldPos(0)

		if cols == nil {
			cols = detectHeader(record)
			continue
		}

		if blank(record) {
			continue
		}

		rows = append(rows, Row{
			Line:        line,
			Description: cellValue(record, cols[colDescription]),
			Amount:      normaliseAmount(cellValue(record, cols[colAmount]), comma == ';'),
			Payer:       cellValue(record, cols[colPayer]),
		})
	}

	if cols == nil {
		return nil, ErrNoHeader
	}

	return rows, nil
}

// sniffDelimiter picks ';' when the first line holding a delimiter has more
// semicolons than commas.
func sniffDelimiter(br *bufio.Reader) rune {
	buf, _ := br.Peek(br.Size())

	for line := range bytes.Lines(buf) {
		semicolons := bytes.Count(line, []byte(";"))
		commas := bytes.Count(line, []byte(","))

		if semicolons+commas == 0 {
			continue
		}

		if semicolons > commas {
			return ';'
		}

		return ','
	}

	return ','
}

// detectHeader returns the column positions when record names all three
// columns, or nil otherwise.
func detectHeader(record []string) map[column]int {
	cols := make(map[column]int, 3)

	for i, cell := range record {
		c, ok := headers[strings.ToLower(strings.TrimSpace(cell))]
		if !ok {
			continue
		}

		if _, seen := cols[c]; !seen {
			cols[c] = i
		}
	}

	if len(cols) < 3 {
		return nil
	}

	return cols
}

func normaliseAmount(s string, european bool) string {
	s = strings.ReplaceAll(s, " ", "")

	if european {
		s = strings.ReplaceAll(s, ".", "")
		return strings.ReplaceAll(s, ",", ".")
	}

	return strings.ReplaceAll(s, ",", "")
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}

	return true
}

// cellValue safely gets a trimmed cell value from a row.
func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
