package tabular

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"GtnPortal/internal/apperr"
)

var candidateDelimiters = []rune{';', ',', '\t'}

// readCSV decodes data (UTF-8, falling back to Windows-1252 for legacy Excel
// exports), sniffs the delimiter from the header line and parses all rows.
func readCSV(data []byte) ([][]string, string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
		if err != nil {
			return nil, "", apperr.Wrap(apperr.KindUndecodable, "csv is neither UTF-8 nor Windows-1252", err)
		}
		data = decoded
	}

	delim := SniffDelimiter(headerLine(data))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", apperr.Wrap(apperr.KindUndecodable, "malformed csv", err)
		}
		rows = append(rows, rec)
	}
	return rows, string(delim), nil
}

// SniffDelimiter picks the most frequent of ';', ',' and tab outside quotes.
// Ties resolve in that order; a line without any candidate yields ','.
func SniffDelimiter(line string) rune {
	counts := make(map[rune]int, len(candidateDelimiters))
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if inQuotes {
			continue
		}
		for _, d := range candidateDelimiters {
			if r == d {
				counts[d]++
			}
		}
	}
	best, bestCount := ',', 0
	for _, d := range candidateDelimiters {
		if counts[d] > bestCount {
			best, bestCount = d, counts[d]
		}
	}
	return best
}

// headerLine returns the first non-blank line of data.
func headerLine(data []byte) string {
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			return strings.TrimRight(line, "\r")
		}
	}
	return ""
}
