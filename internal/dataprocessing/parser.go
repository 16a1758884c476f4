package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// missingTokens are the cell values read as "no value". Matching is exact and
// case-sensitive, like the NA token list of the tools that produce these files.
var missingTokens = map[string]struct{}{
	"":         {},
	"null":     {},
	"NULL":     {},
	"NaN":      {},
	"nan":      {},
	"-NaN":     {},
	"-nan":     {},
	"NA":       {},
	"N/A":      {},
	"n/a":      {},
	"#N/A":     {},
	"#NA":      {},
	"#N/A N/A": {},
	"<NA>":     {},
	"None":     {},
	"1.#IND":   {},
	"-1.#IND":  {},
	"1.#QNAN":  {},
	"-1.#QNAN": {},
}

// IsMissing reports whether a raw cell denotes a missing value
func IsMissing(cell string) bool {
	_, ok := missingTokens[cell]
	return ok
}

// candidate delimiters tried by the fallback pass, in preference order
var sniffDelimiters = []rune{'\t', ',', ';', '|'}

// sniffLines is how many leading lines the delimiter sniffer inspects
const sniffLines = 20

// rawTable is a parsed delimited file before typing
type rawTable struct {
	Header    []string
	Records   [][]string
	Delimiter rune
	Skipped   int
	Fallback  bool
}

// parseStrict reads tab-separated UTF-8 text. Any malformed row fails the parse.
func parseStrict(data []byte) (*rawTable, error) {
	data = stripBOM(data)
	if !utf8.Valid(data) {
		return nil, errors.New("content is not valid UTF-8")
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = '\t'
	r.FieldsPerRecord = 0

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &rawTable{Header: cleanHeader(header), Delimiter: '\t'}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// parseFallback re-reads the file leniently: legacy encodings are decoded, the
// delimiter is inferred, quotes are lazy and malformed rows are skipped.
func parseFallback(data []byte) (*rawTable, error) {
	data, err := decodeText(data)
	if err != nil {
		return nil, err
	}

	delim := sniffDelimiter(data)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = delim
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("file is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	t := &rawTable{Header: cleanHeader(header), Delimiter: delim, Fallback: true}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				t.Skipped++
				continue
			}
			return nil, err
		}
		if len(rec) != len(t.Header) {
			t.Skipped++
			continue
		}
		t.Records = append(t.Records, rec)
	}
	return t, nil
}

// decodeText returns UTF-8 text without a byte order mark. Input that is not
// valid UTF-8 is decoded as Windows-1252.
func decodeText(data []byte) ([]byte, error) {
	if utf8.Valid(data) {
		out, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), data)
		if err != nil {
			return nil, fmt.Errorf("decode utf-8: %w", err)
		}
		return out, nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return nil, fmt.Errorf("decode windows-1252: %w", err)
	}
	return out, nil
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
}

// sniffDelimiter picks the candidate that splits the leading lines into the
// same number of fields (at least two) most consistently. Ties go to the
// earlier candidate; tab wins when nothing fits.
func sniffDelimiter(data []byte) rune {
	lines := leadingLines(data, sniffLines)
	if len(lines) == 0 {
		return '\t'
	}

	best, bestScore := '\t', 0
	for _, d := range sniffDelimiters {
		want := strings.Count(lines[0], string(d))
		if want == 0 {
			continue
		}
		score := 0
		for _, line := range lines {
			if strings.Count(line, string(d)) == want {
				score++
			}
		}
		if score > bestScore {
			best, bestScore = d, score
		}
	}
	return best
}

func leadingLines(data []byte, n int) []string {
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == n {
			break
		}
	}
	return lines
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(h)
	}
	return out
}
