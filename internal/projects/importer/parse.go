// Package importer reads the weekly phase progress CSV exported from
// Excel or LibreOffice and checks it against the projects and phases known
// to the database.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/ekip-platform/ekip-api/internal/projects/domain"
	"golang.org/x/text/encoding/charmap"
)

const (
	ColProject  = "Projeto"
	ColPhase    = "Fase"
	ColProgress = "Progresso"
	ColExpected = "Progresso esperado"
	ColOrder    = "Ordem"
	ColWeek     = "Semana"
)

var requiredColumns = []string{ColProject, ColPhase, ColProgress, ColExpected, ColOrder, ColWeek}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Row holds the raw cell values of one data line.
type Row struct {
	Line     int
	Project  string
	Phase    string
	Progress string
	Expected string
	Order    string
	Week     string
}

type Parsed struct {
	Rows      []Row
	Delimiter rune
	Encoding  string
}

// Parse decodes and splits the file. Blank lines are skipped and do not
// count towards row numbers.
func Parse(r io.Reader) (*Parsed, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	text, encoding, err := decode(raw)
	if err != nil {
		return nil, err
	}

	header, ok := firstLine(text)
	if !ok {
		return nil, domain.ErrEmptyFile
	}
	delim := DetectDelimiter(header)

	cr := csv.NewReader(strings.NewReader(text))
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	cols, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		c = strings.TrimSpace(c)
		if _, seen := idx[c]; !seen {
			idx[c] = i
		}
	}
	var missing []string
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrMissingColumns, strings.Join(missing, ", "))
	}

	out := &Parsed{Delimiter: delim, Encoding: encoding}
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		if blank(rec) {
			continue
		}
		line++
		cell := func(name string) string {
			if i := idx[name]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		out.Rows = append(out.Rows, Row{
			Line:     line,
			Project:  cell(ColProject),
			Phase:    cell(ColPhase),
			Progress: cell(ColProgress),
			Expected: cell(ColExpected),
			Order:    cell(ColOrder),
			Week:     cell(ColWeek),
		})
	}
	if len(out.Rows) == 0 {
		return nil, domain.ErrEmptyFile
	}
	return out, nil
}

// DetectDelimiter picks the candidate that occurs most often in the header,
// preferring comma, then semicolon, then tab on ties.
func DetectDelimiter(header string) rune {
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(header, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}

// decode returns the file as UTF-8. Files that are not valid UTF-8 are
// read as Windows-1252, which is what Excel writes on Portuguese locales.
func decode(raw []byte) (string, string, error) {
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), "utf-8", nil
	}
	out, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return "", "", fmt.Errorf("decode csv: %w", err)
	}
	return string(out), "windows-1252", nil
}

func firstLine(text string) (string, bool) {
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			return strings.TrimRight(l, "\r"), true
		}
	}
	return "", false
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
