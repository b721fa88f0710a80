// Package keywords loads the keyword list that scheduled and batch runs draw
// from. Spreadsheets are read with excelize; anything else is parsed as CSV.
package keywords

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"blogagent/internal/core"

	"github.com/xuri/excelize/v2"
)

// columnNames are the header names searched, in order, for the keyword
// column. Without a match the first column is used.
var columnNames = []string{"kwName", "Keyword", "keyword"}

// ErrUnsupportedFormat is returned for legacy binary .xls workbooks.
var ErrUnsupportedFormat = errors.New("unsupported keyword file format")

// Source is an ordered, de-duplicated keyword list.
type Source struct {
	path     string
	keywords []string
}

// Load reads path. A missing file or a file without keywords returns an error
// wrapping core.ErrNoKeywords.
func Load(path string) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", core.ErrNoKeywords, path, err)
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		rows, err = readSpreadsheet(path)
	case ".xls":
		return nil, fmt.Errorf("%w: %s is a legacy .xls workbook, save it as .xlsx or .csv", ErrUnsupportedFormat, path)
	default:
		rows, err = readCSV(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read keywords from %s: %w", path, err)
	}

	kws := extract(rows)
	if len(kws) == 0 {
		return nil, fmt.Errorf("%w: %s", core.ErrNoKeywords, path)
	}
	return &Source{path: path, keywords: kws}, nil
}

// New wraps an in-memory list with the same cleaning rules as Load.
func New(kws ...string) (*Source, error) {
	rows := make([][]string, 0, len(kws)+1)
	rows = append(rows, []string{"keyword"})
	for _, kw := range kws {
		rows = append(rows, []string{kw})
	}
	cleaned := extract(rows)
	if len(cleaned) == 0 {
		return nil, core.ErrNoKeywords
	}
	return &Source{keywords: cleaned}, nil
}

// Keywords returns a copy of the list.
func (s *Source) Keywords() []string {
	out := make([]string, len(s.keywords))
	copy(out, s.keywords)
	return out
}

// Len returns the number of keywords.
func (s *Source) Len() int {
	return len(s.keywords)
}

// Path returns the file the source was loaded from, if any.
func (s *Source) Path() string {
	return s.path
}

// Random picks one keyword uniformly.
func (s *Source) Random() string {
	return s.keywords[rand.IntN(len(s.keywords))]
}

func readSpreadsheet(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}
	return f.GetRows(sheets[0])
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		rows = append(rows, rec)
	}
	return rows, nil
}

// extract treats the first row as a header and returns the trimmed,
// non-empty, de-duplicated values of the keyword column.
func extract(rows [][]string) []string {
	if len(rows) < 2 {
		return nil
	}
	col := keywordColumn(rows[0])

	seen := make(map[string]bool)
	var out []string
	for _, row := range rows[1:] {
		if col >= len(row) {
			continue
		}
		kw := strings.TrimSpace(row[col])
		if kw == "" || seen[kw] {
			continue
		}
		seen[kw] = true
		out = append(out, kw)
	}
	return out
}

func keywordColumn(header []string) int {
	for _, name := range columnNames {
		for i, h := range header {
			if strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")) == name {
				return i
			}
		}
	}
	return 0
}
