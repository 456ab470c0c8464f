package dataset

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/zeebo/xxh3"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// LoadOptions controls how a dataset file is read.
type LoadOptions struct {
	// Delimiter for CSV. If 0, picks '\t' for .tsv and ',' otherwise.
	Delimiter rune
	// Sheet selects the XLSX worksheet by name; empty means the first sheet.
	Sheet string
}

// File is a loaded dataset file.
type File struct {
	Path     string
	Checksum string // xxh3-64 of the raw bytes, hex
	Table    *Table
}

// requiredColumns must be present for a file to load.
var requiredColumns = []string{ColYear, ColMonth, ColStation}

// Load reads a dataset, choosing the reader by file extension.
func Load(path string, opt LoadOptions) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	var t *Table
	if strings.HasSuffix(strings.ToLower(path), ".xlsx") {
		t, err = parseXLSX(path, data, opt)
	} else {
		t, err = parseCSV(path, data, opt)
	}
	if err != nil {
		return nil, err
	}
	return &File{Path: path, Checksum: checksum(data), Table: t}, nil
}

// LoadCSV reads a delimited file.
func LoadCSV(path string, opt LoadOptions) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	return parseCSV(path, data, opt)
}

// LoadXLSX reads the selected worksheet of an .xlsx workbook.
func LoadXLSX(path string, opt LoadOptions) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	return parseXLSX(path, data, opt)
}

func checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxh3.Hash(data))
}

func sniffDelimiter(path string) rune {
	if strings.HasSuffix(strings.ToLower(path), ".tsv") {
		return '\t'
	}
	return ','
}

func parseCSV(path string, data []byte, opt LoadOptions) (*Table, error) {
	delim := opt.Delimiter
	if delim == 0 {
		delim = sniffDelimiter(path)
	}
	// Strip a UTF-8 BOM if the exporter left one.
	src := transform.NewReader(bytes.NewReader(data), unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	r := csv.NewReader(src)
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &DataLoadError{Path: path, Err: errors.New("empty file")}
		}
		return nil, &DataLoadError{Path: path, Err: fmt.Errorf("read header: %w", err)}
	}
	var rows [][]string
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &DataLoadError{Path: path, Row: len(rows) + 1, Err: err}
		}
		if len(rec) != len(header) {
			return nil, &DataLoadError{Path: path, Row: len(rows) + 1,
				Err: fmt.Errorf("has %d fields, want %d", len(rec), len(header))}
		}
		rows = append(rows, rec)
	}
	return buildTable(path, header, rows)
}

func parseXLSX(path string, data []byte, opt LoadOptions) (*Table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: fmt.Errorf("open xlsx: %w", err)}
	}
	defer f.Close()
	sheet := opt.Sheet
	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, &DataLoadError{Path: path, Err: errors.New("workbook has no sheets")}
		}
		sheet = sheets[0]
	}
	all, err := f.GetRows(sheet)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	if len(all) == 0 {
		return nil, &DataLoadError{Path: path, Err: fmt.Errorf("sheet %q is empty", sheet)}
	}
	header := all[0]
	rows := make([][]string, 0, len(all)-1)
	for _, rec := range all[1:] {
		if blankRow(rec) {
			continue
		}
		if len(rec) > len(header) {
			return nil, &DataLoadError{Path: path, Row: len(rows) + 1,
				Err: fmt.Errorf("has %d fields, want %d", len(rec), len(header))}
		}
		// excelize drops trailing empty cells
		if len(rec) < len(header) {
			tmp := make([]string, len(header))
			copy(tmp, rec)
			rec = tmp
		}
		rows = append(rows, rec)
	}
	return buildTable(path, header, rows)
}

// blankRow reports a spreadsheet row with no content, which the CSV
// reader would have skipped as an empty line.
func blankRow(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func buildTable(path string, header []string, rows [][]string) (*Table, error) {
	names := make([]string, len(header))
	pos := map[string]int{}
	for i, h := range header {
		names[i] = norm.NFC.String(strings.TrimSpace(h))
		if _, dup := pos[names[i]]; dup {
			return nil, &DataLoadError{Path: path, Column: names[i], Err: errors.New("duplicate column")}
		}
		pos[names[i]] = i
	}
	for _, req := range requiredColumns {
		if _, ok := pos[req]; !ok {
			return nil, &DataLoadError{Path: path, Column: req, Err: errors.New("required column missing")}
		}
	}

	cols := make([]*Column, len(names))
	for j, name := range names {
		switch name {
		case ColYear, ColMonth:
			vals := make([]int, len(rows))
			for i, rec := range rows {
				v, err := parseInt(rec[j])
				if err != nil {
					return nil, &DataLoadError{Path: path, Row: i + 1, Column: name, Err: err}
				}
				vals[i] = v
			}
			cols[j] = NewIntColumn(name, vals)
		case ColStation:
			vals := make([]string, len(rows))
			for i, rec := range rows {
				vals[i] = norm.NFC.String(strings.TrimSpace(rec[j]))
				if vals[i] == "" {
					return nil, &DataLoadError{Path: path, Row: i + 1, Column: name, Err: errors.New("empty station")}
				}
			}
			cols[j] = NewTextColumn(name, vals)
		default:
			vals := make([]string, len(rows))
			for i, rec := range rows {
				vals[i] = rec[j]
			}
			cols[j] = NewTextColumn(name, vals)
		}
	}
	t, err := NewTable(cols...)
	if err != nil {
		return nil, &DataLoadError{Path: path, Err: err}
	}
	return t, nil
}

// parseInt accepts plain integers and integral floats such as "2013.0".
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", s)
	}
	return int(f), nil
}

// PathKey returns the cleaned absolute form of path used for cache lookups.
func PathKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}
