// Package dataset reads the course catalog table.
//
// The table has one row per course (the training export repeats rows, one
// per preference combination) with at least the columns Year, Course Title,
// Course Code, Credits and Status. Columns are addressed by header name, so
// their order does not matter and extra columns are ignored.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"attendance/internal/model"

	"github.com/xuri/excelize/v2"
)

// Format is the encoding of a dataset file
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

const (
	colYear    = "year"
	colTitle   = "course title"
	colCode    = "course code"
	colCredits = "credits"
	colStatus  = "status"
)

var requiredColumns = []string{colYear, colTitle, colCode, colCredits, colStatus}

// ErrEmptyDataset is returned when a table has a header but no course rows
var ErrEmptyDataset = errors.New("dataset contains no courses")

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported dataset extension for %q (want .csv or .xlsx)", path)
}

// Read parses a whole dataset. sheet is only used for xlsx; empty means
// the first sheet.
func Read(r io.Reader, format Format, sheet string) ([]model.CourseRecord, error) {
	var rows [][]string
	var err error
	switch format {
	case FormatCSV:
		rows, err = readCSV(r)
	case FormatXLSX:
		rows, err = readXLSX(r, sheet)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return parseRows(rows)
}

func readCSV(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading csv: %w", err)
	}
	return rows, nil
}

func readXLSX(r io.Reader, sheet string) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("workbook has no sheets")
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
	}
	return rows, nil
}

func parseRows(rows [][]string) ([]model.CourseRecord, error) {
	if len(rows) == 0 {
		return nil, errors.New("dataset has no header row")
	}
	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("dataset is missing column %q", col)
		}
	}

	records := make([]model.CourseRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		if blank(row) {
			continue
		}
		get := func(col string) string {
			i := index[col]
			if i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		year, err := parseWhole(get(colYear))
		if err != nil || year < 1 {
			return nil, fmt.Errorf("row %d: invalid year %q", line, get(colYear))
		}
		credits, err := parseWhole(get(colCredits))
		if err != nil || credits < 1 {
			return nil, fmt.Errorf("row %d: invalid credits %q", line, get(colCredits))
		}
		status, err := model.ParseStatus(get(colStatus))
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		code := get(colCode)
		if code == "" {
			return nil, fmt.Errorf("row %d: empty course code", line)
		}

		records = append(records, model.CourseRecord{
			Year:    year,
			Code:    code,
			Title:   get(colTitle),
			Credits: credits,
			Status:  status,
		})
	}
	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	return records, nil
}

// parseWhole accepts "2" as well as "2.0", which spreadsheet exports
// commonly produce for integer columns.
func parseWhole(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%q is not a whole number", s)
	}
	return int(f), nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
