package structure

import (
	"encoding/csv"
	derrors "errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultSheet is the worksheet written for new .xlsx tables.
const DefaultSheet = "site structure"

// Column headers in table order.
var columns = []string{
	"Page_id",
	"Section_order", "Section",
	"Chapter_order", "Chapter",
	"Group_order", "Group",
	"Page_order", "Page",
	"Code",
}

var requiredColumns = []string{"page_id", "section_order", "chapter_order", "group_order", "page_order"}

// ReadTable loads structure rows from an .xlsx workbook or a .csv file.
// For workbooks, sheet selects the worksheet; empty means the first one.
func ReadTable(path, sheet string) ([]Row, error) {
	var (
		records [][]string
		err     error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		records, err = readWorkbook(path, sheet)
	case ".csv":
		records, err = readCSV(path)
	default:
		return nil, errors.ConfigError("unsupported structure table format").
			WithContext("path", path).
			Build()
	}
	if err != nil {
		return nil, err
	}
	return decodeRows(records)
}

func readWorkbook(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, wrapOpen(err, path)
	}
	defer func() { _ = f.Close() }()

	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStructure, "read worksheet").
			WithContext("path", path).
			WithContext("sheet", sheet).
			Build()
	}
	return rows, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, wrapOpen(err, path)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryStructure, "parse structure csv").
			WithContext("path", path).
			Build()
	}
	return records, nil
}

func wrapOpen(err error, path string) error {
	if derrors.Is(err, fs.ErrNotExist) {
		return errors.WrapError(err, errors.CategoryNotFound, "structure table not found").
			WithContext("path", path).
			UserAction().
			Build()
	}
	return errors.WrapError(err, errors.CategoryFileSystem, "open structure table").
		WithContext("path", path).
		Build()
}

func headerKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), " ", "_")
}

func decodeRows(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, errors.StructureError("structure table is empty").Build()
	}
	idx := map[string]int{}
	for i, h := range records[0] {
		idx[headerKey(h)] = i
	}
	for _, c := range requiredColumns {
		if _, ok := idx[c]; !ok {
			return nil, errors.StructureError("structure table is missing a column").
				WithContext("column", c).
				Build()
		}
	}

	var rows []Row
	for n, rec := range records[1:] {
		line := n + 2
		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(rec) {
				return ""
			}
			return strings.TrimSpace(rec[i])
		}
		if isBlank(rec) {
			continue
		}

		row := Row{
			PageID:  cell("page_id"),
			Section: cell("section"),
			Chapter: cell("chapter"),
			Group:   cell("group"),
			Page:    cell("page"),
			Code:    cell("code"),
		}
		for col, dst := range map[string]*int{
			"section_order": &row.SectionOrder,
			"chapter_order": &row.ChapterOrder,
			"group_order":   &row.GroupOrder,
			"page_order":    &row.PageOrder,
		} {
			v, err := parseOrder(cell(col))
			if err != nil {
				return nil, errors.WrapError(err, errors.CategoryStructure, "order is not an integer").
					WithContext("row", line).
					WithContext("column", col).
					UserAction().
					Build()
			}
			*dst = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func isBlank(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseOrder accepts integers and integral floats ("2.0" as spreadsheets may store it).
// Blank yields 0, which Validate rejects.
func parseOrder(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, strconv.ErrSyntax
	}
	return int(f), nil
}

func encodeRows(rows []Row) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, columns)
	for _, r := range rows {
		out = append(out, []string{
			r.PageID,
			strconv.Itoa(r.SectionOrder), r.Section,
			strconv.Itoa(r.ChapterOrder), r.Chapter,
			strconv.Itoa(r.GroupOrder), r.Group,
			strconv.Itoa(r.PageOrder), r.Page,
			r.Code,
		})
	}
	return out
}

// WriteTable stores rows in the format given by the path's extension.
func WriteTable(path, sheet string, rows []Row) error {
	records := encodeRows(rows)
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		err = writeWorkbook(path, sheet, records)
	case ".csv":
		err = writeCSV(path, records)
	default:
		return errors.ConfigError("unsupported structure table format").
			WithContext("path", path).
			Build()
	}
	if err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "write structure table").
			WithContext("path", path).
			Build()
	}
	return nil
}

func writeWorkbook(path, sheet string, records [][]string) error {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return err
	}
	for i, rec := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(rec))
		for j, v := range rec {
			// Keep orders numeric in the workbook.
			if n, err := strconv.Atoi(v); err == nil && i > 0 && isOrderColumn(j) {
				values[j] = n
				continue
			}
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func isOrderColumn(j int) bool {
	return strings.HasSuffix(columns[j], "_order")
}

func writeCSV(path string, records [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(records); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
