// Package reader loads bank export files as text. CSV exports arrive in a
// mix of encodings (UTF-8 with and without BOM, latin-1, cp1252), and legacy
// spreadsheet exports (.xls OLE2, .xlsx) are flattened to CSV text so that
// the bank parsers only ever see lines of comma-separated fields.
package reader

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

var (
	oleMagic = []byte{0xd0, 0xcf, 0x11, 0xe0, 0xa1, 0xb1, 0x1a, 0xe1}
	zipMagic = []byte("PK\x03\x04")
)

// exportExtensions are the file extensions considered bank exports when
// scanning a directory.
var exportExtensions = []string{".csv", ".xls", ".xlsx"}

// ReadFile returns the file's contents as text. Spreadsheets are detected by
// magic bytes (falling back to the extension) and flattened to CSV; anything
// else is decoded as UTF-8 with a latin-1/cp1252 fallback.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case bytes.HasPrefix(data, oleMagic):
		return readXLS(path)
	case bytes.HasPrefix(data, zipMagic) && ext == ".xlsx":
		return readXLSX(path)
	case ext == ".xls":
		return readXLS(path)
	case ext == ".xlsx":
		return readXLSX(path)
	}
	return decodeText(data), nil
}

// FindExports expands the given paths into a flat list of export files.
// Directories are scanned non-recursively for known export extensions; file
// paths are included as-is when they exist. The result is sorted for a
// stable processing order.
func FindExports(paths []string) []string {
	var files []string
	seen := make(map[string]bool)

	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			files = append(files, p)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		for _, ext := range exportExtensions {
			for _, pattern := range []string{"*" + ext, "*" + strings.ToUpper(ext)} {
				matches, _ := filepath.Glob(filepath.Join(p, pattern))
				for _, m := range matches {
					add(m)
				}
			}
		}
	}

	sort.Strings(files)
	return files
}

// decodeText decodes raw bytes to a string, stripping a UTF-8 BOM. Content
// that is not valid UTF-8 is decoded as latin-1, which maps every byte, so
// text decoding never fails.
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, []byte{0xef, 0xbb, 0xbf})

	if utf8.Valid(data) {
		return string(data)
	}

	decoded, _ := charmap.ISO8859_1.NewDecoder().Bytes(data)
	return string(decoded)
}

// readXLS flattens the first sheet of a legacy OLE2 workbook to CSV text.
// Columns are padded from zero so rows with leading empty cells keep their
// field positions.
func readXLS(path string) (string, error) {
	wb, err := xls.Open(path, "utf-8")
	if err != nil {
		return "", fmt.Errorf("reader: open xls %s: %w", path, err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return "", fmt.Errorf("reader: xls %s has no sheets", path)
	}

	var sb strings.Builder
	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			sb.WriteByte('\n')
			continue
		}
		for j := 0; j < row.LastCol(); j++ {
			if j > 0 {
				sb.WriteByte(',')
			}
			if j < row.FirstCol() {
				continue
			}
			sb.WriteString(csvCell(xlsCellValue(row.Col(j))))
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// xlsCellValue normalizes one cell of an OLE2 workbook. The xls library
// renders cells carrying a builtin date number format as RFC 3339
// timestamps; those are re-rendered as "02 Jan 2006" so they land on a
// supported date layout, matching the xlsx conversion. Everything else
// passes through unchanged.
func xlsCellValue(v string) string {
	if len(v) < 20 || v[4] != '-' || v[10] != 'T' {
		return v
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.Format("02 Jan 2006")
	}
	return v
}

// dateNumFmtIDs are the builtin Excel number formats that render a serial
// number as a date.
var dateNumFmtIDs = map[int]bool{
	14: true, 15: true, 16: true, 17: true, 22: true,
	27: true, 28: true, 29: true, 30: true, 31: true,
	32: true, 33: true, 34: true, 35: true, 36: true,
	45: true, 46: true, 47: true,
}

// readXLSX flattens the first sheet of an xlsx workbook to CSV text.
// Date-formatted cells are rendered as "02 Jan 2006" so they land on a
// supported date layout regardless of the workbook's display format.
func readXLSX(path string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("reader: open xlsx %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("reader: xlsx %s has no sheets", path)
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", fmt.Errorf("reader: read xlsx %s: %w", path, err)
	}

	var sb strings.Builder
	for i, row := range rows {
		for j, cell := range row {
			if j > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(csvCell(xlsxCellValue(f, sheet, i, j, cell)))
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// xlsxCellValue returns the cell's text, rendering date-styled serial
// numbers as "02 Jan 2006". Non-date cells pass through formatted.
func xlsxCellValue(f *excelize.File, sheet string, row, col int, formatted string) string {
	axis, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return formatted
	}
	styleID, err := f.GetCellStyle(sheet, axis)
	if err != nil {
		return formatted
	}
	style, err := f.GetStyle(styleID)
	if err != nil || style == nil || !dateNumFmtIDs[style.NumFmt] {
		return formatted
	}

	raw, err := f.GetCellValue(sheet, axis, excelize.Options{RawCellValue: true})
	if err != nil || raw == "" {
		return formatted
	}
	serial, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return formatted
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return formatted
	}
	return t.Format("02 Jan 2006")
}

// csvCell quotes a value for inclusion in a CSV line when it contains a
// delimiter, quote, or newline.
func csvCell(v string) string {
	if strings.ContainsAny(v, ",\"\n") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}
