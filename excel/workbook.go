package excel

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"kastelo.dev/cfgxlsx"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var ErrEmptyWorkbook = errors.New("workbook has no sheets")

// Convert parses configuration text from r and returns the workbook model
// together with its XLSX encoding.
func Convert(r io.Reader, opts Options) (*cfgxlsx.Workbook, []byte, error) {
	doc, err := cfgxlsx.Parse(r)
	if err != nil {
		return nil, nil, fmt.Errorf("parse: %w", err)
	}
	wb := cfgxlsx.Build(doc)
	bs, err := WorkbookXLSX(wb, opts)
	if err != nil {
		return nil, nil, err
	}
	return wb, bs, nil
}

// OversizeCells returns the number of keys and values in wb longer than a
// spreadsheet cell holds. WorkbookXLSX stores only the first
// excelize.TotalCellChars characters of those.
func OversizeCells(wb *cfgxlsx.Workbook) int {
	n := 0
	for _, sheet := range wb.Sheets {
		for _, row := range sheet.Rows {
			for _, v := range row {
				if utf8.RuneCountInString(v) > excelize.TotalCellChars {
					n++
				}
			}
		}
	}
	return n
}

func DocumentXLSX(doc *cfgxlsx.Document, opts Options) ([]byte, error) {
	return WorkbookXLSX(cfgxlsx.Build(doc), opts)
}

// WorkbookXLSX encodes wb with one worksheet per sheet, keys in column A and
// values in column B. Worksheet titles are derived from the sheet names so
// that every title is valid and distinct; see SheetTitles.
func WorkbookXLSX(wb *cfgxlsx.Workbook, opts Options) ([]byte, error) {
	if len(wb.Sheets) == 0 {
		return nil, ErrEmptyWorkbook
	}

	xlsx := excelize.NewFile()
	defer xlsx.Close()

	if err := setProperties(xlsx, opts.Properties); err != nil {
		return nil, err
	}

	titles := SheetTitles(wb.Sheets)
	for i, sheet := range wb.Sheets {
		var err error
		if i == 0 {
			err = renameSheet(xlsx, xlsx.GetSheetName(xlsx.GetActiveSheetIndex()), titles[i])
		} else {
			_, err = xlsx.NewSheet(titles[i])
		}
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet.Name, err)
		}
		if err := writeSheet(xlsx, titles[i], sheet.Rows, opts); err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet.Name, err)
		}
	}

	xlsx.SetActiveSheet(0)

	buf, err := xlsx.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setProperties(xlsx *excelize.File, props Properties) error {
	if err := xlsx.SetAppProps(&excelize.AppProperties{
		Application: props.Application,
		Company:     props.Company,
	}); err != nil {
		return fmt.Errorf("app properties: %w", err)
	}
	if props.Creator == "" && props.Title == "" {
		return nil
	}
	if err := xlsx.SetDocProps(&excelize.DocProperties{
		Creator:        props.Creator,
		LastModifiedBy: props.Creator,
		Title:          props.Title,
	}); err != nil {
		return fmt.Errorf("document properties: %w", err)
	}
	return nil
}

// renameSheet handles targets differing from source only in case, which
// excelize treats as no rename at all.
func renameSheet(xlsx *excelize.File, source, target string) error {
	if source == target {
		return nil
	}
	if strings.EqualFold(source, target) {
		const tmp = "cfgxlsx-rename"
		if err := xlsx.SetSheetName(source, tmp); err != nil {
			return err
		}
		source = tmp
	}
	return xlsx.SetSheetName(source, target)
}

func writeSheet(xlsx *excelize.File, sheet string, rows [][2]string, opts Options) error {
	for i, row := range rows {
		if err := xlsx.SetCellStr(sheet, cell('A', i+1), row[0]); err != nil {
			return err
		}
		if err := xlsx.SetCellStr(sheet, cell('B', i+1), row[1]); err != nil {
			return err
		}
	}

	if opts.KeyWidth > 0 {
		if err := xlsx.SetColWidth(sheet, "A", "A", opts.KeyWidth); err != nil {
			return err
		}
	}
	if opts.ValueWidth > 0 {
		if err := xlsx.SetColWidth(sheet, "B", "B", opts.ValueWidth); err != nil {
			return err
		}
	}

	last := len(rows)
	if style := keyStyle(opts); style != nil && last > 0 {
		id, err := xlsx.NewStyle(style)
		if err != nil {
			return err
		}
		if err := xlsx.SetCellStyle(sheet, cell('A', 1), cell('A', last), id); err != nil {
			return err
		}
	}
	if style := valueStyle(opts); style != nil && last > 0 {
		id, err := xlsx.NewStyle(style)
		if err != nil {
			return err
		}
		if err := xlsx.SetCellStyle(sheet, cell('B', 1), cell('B', last), id); err != nil {
			return err
		}
	}

	if opts.FreezeKeys {
		return xlsx.SetPanes(sheet, &excelize.Panes{
			Freeze:      true,
			XSplit:      1,
			TopLeftCell: "B1",
			ActivePane:  "topRight",
		})
	}
	return nil
}

// SheetTitles returns a worksheet title per sheet. Characters a spreadsheet
// title cannot hold are replaced by '_', empty names become "Sheet", and
// names already taken (compared case-insensitively) get a " (n)" suffix.
// Every title is at most cfgxlsx.MaxSheetNameLength characters.
func SheetTitles(sheets []cfgxlsx.Sheet) []string {
	used := make(map[string]struct{}, len(sheets))
	titles := make([]string, len(sheets))
	for i, sheet := range sheets {
		titles[i] = uniqueTitle(safeTitle(sheet.Name), used)
	}
	return titles
}

func safeTitle(name string) string {
	if name == "" {
		return "Sheet"
	}
	name = strings.Map(func(r rune) rune {
		if strings.ContainsRune(`:\/?*[]`, r) {
			return '_'
		}
		return r
	}, cfgxlsx.TruncateSheetName(name))
	if strings.HasPrefix(name, "'") {
		name = "_" + name[1:]
	}
	if strings.HasSuffix(name, "'") {
		name = name[:len(name)-1] + "_"
	}
	return name
}

func uniqueTitle(base string, used map[string]struct{}) string {
	cand := base
	for i := 2; ; i++ {
		key := strings.ToLower(cand)
		if _, ok := used[key]; !ok {
			used[key] = struct{}{}
			return cand
		}
		suffix := " (" + strconv.Itoa(i) + ")"
		cand = trimRunes(base, cfgxlsx.MaxSheetNameLength-utf8.RuneCountInString(suffix)) + suffix
	}
}

func trimRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// ReadXLSX reads the first two columns of every worksheet in an XLSX
// container. Worksheet titles become sheet names.
func ReadXLSX(r io.Reader) (*cfgxlsx.Workbook, error) {
	xlsx, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer xlsx.Close()

	var wb cfgxlsx.Workbook
	for _, name := range xlsx.GetSheetList() {
		rows, err := xlsx.GetRows(name)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", name, err)
		}
		sheet := cfgxlsx.Sheet{Name: name}
		for _, row := range rows {
			var kv [2]string
			copy(kv[:], row)
			sheet.Rows = append(sheet.Rows, kv)
		}
		wb.Sheets = append(wb.Sheets, sheet)
	}
	return &wb, nil
}

func ReadXLSXBytes(bs []byte) (*cfgxlsx.Workbook, error) {
	return ReadXLSX(bytes.NewReader(bs))
}
