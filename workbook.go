package cfgxlsx

import "unicode/utf8"

const (
	MaxSheetNameLength = 31
	truncateSuffix     = "..."
)

func Build(doc *Document) *Workbook {
	var wb Workbook
	for _, sec := range doc.Sections {
		wb.AddSheet(sec.Name, sec.Rows)
	}
	return &wb
}

// AddSheet appends a sheet holding rows as two-column rows. Names are
// truncated to MaxSheetNameLength but otherwise kept as given; two sheets
// may end up with the same name.
func (wb *Workbook) AddSheet(name string, rows []KeyValue) {
	sheet := Sheet{
		Name: TruncateSheetName(name),
		Rows: make([][2]string, 0, len(rows)),
	}
	for _, kv := range rows {
		sheet.Rows = append(sheet.Rows, [2]string{kv.Key, kv.Value})
	}
	wb.Sheets = append(wb.Sheets, sheet)
}

// TruncateSheetName shortens names longer than MaxSheetNameLength characters
// to exactly that length, ending in "...".
func TruncateSheetName(name string) string {
	if utf8.RuneCountInString(name) <= MaxSheetNameLength {
		return name
	}
	keep := MaxSheetNameLength - len(truncateSuffix)
	runes := []rune(name)
	return string(runes[:keep]) + truncateSuffix
}

// Rows returns the total number of rows across all sheets.
func (wb *Workbook) Rows() int {
	n := 0
	for _, sheet := range wb.Sheets {
		n += len(sheet.Rows)
	}
	return n
}
