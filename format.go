package cfgxlsx

import (
	"bufio"
	"io"
	"strings"
)

// Format writes doc back as configuration text. Sections are separated by
// an empty line.
func Format(w io.Writer, doc *Document) error {
	bw := bufio.NewWriter(w)
	for i, sec := range doc.Sections {
		if i > 0 {
			bw.WriteString("\n")
		}
		bw.WriteString("[" + sec.Name + "]\n")
		for _, kv := range sec.Rows {
			bw.WriteString(kv.Key + "=" + kv.Value + "\n")
		}
	}
	return bw.Flush()
}

func (d *Document) String() string {
	var b strings.Builder
	_ = Format(&b, d)
	return b.String()
}

// Document returns the sheets of wb as a Document, the inverse of Build
// for sheets whose names were not truncated.
func (wb *Workbook) Document() *Document {
	var doc Document
	for _, sheet := range wb.Sheets {
		sec := Section{Name: sheet.Name}
		for _, row := range sheet.Rows {
			sec.Rows = append(sec.Rows, KeyValue{Key: row[0], Value: row[1]})
		}
		doc.Sections = append(doc.Sections, sec)
	}
	return &doc
}
