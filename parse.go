package cfgxlsx

import (
	"bufio"
	"io"
	"strings"
)

const maxLineLength = 16 << 20

// Parse reads configuration text from r. Lines that cannot be interpreted
// are dropped; the only error returned is a read error from r.
func Parse(r io.Reader) (*Document, error) {
	var doc Document
	var cur *string
	var rows []KeyValue

	flush := func() {
		if cur != nil && len(rows) > 0 {
			doc.Sections = append(doc.Sections, Section{Name: *cur, Rows: rows})
		}
		rows = nil
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), maxLineLength)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())

		if strings.HasPrefix(line, "[") {
			flush()
			name := sectionName(line)
			cur = &name
			continue
		}

		kv := strings.Split(line, "=")
		if len(kv) != 2 {
			continue
		}
		rows = append(rows, KeyValue{Key: kv[0], Value: kv[1]})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	flush()
	return &doc, nil
}

func ParseString(s string) *Document {
	// Reading from a strings.Reader cannot fail.
	doc, _ := Parse(strings.NewReader(s))
	return doc
}

// sectionName returns the text between the leading '[' and the last ']'
// of line, or the rest of the line when there is no closing bracket.
func sectionName(line string) string {
	name := line[1:]
	if idx := strings.LastIndex(name, "]"); idx >= 0 {
		name = name[:idx]
	}
	return name
}
