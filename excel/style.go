package excel

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/xuri/excelize/v2"
)

func cell(col rune, row int) string {
	return fmt.Sprintf("%c%d", col, row)
}

func fontBold() *excelize.Style {
	return &excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	}
}

func verticalTop() *excelize.Style {
	return &excelize.Style{
		Alignment: &excelize.Alignment{
			Vertical: "top",
		},
	}
}

func wrapText() *excelize.Style {
	return &excelize.Style{
		Alignment: &excelize.Alignment{
			WrapText: true,
		},
	}
}

func mergeStyles(ext ...*excelize.Style) *excelize.Style {
	if len(ext) == 0 {
		return nil
	}
	for _, e := range ext[1:] {
		_ = mergo.Merge(ext[0], e, mergo.WithOverride)
	}
	return ext[0]
}

// keyStyle and valueStyle return nil when opts ask for no styling of the
// column.
func keyStyle(opts Options) *excelize.Style {
	var parts []*excelize.Style
	if opts.BoldKeys {
		parts = append(parts, fontBold())
	}
	if opts.WrapValues {
		parts = append(parts, verticalTop())
	}
	return mergeStyles(parts...)
}

func valueStyle(opts Options) *excelize.Style {
	if !opts.WrapValues {
		return nil
	}
	return mergeStyles(verticalTop(), wrapText())
}
