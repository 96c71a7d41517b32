package cfgxlsx // import "kastelo.dev/cfgxlsx"

type Document struct {
	Sections []Section
}

type Section struct {
	Name string
	Rows []KeyValue
}

type KeyValue struct {
	Key   string
	Value string
}

type Workbook struct {
	Sheets []Sheet
}

type Sheet struct {
	Name string
	Rows [][2]string
}
