package main

import (
	"os"

	"kastelo.dev/cfgxlsx"
	"kastelo.dev/cfgxlsx/excel"
)

func (c *cli) inspect() error {
	fd, err := os.Open(*c.inspectFile)
	if err != nil {
		return err
	}
	defer fd.Close()

	wb, err := excel.ReadXLSX(fd)
	if err != nil {
		return err
	}
	return cfgxlsx.Format(c.stdout, wb.Document())
}
