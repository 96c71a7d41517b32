package main

import (
	"fmt"
	"path/filepath"

	"kastelo.dev/cfgxlsx"
)

func (c *cli) diff() error {
	a, err := readDocument(*c.diffA, *c.diffCharset)
	if err != nil {
		return err
	}
	b, err := readDocument(*c.diffB, *c.diffCharset)
	if err != nil {
		return err
	}

	patch := cfgxlsx.Diff(filepath.Base(*c.diffA), a, b)
	if patch == "" {
		return nil
	}
	fmt.Fprint(c.stdout, patch)
	return errDiffer
}
