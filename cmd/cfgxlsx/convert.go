package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
	"kastelo.dev/cfgxlsx"
	"kastelo.dev/cfgxlsx/excel"
	"kastelo.dev/cfgxlsx/history"
)

func (c *cli) convert(ctx context.Context) error {
	opts, err := c.options()
	if err != nil {
		return err
	}

	input := c.stdin
	upload := ""
	if *c.convertInput != "" {
		fd, err := os.Open(*c.convertInput)
		if err != nil {
			return err
		}
		defer fd.Close()
		input = fd
		upload = filepath.Base(*c.convertInput)
	}

	r, err := cfgxlsx.NewDecodingReader(input, *c.convertCharset)
	if err != nil {
		return err
	}
	wb, bs, err := excel.Convert(r, opts)
	if err != nil {
		return err
	}

	if n := excel.OversizeCells(wb); n > 0 {
		c.log.Warn().Int("cells", n).Int("limit", excelize.TotalCellChars).Msg("Truncated oversize cells")
	}

	out := *c.convertOutput
	if out == "" {
		out = filepath.Join(*c.convertDir, cfgxlsx.FinalName(cfgxlsx.DefaultName(c.now()), upload))
	}
	if err := os.WriteFile(out, bs, 0o644); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	c.log.Info().Str("file", out).Int("sheets", len(wb.Sheets)).Int("rows", wb.Rows()).Msg("Wrote workbook")
	fmt.Fprintln(c.stdout, out)

	c.record(ctx, history.Record{
		Name:      filepath.Base(out),
		Source:    sourceName(upload),
		Sheets:    len(wb.Sheets),
		Rows:      wb.Rows(),
		Bytes:     len(bs),
		CreatedAt: c.now(),
	})
	return nil
}

func sourceName(upload string) string {
	if upload == "" {
		return "stdin"
	}
	return upload
}

// record stores rec in the configured history, if any. Failures are logged
// and do not fail the conversion.
func (c *cli) record(ctx context.Context, rec history.Record) {
	store, err := c.openHistory(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("Opening history")
		return
	}
	if store == nil {
		return
	}
	defer store.Close()
	if err := store.Record(ctx, rec); err != nil {
		c.log.Warn().Err(err).Msg("Recording conversion")
	}
}

func readDocument(path, charset string) (*cfgxlsx.Document, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	var r io.Reader = fd
	if r, err = cfgxlsx.NewDecodingReader(r, charset); err != nil {
		return nil, err
	}
	return cfgxlsx.Parse(r)
}
