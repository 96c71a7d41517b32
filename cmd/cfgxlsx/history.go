package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"
)

func (c *cli) listHistory(ctx context.Context) error {
	store, err := c.openHistory(ctx)
	if err != nil {
		return err
	}
	if store == nil {
		return errors.New("no history database configured (--history-dsn)")
	}
	defer store.Close()

	recs, err := store.Recent(ctx, *c.historyLimit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CREATED\tNAME\tSOURCE\tSHEETS\tROWS\tBYTES")
	for _, rec := range recs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\n", rec.CreatedAt.Local().Format(time.DateTime), rec.Name, rec.Source, rec.Sheets, rec.Rows, rec.Bytes)
	}
	return tw.Flush()
}
