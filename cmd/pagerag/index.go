package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/pagerag/internal/domain/page"
)

func newIndexCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "index <pages.txt>",
		Short: "Rebuild the page index from a delimited page file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pages, err := page.Load(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			a := newApp(ctx, c.cfg, c.logger, false)
			defer a.Close()

			if err := a.index.CreateIndex(ctx); err != nil {
				return err
			}
			n, err := a.index.IndexPages(ctx, pages)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d pages\n", n)
			return nil
		},
	}
}
