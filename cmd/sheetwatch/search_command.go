package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetwatch/internal/config"
	"sheetwatch/internal/store"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "search <vendor-code>",
		Short: "Find analyses by vendor code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				records, err := st.SearchByVendor(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No analyses for vendor %s\n", args[0])
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Filename", "Vendor", "Status", "Created"},
					analysisRows(records),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft},
				))
				return nil
			})
		},
	}
}
