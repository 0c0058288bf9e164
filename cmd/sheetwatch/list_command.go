package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sheetwatch/internal/config"
	"sheetwatch/internal/store"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var offset int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored analyses, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				records, err := st.List(cmd.Context(), limit, offset)
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No analyses stored")
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

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum rows to show (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Rows to skip")
	return cmd
}

func analysisRows(records []*store.Analysis) [][]string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		rows = append(rows, []string{
			strconv.FormatInt(record.ID, 10),
			record.Filename,
			orDash(record.VendorCode),
			string(record.Status),
			record.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return rows
}

func orDash(value string) string {
	if value == "" {
		return "-"
	}
	return value
}
