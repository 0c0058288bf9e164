package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sheetwatch/internal/config"
	"sheetwatch/internal/store"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				stats, err := st.Stats(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Analyses:  %d\n", stats.TotalAnalyses)
				if stats.Latest != nil {
					fmt.Fprintf(out, "Latest:    %s\n", stats.Latest.Local().Format("2006-01-02 15:04:05"))
				}
				if len(stats.TopVendors) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(stats.TopVendors))
				for _, vendor := range stats.TopVendors {
					rows = append(rows, []string{vendor.VendorCode, strconv.Itoa(vendor.Count)})
				}
				fmt.Fprintf(out, "\n%s\n", renderTable(
					[]string{"Vendor", "Analyses"}, rows,
					[]columnAlignment{alignLeft, alignRight},
				))
				return nil
			})
		},
	}
}
