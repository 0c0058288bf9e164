package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sheetwatch/internal/config"
	"sheetwatch/internal/store"
)

func newReanalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reanalyze <filename>",
		Short: "Delete stored results so the daemon reprocesses a file",
		Long: "Removes the stored analysis records for a filename. A running daemon " +
			"notices the missing record on its next sweep and re-runs the full " +
			"pipeline for the file.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				removed, err := st.DeleteByFilename(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if removed == 0 {
					fmt.Fprintf(out, "No stored analyses for %s\n", args[0])
					return nil
				}
				fmt.Fprintf(out, "Removed %d record(s) for %s; it will be reanalyzed on the next sweep\n", removed, args[0])
				return nil
			})
		},
	}
}
