package main

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"sheetwatch/internal/config"
	"sheetwatch/internal/store"
)

func newShowCommand(ctx *commandContext) *cobra.Command {
	var byID int64

	cmd := &cobra.Command{
		Use:   "show [filename]",
		Short: "Show one analysis with its tags and checklist",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				var record *store.Analysis
				var err error
				switch {
				case byID > 0:
					record, err = st.GetByID(cmd.Context(), byID)
				case len(args) == 1:
					record, err = st.GetByFilename(cmd.Context(), args[0])
				default:
					return fmt.Errorf("provide a filename or --id")
				}
				if err != nil {
					return err
				}
				if record == nil {
					fmt.Fprintln(cmd.OutOrStdout(), "No matching analysis found")
					return nil
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "ID:        %d\n", record.ID)
				fmt.Fprintf(out, "Filename:  %s\n", record.Filename)
				fmt.Fprintf(out, "Vendor:    %s\n", orDash(record.VendorCode))
				fmt.Fprintf(out, "Hash:      %s\n", orDash(record.FileHash))
				fmt.Fprintf(out, "Created:   %s\n", record.CreatedAt.Local().Format("2006-01-02 15:04:05"))
				fmt.Fprintf(out, "\n%s\n", record.AnalysisText)

				metadata, err := st.Metadata(cmd.Context(), record.ID)
				if err != nil {
					return err
				}
				if len(metadata) > 0 {
					keys := make([]string, 0, len(metadata))
					for key := range metadata {
						keys = append(keys, key)
					}
					sort.Strings(keys)
					rows := make([][]string, 0, len(keys))
					for _, key := range keys {
						rows = append(rows, []string{key, fmt.Sprint(metadata[key])})
					}
					fmt.Fprintf(out, "\nTags\n%s\n", renderTable(
						[]string{"Name", "Description"}, rows,
						[]columnAlignment{alignLeft, alignLeft},
					))
				}

				items, err := st.ChecklistByAnalysis(cmd.Context(), record.ID)
				if err != nil {
					return err
				}
				if len(items) > 0 {
					rows := make([][]string, 0, len(items))
					for i, item := range items {
						rows = append(rows, []string{
							strconv.Itoa(i + 1),
							item.Text,
							yesNo(item.GeneratedCode != ""),
						})
					}
					fmt.Fprintf(out, "\nChecklist\n%s\n", renderTable(
						[]string{"#", "Requirement", "Code"}, rows,
						[]columnAlignment{alignRight, alignLeft, alignLeft},
					))
				}
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&byID, "id", 0, "Look up by record id instead of filename")
	return cmd
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
