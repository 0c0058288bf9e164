package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"sheetwatch/internal/analysis"
	"sheetwatch/internal/codegen"
	"sheetwatch/internal/config"
	"sheetwatch/internal/logging"
	"sheetwatch/internal/services/llm"
	"sheetwatch/internal/store"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>",
		Short: "Run the analysis pipeline once for a single datasheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				path, err := config.ExpandPath(args[0])
				if err != nil {
					return fmt.Errorf("resolve file path: %w", err)
				}
				if !cfg.RecognizedExtension(path) {
					return fmt.Errorf("unrecognized datasheet extension: %s", filepath.Ext(path))
				}

				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return fmt.Errorf("init logger: %w", err)
				}
				completer := llm.NewClient(cfg.LLM)
				generator := codegen.NewRunner(cfg.Codegen)
				analyzer := analysis.New(cfg, st, completer, generator, logger)

				if err := analyzer.Run(cmd.Context(), path); err != nil {
					return err
				}

				record, err := st.GetByFilename(cmd.Context(), filepath.Base(path))
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if record == nil {
					fmt.Fprintln(out, "Analysis completed but no record was stored")
					return nil
				}
				fmt.Fprintf(out, "Analyzed %s (record %d, vendor %s)\n", record.Filename, record.ID, orDash(record.VendorCode))
				return nil
			})
		},
	}
}
