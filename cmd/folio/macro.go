package main

import (
	"context"

	"github.com/newthinker/folio/internal/app"
	"github.com/spf13/cobra"
)

var macroCmd = &cobra.Command{
	Use:   "macro",
	Short: "Print the macro indicator board",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, rt *runtime, _ app.View) error {
			readings, err := rt.app.Macro(ctx)
			if err != nil {
				return err
			}
			return printMacro(cmd.OutOrStdout(), readings)
		})
	},
}

func init() {
	rootCmd.AddCommand(macroCmd)
}
