package main

import (
	"context"

	"github.com/newthinker/folio/internal/app"
	"github.com/spf13/cobra"
)

var (
	wrapWidth    int
	glamourStyle string
	refresh      bool
)

var narrateCmd = &cobra.Command{
	Use:   "narrate",
	Short: "Generate AI narratives for every quoted position",
	Long: `Generate a commentary, an action (ACCUMULATE, HOLD, TRIM or EXIT) and
signals to monitor for each quoted position, largest first. Positions whose
call fails show a placeholder; press Ctrl-C to stop early.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, rt *runtime, view app.View) error {
			report, err := rt.app.Narratives(ctx, view, app.NarrativeOptions{Refresh: refresh})
			if err != nil {
				return err
			}
			return printReport(cmd.OutOrStdout(), report, wrapWidth, glamourStyle)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{narrateCmd, newsCmd} {
		c.Flags().IntVar(&wrapWidth, "width", 100, "word wrap width")
		c.Flags().StringVar(&glamourStyle, "style", "", "markdown style: dark, light or notty (default: detect)")
	}
	narrateCmd.Flags().BoolVar(&refresh, "refresh", false, "regenerate narratives kept from an earlier run")
	rootCmd.AddCommand(narrateCmd)
}
