package main

import (
	"context"

	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/movers"
	"github.com/spf13/cobra"
)

var (
	viewFlag string
	topN     int
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Print the valued portfolio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, rt *runtime, view app.View) error {
			p, err := rt.app.Portfolio(ctx, view)
			if err != nil {
				return err
			}
			return printPortfolio(cmd.OutOrStdout(), p)
		})
	},
}

var moversCmd = &cobra.Command{
	Use:   "movers",
	Short: "Print the top gainers and losers of the day",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd, func(ctx context.Context, rt *runtime, view app.View) error {
			m, err := rt.app.Movers(ctx, view, topN)
			if err != nil {
				return err
			}
			return printMovers(cmd.OutOrStdout(), m)
		})
	},
}

func init() {
	for _, c := range []*cobra.Command{portfolioCmd, moversCmd, narrateCmd, newsCmd} {
		c.Flags().StringVarP(&viewFlag, "view", "v", "all", "view: all, us or india")
	}
	moversCmd.Flags().IntVarP(&topN, "top", "n", movers.DefaultTopN, "number of gainers and losers")

	rootCmd.AddCommand(portfolioCmd, moversCmd)
}

// withApp runs fn with a built runtime and the parsed --view.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, rt *runtime, view app.View) error) error {
	view, err := app.ParseView(viewFlag)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	rt, err := setup(ctx, false)
	if err != nil {
		return err
	}
	defer rt.close(context.Background())
	return fn(ctx, rt, view)
}
