package main

import (
	"context"
	"fmt"

	"github.com/newthinker/folio/internal/app"
	"github.com/newthinker/folio/internal/news"
	"github.com/spf13/cobra"
)

var (
	newsCategories []string
	newsMax        int
	newsBrief      bool
)

var newsCmd = &cobra.Command{
	Use:   "news",
	Short: "Print classified headlines for your holdings",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := app.NewsFilter{Max: newsMax, Brief: newsBrief}
		for _, raw := range newsCategories {
			c, ok := news.ParseCategory(raw)
			if !ok {
				return fmt.Errorf("unknown category %q", raw)
			}
			filter.Categories = append(filter.Categories, c)
		}

		return withApp(cmd, func(ctx context.Context, rt *runtime, view app.View) error {
			if filter.Max == 0 {
				filter.Max = rt.cfg.News.MaxHeadlines
			}
			v, err := rt.app.News(ctx, view, filter)
			if err != nil {
				return err
			}
			return printNews(cmd.OutOrStdout(), v, wrapWidth, glamourStyle)
		})
	},
}

func init() {
	newsCmd.Flags().StringSliceVar(&newsCategories, "category", nil, "only show these categories (repeatable)")
	newsCmd.Flags().IntVar(&newsMax, "max", 0, "maximum headlines (default from config)")
	newsCmd.Flags().BoolVar(&newsBrief, "brief", false, "add an AI brief of the feed")
	rootCmd.AddCommand(newsCmd)
}
