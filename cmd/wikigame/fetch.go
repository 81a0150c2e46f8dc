package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"wikigame/pkg/articleproc"
	"wikigame/pkg/config"
	"wikigame/pkg/model"
	"wikigame/pkg/navigation"
)

var (
	fetchCandidates int
	fetchContent    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <title>",
	Short: "Fetch and sanitize one article, then print what a player would see",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		appCfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		title := model.DisplayTitle(strings.Join(args, " "))

		ctx, cancel := context.WithTimeout(cmd.Context(), appCfg.Game.FetchTimeout.Std())
		defer cancel()

		reqClient := newRequestClient(appCfg, nil, nil)
		defer reqClient.Close()
		wp := newWikipediaClient(appCfg, reqClient)

		raw, err := wp.RawMarkup(ctx, title)
		if err != nil {
			return err
		}
		res, err := articleproc.New(wp.BaseURL()).Sanitize(raw)
		if err != nil {
			return fmt.Errorf("sanitize %q: %w", title, err)
		}
		article := res.Article(title, model.ArticleURL(wp.BaseURL(), title))

		limit := fetchCandidates
		if limit <= 0 {
			limit = appCfg.Game.CandidateLimit
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Title:     %s\n", article.Title)
		fmt.Fprintf(out, "URL:       %s\n", article.URL)
		fmt.Fprintf(out, "Content:   %d bytes\n", len(article.Content))
		fmt.Fprintf(out, "Infobox:   %d bytes\n", len(article.Infobox))
		fmt.Fprintf(out, "Words:     %d\n", res.WordCount)
		fmt.Fprintf(out, "Links:     %d\n", len(article.Links))
		if article.Summary != "" {
			fmt.Fprintf(out, "\n%s\n", article.Summary)
		}
		fmt.Fprintln(out, "\nCandidates:")
		for i, c := range navigation.Candidates(article, limit) {
			fmt.Fprintf(out, "  %d. %s\n", i+1, c.DisplayTitle)
		}
		if fetchContent {
			fmt.Fprintf(out, "\n%s\n", article.Content)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().IntVarP(&fetchCandidates, "candidates", "n", 0, "number of candidates to list (default: game.candidate_limit)")
	fetchCmd.Flags().BoolVar(&fetchContent, "content", false, "also print the sanitized content markup")
}
