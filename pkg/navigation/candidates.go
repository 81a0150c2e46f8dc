// Package navigation exposes the moves available from an article and decides
// which rendered clicks are moves at all.
package navigation

import "wikigame/pkg/model"

// Candidates returns the first limit outbound links of article in source order.
// Links are already distinct, so candidates are too. limit <= 0 yields none.
func Candidates(article *model.Article, limit int) []model.NavigationCandidate {
	if article == nil || limit <= 0 {
		return []model.NavigationCandidate{}
	}
	n := min(limit, len(article.Links))
	out := make([]model.NavigationCandidate, 0, n)
	for _, title := range article.Links[:n] {
		out = append(out, model.NavigationCandidate{
			DisplayTitle:   model.DisplayTitle(title),
			CanonicalTitle: model.Canonical(title),
		})
	}
	return out
}
