package model

import (
	"net/url"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ArticlePathPrefix is the path under which the encyclopedia serves articles.
const ArticlePathPrefix = "/wiki/"

// Canonical normalizes a title for equality checks.
// Separators are unified to underscores, whitespace is collapsed and every word is title-cased,
// so "albert einstein", "Albert Einstein" and "Albert_Einstein" compare equal.
func Canonical(title string) string {
	words := strings.Fields(strings.ReplaceAll(title, "_", " "))
	if len(words) == 0 {
		return ""
	}
	// Casers carry state, so each call gets its own.
	titled := cases.Title(language.English).String(strings.Join(words, " "))
	return strings.ReplaceAll(titled, " ", "_")
}

// SameArticle reports whether two titles name the same article after normalization.
func SameArticle(a, b string) bool {
	ca := Canonical(a)
	return ca != "" && ca == Canonical(b)
}

// DisplayTitle converts a title or path segment to its human form ("Albert_Einstein" -> "Albert Einstein").
func DisplayTitle(title string) string {
	return strings.Join(strings.Fields(strings.ReplaceAll(title, "_", " ")), " ")
}

// PathTitle converts a title to the underscore form used in article paths.
func PathTitle(title string) string {
	return strings.ReplaceAll(DisplayTitle(title), " ", "_")
}

// ArticleURL builds the absolute URL of an article under base (e.g. "https://en.wikipedia.org").
func ArticleURL(base, title string) string {
	return strings.TrimRight(base, "/") + ArticlePathPrefix + url.PathEscape(PathTitle(title))
}

// TitleFromPath recovers the article title from an article path such as "/wiki/Caf%C3%A9#History".
// It reports false when the path is not an article path.
func TitleFromPath(path string) (string, bool) {
	rest, ok := strings.CutPrefix(path, ArticlePathPrefix)
	if !ok {
		return "", false
	}
	rest, _, _ = strings.Cut(rest, "#")
	rest, _, _ = strings.Cut(rest, "?")
	title, err := url.PathUnescape(rest)
	if err != nil {
		return "", false
	}
	title = DisplayTitle(title)
	return title, title != ""
}

// nonArticleNamespaces are title prefixes that name project pages rather than articles.
var nonArticleNamespaces = map[string]bool{
	"file": true, "image": true, "media": true, "special": true, "help": true,
	"talk": true, "user": true, "user talk": true, "wikipedia": true, "wikipedia talk": true,
	"project": true, "template": true, "template talk": true, "category": true,
	"category talk": true, "portal": true, "draft": true, "module": true,
	"mediawiki": true, "timedtext": true, "file talk": true, "wp": true,
}

// IsArticleTitle reports whether title lives in the main (article) namespace.
func IsArticleTitle(title string) bool {
	ns, _, found := strings.Cut(DisplayTitle(title), ":")
	if !found {
		return title != ""
	}
	return !nonArticleNamespaces[strings.ToLower(ns)]
}
