package articleproc

import (
	"bytes"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"

	"wikigame/pkg/logging"
	"wikigame/pkg/model"
)

const (
	// MarkerAttr flags an anchor as an interceptable in-game link.
	MarkerAttr = "data-wikigame"
	// MarkerValue is the value MarkerAttr carries on internal links.
	MarkerValue = "internal"
)

// noiseSelector is the fixed set of editorial and navigational subtrees removed from articles.
const noiseSelector = ".hatnote, .mw-editsection, sup.reference, .navbox, #toc, .toc, .vertical-navbox"

// renderPolicy is the allowlist every serialized fragment passes through.
// Only http(s) and relative URLs survive, event handlers and embeds never do,
// and the marker is kept only on anchors with its exact value.
var renderPolicy = newRenderPolicy()

func newRenderPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardAttributes()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	p.AllowElements(
		"div", "span", "p", "br", "hr", "b", "i", "u", "s", "em", "strong", "small",
		"sub", "sup", "abbr", "cite", "code", "pre", "q", "blockquote", "bdi", "mark",
		"time", "var", "kbd", "samp", "wbr", "figure", "figcaption",
		"h1", "h2", "h3", "h4", "h5", "h6",
	)
	p.AllowLists()
	p.AllowTables()
	p.AllowImages()
	p.AllowStyles("text-align", "vertical-align", "width", "float", "clear", "white-space").Globally()

	p.RequireParseableURLs(true)
	p.AllowURLSchemes("http", "https")
	p.AllowRelativeURLs(true)
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs(MarkerAttr).Matching(regexp.MustCompile(`^` + MarkerValue + `$`)).OnElements("a")
	return p
}

// Result is the sanitized form of one article's markup.
type Result struct {
	Content   string
	Infobox   string
	Links     []string
	Summary   string
	WordCount int
}

// Article assembles the model article for a sanitized result.
func (r *Result) Article(title, url string) *model.Article {
	links := make([]string, len(r.Links))
	copy(links, r.Links)
	return &model.Article{
		Title:   model.DisplayTitle(title),
		URL:     url,
		Content: r.Content,
		Infobox: r.Infobox,
		Links:   links,
		Summary: r.Summary,
	}
}

// Processor turns raw MediaWiki markup into renderable game content.
type Processor struct {
	BaseURL string // Article site root, e.g. "https://en.wikipedia.org"
}

// New creates a processor rewriting links against baseURL.
func New(baseURL string) *Processor {
	return &Processor{BaseURL: strings.TrimRight(baseURL, "/")}
}

// Sanitize parses raw, detaches the first infobox, strips noise, rewrites internal
// links and serializes the result. raw is never modified.
func (p *Processor) Sanitize(raw []byte) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}

	root := doc.Find("div.mw-parser-output").First()
	if root.Length() == 0 {
		return nil, ErrExtractionFailed
	}

	links := &linkSet{seen: make(map[string]bool)}
	res := &Result{}

	// The infobox leaves the tree before any other pass so nothing in it is handled twice.
	box := root.Find(".infobox").First()
	if box.Length() > 0 {
		box.Remove()
	}

	p.clean(root, links)
	if res.Content, err = render(root); err != nil {
		return nil, fmt.Errorf("render content: %w", err)
	}

	if box.Length() > 0 {
		p.clean(box, links)
		if res.Infobox, err = render(box); err != nil {
			return nil, fmt.Errorf("render infobox: %w", err)
		}
	}

	prose := extractProse(root.Nodes[0])
	res.Summary = prose.Lead()
	res.WordCount = prose.WordCount
	res.Links = links.titles

	return res, nil
}

func (p *Processor) clean(s *goquery.Selection, links *linkSet) {
	s.Find(noiseSelector).Remove()
	stripUnsafe(s)
	p.rewriteLinks(s, links)
}

// render serializes s, the selection's own node included, through renderPolicy.
func render(s *goquery.Selection) (string, error) {
	markup, err := goquery.OuterHtml(s)
	if err != nil {
		return "", err
	}
	return renderPolicy.Sanitize(markup), nil
}

// stripUnsafe drops executable content and any marker attribute not set by rewriteLinks.
// It covers s itself as well as its descendants.
func stripUnsafe(s *goquery.Selection) {
	s.Find("script, style, iframe, object, embed, noscript").Remove()
	all := s.Find("*").AddSelection(s)
	all.RemoveAttr(MarkerAttr)
	all.Each(func(_ int, el *goquery.Selection) {
		for _, n := range el.Nodes {
			kept := n.Attr[:0]
			for _, a := range n.Attr {
				if !strings.HasPrefix(strings.ToLower(a.Key), "on") {
					kept = append(kept, a)
				}
			}
			n.Attr = kept
		}
	})
}

func (p *Processor) rewriteLinks(s *goquery.Selection, links *linkSet) {
	s.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if !strings.HasPrefix(href, model.ArticlePathPrefix) {
			return
		}
		a.SetAttr("href", p.BaseURL+href)

		title, ok := model.TitleFromPath(href)
		if !ok || !model.IsArticleTitle(title) {
			logging.Trace(slog.Default(), "Link left unmarked", "href", href)
			return
		}
		a.SetAttr(MarkerAttr, MarkerValue)
		links.add(title)
	})
}

type linkSet struct {
	seen   map[string]bool
	titles []string
}

func (l *linkSet) add(title string) {
	key := model.Canonical(title)
	if key == "" || l.seen[key] {
		return
	}
	l.seen[key] = true
	l.titles = append(l.titles, title)
}
