package articleproc

import (
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Info contains the cleaned prose of an article body.
type Info struct {
	Paragraphs []string
	WordCount  int
}

// Lead returns the first prose paragraph, or "".
func (i *Info) Lead() string {
	if len(i.Paragraphs) == 0 {
		return ""
	}
	return i.Paragraphs[0]
}

// extractProse collects the body paragraphs of a parser-output node, stopping at
// the trailing reference/navigation section.
func extractProse(root *html.Node) *Info {
	info := &Info{}

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		// Terminal containers (reflist, navbox, etc.)
		if isStructuralNoise(c) {
			break
		}
		// Terminal headers (only if immediately followed by noise)
		if (c.DataAtom == atom.H2 || c.DataAtom == atom.H3) && isFollowedByStructuralNoise(c) {
			break
		}
		if c.DataAtom == atom.P {
			if text := cleanParagraph(c); text != "" {
				info.Paragraphs = append(info.Paragraphs, text)
				info.WordCount += countWords(text)
			}
		}
	}

	return info
}

func cleanParagraph(p *html.Node) string {
	var b strings.Builder
	traverseParagraph(p, &b)
	return strings.Join(strings.Fields(b.String()), " ")
}

func traverseParagraph(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		return
	}

	if n.Type == html.ElementNode {
		// Citations, inline styles and empty template leftovers
		if n.DataAtom == atom.Sup || n.DataAtom == atom.Style || n.DataAtom == atom.Script {
			return
		}
		if cls := attr(n, "class"); strings.Contains(cls, "mw-empty-elt") || strings.Contains(cls, "reference") {
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		traverseParagraph(c, b)
	}
}

func countWords(s string) int {
	return len(strings.Fields(s))
}

func isStructuralNoise(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	val := strings.ToLower(attr(n, "class"))
	// Navigation boxes, reference lists, and galleries are almost always terminal.
	return strings.Contains(val, "reflist") ||
		strings.Contains(val, "references") ||
		strings.Contains(val, "navbox") ||
		strings.Contains(val, "asbox") || // Stub notice
		strings.Contains(val, "catlinks")
}

func isFollowedByStructuralNoise(n *html.Node) bool {
	// Allow one element in between.
	limit := 1
	for next := n.NextSibling; next != nil && limit > 0; next = next.NextSibling {
		if next.Type == html.ElementNode {
			if isStructuralNoise(next) {
				return true
			}
			limit--
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
