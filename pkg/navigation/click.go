package navigation

import (
	"net/url"
	"strings"

	"wikigame/pkg/articleproc"
	"wikigame/pkg/model"
)

// Surface is where a click happened.
type Surface string

const (
	SurfaceContent    Surface = "content"
	SurfaceInfobox    Surface = "infobox"
	SurfaceCandidates Surface = "candidates"
)

// ClickEvent describes the element struck by a click on a rendering surface.
type ClickEvent struct {
	Surface Surface           `json:"surface"`
	Tag     string            `json:"tag"`             // Struck element's tag name, e.g. "a"
	Attrs   map[string]string `json:"attrs,omitempty"` // Struck element's attributes
	Title   string            `json:"title,omitempty"` // Candidate title (candidate surface only)
}

// Action is the outcome of classifying a click.
type Action struct {
	Navigate       bool   `json:"navigate"`
	Title          string `json:"title,omitempty"`
	PreventDefault bool   `json:"prevent_default"`
}

// Interceptor classifies clicks for one encyclopedia edition.
type Interceptor struct {
	base *url.URL
}

// NewInterceptor accepts only links under baseURL's article path.
func NewInterceptor(baseURL string) (*Interceptor, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, err
	}
	return &Interceptor{base: u}, nil
}

// Classify maps a click to a navigate action or an ignore. Default navigation is
// always suppressed so the session owns every transition.
func (i *Interceptor) Classify(ev ClickEvent) Action {
	ignore := Action{PreventDefault: true}

	switch ev.Surface {
	case SurfaceCandidates:
		title := model.DisplayTitle(ev.Title)
		if title == "" {
			return ignore
		}
		return Action{Navigate: true, Title: title, PreventDefault: true}
	case SurfaceContent, SurfaceInfobox:
		if !strings.EqualFold(ev.Tag, "a") || ev.Attrs[articleproc.MarkerAttr] != articleproc.MarkerValue {
			return ignore
		}
		title, ok := i.titleFromHref(ev.Attrs["href"])
		if !ok {
			return ignore
		}
		return Action{Navigate: true, Title: title, PreventDefault: true}
	default:
		return ignore
	}
}

func (i *Interceptor) titleFromHref(href string) (string, bool) {
	u, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	if !strings.EqualFold(u.Scheme, i.base.Scheme) || !strings.EqualFold(u.Host, i.base.Host) {
		return "", false
	}
	path := u.EscapedPath()
	if !strings.HasPrefix(path, i.base.EscapedPath()+model.ArticlePathPrefix) {
		return "", false
	}
	title, ok := model.TitleFromPath(strings.TrimPrefix(path, i.base.EscapedPath()))
	if !ok || title == "" || !model.IsArticleTitle(title) {
		return "", false
	}
	return title, true
}
