package navigation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	ic, err := NewInterceptor("https://en.wikipedia.org")
	require.NoError(t, err)

	marked := func(href string) map[string]string {
		return map[string]string{"href": href, "data-wikigame": "internal"}
	}

	tests := []struct {
		name      string
		ev        ClickEvent
		wantNav   bool
		wantTitle string
	}{
		{
			name:      "Content Link",
			ev:        ClickEvent{Surface: SurfaceContent, Tag: "a", Attrs: marked("https://en.wikipedia.org/wiki/Albert_Einstein")},
			wantNav:   true,
			wantTitle: "Albert Einstein",
		},
		{
			name:      "Infobox Link Escaped With Fragment",
			ev:        ClickEvent{Surface: SurfaceInfobox, Tag: "A", Attrs: marked("https://en.wikipedia.org/wiki/Caf%C3%A9#History")},
			wantNav:   true,
			wantTitle: "Café",
		},
		{
			name:      "Candidate",
			ev:        ClickEvent{Surface: SurfaceCandidates, Title: "Musa_(genus)"},
			wantNav:   true,
			wantTitle: "Musa (genus)",
		},
		{
			name: "Candidate Without Title",
			ev:   ClickEvent{Surface: SurfaceCandidates, Title: "  "},
		},
		{
			name: "Unmarked Anchor",
			ev:   ClickEvent{Surface: SurfaceContent, Tag: "a", Attrs: map[string]string{"href": "https://en.wikipedia.org/wiki/Fruit"}},
		},
		{
			name: "Non Anchor Element",
			ev:   ClickEvent{Surface: SurfaceContent, Tag: "span", Attrs: marked("https://en.wikipedia.org/wiki/Fruit")},
		},
		{
			name: "Other Host",
			ev:   ClickEvent{Surface: SurfaceContent, Tag: "a", Attrs: marked("https://evil.example/wiki/Fruit")},
		},
		{
			name: "Other Edition",
			ev:   ClickEvent{Surface: SurfaceContent, Tag: "a", Attrs: marked("https://de.wikipedia.org/wiki/Frucht")},
		},
		{
			name: "Not Article Path",
			ev:   ClickEvent{Surface: SurfaceContent, Tag: "a", Attrs: marked("https://en.wikipedia.org/w/index.php?title=Fruit")},
		},
		{
			name: "Namespace Page",
			ev:   ClickEvent{Surface: SurfaceContent, Tag: "a", Attrs: marked("https://en.wikipedia.org/wiki/Category:Fruit")},
		},
		{
			name: "Bad Escape",
			ev:   ClickEvent{Surface: SurfaceContent, Tag: "a", Attrs: marked("https://en.wikipedia.org/wiki/%zz")},
		},
		{
			name: "Unknown Surface",
			ev:   ClickEvent{Surface: "sidebar", Tag: "a", Attrs: marked("https://en.wikipedia.org/wiki/Fruit")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ic.Classify(tt.ev)
			assert.True(t, got.PreventDefault, "default navigation must always be suppressed")
			assert.Equal(t, tt.wantNav, got.Navigate)
			assert.Equal(t, tt.wantTitle, got.Title)
		})
	}
}
