package version

import (
	"regexp"
	"testing"
)

var releaseTag = regexp.MustCompile(`^v\d+\.\d+\.\d+(-[0-9A-Za-z.]+)?$`)

func TestVersion_ReleaseTag(t *testing.T) {
	tests := []struct {
		name  string
		tag   string
		valid bool
	}{
		{name: "Current", tag: Version, valid: true},
		{name: "PreRelease", tag: "v0.5.0-rc.1", valid: true},
		{name: "MissingPrefix", tag: "0.4.2", valid: false},
		{name: "ShortTag", tag: "v0.4", valid: false},
		{name: "Empty", tag: "", valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := releaseTag.MatchString(tt.tag); got != tt.valid {
				t.Errorf("releaseTag.MatchString(%q) = %v, want %v", tt.tag, got, tt.valid)
			}
		})
	}
}
