package style

import (
	"strings"
	"testing"

	"github.com/ppiankov/atlasprompt/internal/model"
)

func records(kinds ...string) []model.PlaceRecord {
	out := make([]model.PlaceRecord, len(kinds))
	for i, k := range kinds {
		out[i] = model.PlaceRecord{Name: k, Kind: k}
	}
	return out
}

func TestClassifyScope(t *testing.T) {
	tests := []struct {
		name  string
		kinds []string
		want  model.Scope
	}{
		{"two countries and a city", []string{"country", "country", "city"}, model.ScopeCountry},
		{"one country", []string{"country", "city", "region"}, model.ScopeProvince},
		{"empty", nil, model.ScopeProvince},
		{"case insensitive", []string{"Country", "COUNTRY"}, model.ScopeCountry},
		{"unknown kinds", []string{"continent", "ocean", "site"}, model.ScopeProvince},
		{"three countries", []string{"country", "country", "country"}, model.ScopeCountry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyScope(records(tt.kinds...)); got != tt.want {
				t.Errorf("ClassifyScope(%v) = %s, want %s", tt.kinds, got, tt.want)
			}
		})
	}
}

func TestParseTheme(t *testing.T) {
	if got := ParseTheme("Night"); got != ThemeNight {
		t.Errorf("Expected night, got %s", got)
	}
	if got := ParseTheme("neon"); got != ThemeDefault {
		t.Errorf("Expected unknown theme to fall back to default, got %s", got)
	}
	if got := ParseTheme(""); got != ThemeDefault {
		t.Errorf("Expected empty theme to fall back to default, got %s", got)
	}
}

func TestComposeTheme_ExactlyOneBoundaryVisible(t *testing.T) {
	for _, scope := range []model.Scope{model.ScopeCountry, model.ScopeProvince} {
		for _, theme := range Themes() {
			for _, showNames := range []bool{true, false} {
				directives := ComposeTheme(scope, string(theme), showNames)

				shown := scope.BoundaryFeature()
				hidden := scope.Other().BoundaryFeature()

				if !BoundaryVisible(directives, shown) {
					t.Errorf("%s/%s: expected %s to be visible", scope, theme, shown)
				}
				if BoundaryVisible(directives, hidden) {
					t.Errorf("%s/%s: expected %s to stay hidden", scope, theme, hidden)
				}

				// The final visible stroke directive must target the scope's layer
				var lastOn *model.StyleDirective
				for i := range directives {
					d := directives[i]
					if v, ok := d.Rule("visibility"); ok && v == "on" && d.Element == "geometry.stroke" {
						lastOn = &directives[i]
					}
				}
				if lastOn == nil || lastOn.Feature != shown {
					t.Errorf("%s/%s: expected last visible boundary directive on %s, got %+v", scope, theme, shown, lastOn)
				}
			}
		}
	}
}

func TestComposeTheme_ReaffirmationAfterBase(t *testing.T) {
	scope := model.ScopeCountry
	base := BaseLayer(scope, true)
	directives := ComposeTheme(scope, "retro", true)

	if len(directives) <= len(base) {
		t.Fatalf("Expected theme layer to be appended, got %d directives", len(directives))
	}
	for i := range base {
		if directives[i].String() != base[i].String() {
			t.Fatalf("Expected base layer first, directive %d = %s", i, directives[i])
		}
	}

	last := directives[len(directives)-1]
	if last.Feature != model.FeatureCountryBoundary || last.Element != "geometry.stroke" {
		t.Errorf("Expected boundary re-affirmation last, got %s", last)
	}
	if color, _ := last.Rule("color"); color != "0x8b4513" {
		t.Errorf("Expected retro stroke colour, got %s", color)
	}
}

func TestComposeTheme_UnknownFallsBackToDefault(t *testing.T) {
	got := ComposeTheme(model.ScopeProvince, "neon", false)
	want := ComposeTheme(model.ScopeProvince, "default", false)

	if len(got) != len(want) {
		t.Fatalf("Expected %d directives, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i].String() != want[i].String() {
			t.Errorf("directive %d: got %s, want %s", i, got[i], want[i])
		}
	}
}

func TestBaseLayer_Suppressions(t *testing.T) {
	joined := make([]string, 0)
	for _, d := range BaseLayer(model.ScopeProvince, false) {
		joined = append(joined, d.String())
	}
	all := strings.Join(joined, "\n")

	for _, want := range []string{
		"element:labels|visibility:off",
		"feature:road|visibility:off",
		"feature:transit|visibility:off",
		"feature:poi|visibility:off",
		"feature:landscape|visibility:simplified",
		"feature:water|element:geometry|color:0xcceeff",
		"feature:administrative.country|visibility:off",
		"feature:administrative.province|element:geometry.stroke|visibility:on|color:0x000000|weight:1.5",
	} {
		if !strings.Contains(all, want) {
			t.Errorf("Expected base layer to contain %q\n%s", want, all)
		}
	}

	if strings.Contains(all, "labels.text.fill") {
		t.Error("Expected boundary labels to stay hidden without names")
	}
}

func TestBoundaryVisible_ParentSelector(t *testing.T) {
	directives := []model.StyleDirective{
		directive("administrative", "", "visibility", "off"),
	}
	if BoundaryVisible(directives, model.FeatureCountryBoundary) {
		t.Error("Expected parent selector to hide the country boundary")
	}

	directives = append(directives, directive(model.FeatureCountryBoundary, "geometry", "visibility", "on"))
	if !BoundaryVisible(directives, model.FeatureCountryBoundary) {
		t.Error("Expected later directive to win")
	}
	if BoundaryVisible(directives, model.FeatureProvinceBoundary) {
		t.Error("Expected province boundary to remain hidden")
	}
}
