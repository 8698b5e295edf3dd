package style

import (
	"strings"

	"github.com/ppiankov/atlasprompt/internal/model"
)

// Theme names a visual theme layer
type Theme string

const (
	ThemeDefault   Theme = "default"
	ThemeDark      Theme = "dark"
	ThemeLight     Theme = "light"
	ThemeGrayscale Theme = "grayscale"
	ThemeRetro     Theme = "retro"
	ThemeNight     Theme = "night"
	ThemeAubergine Theme = "aubergine"
)

// Themes lists every supported theme in display order
func Themes() []Theme {
	return []Theme{ThemeDefault, ThemeDark, ThemeLight, ThemeGrayscale, ThemeRetro, ThemeNight, ThemeAubergine}
}

// ParseTheme resolves a requested theme name. Unknown names fall back to default.
func ParseTheme(name string) Theme {
	t := Theme(strings.ToLower(strings.TrimSpace(name)))
	if _, ok := themeTable[t]; ok {
		return t
	}
	return ThemeDefault
}

const (
	waterColor    = "0xcceeff"
	boundaryWidth = "1.5"
)

// themeLayer holds the overrides of one theme and the stroke colour its boundary is re-affirmed with
type themeLayer struct {
	overrides []model.StyleDirective
	stroke    string
}

var themeTable = map[Theme]themeLayer{
	ThemeDefault: {stroke: "0x000000"},
	ThemeDark: {
		overrides: []model.StyleDirective{
			directive("all", "labels.text.fill", "color", "0xffffff"),
			directive("all", "labels.text.stroke", "color", "0x000000", "weight", "2"),
			directive("landscape", "geometry", "color", "0x333333"),
			directive("water", "geometry", "color", "0x1a2633"),
		},
		stroke: "0xbbbbbb",
	},
	ThemeLight: {
		overrides: []model.StyleDirective{
			directive("all", "geometry", "color", "0xf5f5f5"),
			directive("all", "labels.text.fill", "color", "0x616161"),
			directive("all", "labels.text.stroke", "color", "0xf5f5f5"),
			directive("water", "geometry", "color", "0xc9c9c9"),
		},
		stroke: "0x757575",
	},
	ThemeGrayscale: {
		overrides: []model.StyleDirective{
			directive("all", "", "saturation", "-100"),
			directive("all", "labels.text.fill", "color", "0x444444"),
		},
		stroke: "0x000000",
	},
	ThemeRetro: {
		overrides: []model.StyleDirective{
			directive("all", "geometry", "color", "0xf5f5dc"),
			directive("all", "labels.text.fill", "color", "0x333300"),
			directive("water", "geometry", "color", "0xb9d3c2"),
		},
		stroke: "0x8b4513",
	},
	ThemeNight: {
		overrides: []model.StyleDirective{
			directive("", "geometry", "color", "0x242f3e"),
			directive("", "labels.text.stroke", "color", "0x242f3e"),
			directive("", "labels.text.fill", "color", "0x746855"),
			directive("water", "geometry", "color", "0x17263c"),
		},
		stroke: "0xd59563",
	},
	ThemeAubergine: {
		overrides: []model.StyleDirective{
			directive("all", "geometry", "color", "0x1e1b1b"),
			directive("all", "labels.text.fill", "color", "0xbdbdbd"),
			directive("water", "geometry", "color", "0x0e1626"),
		},
		stroke: "0x4b6878",
	},
}

// ComposeTheme merges the base layer with the requested theme layer.
// The theme layer is appended after the base layer so that, under last-wins
// resolution, its boundary re-affirmation always has the final say.
func ComposeTheme(scope model.Scope, themeName string, showNames bool) []model.StyleDirective {
	base := BaseLayer(scope, showNames)
	theme := ThemeLayer(scope, ParseTheme(themeName))

	composed := make([]model.StyleDirective, 0, len(base)+len(theme))
	composed = append(composed, base...)
	composed = append(composed, theme...)
	return composed
}

// BaseLayer returns the fixed directives shared by every theme
func BaseLayer(scope model.Scope, showNames bool) []model.StyleDirective {
	shown := scope.BoundaryFeature()
	hidden := scope.Other().BoundaryFeature()

	layer := []model.StyleDirective{
		directive("", "labels", "visibility", "off"),
		directive("road", "", "visibility", "off"),
		directive("transit", "", "visibility", "off"),
		directive("poi", "", "visibility", "off"),
		directive("landscape", "", "visibility", "simplified"),
		directive("water", "geometry", "color", waterColor),
		directive(hidden, "", "visibility", "off"),
		directive(shown, "geometry.stroke", "visibility", "on", "color", "0x000000", "weight", boundaryWidth),
	}

	if showNames {
		layer = append(layer,
			directive(shown, "labels.text.fill", "visibility", "on", "color", "0x000000"),
			directive(shown, "labels.text.stroke", "visibility", "on", "color", "0xffffff"),
			directive(shown, "labels.icon", "visibility", "off"),
		)
	}

	return layer
}

// ThemeLayer returns the overrides for theme followed by the boundary re-affirmation
func ThemeLayer(scope model.Scope, theme Theme) []model.StyleDirective {
	entry, ok := themeTable[theme]
	if !ok {
		entry = themeTable[ThemeDefault]
	}

	layer := make([]model.StyleDirective, 0, len(entry.overrides)+2)
	layer = append(layer, entry.overrides...)
	layer = append(layer,
		directive(scope.Other().BoundaryFeature(), "", "visibility", "off"),
		directive(scope.BoundaryFeature(), "geometry.stroke", "visibility", "on", "color", entry.stroke, "weight", boundaryWidth),
	)
	return layer
}

// BoundaryVisible resolves, last-wins, whether the stroke of a boundary feature ends up visible.
// Features are visible unless a directive turns them off.
func BoundaryVisible(directives []model.StyleDirective, feature string) bool {
	visible := true
	for _, d := range directives {
		if !selectsFeature(d.Feature, feature) || !selectsElement(d.Element, "geometry.stroke") {
			continue
		}
		if v, ok := d.Rule("visibility"); ok {
			visible = v != "off"
		}
	}
	return visible
}

// selectsFeature reports whether selector applies to feature, including parent selectors
func selectsFeature(selector, feature string) bool {
	return selector == "" || selector == "all" || selector == feature || strings.HasPrefix(feature, selector+".")
}

func selectsElement(selector, element string) bool {
	return selector == "" || selector == "all" || selector == element || strings.HasPrefix(element, selector+".")
}

// directive builds a StyleDirective from alternating property/value pairs
func directive(feature, element string, pairs ...string) model.StyleDirective {
	rules := make([]model.StyleRule, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		rules = append(rules, model.StyleRule{Property: pairs[i], Value: pairs[i+1]})
	}
	return model.StyleDirective{Feature: feature, Element: element, Rules: rules}
}
