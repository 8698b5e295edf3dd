package model

import "strings"

// Map features used by the static map style protocol
const (
	FeatureCountryBoundary  = "administrative.country"
	FeatureProvinceBoundary = "administrative.province"
)

// StyleRule is one property assignment inside a directive (e.g. visibility:off)
type StyleRule struct {
	Property string `json:"property"`
	Value    string `json:"value"`
}

// StyleDirective is one declarative style rule for a map feature/element.
// Directives are applied in emission order; for the same selector the later one wins.
type StyleDirective struct {
	Feature string      `json:"feature,omitempty"` // Empty selects every feature
	Element string      `json:"element,omitempty"` // Empty selects every element
	Rules   []StyleRule `json:"rules"`
}

// String renders the directive in the static map style syntax
func (d StyleDirective) String() string {
	parts := make([]string, 0, len(d.Rules)+2)
	if d.Feature != "" {
		parts = append(parts, "feature:"+d.Feature)
	}
	if d.Element != "" {
		parts = append(parts, "element:"+d.Element)
	}
	for _, r := range d.Rules {
		parts = append(parts, r.Property+":"+r.Value)
	}
	return strings.Join(parts, "|")
}

// Rule returns the value of the last rule with the given property
func (d StyleDirective) Rule(property string) (string, bool) {
	value, found := "", false
	for _, r := range d.Rules {
		if r.Property == property {
			value, found = r.Value, true
		}
	}
	return value, found
}

// LabelKind says what a marker's label carries
type LabelKind string

const (
	LabelNumeric LabelKind = "numeric"
	LabelName    LabelKind = "name"
	LabelNone    LabelKind = "none"
)

// MarkerSpec is one declarative map marker.
// Index is the place's 0-based position in the current result set; the
// numbered pin, the name marker and the results table row all share it.
type MarkerSpec struct {
	Index      int        `json:"index"`
	Color      string     `json:"color"` // 0xRRGGBB
	Coordinate Coordinate `json:"coordinate"`
	LabelKind  LabelKind  `json:"label_kind"`
	LabelText  string     `json:"label_text,omitempty"`
}

// HighlightCategory names a class of interesting terms inside a fact
type HighlightCategory string

const (
	CategoryNumeric    HighlightCategory = "numeric"
	CategoryRoyalty    HighlightCategory = "royalty"
	CategoryConflict   HighlightCategory = "conflict"
	CategoryGovernance HighlightCategory = "governance"
	CategoryEra        HighlightCategory = "era"
)

// HighlightSpan is a half-open byte range [Start, End) over an escaped fact
type HighlightSpan struct {
	Start    int               `json:"start"`
	End      int               `json:"end"`
	Category HighlightCategory `json:"category"`
}
