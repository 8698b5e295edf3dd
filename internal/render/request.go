package render

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/ppiankov/atlasprompt/internal/model"
)

// Param is one ordered query parameter of a static map request
type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Request is the ordered parameter sequence handed to the rendering service
type Request struct {
	Params []Param `json:"params"`
}

// Encode renders the parameters as a query string, preserving order and repeats
func (r Request) Encode() string {
	parts := make([]string, 0, len(r.Params))
	for _, p := range r.Params {
		parts = append(parts, url.QueryEscape(p.Name)+"="+url.QueryEscape(p.Value))
	}
	return strings.Join(parts, "&")
}

// Redacted returns a copy with the API key masked, for logs and debugging output
func (r Request) Redacted() Request {
	out := Request{Params: make([]Param, len(r.Params))}
	copy(out.Params, r.Params)
	for i := range out.Params {
		if out.Params[i].Name == "key" && out.Params[i].Value != "" {
			out.Params[i].Value = "REDACTED"
		}
	}
	return out
}

// Values returns every value of the named parameter in order
func (r Request) Values(name string) []string {
	var values []string
	for _, p := range r.Params {
		if p.Name == name {
			values = append(values, p.Value)
		}
	}
	return values
}

// Builder maps markers and style directives onto static map parameters
type Builder struct {
	Width  int
	Height int
	APIKey string
}

// NewBuilder creates a builder for the given image size
func NewBuilder(width, height int, apiKey string) *Builder {
	return &Builder{Width: width, Height: height, APIKey: apiKey}
}

// Build composes the request: size, markers in draw order, styles in
// application order, then the key.
func (b *Builder) Build(markers []model.MarkerSpec, directives []model.StyleDirective) Request {
	params := make([]Param, 0, len(markers)+len(directives)+2)
	params = append(params, Param{Name: "size", Value: fmt.Sprintf("%dx%d", b.Width, b.Height)})

	for _, m := range markers {
		params = append(params, Param{Name: "markers", Value: markerValue(m)})
	}
	for _, d := range directives {
		params = append(params, Param{Name: "style", Value: d.String()})
	}

	if b.APIKey != "" {
		params = append(params, Param{Name: "key", Value: b.APIKey})
	}

	return Request{Params: params}
}

// markerValue renders one marker. The protocol only draws single alphanumeric
// labels, so longer labels are reduced or dropped.
func markerValue(m model.MarkerSpec) string {
	parts := make([]string, 0, 4)

	switch m.LabelKind {
	case model.LabelName:
		parts = append(parts, "size:small", "color:"+m.Color)
		if label, ok := initial(m.LabelText); ok {
			parts = append(parts, "label:"+label)
		}
	case model.LabelNumeric:
		parts = append(parts, "color:"+m.Color)
		if len(m.LabelText) == 1 && isLabelRune(rune(m.LabelText[0])) {
			parts = append(parts, "label:"+m.LabelText)
		}
	default:
		parts = append(parts, "color:"+m.Color)
	}

	parts = append(parts, formatCoordinate(m.Coordinate))
	return strings.Join(parts, "|")
}

// initial returns the first label-safe character of a name, upper-cased
func initial(name string) (string, bool) {
	for _, r := range name {
		if isLabelRune(r) {
			return string(unicode.ToUpper(r)), true
		}
	}
	return "", false
}

func isLabelRune(r rune) bool {
	return (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

func formatCoordinate(c model.Coordinate) string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}
