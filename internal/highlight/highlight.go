package highlight

import (
	"regexp"
	"sort"
	"strings"

	"github.com/ppiankov/atlasprompt/internal/model"
	"golang.org/x/net/html"
)

// Category is one class of interesting terms with its display colour
type Category struct {
	Name    model.HighlightCategory
	Color   string
	Pattern *regexp.Regexp
}

// wordPattern compiles a case-insensitive whole-word alternation
func wordPattern(terms ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)\b(?:` + strings.Join(terms, "|") + `)\b`)
}

// DefaultCategories returns the built-in categories in priority order
func DefaultCategories() []Category {
	return []Category{
		{
			Name:    model.CategoryNumeric,
			Color:   "#2874a6",
			Pattern: regexp.MustCompile(`\b\d{3,4}\b`),
		},
		{
			Name:  model.CategoryRoyalty,
			Color: "#8e44ad",
			Pattern: wordPattern(
				`kings?`, `queens?`, `emperors?`, `empress(?:es)?`, `princes?`, `princess(?:es)?`,
				`dukes?`, `duchess(?:es)?`, `pharaohs?`, `sultans?`, `tsars?`, `czars?`, `caliphs?`,
				`shoguns?`, `khans?`, `monarchs?`, `monarchy`, `royal(?:ty)?`, `throne`, `crown(?:ed)?`,
				`dynast(?:y|ies)`, `reign(?:ed)?`,
			),
		},
		{
			Name:  model.CategoryConflict,
			Color: "#c0392b",
			Pattern: wordPattern(
				`wars?`, `battles?`, `sieges?`, `besieged`, `invasions?`, `invaded`, `revolts?`,
				`rebellions?`, `revolutions?`, `uprisings?`, `conquests?`, `conquered`, `fought`,
				`armies`, `army`, `crusades?`, `massacres?`, `raids?`, `sacked`, `occupation`, `occupied`,
			),
		},
		{
			Name:  model.CategoryGovernance,
			Color: "#1e8449",
			Pattern: wordPattern(
				`empires?`, `kingdoms?`, `republics?`, `parliaments?`, `constitutions?`, `governments?`,
				`treat(?:y|ies)`, `capitals?`, `independence`, `colon(?:y|ies|ial)`, `senate`, `charter`,
				`magna carta`, `city-states?`, `provinces?`,
			),
		},
		{
			Name:  model.CategoryEra,
			Color: "#b9770e",
			Pattern: wordPattern(
				`centur(?:y|ies)`, `ancient`, `medieval`, `renaissance`, `eras?`, `ages?`, `periods?`,
				`prehistoric`, `antiquity`, `neolithic`, `bronze age`, `iron age`, `BCE?`, `AD`,
			),
		},
	}
}

// Highlighter wraps category terms inside facts with styled spans
type Highlighter struct {
	categories []Category
}

// NewHighlighter creates a highlighter. Categories are matched in the given order;
// an earlier category claims text before a later one sees it.
func NewHighlighter(categories []Category) *Highlighter {
	return &Highlighter{categories: categories}
}

// Default creates a highlighter with DefaultCategories
func Default() *Highlighter {
	return NewHighlighter(DefaultCategories())
}

// Escape makes untrusted fact text display-safe. It must be applied exactly once.
func Escape(fact string) string {
	return html.EscapeString(fact)
}

// Highlight escapes fact and wraps every claimed span in category markup
func (h *Highlighter) Highlight(fact string) string {
	escaped := Escape(fact)
	spans := h.Spans(escaped)
	if len(spans) == 0 {
		return escaped
	}

	var b strings.Builder
	b.Grow(len(escaped) + len(spans)*64)

	pos := 0
	for _, span := range spans {
		b.WriteString(escaped[pos:span.Start])
		b.WriteString(`<span class="hl-`)
		b.WriteString(string(span.Category))
		b.WriteString(`" style="color:`)
		b.WriteString(h.color(span.Category))
		b.WriteString(`;font-weight:bold">`)
		b.WriteString(escaped[span.Start:span.End])
		b.WriteString(`</span>`)
		pos = span.End
	}
	b.WriteString(escaped[pos:])

	return b.String()
}

// Spans finds non-overlapping category spans in already-escaped text, ordered by start.
// Each category claims its matches in priority order; a match touching any
// previously claimed range is dropped whole.
func (h *Highlighter) Spans(escaped string) []model.HighlightSpan {
	var claimed []model.HighlightSpan

	for _, c := range h.categories {
		for _, loc := range c.Pattern.FindAllStringIndex(escaped, -1) {
			if loc[0] == loc[1] {
				continue
			}
			span := model.HighlightSpan{Start: loc[0], End: loc[1], Category: c.Name}
			if overlapsAny(claimed, span) {
				continue
			}
			claimed = append(claimed, span)
		}
	}

	sort.Slice(claimed, func(i, j int) bool {
		return claimed[i].Start < claimed[j].Start
	})
	return claimed
}

// Legend returns category names and colours in priority order
func (h *Highlighter) Legend() []Category {
	return append([]Category(nil), h.categories...)
}

func (h *Highlighter) color(name model.HighlightCategory) string {
	for _, c := range h.categories {
		if c.Name == name {
			return c.Color
		}
	}
	return "inherit"
}

func overlapsAny(claimed []model.HighlightSpan, span model.HighlightSpan) bool {
	for _, c := range claimed {
		if span.Start < c.End && c.Start < span.End {
			return true
		}
	}
	return false
}
