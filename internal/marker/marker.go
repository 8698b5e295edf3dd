package marker

import (
	"strconv"

	"github.com/ppiankov/atlasprompt/internal/model"
)

// Synthesizer assigns each place a stable visual identity
type Synthesizer struct {
	palette    []string
	nameOffset float64
}

// NewSynthesizer creates a synthesizer. An empty palette uses model.DefaultPalette.
// nameOffset is the longitude delta applied to name markers; it is constant for
// every record and does not adapt to marker density.
func NewSynthesizer(palette []string, nameOffset float64) *Synthesizer {
	if len(palette) == 0 {
		palette = model.DefaultPalette
	}
	return &Synthesizer{
		palette:    append([]string(nil), palette...),
		nameOffset: nameOffset,
	}
}

// ColorFor returns the colour assigned to the place at index
func (s *Synthesizer) ColorFor(index int) string {
	return s.palette[index%len(s.palette)]
}

// Synthesize emits markers in index order, which is also the draw order.
// With showNames each numbered marker is followed by a name marker for the same place.
func (s *Synthesizer) Synthesize(records []model.PlaceRecord, showNames bool) []model.MarkerSpec {
	size := len(records)
	if showNames {
		size *= 2
	}
	markers := make([]model.MarkerSpec, 0, size)

	for i, r := range records {
		color := s.ColorFor(i)

		markers = append(markers, model.MarkerSpec{
			Index:      i,
			Color:      color,
			Coordinate: r.Coordinate(),
			LabelKind:  model.LabelNumeric,
			LabelText:  strconv.Itoa(i + 1),
		})

		if showNames {
			markers = append(markers, model.MarkerSpec{
				Index: i,
				Color: color,
				Coordinate: model.Coordinate{
					Latitude:  r.Latitude,
					Longitude: r.Longitude + s.nameOffset,
				},
				LabelKind: model.LabelName,
				LabelText: r.Name,
			})
		}
	}

	return markers
}
