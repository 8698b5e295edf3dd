package marker

import (
	"testing"

	"github.com/ppiankov/atlasprompt/internal/model"
)

var threePlaces = []model.PlaceRecord{
	{Name: "London", Latitude: 51.5074, Longitude: -0.1278, Kind: "city"},
	{Name: "Paris", Latitude: 48.8566, Longitude: 2.3522, Kind: "city"},
	{Name: "Berlin", Latitude: 52.52, Longitude: 13.405, Kind: "city"},
}

func TestSynthesize_Numeric(t *testing.T) {
	s := NewSynthesizer(nil, model.DefaultNameOffset)
	markers := s.Synthesize(threePlaces, false)

	if len(markers) != 3 {
		t.Fatalf("Expected 3 markers, got %d", len(markers))
	}

	labels := []string{"1", "2", "3"}
	for i, m := range markers {
		if m.Index != i {
			t.Errorf("marker %d: expected index %d, got %d", i, i, m.Index)
		}
		if m.Color != model.DefaultPalette[i] {
			t.Errorf("marker %d: expected colour %s, got %s", i, model.DefaultPalette[i], m.Color)
		}
		if m.LabelKind != model.LabelNumeric || m.LabelText != labels[i] {
			t.Errorf("marker %d: expected numeric label %s, got %s %q", i, labels[i], m.LabelKind, m.LabelText)
		}
		if m.Coordinate != threePlaces[i].Coordinate() {
			t.Errorf("marker %d: expected exact coordinate, got %+v", i, m.Coordinate)
		}
	}
}

func TestSynthesize_WithNames(t *testing.T) {
	offset := 0.35
	s := NewSynthesizer(nil, offset)
	markers := s.Synthesize(threePlaces, true)

	if len(markers) != 6 {
		t.Fatalf("Expected 6 markers, got %d", len(markers))
	}

	for i := 0; i < len(markers); i += 2 {
		numbered, named := markers[i], markers[i+1]

		if numbered.LabelKind != model.LabelNumeric {
			t.Errorf("marker %d: expected numeric marker first, got %s", i, numbered.LabelKind)
		}
		if named.LabelKind != model.LabelName || named.LabelText != threePlaces[i/2].Name {
			t.Errorf("marker %d: expected name marker %q, got %s %q", i+1, threePlaces[i/2].Name, named.LabelKind, named.LabelText)
		}
		if named.Index != numbered.Index || named.Color != numbered.Color {
			t.Errorf("marker %d: name marker must share index and colour", i+1)
		}
		if named.Coordinate.Longitude != numbered.Coordinate.Longitude+offset {
			t.Errorf("marker %d: expected longitude %v, got %v", i+1, numbered.Coordinate.Longitude+offset, named.Coordinate.Longitude)
		}
		if named.Coordinate.Latitude != numbered.Coordinate.Latitude {
			t.Errorf("marker %d: expected latitude unchanged", i+1)
		}
	}
}

func TestSynthesize_PaletteCycles(t *testing.T) {
	s := NewSynthesizer([]string{"0x111111", "0x222222"}, 0)
	places := make([]model.PlaceRecord, 5)
	for i := range places {
		places[i] = model.PlaceRecord{Name: "p"}
	}

	want := []string{"0x111111", "0x222222", "0x111111", "0x222222", "0x111111"}
	for i, m := range s.Synthesize(places, false) {
		if m.Color != want[i] {
			t.Errorf("marker %d: expected %s, got %s", i, want[i], m.Color)
		}
		if s.ColorFor(i) != m.Color {
			t.Errorf("ColorFor(%d) disagrees with marker colour", i)
		}
	}
}

func TestSynthesize_Empty(t *testing.T) {
	s := NewSynthesizer(nil, model.DefaultNameOffset)
	if markers := s.Synthesize(nil, true); len(markers) != 0 {
		t.Errorf("Expected no markers, got %d", len(markers))
	}
}
