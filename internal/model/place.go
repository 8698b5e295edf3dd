package model

import "strings"

// PlaceRecord is one extracted location
type PlaceRecord struct {
	Name      string  `json:"name"`           // Display label, never empty
	Latitude  float64 `json:"latitude"`       // Decimal degrees in [-90, 90]
	Longitude float64 `json:"longitude"`      // Decimal degrees in [-180, 180]
	Fact      string  `json:"fact"`           // Untrusted free text, escape before display
	Kind      string  `json:"type,omitempty"` // Raw kind as returned by extraction
}

// PlaceKind classifies a record for scope and display decisions
type PlaceKind string

const (
	KindCountry  PlaceKind = "country"
	KindCity     PlaceKind = "city"
	KindRegion   PlaceKind = "region"
	KindLandmark PlaceKind = "landmark"
	KindSite     PlaceKind = "site"
	KindUnknown  PlaceKind = "unknown"
)

var knownKinds = map[string]PlaceKind{
	"country":  KindCountry,
	"city":     KindCity,
	"region":   KindRegion,
	"landmark": KindLandmark,
	"site":     KindSite,
}

// KindClass maps the raw kind onto the known enumeration.
// Unrecognized values classify as KindUnknown; the raw value is kept on the record.
func (p PlaceRecord) KindClass() PlaceKind {
	if k, ok := knownKinds[strings.ToLower(strings.TrimSpace(p.Kind))]; ok {
		return k
	}
	return KindUnknown
}

// Coordinate is a geographic point in decimal degrees
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Coordinate returns the record's position
func (p PlaceRecord) Coordinate() Coordinate {
	return Coordinate{Latitude: p.Latitude, Longitude: p.Longitude}
}

// Scope is the administrative boundary granularity chosen for a result set
type Scope string

const (
	ScopeCountry  Scope = "country"
	ScopeProvince Scope = "province"
)

// BoundaryFeature returns the map feature that draws this scope's borders
func (s Scope) BoundaryFeature() string {
	if s == ScopeCountry {
		return FeatureCountryBoundary
	}
	return FeatureProvinceBoundary
}

// Other returns the scope whose boundary layer must stay hidden
func (s Scope) Other() Scope {
	if s == ScopeCountry {
		return ScopeProvince
	}
	return ScopeCountry
}
