package style

import "github.com/ppiankov/atlasprompt/internal/model"

// multiCountryThreshold is the number of country records that makes a query international
const multiCountryThreshold = 2

// ClassifyScope picks the boundary granularity for a result set.
// Two or more country records foreground country borders; anything else
// (including an empty set) uses province borders.
func ClassifyScope(records []model.PlaceRecord) model.Scope {
	countries := 0
	for _, r := range records {
		if r.KindClass() == model.KindCountry {
			countries++
		}
	}

	if countries >= multiCountryThreshold {
		return model.ScopeCountry
	}
	return model.ScopeProvince
}
