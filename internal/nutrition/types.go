// Package nutrition holds the domain value types shared by the tracker:
// per-100-unit macro profiles, extraction drafts, logged entries, and
// aggregated totals.
package nutrition

import "fmt"

// Profile is a per-100-unit macro estimate for a food item.
// Values are kilocalories (Calories) and grams (the rest), all >= 0.
// Once cached, a Profile is treated as a fact about the food label,
// not about any particular eaten instance.
type Profile struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// Validate rejects negative macro values.
func (p Profile) Validate() error {
	if p.Calories < 0 || p.Protein < 0 || p.Carbs < 0 || p.Fat < 0 {
		return fmt.Errorf("nutrition profile has negative values: %+v", p)
	}
	return nil
}

// Scale returns the profile applied to a quantity, treating the profile as
// per-100-units. No unit conversion happens here: a draft reporting "ml" or
// "unit" is scaled the same way as grams.
func (p Profile) Scale(quantity float64) Profile {
	m := quantity / 100.0
	return Profile{
		Calories: p.Calories * m,
		Protein:  p.Protein * m,
		Carbs:    p.Carbs * m,
		Fat:      p.Fat * m,
	}
}

// Draft is the structured guess produced by the extraction adapter for one
// free-text meal description. Its per-100g estimates are untrusted and may
// be discarded in favor of a cached profile.
type Draft struct {
	FoodItem     string
	Quantity     float64
	QuantityUnit string
	PerHundred   Profile
}

// Entry is one confirmed meal-logging event. Macro fields are already
// scaled to Quantity. Entries are append-only and never mutated.
type Entry struct {
	ID           int64
	Timestamp    string
	FoodItem     string
	Quantity     float64
	QuantityUnit string
	Calories     float64
	Protein      float64
	Carbs        float64
	Fat          float64
}

// Totals is a sum of macro fields over a set of entries.
type Totals struct {
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
}
