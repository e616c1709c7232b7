package models

// Macros is the nutritional estimate for one meal. All values are
// non-negative integers; calories are stored exactly as the analysis
// reported them, with no reconciliation against the gram fields.
type Macros struct {
	Calories int `json:"calories"`
	Protein  int `json:"protein"`
	Carbs    int `json:"carbs"`
	Fat      int `json:"fat"`
}

// Add returns the element-wise sum of m and other.
func (m Macros) Add(other Macros) Macros {
	return Macros{
		Calories: m.Calories + other.Calories,
		Protein:  m.Protein + other.Protein,
		Carbs:    m.Carbs + other.Carbs,
		Fat:      m.Fat + other.Fat,
	}
}

// MealRecord is one logged meal. Records are immutable once created;
// Image is a self-contained data URL so the record renders without any
// further network access, and RawText keeps the original analysis answer
// for display. It is never re-parsed after creation.
type MealRecord struct {
	ID        string `json:"id"`
	Timestamp int64  `json:"timestamp"` // unix milliseconds
	Image     string `json:"image"`
	Macros    Macros `json:"macros"`
	RawText   string `json:"rawText"`
}

// SumMacros recomputes the aggregate across the whole collection on every
// call. There is deliberately no cached running total: the collection is
// the single source of truth, so the sum can never drift after an insert,
// delete or reload.
func SumMacros(records []MealRecord) Macros {
	var total Macros
	for _, r := range records {
		total = total.Add(r.Macros)
	}
	return total
}
