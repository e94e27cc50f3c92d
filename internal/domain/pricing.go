package domain

type MealPlan string

const (
	MealPlanNone      MealPlan = "none"
	MealPlanBreakfast MealPlan = "breakfast"
	MealPlanHalfBoard MealPlan = "half_board"
	MealPlanFullBoard MealPlan = "full_board"
)

// Valid reports whether p is a known meal plan. The empty string is
// accepted and treated as MealPlanNone by the pricing engine.
func (p MealPlan) Valid() bool {
	switch p {
	case "", MealPlanNone, MealPlanBreakfast, MealPlanHalfBoard, MealPlanFullBoard:
		return true
	}
	return false
}

// Extra is a flat add-on charged per unit (airport transfer, crib, ...).
type Extra struct {
	Code        string `json:"code"`
	AmountCents int64  `json:"amount_cents"`
	Quantity    int    `json:"quantity"`
}

// Quote is the structured price breakdown for one room line, all
// amounts in integer cents.
type Quote struct {
	Nights        int
	RoomCents     int64
	MealPlanCents int64
	ExtrasCents   int64
	SubtotalCents int64
	TaxCents      int64
	TotalCents    int64
}
