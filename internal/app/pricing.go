package app

import (
	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

// Default meal-plan surcharges per adult per night, in cents.
var defaultMealPlanRates = map[domain.MealPlan]int64{
	domain.MealPlanNone:      0,
	domain.MealPlanBreakfast: 1500,
	domain.MealPlanHalfBoard: 3500,
	domain.MealPlanFullBoard: 5500,
}

// PricingEngine computes quotes from current rates. It has no side
// effects and is fully deterministic, so the orchestrator can re-derive
// a hold's price at confirmation time and detect divergence.
type PricingEngine struct {
	mealPlanRates  map[domain.MealPlan]int64
	taxBasisPoints int64
}

type PricingOption func(*PricingEngine)

// WithTaxBasisPoints sets the tax applied on the subtotal, in basis
// points (e.g. 750 = 7.5%).
func WithTaxBasisPoints(bp int64) PricingOption {
	return func(e *PricingEngine) {
		if bp >= 0 {
			e.taxBasisPoints = bp
		}
	}
}

// WithMealPlanRate overrides the per-adult per-night surcharge for one plan.
func WithMealPlanRate(plan domain.MealPlan, cents int64) PricingOption {
	return func(e *PricingEngine) {
		e.mealPlanRates[plan] = cents
	}
}

func NewPricingEngine(opts ...PricingOption) *PricingEngine {
	e := &PricingEngine{
		mealPlanRates: make(map[domain.MealPlan]int64, len(defaultMealPlanRates)),
	}
	for plan, cents := range defaultMealPlanRates {
		e.mealPlanRates[plan] = cents
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// QuoteLine prices quantity rooms of roomType over stay with the given
// meal plan and adults count, plus flat extras.
func (e *PricingEngine) QuoteLine(roomType domain.RoomType, stay domain.StayRange, quantity int, plan domain.MealPlan, adults int, extras []domain.Extra) (domain.Quote, error) {
	if quantity <= 0 {
		return domain.Quote{}, domain.ErrInvalidQuantity
	}
	if !plan.Valid() {
		return domain.Quote{}, domain.ErrInvalidQuantity
	}
	nights := stay.Nights()
	if nights <= 0 {
		return domain.Quote{}, domain.ErrInvalidDateRange
	}
	if adults < 0 {
		adults = 0
	}

	q := domain.Quote{Nights: nights}
	q.RoomCents = roomType.BaseRateCents * int64(nights) * int64(quantity)
	q.MealPlanCents = e.mealPlanRates[normalizePlan(plan)] * int64(adults) * int64(nights)
	for _, extra := range extras {
		qty := extra.Quantity
		if qty <= 0 {
			qty = 1
		}
		q.ExtrasCents += extra.AmountCents * int64(qty)
	}
	q.SubtotalCents = q.RoomCents + q.MealPlanCents + q.ExtrasCents
	q.TaxCents = q.SubtotalCents * e.taxBasisPoints / 10000
	q.TotalCents = q.SubtotalCents + q.TaxCents
	return q, nil
}

// QuoteExtras prices hold-level extras on their own, with tax applied
// the same way as room lines.
func (e *PricingEngine) QuoteExtras(extras []domain.Extra) domain.Quote {
	var q domain.Quote
	for _, extra := range extras {
		qty := extra.Quantity
		if qty <= 0 {
			qty = 1
		}
		q.ExtrasCents += extra.AmountCents * int64(qty)
	}
	q.SubtotalCents = q.ExtrasCents
	q.TaxCents = q.SubtotalCents * e.taxBasisPoints / 10000
	q.TotalCents = q.SubtotalCents + q.TaxCents
	return q
}

func normalizePlan(plan domain.MealPlan) domain.MealPlan {
	if plan == "" {
		return domain.MealPlanNone
	}
	return plan
}
