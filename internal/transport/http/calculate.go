package http

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/KareemA-Saad/aqar-api-sub003/internal/app"
	"github.com/KareemA-Saad/aqar-api-sub003/internal/domain"
)

// QuoteProvider is the minimal interface needed for price previews.
type QuoteProvider interface {
	QuoteStay(ctx context.Context, in app.CreateHoldInput) (app.StayQuote, error)
}

// HandleCalculate returns an HTTP handler for the side-effect-free
// price quote.
func HandleCalculate(svc QuoteProvider) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
			return
		}

		in, ok := decodeStayRequest(w, r)
		if !ok {
			return
		}

		quote, err := svc.QuoteStay(r.Context(), in)
		if err != nil {
			writeDomainError(w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(toQuoteResponse(quote))
	}
}

type roomRequestBody struct {
	RoomTypeID string `json:"room_type_id"`
	Quantity   int    `json:"quantity"`
	MealPlan   string `json:"meal_plan"`
	Adults     int    `json:"adults"`
}

type extraBody struct {
	Code        string `json:"code"`
	AmountCents int64  `json:"amount_cents"`
	Quantity    int    `json:"quantity"`
}

type stayRequest struct {
	CheckIn  string            `json:"check_in"`
	CheckOut string            `json:"check_out"`
	Rooms    []roomRequestBody `json:"rooms"`
	Extras   []extraBody       `json:"extras"`
}

func decodeStayRequest(w http.ResponseWriter, r *http.Request) (app.CreateHoldInput, bool) {
	var req stayRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidRequestBody, "invalid request body")
		return app.CreateHoldInput{}, false
	}

	checkIn, err := time.Parse("2006-01-02", req.CheckIn)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidDateRange, "invalid check_in format, want YYYY-MM-DD")
		return app.CreateHoldInput{}, false
	}
	checkOut, err := time.Parse("2006-01-02", req.CheckOut)
	if err != nil {
		writeError(w, http.StatusBadRequest, codeInvalidDateRange, "invalid check_out format, want YYYY-MM-DD")
		return app.CreateHoldInput{}, false
	}
	if len(req.Rooms) == 0 {
		writeError(w, http.StatusBadRequest, codeInvalidQuantity, "at least one room is required")
		return app.CreateHoldInput{}, false
	}

	in := app.CreateHoldInput{CheckIn: checkIn, CheckOut: checkOut}
	for _, room := range req.Rooms {
		if room.RoomTypeID == "" {
			writeError(w, http.StatusBadRequest, codeInvalidID, "room_type_id is required")
			return app.CreateHoldInput{}, false
		}
		if room.Quantity <= 0 {
			writeError(w, http.StatusBadRequest, codeInvalidQuantity, domain.ErrInvalidQuantity.Error())
			return app.CreateHoldInput{}, false
		}
		in.Rooms = append(in.Rooms, app.RoomRequest{
			RoomTypeID: room.RoomTypeID,
			Quantity:   room.Quantity,
			MealPlan:   domain.MealPlan(room.MealPlan),
			Adults:     room.Adults,
		})
	}
	for _, extra := range req.Extras {
		in.Extras = append(in.Extras, domain.Extra{
			Code:        extra.Code,
			AmountCents: extra.AmountCents,
			Quantity:    extra.Quantity,
		})
	}
	return in, true
}

type lineQuoteResponse struct {
	RoomTypeID    string `json:"room_type_id"`
	RoomName      string `json:"room_name"`
	Quantity      int    `json:"quantity"`
	RoomCents     int64  `json:"room_cents"`
	MealPlanCents int64  `json:"meal_plan_cents"`
	TaxCents      int64  `json:"tax_cents"`
	TotalCents    int64  `json:"total_cents"`
}

type quoteResponse struct {
	Nights      int                 `json:"nights"`
	Lines       []lineQuoteResponse `json:"lines"`
	ExtrasCents int64               `json:"extras_cents"`
	TotalCents  int64               `json:"total_cents"`
}

func toQuoteResponse(quote app.StayQuote) quoteResponse {
	resp := quoteResponse{
		Nights:      quote.Nights,
		Lines:       make([]lineQuoteResponse, 0, len(quote.Lines)),
		ExtrasCents: quote.ExtrasCents,
		TotalCents:  quote.TotalCents,
	}
	for _, line := range quote.Lines {
		resp.Lines = append(resp.Lines, lineQuoteResponse{
			RoomTypeID:    line.RoomTypeID,
			RoomName:      line.RoomName,
			Quantity:      line.Quantity,
			RoomCents:     line.Quote.RoomCents,
			MealPlanCents: line.Quote.MealPlanCents,
			TaxCents:      line.Quote.TaxCents,
			TotalCents:    line.Quote.TotalCents,
		})
	}
	return resp
}
