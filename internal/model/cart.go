package model

// ApplyOfferRequest is the DTO for POST /api/v1/cart/apply_offer
type ApplyOfferRequest struct {
	CartValue    *int64 `json:"cart_value" validate:"required,gte=0"`
	UserID       *int64 `json:"user_id" validate:"required"`
	RestaurantID *int64 `json:"restaurant_id" validate:"required"`

	// SimulateSegmentNull forces an unresolved segment without calling the
	// segment service.
	SimulateSegmentNull bool `json:"simulate_segment_null"`
}

// ApplyOfferResponse carries the cart value after the best discount.
type ApplyOfferResponse struct {
	CartValue int64 `json:"cart_value"`
}

// AppliedOffer is the outcome of an apply-offer call.
type AppliedOffer struct {
	CartValue      int64
	Discount       int64
	FinalCartValue int64
	Segment        Segment
	Offer          *Offer // nil when no offer was applied
}
