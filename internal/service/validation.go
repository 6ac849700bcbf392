package service

import "github.com/fairyhunter13/cart-offer-service/internal/model"

// ValidateOffer checks the invariants every stored offer must hold.
// Unknown offer types are allowed; they are inert during selection.
func ValidateOffer(offer *model.Offer) error {
	if offer == nil {
		return &ValidationError{Reason: "offer is required"}
	}
	if offer.DiscountValue < 0 {
		return &ValidationError{Field: "discount", Reason: "must not be negative"}
	}
	if len(offer.Segments) == 0 {
		return &ValidationError{Field: "segments", Reason: "must not be empty"}
	}
	return nil
}
