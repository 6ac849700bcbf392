package service

import (
	"math"
	"math/bits"

	"github.com/fairyhunter13/cart-offer-service/internal/model"
)

// Selection is the result of choosing the best discount for a cart.
type Selection struct {
	Offer          *model.Offer // nil when no offer applies
	Discount       int64        // clamped to the cart value
	FinalCartValue int64
}

// SelectBestDiscount picks the offer with the largest absolute discount among
// those targeting segment. Ties go to the earliest offer in the slice. The
// discount is clamped so the final cart value never drops below zero.
// A negative cartValue is treated as zero.
func SelectBestDiscount(cartValue int64, offers []model.Offer, segment string) Selection {
	if cartValue < 0 {
		cartValue = 0
	}
	none := Selection{FinalCartValue: cartValue}
	if segment == "" || segment == model.SegmentUnknown {
		return none
	}

	var best *model.Offer
	var bestAmount int64
	for i := range offers {
		offer := &offers[i]
		if !offer.AppliesTo(segment) {
			continue
		}
		amount := DiscountAmount(cartValue, offer)
		if amount > bestAmount {
			best, bestAmount = offer, amount
		}
	}
	if best == nil {
		return none
	}

	discount := min(bestAmount, cartValue)
	return Selection{
		Offer:          best,
		Discount:       discount,
		FinalCartValue: cartValue - discount,
	}
}

// DiscountAmount computes the unclamped discount an offer grants on cartValue.
// Unknown offer types and negative inputs yield zero.
func DiscountAmount(cartValue int64, offer *model.Offer) int64 {
	if cartValue < 0 || offer.DiscountValue < 0 {
		return 0
	}
	switch offer.OfferType {
	case model.OfferTypeFlat:
		return offer.DiscountValue
	case model.OfferTypePercent:
		return percentOf(cartValue, offer.DiscountValue)
	default:
		return 0
	}
}

// percentOf returns floor(value*percent/100) without intermediate overflow,
// saturating at math.MaxInt64.
func percentOf(value, percent int64) int64 {
	hi, lo := bits.Mul64(uint64(value), uint64(percent))
	if hi >= 100 {
		return math.MaxInt64
	}
	q, _ := bits.Div64(hi, lo, 100)
	if q > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(q)
}
