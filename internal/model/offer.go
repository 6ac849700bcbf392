package model

import (
	"strings"
	"time"
)

// OfferType is the discount kind of an offer. Values outside the known set are
// stored as received and never produce a discount.
type OfferType string

const (
	OfferTypeFlat    OfferType = "FLAT"
	OfferTypePercent OfferType = "PERCENT"
)

// ParseOfferType normalizes the accepted wire spellings. FLATX and FLATX% are
// the names used by existing clients.
func ParseOfferType(raw string) OfferType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "FLAT", "FLATX":
		return OfferTypeFlat
	case "PERCENT", "FLATX%":
		return OfferTypePercent
	default:
		return OfferType(raw)
	}
}

// Known reports whether the type yields a discount.
func (t OfferType) Known() bool {
	return t == OfferTypeFlat || t == OfferTypePercent
}

// Offer is a discount defined for a restaurant and a set of user segments.
// Offers are never mutated after creation.
type Offer struct {
	ID            string    `json:"id"`
	RestaurantID  int64     `json:"restaurantId"`
	OfferType     OfferType `json:"offerType"`
	DiscountValue int64     `json:"discount"`
	Segments      []string  `json:"segments"`
	CreatedAt     time.Time `json:"-"`
}

// Clone returns a copy that shares no memory with o.
func (o Offer) Clone() Offer {
	o.Segments = append([]string(nil), o.Segments...)
	return o
}

// AppliesTo reports whether the offer targets the given segment label.
func (o *Offer) AppliesTo(segment string) bool {
	for _, s := range o.Segments {
		if s == segment {
			return true
		}
	}
	return false
}

// CreateOfferRequest is the DTO for POST /api/v1/offer
type CreateOfferRequest struct {
	RestaurantID *int64   `json:"restaurantId" validate:"required"`
	OfferType    string   `json:"offerType" validate:"required,notblank,max=32"`
	Discount     *int64   `json:"discount" validate:"required,gte=0"`
	Segments     []string `json:"segments" validate:"required,min=1,dive,notblank,max=64"`
}

// CreateOfferResponse is returned after an offer is stored.
type CreateOfferResponse struct {
	ResponseMsg string `json:"response_msg"`
	ID          string `json:"id"`
}

// OffersResponse is the API response DTO for GET /api/v1/offer/:restaurantId
type OffersResponse struct {
	RestaurantID int64   `json:"restaurantId"`
	Offers       []Offer `json:"offers"`
}
