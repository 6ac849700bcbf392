package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/fairyhunter13/cart-offer-service/internal/metrics"
	"github.com/fairyhunter13/cart-offer-service/internal/model"
)

// OfferStoreInterface defines the offer catalog operations the engine needs.
type OfferStoreInterface interface {
	Add(ctx context.Context, offer *model.Offer) error
	ListByRestaurant(ctx context.Context, restaurantID int64) ([]model.Offer, error)
}

// SegmentResolver looks up the segment of a user. It never fails: lookup
// problems come back as an unresolved segment.
type SegmentResolver interface {
	Resolve(ctx context.Context, userID int64) model.Segment
}

// Gate is the access check run before every engine operation.
type Gate interface {
	CheckAdd(role model.Role) error
	CheckApply(role model.Role, clientID string) error
	CheckList(role model.Role) error
}

// OfferEngine orchestrates access control, the offer store, segment
// resolution and discount selection.
type OfferEngine struct {
	gate      Gate
	store     OfferStoreInterface
	resolver  SegmentResolver
	validator *validator.Validate
	tracer    trace.Tracer
	now       func() time.Time
}

// NewOfferEngine creates a new OfferEngine with the given collaborators.
func NewOfferEngine(gate Gate, store OfferStoreInterface, resolver SegmentResolver, v *validator.Validate) *OfferEngine {
	return &OfferEngine{
		gate:      gate,
		store:     store,
		resolver:  resolver,
		validator: v,
		tracer:    otel.Tracer("github.com/fairyhunter13/cart-offer-service/internal/service"),
		now:       time.Now,
	}
}

// AddOffer stores a new offer for the caller.
// Returns ErrAuthenticationMissing or ErrAuthorizationDenied before touching the store,
// and a *ValidationError if the request is malformed.
func (e *OfferEngine) AddOffer(ctx context.Context, role model.Role, req *model.CreateOfferRequest) (*model.Offer, error) {
	if err := e.gate.CheckAdd(role); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &ValidationError{Reason: "request body is required"}
	}
	if err := e.validator.Struct(req); err != nil {
		return nil, &ValidationError{Reason: "invalid offer", Cause: err}
	}

	offer := &model.Offer{
		ID:            uuid.NewString(),
		RestaurantID:  *req.RestaurantID,
		OfferType:     model.ParseOfferType(req.OfferType),
		DiscountValue: *req.Discount,
		Segments:      append([]string(nil), req.Segments...),
		CreatedAt:     e.now(),
	}
	if err := e.store.Add(ctx, offer); err != nil {
		return nil, fmt.Errorf("store offer: %w", err)
	}

	metrics.OffersAdded.Inc()
	if !offer.OfferType.Known() {
		log.Warn().
			Str("offer_id", offer.ID).
			Str("offer_type", string(offer.OfferType)).
			Msg("offer stored with unrecognized type, it will never be applied")
	}
	return offer, nil
}

// ListOffers returns the offers defined for a restaurant in insertion order.
func (e *OfferEngine) ListOffers(ctx context.Context, role model.Role, restaurantID int64) ([]model.Offer, error) {
	if err := e.gate.CheckList(role); err != nil {
		return nil, err
	}
	offers, err := e.store.ListByRestaurant(ctx, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}
	return offers, nil
}

// ApplyOffer computes the cart value after the best eligible discount.
// Access failures short-circuit before any segment lookup or store read.
// A failed segment lookup applies no offer rather than failing the request.
func (e *OfferEngine) ApplyOffer(ctx context.Context, role model.Role, clientID string, req *model.ApplyOfferRequest) (*model.AppliedOffer, error) {
	if err := e.gate.CheckApply(role, clientID); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, &ValidationError{Reason: "request body is required"}
	}
	if err := e.validator.Struct(req); err != nil {
		return nil, &ValidationError{Reason: "invalid cart", Cause: err}
	}

	ctx, span := e.tracer.Start(ctx, "OfferEngine.ApplyOffer", trace.WithAttributes(
		attribute.Int64("restaurant_id", *req.RestaurantID),
		attribute.Int64("user_id", *req.UserID),
	))
	defer span.End()

	segment := model.UnresolvedSegment()
	if !req.SimulateSegmentNull {
		segment = e.resolver.Resolve(ctx, *req.UserID)
	}
	// The request deadline may have passed while the segment service answered.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	offers, err := e.store.ListByRestaurant(ctx, *req.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("list offers: %w", err)
	}

	sel := SelectBestDiscount(*req.CartValue, offers, segment.String())
	result := &model.AppliedOffer{
		CartValue:      *req.CartValue,
		Discount:       sel.Discount,
		FinalCartValue: sel.FinalCartValue,
		Segment:        segment,
	}

	outcome := "no_offer"
	if sel.Offer != nil {
		applied := sel.Offer.Clone()
		result.Offer = &applied
		outcome = "applied"
		span.SetAttributes(attribute.String("offer_id", applied.ID))
	}
	metrics.ApplyOutcomes.WithLabelValues(outcome).Inc()
	span.SetAttributes(
		attribute.String("segment", segment.String()),
		attribute.Int64("discount", sel.Discount),
	)

	log.Debug().
		Int64("restaurant_id", *req.RestaurantID).
		Int64("user_id", *req.UserID).
		Str("segment", segment.String()).
		Int("candidate_offers", len(offers)).
		Int64("discount", sel.Discount).
		Str("outcome", outcome).
		Msg("offer evaluation finished")

	return result, nil
}

// IsAccessError reports whether err came from the access gate.
func IsAccessError(err error) bool {
	return errors.Is(err, ErrAuthenticationMissing) ||
		errors.Is(err, ErrAuthorizationDenied) ||
		errors.Is(err, ErrRateLimited)
}
