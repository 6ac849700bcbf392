package handler

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/cart-offer-service/internal/model"
	"github.com/fairyhunter13/cart-offer-service/internal/service"
)

// CartServiceInterface defines the apply-offer operation of the engine.
type CartServiceInterface interface {
	ApplyOffer(ctx context.Context, role model.Role, clientID string, req *model.ApplyOfferRequest) (*model.AppliedOffer, error)
}

// CartHandler handles HTTP requests for cart operations.
type CartHandler struct {
	service CartServiceInterface
	roles   *RoleResolver
}

// NewCartHandler creates a new CartHandler with the given service and role resolver.
func NewCartHandler(svc CartServiceInterface, roles *RoleResolver) *CartHandler {
	return &CartHandler{service: svc, roles: roles}
}

// ApplyOffer handles POST /api/v1/cart/apply_offer requests.
func (h *CartHandler) ApplyOffer(c *fiber.Ctx) error {
	role := h.roles.Role(c)

	var req model.ApplyOfferRequest
	body, parsed := parseBody(c, &req)

	result, err := h.service.ApplyOffer(c.UserContext(), role, clientID(c), body)
	if err != nil {
		logDenied(c, err, model.OperationApplyOffer)
		if !parsed && errors.Is(err, service.ErrValidation) {
			return badBody(c)
		}
		return writeError(c, err, model.OperationApplyOffer)
	}

	event := log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Int64("restaurant_id", *req.RestaurantID).
		Int64("user_id", *req.UserID).
		Str("segment", result.Segment.String()).
		Int64("cart_value", result.CartValue).
		Int64("discount", result.Discount).
		Int64("final_cart_value", result.FinalCartValue)
	if result.Offer != nil {
		event = event.Str("offer_id", result.Offer.ID)
	}
	event.Msg("offer evaluated")

	return c.JSON(model.ApplyOfferResponse{CartValue: result.FinalCartValue})
}
