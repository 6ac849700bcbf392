package handler

import (
	"context"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/cart-offer-service/internal/model"
	"github.com/fairyhunter13/cart-offer-service/internal/service"
)

// OfferServiceInterface defines the offer catalog operations of the engine.
type OfferServiceInterface interface {
	AddOffer(ctx context.Context, role model.Role, req *model.CreateOfferRequest) (*model.Offer, error)
	ListOffers(ctx context.Context, role model.Role, restaurantID int64) ([]model.Offer, error)
}

// OfferHandler handles HTTP requests for offer operations.
type OfferHandler struct {
	service OfferServiceInterface
	roles   *RoleResolver
}

// NewOfferHandler creates a new OfferHandler with the given service and role resolver.
func NewOfferHandler(svc OfferServiceInterface, roles *RoleResolver) *OfferHandler {
	return &OfferHandler{service: svc, roles: roles}
}

// CreateOffer handles POST /api/v1/offer requests.
func (h *OfferHandler) CreateOffer(c *fiber.Ctx) error {
	role := h.roles.Role(c)

	var req model.CreateOfferRequest
	body, parsed := parseBody(c, &req)

	// The access gate runs before the body is inspected.
	offer, err := h.service.AddOffer(c.UserContext(), role, body)
	if err != nil {
		logDenied(c, err, model.OperationAddOffer)
		if !parsed && errors.Is(err, service.ErrValidation) {
			return badBody(c)
		}
		return writeError(c, err, model.OperationAddOffer)
	}

	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("offer_id", offer.ID).
		Int64("restaurant_id", offer.RestaurantID).
		Str("offer_type", string(offer.OfferType)).
		Int64("discount", offer.DiscountValue).
		Strs("segments", offer.Segments).
		Msg("offer added")

	return c.Status(fiber.StatusOK).JSON(model.CreateOfferResponse{ResponseMsg: "success", ID: offer.ID})
}

// ListOffers handles GET /api/v1/offer/:restaurantId requests.
func (h *OfferHandler) ListOffers(c *fiber.Ctx) error {
	role := h.roles.Role(c)

	restaurantID, err := strconv.ParseInt(c.Params("restaurantId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request: restaurantId must be an integer",
		})
	}

	offers, err := h.service.ListOffers(c.UserContext(), role, restaurantID)
	if err != nil {
		logDenied(c, err, model.OperationListOffers)
		return writeError(c, err, model.OperationListOffers)
	}

	return c.JSON(model.OffersResponse{RestaurantID: restaurantID, Offers: offers})
}
