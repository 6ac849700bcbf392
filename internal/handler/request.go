package handler

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/fairyhunter13/cart-offer-service/internal/model"
	"github.com/fairyhunter13/cart-offer-service/internal/ratelimit"
	"github.com/fairyhunter13/cart-offer-service/internal/service"
)

const (
	// HeaderRole carries the caller role.
	HeaderRole = "user_role"
	// HeaderUserID identifies the caller for rate limiting.
	HeaderUserID = "user_id"
)

// RoleResolver extracts the caller role from request headers.
type RoleResolver struct {
	anonymous model.Role
}

// NewRoleResolver creates a RoleResolver. anonymousRole, when non-empty, is
// assumed for requests without a role header.
func NewRoleResolver(anonymousRole string) *RoleResolver {
	role, _ := model.ParseRole(anonymousRole)
	return &RoleResolver{anonymous: role}
}

// Role returns the request's role. Unknown values yield an empty role,
// which the access gate treats as unauthenticated.
func (r *RoleResolver) Role(c *fiber.Ctx) model.Role {
	raw := c.Get(HeaderRole)
	if strings.TrimSpace(raw) == "" {
		return r.anonymous
	}
	role, _ := model.ParseRole(raw)
	return role
}

// clientID picks the rate limit key: user_id header, then remote IP.
func clientID(c *fiber.Ctx) string {
	if id := strings.TrimSpace(c.Get(HeaderUserID)); id != "" {
		return "user:" + id
	}
	if ip := c.IP(); ip != "" {
		return "ip:" + ip
	}
	return ratelimit.GlobalKey
}

// parseBody decodes the request body into dst. It returns nil and false when
// the body is malformed; the engine then reports a validation error after
// its access checks.
func parseBody[T any](c *fiber.Ctx, dst *T) (*T, bool) {
	if err := c.BodyParser(dst); err != nil {
		log.Debug().Err(err).Str("path", c.Path()).Msg("malformed request body")
		return nil, false
	}
	return dst, true
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
}

// formatValidationError converts validation failures to client messages.
func formatValidationError(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		for _, fe := range ve {
			field := fe.Field()
			switch fe.Tag() {
			case "required":
				return "invalid request: " + field + " is required"
			case "gte":
				return "invalid request: " + field + " must be at least " + fe.Param()
			case "min":
				return "invalid request: " + field + " must not be empty"
			case "notblank":
				return "invalid request: " + field + " cannot be blank"
			case "max":
				return "invalid request: " + field + " exceeds maximum length of " + fe.Param()
			default:
				return "invalid request: " + field + " is invalid"
			}
		}
	}
	var vErr *service.ValidationError
	if errors.As(err, &vErr) && vErr.Field != "" {
		return "invalid request: " + vErr.Field + " " + vErr.Reason
	}
	return "invalid request"
}

// writeError maps engine errors to HTTP responses.
func writeError(c *fiber.Ctx, err error, op model.Operation) error {
	switch {
	case errors.Is(err, service.ErrValidation):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": formatValidationError(err)})
	case errors.Is(err, service.ErrAuthenticationMissing):
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "authentication required"})
	case errors.Is(err, service.ErrAuthorizationDenied):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "forbidden"})
	case errors.Is(err, service.ErrRateLimited):
		var rl *service.RateLimitedError
		if errors.As(err, &rl) && rl.RetryAfter > 0 {
			secs := int(math.Ceil(rl.RetryAfter.Seconds()))
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
		}
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded"})
	case errors.Is(err, context.DeadlineExceeded):
		log.Warn().
			Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
			Str("path", c.Path()).
			Str("operation", string(op)).
			Msg("request deadline exceeded")
		return c.Status(fiber.StatusRequestTimeout).JSON(fiber.Map{"error": "request timed out"})
	}

	log.Error().
		Err(err).
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Str("operation", string(op)).
		Msg("request failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
}

// logDenied records access gate rejections.
func logDenied(c *fiber.Ctx, err error, op model.Operation) {
	if !service.IsAccessError(err) {
		return
	}
	log.Info().
		Str("request_id", c.GetRespHeader(fiber.HeaderXRequestID)).
		Str("path", c.Path()).
		Str("operation", string(op)).
		Str("reason", err.Error()).
		Msg("request rejected by access gate")
}
