package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fairyhunter13/cart-offer-service/internal/model"
	"github.com/fairyhunter13/cart-offer-service/internal/service"
)

// PoolInterface defines the database operations needed by repositories.
// This allows for easier testing with mocks.
type PoolInterface interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// OfferRepository provides data access for offers using pgx.
type OfferRepository struct {
	pool PoolInterface
}

// NewOfferRepository creates a new OfferRepository with the given pool.
func NewOfferRepository(pool *pgxpool.Pool) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// NewOfferRepositoryWithPool creates a new OfferRepository with a custom pool interface.
// This is primarily used for testing.
func NewOfferRepositoryWithPool(pool PoolInterface) *OfferRepository {
	return &OfferRepository{pool: pool}
}

// Add inserts an offer. The seq column preserves insertion order.
// Returns a *service.ValidationError if the offer is invalid.
func (r *OfferRepository) Add(ctx context.Context, offer *model.Offer) error {
	if err := service.ValidateOffer(offer); err != nil {
		return err
	}

	_, err := r.pool.Exec(ctx,
		`INSERT INTO offers (id, restaurant_id, offer_type, discount_value, segments, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		offer.ID, offer.RestaurantID, string(offer.OfferType), offer.DiscountValue, offer.Segments, offer.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert offer: %w", err)
	}
	return nil
}

// ListByRestaurant returns the restaurant's offers in insertion order.
// Returns an empty slice when the restaurant has none.
func (r *OfferRepository) ListByRestaurant(ctx context.Context, restaurantID int64) ([]model.Offer, error) {
	query := `SELECT id, restaurant_id, offer_type, discount_value, segments, created_at
		FROM offers WHERE restaurant_id = $1 ORDER BY seq`

	rows, err := r.pool.Query(ctx, query, restaurantID)
	if err != nil {
		return nil, fmt.Errorf("query offers for restaurant %d: %w", restaurantID, err)
	}
	defer rows.Close()

	offers := []model.Offer{}
	for rows.Next() {
		var (
			offer     model.Offer
			offerType string
		)
		if err := rows.Scan(
			&offer.ID,
			&offer.RestaurantID,
			&offerType,
			&offer.DiscountValue,
			&offer.Segments,
			&offer.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan offer: %w", err)
		}
		offer.OfferType = model.OfferType(offerType)
		offers = append(offers, offer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate offers: %w", err)
	}
	return offers, nil
}
