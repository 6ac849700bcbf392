package repository

import (
	"context"
	"sync"

	"github.com/fairyhunter13/cart-offer-service/internal/model"
	"github.com/fairyhunter13/cart-offer-service/internal/service"
)

// restaurantOffers is the offer list of one restaurant behind its own lock.
type restaurantOffers struct {
	mu     sync.RWMutex
	offers []model.Offer
}

// MemoryOfferStore keeps offers in process memory, keyed by restaurant.
// Each restaurant has its own reader-writer lock so writers to one
// restaurant never block readers of another.
type MemoryOfferStore struct {
	mu          sync.RWMutex
	restaurants map[int64]*restaurantOffers
}

// NewMemoryOfferStore creates an empty store.
func NewMemoryOfferStore() *MemoryOfferStore {
	return &MemoryOfferStore{restaurants: make(map[int64]*restaurantOffers)}
}

// Add appends an offer to its restaurant's list. Duplicates are allowed.
// Returns a *service.ValidationError if the offer is invalid; nothing is stored then.
func (s *MemoryOfferStore) Add(ctx context.Context, offer *model.Offer) error {
	if err := service.ValidateOffer(offer); err != nil {
		return err
	}

	stored := offer.Clone()

	entry := s.entry(offer.RestaurantID)
	entry.mu.Lock()
	entry.offers = append(entry.offers, stored)
	entry.mu.Unlock()
	return nil
}

// ListByRestaurant returns a snapshot of the restaurant's offers in insertion
// order, or an empty slice when none exist.
func (s *MemoryOfferStore) ListByRestaurant(ctx context.Context, restaurantID int64) ([]model.Offer, error) {
	s.mu.RLock()
	entry, ok := s.restaurants[restaurantID]
	s.mu.RUnlock()
	if !ok {
		return []model.Offer{}, nil
	}

	entry.mu.RLock()
	defer entry.mu.RUnlock()
	out := make([]model.Offer, len(entry.offers))
	for i, o := range entry.offers {
		out[i] = o.Clone()
	}
	return out, nil
}

// Ping always succeeds; it lets the store back the health check.
func (s *MemoryOfferStore) Ping(ctx context.Context) error {
	return nil
}

func (s *MemoryOfferStore) entry(restaurantID int64) *restaurantOffers {
	s.mu.RLock()
	entry, ok := s.restaurants[restaurantID]
	s.mu.RUnlock()
	if ok {
		return entry
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok = s.restaurants[restaurantID]; !ok {
		entry = &restaurantOffers{}
		s.restaurants[restaurantID] = entry
	}
	return entry
}
