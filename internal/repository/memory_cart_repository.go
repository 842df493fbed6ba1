package repository

import (
	"context"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/port"
	"sync"
	"time"
)

type memoryCartRepository struct {
	mu    sync.RWMutex
	carts map[string]domain.Cart
}

// NewMemoryCart keeps carts in process memory. Nothing survives a restart.
func NewMemoryCart() port.CartRepository {
	return &memoryCartRepository{
		carts: make(map[string]domain.Cart),
	}
}

func (r *memoryCartRepository) GetCart(_ context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, domain.ErrEmptyOwner
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	cart, ok := r.carts[ownerID]
	if !ok {
		return domain.Cart{OwnerID: ownerID}, nil
	}

	return cart.Clone(), nil
}

func (r *memoryCartRepository) SaveCart(_ context.Context, cart domain.Cart) error {
	if cart.OwnerID == "" {
		return domain.ErrEmptyOwner
	}

	stored := cart.Clone()
	now := time.Now().UTC()
	for i := range stored.Items {
		if stored.Items[i].CreatedAt.IsZero() {
			stored.Items[i].CreatedAt = now
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.carts[cart.OwnerID] = stored
	return nil
}

func (r *memoryCartRepository) DeleteCart(_ context.Context, ownerID string) (bool, error) {
	if ownerID == "" {
		return false, domain.ErrEmptyOwner
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.carts[ownerID]
	delete(r.carts, ownerID)
	return ok, nil
}
