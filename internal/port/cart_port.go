package port

import (
	"context"
	"github.com/nikolayk812/storefront-cart/internal/domain"
)

// CartRepository persists carts keyed by owner.
// GetCart returns an empty cart when nothing is stored for the owner.
type CartRepository interface {
	GetCart(ctx context.Context, ownerID string) (domain.Cart, error)
	SaveCart(ctx context.Context, cart domain.Cart) error
	DeleteCart(ctx context.Context, ownerID string) (bool, error)
}
