package port

import (
	"context"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"time"
)

type Catalog interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id int64) (domain.Product, error)
}

type Identity struct {
	Username  string
	Email     string
	Role      string
	Token     string
	ExpiresAt time.Time
}

type Authenticator interface {
	Login(ctx context.Context, username, password string) (Identity, error)
	Register(ctx context.Context, username, email, password, role string) error
	Me(ctx context.Context) (Identity, error)
}
