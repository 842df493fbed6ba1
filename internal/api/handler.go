// Package api exposes the storefront session over HTTP: the active cart,
// checkout, the outcome banner and sign-in.
package api

import (
	"context"
	"log/slog"

	"github.com/nikolayk812/storefront-cart/internal/banner"
	"github.com/nikolayk812/storefront-cart/internal/client"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/port"
)

type CartStore interface {
	SwitchIdentity(ctx context.Context, username string) (domain.Cart, error)
	AddItem(p domain.Product) (domain.Cart, error)
	RemoveItem(index int) (domain.Cart, error)
	SetQuantity(index, quantity int) (domain.Cart, error)
	RemoveSKU(skuCode string) (domain.Cart, error)
	SetSKUQuantity(skuCode string, quantity int) (domain.Cart, error)
	Clear() (domain.Cart, error)
	Snapshot() domain.Cart
}

type Checkout interface {
	Submit(ctx context.Context) (domain.OrderOutcome, error)
}

type StatusBoard interface {
	State() banner.State
	Acknowledge() (banner.Notice, error)
}

type Catalog interface {
	port.Catalog
	CheckStock(ctx context.Context, skuCodes ...string) ([]client.StockLevel, error)
}

type Session interface {
	port.Authenticator
	UpdateMe(ctx context.Context, identity port.Identity) (port.Identity, error)
	Logout()
}

type OrderReports interface {
	OrderSummary(ctx context.Context) (client.OrderSummary, error)
}

type Handler struct {
	cart     CartStore
	checkout Checkout
	status   StatusBoard
	catalog  Catalog
	session  Session
	reports  OrderReports
	logger   *slog.Logger
}

func NewHandler(cart CartStore, checkout Checkout, status StatusBoard, catalog Catalog, session Session, reports OrderReports, logger *slog.Logger) *Handler {
	return &Handler{
		cart:     cart,
		checkout: checkout,
		status:   status,
		catalog:  catalog,
		session:  session,
		reports:  reports,
		logger:   logger.With("component", "api"),
	}
}
