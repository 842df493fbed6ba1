package port

import (
	"context"
	"github.com/nikolayk812/storefront-cart/internal/domain"
)

// OrderResponse is the raw body returned by the order service on success.
type OrderResponse struct {
	StatusCode int
	Body       []byte
}

type OrderService interface {
	PlaceOrder(ctx context.Context, idempotencyKey string, req domain.OrderRequest) (OrderResponse, error)
}

// OutcomePresenter displays committed order outcomes.
type OutcomePresenter interface {
	SetBusy(busy bool)
	Show(outcome domain.OrderOutcome)
	Dismiss(outcome domain.OrderOutcome)
	// Notify raises the one-time acknowledgment notice of a fallback commit.
	Notify(outcome domain.OrderOutcome, notice string)
}
