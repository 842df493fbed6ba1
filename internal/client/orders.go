package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/port"
)

const idempotencyHeader = "Idempotency-Key"

type orderRequestDTO struct {
	OrderLineItemsDtoList []orderLineDTO `json:"orderLineItemsDtoList"`
}

type orderLineDTO struct {
	SkuCode  string      `json:"skuCode"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

type OrderSummary struct {
	SKUCode string `json:"skuCode"`
	InStock bool   `json:"inStock"`
}

// PlaceOrder posts the order lines. A non-2xx answer is returned as *APIError.
func (c *Client) PlaceOrder(ctx context.Context, idempotencyKey string, req domain.OrderRequest) (port.OrderResponse, error) {
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers[idempotencyHeader] = idempotencyKey
	}

	res, err := c.do(ctx, request{
		method:  http.MethodPost,
		path:    "/orders",
		headers: headers,
		body:    mapOrderRequestToDTO(req),
	})
	if err != nil {
		return port.OrderResponse{}, err
	}

	return port.OrderResponse{StatusCode: res.statusCode, Body: res.body}, nil
}

// OrderSummary reports whether any order exists; admin only.
func (c *Client) OrderSummary(ctx context.Context) (OrderSummary, error) {
	res, err := c.do(ctx, request{method: http.MethodGet, path: "/orders/summary"})
	if err != nil {
		return OrderSummary{}, fmt.Errorf("GET /orders/summary: %w", err)
	}

	summary, err := decode[OrderSummary](res)
	if err != nil {
		return OrderSummary{}, fmt.Errorf("decode: %w", err)
	}

	return summary, nil
}

func mapOrderRequestToDTO(req domain.OrderRequest) orderRequestDTO {
	lines := make([]orderLineDTO, 0, len(req.Lines))
	for _, line := range req.Lines {
		lines = append(lines, orderLineDTO{
			SkuCode:  line.SKUCode,
			Price:    json.Number(line.Price.String()),
			Quantity: line.Quantity,
		})
	}

	return orderRequestDTO{OrderLineItemsDtoList: lines}
}
