package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/shopspring/decimal"
)

type productDTO struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	SkuCode     string      `json:"skuCode"`
	Category    string      `json:"category,omitempty"`
	ImageURL    string      `json:"imageUrl,omitempty"`
}

const productLookupTimeout = 10 * time.Second

type StockLevel struct {
	SKUCode string `json:"skuCode"`
	InStock bool   `json:"inStock"`
}

func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	res, err := c.do(ctx, request{method: http.MethodGet, path: "/products"})
	if err != nil {
		return nil, fmt.Errorf("GET /products: %w", err)
	}

	dtos, err := decode[[]productDTO](res)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	products := make([]domain.Product, 0, len(dtos))
	for _, dto := range dtos {
		p, err := mapProductDTOToDomain(dto)
		if err != nil {
			return nil, fmt.Errorf("mapProductDTOToDomain: %w", err)
		}
		products = append(products, p)
	}

	return products, nil
}

// Product fetches one catalog record. Concurrent lookups of the same id share
// a request that no single caller can cancel.
func (c *Client) Product(ctx context.Context, id int64) (domain.Product, error) {
	key := strconv.FormatInt(id, 10)

	ch := c.products.DoChan(key, func() (any, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), productLookupTimeout)
		defer cancel()

		return c.fetchProduct(ctx, "/products/"+key)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return domain.Product{}, res.Err
		}
		return res.Val.(domain.Product), nil
	case <-ctx.Done():
		return domain.Product{}, fmt.Errorf("GET /products/%s: %w", key, ctx.Err())
	}
}

func (c *Client) fetchProduct(ctx context.Context, path string) (domain.Product, error) {
	res, err := c.do(ctx, request{method: http.MethodGet, path: path})
	if err != nil {
		return domain.Product{}, fmt.Errorf("GET %s: %w", path, err)
	}

	dto, err := decode[productDTO](res)
	if err != nil {
		return domain.Product{}, fmt.Errorf("decode: %w", err)
	}

	p, err := mapProductDTOToDomain(dto)
	if err != nil {
		return domain.Product{}, fmt.Errorf("mapProductDTOToDomain: %w", err)
	}

	return p, nil
}

func (c *Client) CheckStock(ctx context.Context, skuCodes ...string) ([]StockLevel, error) {
	query := url.Values{}
	for _, sku := range skuCodes {
		query.Add("skuCode", sku)
	}

	res, err := c.do(ctx, request{method: http.MethodGet, path: "/inventory", query: query})
	if err != nil {
		return nil, fmt.Errorf("GET /inventory: %w", err)
	}

	levels, err := decode[[]StockLevel](res)
	if err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	return levels, nil
}

func mapProductDTOToDomain(dto productDTO) (domain.Product, error) {
	amount := decimal.Zero
	if dto.Price != "" {
		var err error
		amount, err = decimal.NewFromString(dto.Price.String())
		if err != nil {
			return domain.Product{}, fmt.Errorf("price[%s] of product[%d] is not valid: %w", dto.Price, dto.ID, err)
		}
	}

	return domain.Product{
		ID:          dto.ID,
		Name:        dto.Name,
		Description: dto.Description,
		Price:       domain.NewMoney(amount, domain.DefaultCurrency),
		SKUCode:     dto.SkuCode,
		Category:    dto.Category,
		ImageURL:    dto.ImageURL,
	}, nil
}
