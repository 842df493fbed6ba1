package repository

import (
	"fmt"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"time"
)

// cartRecord is the serialized form of a cart for the document and key-value backends.
type cartRecord struct {
	OwnerID   string           `json:"ownerId" bson:"_id"`
	Items     []cartItemRecord `json:"items" bson:"items"`
	UpdatedAt time.Time        `json:"updatedAt" bson:"updated_at"`
}

type cartItemRecord struct {
	SKUCode       string    `json:"skuCode" bson:"sku_code"`
	Name          string    `json:"name" bson:"name"`
	Description   string    `json:"description" bson:"description"`
	ImageURL      string    `json:"imageUrl" bson:"image_url"`
	PriceAmount   string    `json:"priceAmount" bson:"price_amount"`
	PriceCurrency string    `json:"priceCurrency" bson:"price_currency"`
	Quantity      int       `json:"quantity" bson:"quantity"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at"`
}

func mapCartToRecord(cart domain.Cart, now time.Time) cartRecord {
	items := make([]cartItemRecord, 0, len(cart.Items))
	for _, item := range cart.Items {
		createdAt := item.CreatedAt
		if createdAt.IsZero() {
			createdAt = now
		}

		items = append(items, cartItemRecord{
			SKUCode:       item.SKUCode,
			Name:          item.Name,
			Description:   item.Description,
			ImageURL:      item.ImageURL,
			PriceAmount:   item.Price.Amount.String(),
			PriceCurrency: item.Price.Currency.String(),
			Quantity:      item.Quantity,
			CreatedAt:     createdAt,
		})
	}

	return cartRecord{
		OwnerID:   cart.OwnerID,
		Items:     items,
		UpdatedAt: now,
	}
}

func mapRecordToCart(ownerID string, record cartRecord) (domain.Cart, error) {
	var items []domain.CartItem

	for _, r := range record.Items {
		amount, err := decimal.NewFromString(r.PriceAmount)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("price[%s] of sku[%s] is not valid: %w", r.PriceAmount, r.SKUCode, err)
		}

		parsedCurrency, err := currency.ParseISO(r.PriceCurrency)
		if err != nil {
			return domain.Cart{}, fmt.Errorf("currency[%s] is not valid: %w", r.PriceCurrency, err)
		}

		items = append(items, domain.CartItem{
			SKUCode:     r.SKUCode,
			Name:        r.Name,
			Description: r.Description,
			ImageURL:    r.ImageURL,
			Price:       domain.Money{Amount: amount, Currency: parsedCurrency},
			Quantity:    r.Quantity,
			CreatedAt:   r.CreatedAt,
		})
	}

	return domain.Cart{
		OwnerID: ownerID,
		Items:   items,
	}, nil
}
