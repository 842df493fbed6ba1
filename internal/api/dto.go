package api

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/nikolayk812/storefront-cart/internal/banner"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/port"
	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

type CartItemDTO struct {
	Index       int    `json:"index"`
	SKUCode     string `json:"skuCode"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Price       string `json:"price"`
	Currency    string `json:"currency"`
	Quantity    int    `json:"quantity"`
	Subtotal    string `json:"subtotal"`
}

type CartDTO struct {
	Owner     string        `json:"owner"`
	Anonymous bool          `json:"anonymous"`
	Items     []CartItemDTO `json:"items"`
	Total     *string       `json:"total"`
	Currency  string        `json:"currency,omitempty"`
	ItemCount int           `json:"itemCount"`
}

type ProductDTO struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Price       json.Number `json:"price"`
	Currency    string      `json:"currency,omitempty"`
	SKUCode     string      `json:"skuCode"`
	Category    string      `json:"category,omitempty"`
	ImageURL    string      `json:"imageUrl,omitempty"`
	InStock     *bool       `json:"inStock,omitempty"`
}

type AddItemRequestDTO struct {
	ProductID int64       `json:"productId"`
	Product   *ProductDTO `json:"product"`
}

type QuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type OutcomeDTO struct {
	Kind        string    `json:"kind"`
	Message     string    `json:"message"`
	AttemptID   string    `json:"attemptId"`
	CommittedAt time.Time `json:"committedAt"`
}

type NoticeDTO struct {
	AttemptID string    `json:"attemptId"`
	Text      string    `json:"text"`
	RaisedAt  time.Time `json:"raisedAt"`
}

type StatusDTO struct {
	Busy   bool        `json:"busy"`
	Banner *OutcomeDTO `json:"banner"`
	Notice *NoticeDTO  `json:"notice"`
}

type LoginRequestDTO struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequestDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type ProfileRequestDTO struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

type IdentityDTO struct {
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
	Owner    string `json:"owner"`
}

func mapCartToDTO(cart domain.Cart) CartDTO {
	dto := CartDTO{
		Owner:     cart.OwnerID,
		Anonymous: domain.IsAnonymousOwner(cart.OwnerID),
		Items:     make([]CartItemDTO, 0, len(cart.Items)),
		ItemCount: cart.ItemCount(),
	}

	for i, item := range cart.Items {
		dto.Items = append(dto.Items, CartItemDTO{
			Index:       i,
			SKUCode:     item.SKUCode,
			Name:        item.Name,
			Description: item.Description,
			ImageURL:    item.ImageURL,
			Price:       item.Price.String(),
			Currency:    item.Price.Currency.String(),
			Quantity:    item.Quantity,
			Subtotal:    item.Price.Mul(item.Quantity).String(),
		})
	}

	// a mixed-currency cart has no single total
	if total, err := cart.Total(); err == nil {
		s := total.String()
		dto.Total = &s
		dto.Currency = total.Currency.String()
	}

	return dto
}

func mapProductToDTO(p domain.Product) ProductDTO {
	return ProductDTO{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       json.Number(p.Price.Amount.String()),
		Currency:    p.Price.Currency.String(),
		SKUCode:     p.SKUCode,
		Category:    p.Category,
		ImageURL:    p.ImageURL,
	}
}

func mapProductDTOToDomain(dto ProductDTO) (domain.Product, error) {
	if dto.SKUCode == "" {
		return domain.Product{}, fmt.Errorf("skuCode is empty")
	}

	amount, err := decimal.NewFromString(dto.Price.String())
	if err != nil {
		return domain.Product{}, fmt.Errorf("decimal.NewFromString: %w", err)
	}
	if amount.IsNegative() {
		return domain.Product{}, fmt.Errorf("price is negative: %s", amount)
	}

	unit := domain.DefaultCurrency
	if dto.Currency != "" {
		unit, err = currency.ParseISO(dto.Currency)
		if err != nil {
			return domain.Product{}, fmt.Errorf("currency.ParseISO: %w", err)
		}
	}

	return domain.Product{
		ID:          dto.ID,
		Name:        dto.Name,
		Description: dto.Description,
		Price:       domain.NewMoney(amount, unit),
		SKUCode:     dto.SKUCode,
		Category:    dto.Category,
		ImageURL:    dto.ImageURL,
	}, nil
}

func mapOutcomeToDTO(o domain.OrderOutcome) OutcomeDTO {
	return OutcomeDTO{
		Kind:        string(o.Kind),
		Message:     o.Message,
		AttemptID:   o.AttemptID.String(),
		CommittedAt: o.CommittedAt,
	}
}

func mapNoticeToDTO(n banner.Notice) NoticeDTO {
	return NoticeDTO{
		AttemptID: n.AttemptID.String(),
		Text:      n.Text,
		RaisedAt:  n.RaisedAt,
	}
}

func mapStateToDTO(state banner.State) StatusDTO {
	dto := StatusDTO{Busy: state.Busy}
	if state.Banner != nil {
		outcome := mapOutcomeToDTO(*state.Banner)
		dto.Banner = &outcome
	}
	if state.Notice != nil {
		notice := mapNoticeToDTO(*state.Notice)
		dto.Notice = &notice
	}
	return dto
}

func mapIdentityToDTO(identity port.Identity) IdentityDTO {
	return IdentityDTO{
		Username: identity.Username,
		Email:    identity.Email,
		Role:     identity.Role,
		Owner:    domain.CartOwnerKey(identity.Username),
	}
}
