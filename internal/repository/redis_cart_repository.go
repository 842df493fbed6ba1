package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/port"
	"github.com/redis/go-redis/v9"
	"time"
)

type redisCartRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCart stores each cart as one JSON value. A zero ttl keeps carts forever.
func NewRedisCart(client *redis.Client, ttl time.Duration) port.CartRepository {
	return &redisCartRepository{
		client: client,
		ttl:    ttl,
	}
}

func (r *redisCartRepository) GetCart(ctx context.Context, ownerID string) (domain.Cart, error) {
	if ownerID == "" {
		return domain.Cart{}, domain.ErrEmptyOwner
	}

	data, err := r.client.Get(ctx, redisCartKey(ownerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Cart{OwnerID: ownerID}, nil
	}
	if err != nil {
		return domain.Cart{}, fmt.Errorf("client.Get: %w", err)
	}

	var record cartRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return domain.Cart{}, fmt.Errorf("json.Unmarshal: %w", err)
	}

	cart, err := mapRecordToCart(ownerID, record)
	if err != nil {
		return domain.Cart{}, fmt.Errorf("mapRecordToCart: %w", err)
	}

	return cart, nil
}

func (r *redisCartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	if cart.OwnerID == "" {
		return domain.ErrEmptyOwner
	}

	data, err := json.Marshal(mapCartToRecord(cart, time.Now().UTC()))
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := r.client.Set(ctx, redisCartKey(cart.OwnerID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}

func (r *redisCartRepository) DeleteCart(ctx context.Context, ownerID string) (bool, error) {
	if ownerID == "" {
		return false, domain.ErrEmptyOwner
	}

	deleted, err := r.client.Del(ctx, redisCartKey(ownerID)).Result()
	if err != nil {
		return false, fmt.Errorf("client.Del: %w", err)
	}

	return deleted > 0, nil
}

func redisCartKey(ownerID string) string {
	return fmt.Sprintf("cart:%s", ownerID)
}
