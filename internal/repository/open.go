package repository

import (
	"context"
	"errors"
	"fmt"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/storefront-cart/internal/port"
	"github.com/redis/go-redis/v9"
	"time"
)

var ErrUnsupportedBackend = errors.New("unsupported cart backend")

// Backend selects and configures the cart persistence backend.
type Backend struct {
	Kind          string
	PostgresDSN   string
	RedisAddr     string
	RedisTTL      time.Duration
	MongoURI      string
	MongoDatabase string
}

// Open connects the chosen backend. The returned close func releases its connections.
func Open(ctx context.Context, b Backend) (port.CartRepository, func(context.Context) error, error) {
	switch b.Kind {
	case "", "memory":
		return NewMemoryCart(), noopClose, nil

	case "postgres":
		if err := Migrate(b.PostgresDSN); err != nil {
			return nil, nil, fmt.Errorf("Migrate: %w", err)
		}

		pool, err := pgxpool.New(ctx, b.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("pool.Ping: %w", err)
		}

		return NewCart(pool), func(context.Context) error {
			pool.Close()
			return nil
		}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: b.RedisAddr})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("client.Ping: %w", err)
		}

		return NewRedisCart(client, b.RedisTTL), func(context.Context) error {
			return client.Close()
		}, nil

	case "mongo":
		database, err := ConnectMongo(ctx, b.MongoURI, b.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("ConnectMongo: %w", err)
		}

		return NewMongoCart(database), database.Client().Disconnect, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedBackend, b.Kind)
	}
}

func noopClose(context.Context) error {
	return nil
}
