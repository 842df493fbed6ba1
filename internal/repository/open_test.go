package repository_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenMemory(t *testing.T) {
	ctx := context.Background()

	repo, closeFn, err := repository.Open(ctx, repository.Backend{Kind: "memory"})
	require.NoError(t, err)
	defer func() { require.NoError(t, closeFn(ctx)) }()

	cart, err := repo.GetCart(ctx, domain.CartOwnerKey("alice"))
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestOpenRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	repo, closeFn, err := repository.Open(ctx, repository.Backend{Kind: "redis", RedisAddr: mr.Addr()})
	require.NoError(t, err)
	defer func() { require.NoError(t, closeFn(ctx)) }()

	ownerID := domain.CartOwnerKey("")
	require.NoError(t, repo.SaveCart(ctx, domain.Cart{OwnerID: ownerID}))
}

func TestOpenUnsupported(t *testing.T) {
	_, _, err := repository.Open(context.Background(), repository.Backend{Kind: "sqlite"})
	require.ErrorIs(t, err, repository.ErrUnsupportedBackend)
}
