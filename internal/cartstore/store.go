// Package cartstore holds the cart of the active identity in memory and writes
// it through to a repository after every mutation.
//
// Mutations and identity switches are serialized by one mutex. Saves are
// coalesced to the latest snapshot per owner and never block the caller; the
// load for a new identity always runs after the last save of the previous one.
package cartstore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/port"
)

var ErrClosed = errors.New("cart store is closed")

const defaultSaveTimeout = 5 * time.Second

type SaveHook func(ownerID string, err error)

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithSaveTimeout(d time.Duration) Option {
	return func(s *Store) { s.saveTimeout = d }
}

func WithSaveHook(hook SaveHook) Option {
	return func(s *Store) { s.saveHook = hook }
}

type Store struct {
	repo        port.CartRepository
	logger      *slog.Logger
	now         func() time.Time
	saveTimeout time.Duration
	saveHook    SaveHook

	mu     sync.Mutex
	cart   domain.Cart
	closed bool

	queue *queue
	done  chan struct{}
}

// New starts the persistence worker. The store begins on an empty anonymous
// cart; call SwitchIdentity to load the persisted one.
func New(repo port.CartRepository, logger *slog.Logger, opts ...Option) *Store {
	s := &Store{
		repo:        repo,
		logger:      logger.With("component", "cartstore"),
		now:         time.Now,
		saveTimeout: defaultSaveTimeout,
		cart:        domain.Cart{OwnerID: domain.CartOwnerKey("")},
		queue:       newQueue(),
		done:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	go s.run()

	return s
}

// Close drains pending saves and stops the worker.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.queue.close()
	s.mu.Unlock()

	<-s.done
}

// SwitchIdentity discards the in-memory lines and loads the cart persisted for
// username. An empty username selects the anonymous cart. A failed load leaves
// an empty cart for the new identity.
func (s *Store) SwitchIdentity(ctx context.Context, username string) (domain.Cart, error) {
	ownerID := domain.CartOwnerKey(username)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.Cart{}, ErrClosed
	}

	result := make(chan loadResult, 1)
	s.queue.push(job{load: &loadJob{ctx: ctx, ownerID: ownerID, result: result}})

	var res loadResult
	select {
	case res = <-result:
	case <-ctx.Done():
		return domain.Cart{}, fmt.Errorf("switch identity to %s: %w", ownerID, ctx.Err())
	}

	if res.err != nil && ctx.Err() != nil {
		return domain.Cart{}, fmt.Errorf("switch identity to %s: %w", ownerID, ctx.Err())
	}

	if res.err != nil {
		s.logger.Error("failed to load cart", "owner", ownerID, "error", res.err)
		res.cart = domain.Cart{}
	}

	res.cart.OwnerID = ownerID
	s.cart = res.cart
	return s.cart.Clone(), nil
}

func (s *Store) AddItem(p domain.Product) (domain.Cart, error) {
	return s.mutate(func(c *domain.Cart) error {
		c.AddItem(p, s.now())
		return nil
	})
}

func (s *Store) RemoveItem(index int) (domain.Cart, error) {
	return s.mutate(func(c *domain.Cart) error {
		return c.RemoveItem(index)
	})
}

func (s *Store) SetQuantity(index, quantity int) (domain.Cart, error) {
	return s.mutate(func(c *domain.Cart) error {
		return c.SetQuantity(index, quantity)
	})
}

func (s *Store) RemoveSKU(skuCode string) (domain.Cart, error) {
	return s.mutate(func(c *domain.Cart) error {
		return c.RemoveSKU(skuCode)
	})
}

func (s *Store) SetSKUQuantity(skuCode string, quantity int) (domain.Cart, error) {
	return s.mutate(func(c *domain.Cart) error {
		return c.SetSKUQuantity(skuCode, quantity)
	})
}

func (s *Store) Clear() (domain.Cart, error) {
	return s.mutate(func(c *domain.Cart) error {
		c.Clear()
		return nil
	})
}

// ClearOwner empties the cart of ownerID. When ownerID is no longer the active
// identity only its persisted record is emptied.
func (s *Store) ClearOwner(ownerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if s.cart.OwnerID == ownerID {
		s.cart.Clear()
	}

	s.queue.pushSave(domain.Cart{OwnerID: ownerID})
	return nil
}

func (s *Store) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.Clone()
}

func (s *Store) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cart.OwnerID
}

func (s *Store) Total() (domain.Money, error) {
	return s.Snapshot().Total()
}

func (s *Store) ItemCount() int {
	return s.Snapshot().ItemCount()
}

// Flush blocks until every save enqueued before the call has been attempted.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}

	barrier := make(chan struct{})
	s.queue.push(job{barrier: barrier})
	s.mu.Unlock()

	select {
	case <-barrier:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store) mutate(fn func(c *domain.Cart) error) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return domain.Cart{}, ErrClosed
	}

	if err := fn(&s.cart); err != nil {
		return s.cart.Clone(), err
	}

	s.queue.pushSave(s.cart.Clone())

	return s.cart.Clone(), nil
}
