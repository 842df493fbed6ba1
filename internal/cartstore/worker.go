package cartstore

import (
	"context"
	"sync"

	"github.com/nikolayk812/storefront-cart/internal/domain"
)

type job struct {
	load    *loadJob
	barrier chan struct{}
}

type loadJob struct {
	ctx     context.Context
	ownerID string
	result  chan<- loadResult
}

type loadResult struct {
	cart domain.Cart
	err  error
}

// queue holds at most one pending save per owner, the latest snapshot.
// Saves always run before the load and barrier jobs queued after them.
type queue struct {
	mu     sync.Mutex
	saves  map[string]domain.Cart
	owners []string
	jobs   []job
	closed bool

	wake chan struct{}
}

func newQueue() *queue {
	return &queue{
		saves: make(map[string]domain.Cart),
		wake:  make(chan struct{}, 1),
	}
}

func (q *queue) pushSave(cart domain.Cart) {
	q.mu.Lock()
	if _, ok := q.saves[cart.OwnerID]; !ok {
		q.owners = append(q.owners, cart.OwnerID)
	}
	q.saves[cart.OwnerID] = cart
	q.mu.Unlock()

	q.signal()
}

func (q *queue) push(j job) {
	q.mu.Lock()
	q.jobs = append(q.jobs, j)
	q.mu.Unlock()

	q.signal()
}

func (q *queue) close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	q.signal()
}

func (q *queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// next blocks until there is work. It reports false once the queue is closed and drained.
func (q *queue) next() (*domain.Cart, job, bool) {
	for {
		q.mu.Lock()

		if len(q.owners) > 0 {
			owner := q.owners[0]
			q.owners = q.owners[1:]
			cart := q.saves[owner]
			delete(q.saves, owner)
			q.mu.Unlock()
			return &cart, job{}, true
		}

		if len(q.jobs) > 0 {
			j := q.jobs[0]
			q.jobs = q.jobs[1:]
			q.mu.Unlock()
			return nil, j, true
		}

		if q.closed {
			q.mu.Unlock()
			return nil, job{}, false
		}

		q.mu.Unlock()
		<-q.wake
	}
}

func (s *Store) run() {
	defer close(s.done)

	for {
		save, j, ok := s.queue.next()
		if !ok {
			return
		}

		switch {
		case save != nil:
			s.save(*save)
		case j.load != nil:
			cart, err := s.repo.GetCart(j.load.ctx, j.load.ownerID)
			j.load.result <- loadResult{cart: cart, err: err}
		case j.barrier != nil:
			close(j.barrier)
		}
	}
}

func (s *Store) save(cart domain.Cart) {
	ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
	defer cancel()

	err := s.repo.SaveCart(ctx, cart)
	if err != nil {
		s.logger.Error("failed to persist cart", "owner", cart.OwnerID, "lines", len(cart.Items), "error", err)
	}

	if s.saveHook != nil {
		s.saveHook(cart.OwnerID, err)
	}
}
