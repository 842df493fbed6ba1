// Package banner keeps what the storefront currently shows about checkout:
// the outcome banner, the busy indicator and the fallback notice awaiting
// acknowledgment.
package banner

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-cart/internal/domain"
)

var ErrNoNotice = errors.New("no notice awaiting acknowledgment")

type Notice struct {
	AttemptID uuid.UUID
	Text      string
	RaisedAt  time.Time
}

type State struct {
	Busy   bool
	Banner *domain.OrderOutcome
	Notice *Notice
}

type Board struct {
	mu     sync.Mutex
	now    func() time.Time
	busy   bool
	banner *domain.OrderOutcome
	notice *Notice
}

func NewBoard() *Board {
	return &Board{now: time.Now}
}

func (b *Board) SetBusy(busy bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.busy = busy
}

func (b *Board) Show(outcome domain.OrderOutcome) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.banner = &outcome
}

// Dismiss removes the banner only if it still belongs to the outcome's attempt,
// so a late timer never hides a newer banner.
func (b *Board) Dismiss(outcome domain.OrderOutcome) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.banner != nil && b.banner.AttemptID == outcome.AttemptID {
		b.banner = nil
	}
}

func (b *Board) Notify(outcome domain.OrderOutcome, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.notice = &Notice{
		AttemptID: outcome.AttemptID,
		Text:      text,
		RaisedAt:  b.now(),
	}
}

func (b *Board) Acknowledge() (Notice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.notice == nil {
		return Notice{}, ErrNoNotice
	}

	n := *b.notice
	b.notice = nil
	return n, nil
}

func (b *Board) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	state := State{Busy: b.busy}
	if b.banner != nil {
		banner := *b.banner
		state.Banner = &banner
	}
	if b.notice != nil {
		notice := *b.notice
		state.Notice = &notice
	}
	return state
}
