// Package checkout submits the cart as an order and commits exactly one
// outcome per attempt, racing the order service against a fallback timer.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/nikolayk812/storefront-cart/internal/domain"
	"github.com/nikolayk812/storefront-cart/internal/port"
)

var ErrSubmissionInFlight = errors.New("an order submission is already in progress")

// Cart is the part of the cart store the flow reads and clears.
type Cart interface {
	Snapshot() domain.Cart
	ClearOwner(ownerID string) error
}

// LateResult is a network result that lost the race against the fallback.
type LateResult struct {
	Committed domain.OrderOutcome
	OwnerID   string
	Response  port.OrderResponse
	Err       error
	Elapsed   time.Duration
}

// Observer is told about every committed outcome and every discarded late result.
type Observer interface {
	OutcomeCommitted(outcome domain.OrderOutcome, elapsed time.Duration)
	LateResultDiscarded(result LateResult)
}

type Flow struct {
	orders    port.OrderService
	cart      Cart
	presenter port.OutcomePresenter
	policy    Policy
	observers []Observer
	logger    *slog.Logger
	now       func() time.Time

	// submitting is held from submission until the attempt commits.
	submitting atomic.Bool
	inflight   sync.WaitGroup
}

func NewFlow(orders port.OrderService, cart Cart, presenter port.OutcomePresenter, policy Policy, logger *slog.Logger, observers ...Observer) *Flow {
	return &Flow{
		orders:    orders,
		cart:      cart,
		presenter: presenter,
		policy:    policy.withDefaults(),
		observers: observers,
		logger:    logger.With("component", "checkout"),
		now:       time.Now,
	}
}

// Wait blocks until every order call started by Submit has returned,
// including calls whose result will be discarded.
func (f *Flow) Wait() {
	f.inflight.Wait()
}

// Submit places the current cart as an order and returns the committed outcome.
//
// The network call and the fallback timer race; whichever finishes first
// commits, and only the winner touches the cart, the busy flag and the
// presenter. The call itself is never cancelled by the fallback or by ctx.
// The returned error is non-nil only when ctx ends before any commit; the
// attempt still commits in the background. A call made while an earlier
// attempt has not committed returns ErrSubmissionInFlight and sends nothing.
func (f *Flow) Submit(ctx context.Context) (domain.OrderOutcome, error) {
	if !f.submitting.CompareAndSwap(false, true) {
		return domain.OrderOutcome{}, ErrSubmissionInFlight
	}

	attemptID := uuid.New()
	started := f.now()

	cart := f.cart.Snapshot()
	if cart.IsEmpty() {
		f.submitting.Store(false)
		outcome := f.outcome(attemptID, domain.OutcomeFailure, EmptyCartMessage)
		f.present(outcome)
		f.notifyCommitted(outcome, 0)
		return outcome, nil
	}

	req := cart.OrderRequest()
	logger := f.logger.With("attempt", attemptID.String(), "owner", cart.OwnerID, "lines", len(req.Lines))

	var committed atomic.Bool
	outcomes := make(chan domain.OrderOutcome, 1)

	f.presenter.SetBusy(true)

	fallback := time.AfterFunc(f.policy.FallbackAfter, func() {
		if !committed.CompareAndSwap(false, true) {
			return
		}

		outcome := f.outcome(attemptID, domain.OutcomePendingFallback, f.policy.FallbackMessage)
		f.clearCart(logger, cart.OwnerID)
		f.release()
		f.present(outcome)
		f.presenter.Notify(outcome, f.policy.FallbackNotice)

		logger.Warn("order service slow, committed fallback outcome", "after", f.policy.FallbackAfter)
		f.notifyCommitted(outcome, f.now().Sub(started))
		outcomes <- outcome
	})

	f.inflight.Add(1)
	go func() {
		defer f.inflight.Done()

		res, err := f.orders.PlaceOrder(context.WithoutCancel(ctx), attemptID.String(), req)
		fallback.Stop()
		elapsed := f.now().Sub(started)

		if !committed.CompareAndSwap(false, true) {
			f.discardLate(logger, LateResult{
				Committed: f.committedFallback(attemptID),
				OwnerID:   cart.OwnerID,
				Response:  res,
				Err:       err,
				Elapsed:   elapsed,
			})
			return
		}

		var outcome domain.OrderOutcome
		if err != nil {
			outcome = f.outcome(attemptID, domain.OutcomeFailure, FailureMessage(err))
			logger.Error("order placement failed", "error", err, "elapsed", elapsed)
		} else {
			outcome = f.outcome(attemptID, domain.OutcomeSuccess, SuccessMessage(res.Body))
			f.clearCart(logger, cart.OwnerID)
			logger.Info("order placed", "status", res.StatusCode, "elapsed", elapsed)
		}

		f.release()
		f.present(outcome)
		f.notifyCommitted(outcome, elapsed)
		outcomes <- outcome
	}()

	select {
	case outcome := <-outcomes:
		return outcome, nil
	case <-ctx.Done():
		return domain.OrderOutcome{AttemptID: attemptID}, ctx.Err()
	}
}

func (f *Flow) release() {
	f.presenter.SetBusy(false)
	f.submitting.Store(false)
}

func (f *Flow) outcome(attemptID uuid.UUID, kind domain.OutcomeKind, message string) domain.OrderOutcome {
	return domain.OrderOutcome{
		Kind:        kind,
		Message:     message,
		AttemptID:   attemptID,
		CommittedAt: f.now(),
	}
}

// committedFallback describes the outcome a late result lost to.
func (f *Flow) committedFallback(attemptID uuid.UUID) domain.OrderOutcome {
	return domain.OrderOutcome{
		Kind:      domain.OutcomePendingFallback,
		Message:   f.policy.FallbackMessage,
		AttemptID: attemptID,
	}
}

// present shows the outcome and schedules its dismissal.
func (f *Flow) present(outcome domain.OrderOutcome) {
	f.presenter.Show(outcome)
	time.AfterFunc(f.policy.DismissAfter, func() {
		f.presenter.Dismiss(outcome)
	})
}

func (f *Flow) clearCart(logger *slog.Logger, ownerID string) {
	if err := f.cart.ClearOwner(ownerID); err != nil {
		logger.Error("failed to clear cart", "error", err)
	}
}

func (f *Flow) discardLate(logger *slog.Logger, result LateResult) {
	switch f.policy.OnLateResult {
	case LateResultDiscard:
		logger.Warn("discarding order result that arrived after fallback",
			"error", result.Err, "status", result.Response.StatusCode, "elapsed", result.Elapsed)
	}

	for _, o := range f.observers {
		o.LateResultDiscarded(result)
	}
}

func (f *Flow) notifyCommitted(outcome domain.OrderOutcome, elapsed time.Duration) {
	for _, o := range f.observers {
		o.OutcomeCommitted(outcome, elapsed)
	}
}
