package checkout

import "time"

// LateResultPolicy decides what happens to a network result that arrives after
// the fallback already committed an outcome.
type LateResultPolicy int

const (
	// LateResultDiscard drops the result: no outcome change, no cart change.
	// Observers still see it.
	LateResultDiscard LateResultPolicy = iota
)

const (
	DefaultFallbackAfter   = 4 * time.Second
	DefaultDismissAfter    = 5 * time.Second
	DefaultFallbackMessage = "Order placed! We're processing it and will confirm shortly."
	DefaultFallbackNotice  = "Our servers are taking a bit longer to respond. Your order is being processed."
)

// Policy trades strict consistency for perceived responsiveness: when the order
// service has not answered within FallbackAfter the attempt is committed as a
// provisional success.
type Policy struct {
	FallbackAfter   time.Duration
	DismissAfter    time.Duration
	FallbackMessage string
	FallbackNotice  string
	OnLateResult    LateResultPolicy
}

func DefaultPolicy() Policy {
	return Policy{
		FallbackAfter:   DefaultFallbackAfter,
		DismissAfter:    DefaultDismissAfter,
		FallbackMessage: DefaultFallbackMessage,
		FallbackNotice:  DefaultFallbackNotice,
		OnLateResult:    LateResultDiscard,
	}
}

func (p Policy) withDefaults() Policy {
	d := DefaultPolicy()
	if p.FallbackAfter <= 0 {
		p.FallbackAfter = d.FallbackAfter
	}
	if p.DismissAfter <= 0 {
		p.DismissAfter = d.DismissAfter
	}
	if p.FallbackMessage == "" {
		p.FallbackMessage = d.FallbackMessage
	}
	if p.FallbackNotice == "" {
		p.FallbackNotice = d.FallbackNotice
	}
	return p
}
