package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"time"
)

type OrderRequest struct {
	Lines []OrderLine
}

type OrderLine struct {
	SKUCode  string
	Price    decimal.Decimal
	Quantity int
}

type OutcomeKind string

const (
	OutcomeSuccess         OutcomeKind = "success"
	OutcomeFailure         OutcomeKind = "failure"
	OutcomePendingFallback OutcomeKind = "pending_fallback"
)

// OrderOutcome is the single result shown to the user for one submission attempt.
type OrderOutcome struct {
	Kind        OutcomeKind
	Message     string
	AttemptID   uuid.UUID
	CommittedAt time.Time
}

func (o OrderOutcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess || o.Kind == OutcomePendingFallback
}
