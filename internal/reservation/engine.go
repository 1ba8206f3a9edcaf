// Package reservation owns the status lifecycle of reservable entities
// (gifts, rooms). A reservable is AVAILABLE, RESERVED by exactly one
// claimant, or PURCHASED. Every transition is a single conditional write
// against the store, so two callers racing for the same unit get exactly
// one winner; the loser sees ErrPreconditionFailed, never a half-applied
// state.
package reservation

import (
	"context"
	"time"
)

// Claim records who holds a non-available status and since when.
type Claim struct {
	Claimant  string
	ClaimedAt time.Time
}

// Store is the persistence contract for one reservable collection.
//
// CompareAndSwap must be atomic: write the new status only if the current
// status equals from, reporting swapped=false when the row exists in a
// different status. The claim columns follow the target status in the same
// write: RESERVED records claim, AVAILABLE clears the pair, PURCHASED keeps
// whatever claim is on the row. That keeps the claimant-iff-not-available
// invariant true after every write.
type Store interface {
	Status(ctx context.Context, id string) (Status, error)
	CompareAndSwap(ctx context.Context, id string, from, to Status, claim Claim) (swapped bool, err error)
}

type Engine struct {
	store Store
	now   func() time.Time
}

func NewEngine(store Store) *Engine {
	return &Engine{store: store, now: time.Now}
}

// Reserve transitions AVAILABLE -> RESERVED and records the claimant. This
// is the sole admission-control point: the swap matches on the expected
// pre-state, so concurrent calls on the same entity cannot both win.
func (e *Engine) Reserve(ctx context.Context, id, claimant string) error {
	claim := Claim{Claimant: claimant, ClaimedAt: e.now().UTC()}
	return e.swap(ctx, id, StatusAvailable, StatusReserved, claim)
}

// Release transitions RESERVED -> AVAILABLE and clears the claim.
func (e *Engine) Release(ctx context.Context, id string) error {
	return e.swap(ctx, id, StatusReserved, StatusAvailable, Claim{})
}

// Finalize transitions RESERVED -> PURCHASED, keeping the claimant on
// record. Irreversible here: no engine operation leads out of PURCHASED.
func (e *Engine) Finalize(ctx context.Context, id string) error {
	return e.swap(ctx, id, StatusReserved, StatusPurchased, Claim{})
}

// QueryStatus reports the current status of the entity.
func (e *Engine) QueryStatus(ctx context.Context, id string) (Status, error) {
	if _, err := NormalizeID(id); err != nil {
		return "", err
	}
	return e.store.Status(ctx, id)
}

// The engine validates identifiers up front so malformed input surfaces as
// ErrInvalidIdentifier, then hands the raw spelling to the store: stores
// resolve canonical vs. legacy forms themselves (see LookupForms).
func (e *Engine) swap(ctx context.Context, id string, from, to Status, claim Claim) error {
	if _, err := NormalizeID(id); err != nil {
		return err
	}
	ok, err := e.store.CompareAndSwap(ctx, id, from, to, claim)
	if err != nil {
		return err
	}
	if !ok {
		return ErrPreconditionFailed
	}
	return nil
}
