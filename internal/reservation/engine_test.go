package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type memRow struct {
	status Status
	claim  *Claim
}

// memStore mirrors the conditional-update discipline of the Postgres store.
type memStore struct {
	mu   sync.Mutex
	rows map[string]*memRow
}

func newMemStore(ids ...string) *memStore {
	s := &memStore{rows: map[string]*memRow{}}
	for _, id := range ids {
		s.rows[id] = &memRow{status: StatusAvailable}
	}
	return s
}

func (s *memStore) Status(ctx context.Context, id string) (Status, error) {
	forms, err := LookupForms(id)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, form := range forms {
		if row, ok := s.rows[form]; ok {
			return row.status, nil
		}
	}
	return "", ErrNotFound
}

func (s *memStore) CompareAndSwap(ctx context.Context, id string, from, to Status, claim Claim) (bool, error) {
	forms, err := LookupForms(id)
	if err != nil {
		return false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var row *memRow
	for _, form := range forms {
		if r, ok := s.rows[form]; ok {
			row = r
			break
		}
	}
	if row == nil {
		return false, ErrNotFound
	}
	if row.status != from {
		return false, nil
	}
	row.status = to
	switch to {
	case StatusReserved:
		c := claim
		row.claim = &c
	case StatusAvailable:
		row.claim = nil
	}
	return true, nil
}

func (s *memStore) claimOf(id string) *Claim {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rows[id].claim
}

func TestReserveRecordsClaim(t *testing.T) {
	store := newMemStore("gift-1")
	eng := NewEngine(store)
	ctx := context.Background()

	if err := eng.Reserve(ctx, "gift-1", "user-7"); err != nil {
		t.Fatalf("reserve: %v", err)
	}
	st, err := eng.QueryStatus(ctx, "gift-1")
	if err != nil || st != StatusReserved {
		t.Fatalf("status = %v, %v; want RESERVED", st, err)
	}
	c := store.claimOf("gift-1")
	if c == nil || c.Claimant != "user-7" || c.ClaimedAt.IsZero() {
		t.Fatalf("claim = %+v; want claimant user-7 with timestamp", c)
	}
}

func TestClaimPresentIffNotAvailable(t *testing.T) {
	store := newMemStore("gift-1")
	eng := NewEngine(store)
	ctx := context.Background()

	if c := store.claimOf("gift-1"); c != nil {
		t.Fatalf("available entity has claim %+v", c)
	}
	if err := eng.Reserve(ctx, "gift-1", "u"); err != nil {
		t.Fatal(err)
	}
	if store.claimOf("gift-1") == nil {
		t.Fatal("reserved entity has no claim")
	}
	if err := eng.Release(ctx, "gift-1"); err != nil {
		t.Fatal(err)
	}
	if c := store.claimOf("gift-1"); c != nil {
		t.Fatalf("released entity still has claim %+v", c)
	}
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	const callers = 16
	store := newMemStore("gift-1")
	eng := NewEngine(store)
	ctx := context.Background()

	errs := make([]error, callers)
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = eng.Reserve(ctx, "gift-1", "user")
		}(i)
	}
	close(start)
	wg.Wait()

	wins := 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrPreconditionFailed):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 {
		t.Fatalf("winners = %d; want exactly 1", wins)
	}
	if st, _ := eng.QueryStatus(ctx, "gift-1"); st != StatusReserved {
		t.Fatalf("final status = %v; want RESERVED", st)
	}
}

func TestLifecycleOrdering(t *testing.T) {
	store := newMemStore("gift-1")
	eng := NewEngine(store)
	ctx := context.Background()

	// finalize before any reserve must lose its precondition
	if err := eng.Finalize(ctx, "gift-1"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("finalize on available = %v; want ErrPreconditionFailed", err)
	}

	if err := eng.Reserve(ctx, "gift-1", "u"); err != nil {
		t.Fatal(err)
	}
	if err := eng.Release(ctx, "gift-1"); err != nil {
		t.Fatal(err)
	}
	if err := eng.Reserve(ctx, "gift-1", "u"); err != nil {
		t.Fatal(err)
	}
	if err := eng.Finalize(ctx, "gift-1"); err != nil {
		t.Fatal(err)
	}
	if st, _ := eng.QueryStatus(ctx, "gift-1"); st != StatusPurchased {
		t.Fatalf("status = %v; want PURCHASED", st)
	}

	// purchased is terminal in the engine
	if err := eng.Release(ctx, "gift-1"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("release after purchase = %v; want ErrPreconditionFailed", err)
	}
	if err := eng.Reserve(ctx, "gift-1", "u"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("reserve after purchase = %v; want ErrPreconditionFailed", err)
	}
}

func TestDoubleReleaseFailsSecondOnly(t *testing.T) {
	store := newMemStore("gift-1")
	eng := NewEngine(store)
	ctx := context.Background()

	if err := eng.Reserve(ctx, "gift-1", "u"); err != nil {
		t.Fatal(err)
	}
	if err := eng.Release(ctx, "gift-1"); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if err := eng.Release(ctx, "gift-1"); !errors.Is(err, ErrPreconditionFailed) {
		t.Fatalf("second release = %v; want ErrPreconditionFailed", err)
	}
	if st, _ := eng.QueryStatus(ctx, "gift-1"); st != StatusAvailable {
		t.Fatalf("second release disturbed status: %v", st)
	}
}

func TestQueryStatusErrors(t *testing.T) {
	eng := NewEngine(newMemStore("gift-1"))
	ctx := context.Background()

	if _, err := eng.QueryStatus(ctx, "missing-id"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing = %v; want ErrNotFound", err)
	}
	if _, err := eng.QueryStatus(ctx, "not a valid id!"); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf("malformed = %v; want ErrInvalidIdentifier", err)
	}
	if _, err := eng.QueryStatus(ctx, "undefined"); !errors.Is(err, ErrInvalidIdentifier) {
		t.Fatalf(`"undefined" = %v; want ErrInvalidIdentifier`, err)
	}
}

func TestCanTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusAvailable, StatusReserved, true},
		{StatusReserved, StatusAvailable, true},
		{StatusReserved, StatusPurchased, true},
		{StatusAvailable, StatusPurchased, false},
		{StatusPurchased, StatusAvailable, false},
		{StatusPurchased, StatusReserved, false},
	}
	for _, c := range cases {
		if got := CanTransition(c.from, c.to); got != c.want {
			t.Errorf("CanTransition(%s, %s) = %v; want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestEngineClockIsUTC(t *testing.T) {
	store := newMemStore("gift-1")
	eng := NewEngine(store)
	eng.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.FixedZone("X", 3600)) }

	if err := eng.Reserve(context.Background(), "gift-1", "u"); err != nil {
		t.Fatal(err)
	}
	c := store.claimOf("gift-1")
	if c.ClaimedAt.Location() != time.UTC {
		t.Fatalf("claimed_at zone = %v; want UTC", c.ClaimedAt.Location())
	}
}
