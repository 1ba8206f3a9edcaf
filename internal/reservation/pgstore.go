package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store on a Postgres table. The table needs id, status,
// reserved_by and reserved_at columns; gifts and rooms both qualify.
type PGStore struct {
	DB    *pgxpool.Pool
	Table string
}

func NewGiftStore(db *pgxpool.Pool) *PGStore { return &PGStore{DB: db, Table: "gifts"} }
func NewRoomStore(db *pgxpool.Pool) *PGStore { return &PGStore{DB: db, Table: "rooms"} }

func (s *PGStore) Status(ctx context.Context, id string) (Status, error) {
	forms, err := LookupForms(id)
	if err != nil {
		return "", err
	}
	for _, form := range forms {
		var st string
		err := s.DB.QueryRow(ctx,
			fmt.Sprintf(`SELECT status FROM %s WHERE id=$1`, s.Table), form).Scan(&st)
		if err == nil {
			return Status(st), nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	}
	return "", ErrNotFound
}

// CompareAndSwap is a single conditional UPDATE matching both the id and
// the expected pre-status. No read-modify-write: the WHERE clause is the
// whole admission check, so concurrent swaps on one row serialize in the
// database and at most one of them reports swapped=true.
func (s *PGStore) CompareAndSwap(ctx context.Context, id string, from, to Status, claim Claim) (bool, error) {
	forms, err := LookupForms(id)
	if err != nil {
		return false, err
	}

	var q string
	args := []any{"", string(from), string(to)}
	switch to {
	case StatusReserved:
		q = fmt.Sprintf(`UPDATE %s SET status=$3, reserved_by=$4, reserved_at=$5
		                 WHERE id=$1 AND status=$2`, s.Table)
		args = append(args, claim.Claimant, claim.ClaimedAt)
	case StatusAvailable:
		q = fmt.Sprintf(`UPDATE %s SET status=$3, reserved_by=NULL, reserved_at=NULL
		                 WHERE id=$1 AND status=$2`, s.Table)
	default: // PURCHASED keeps the recorded claim
		q = fmt.Sprintf(`UPDATE %s SET status=$3 WHERE id=$1 AND status=$2`, s.Table)
	}

	for _, form := range forms {
		args[0] = form
		ct, err := s.DB.Exec(ctx, q, args...)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
		if ct.RowsAffected() == 1 {
			return true, nil
		}
	}

	// Nothing matched: either the row is in another state or it does not
	// exist at all. Re-check so callers can tell the two apart.
	if _, err := s.Status(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
