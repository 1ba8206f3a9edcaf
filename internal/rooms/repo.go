package rooms

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hotel-system/internal/reservation"
)

// adminClaimant is recorded when the front desk forces a room into a
// non-available status without a real claimant on file.
const adminClaimant = "front-desk"

type Repo struct{ DB *pgxpool.Pool }

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", reservation.ErrStoreUnavailable, err)
}

const roomCols = `id, room_type, price_cents, room_number, facilities, bed_type,
	status, reserved_by, reserved_at, images, created_at`

func scanRoom(row pgx.Row) (*Room, error) {
	var (
		rm         Room
		status     string
		reservedBy *string
	)
	err := row.Scan(&rm.ID, &rm.RoomType, &rm.PriceCents, &rm.RoomNumber, &rm.Facilities, &rm.BedType,
		&status, &reservedBy, &rm.ReservedAt, &rm.Images, &rm.CreatedAt)
	if err != nil {
		return nil, err
	}
	rm.Status = reservation.Status(status)
	if reservedBy != nil {
		rm.ReservedBy = *reservedBy
	}
	if rm.Images == nil {
		rm.Images = []string{}
	}
	return &rm, nil
}

func (r *Repo) List(ctx context.Context) ([]*Room, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+roomCols+` FROM rooms ORDER BY room_number`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []*Room
	for rows.Next() {
		rm, err := scanRoom(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, rawID string) (*Room, error) {
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return nil, err
	}
	for _, form := range forms {
		rm, err := scanRoom(r.DB.QueryRow(ctx, `SELECT `+roomCols+` FROM rooms WHERE id=$1`, form))
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, storeErr(err)
		}
		return rm, nil
	}
	return nil, reservation.ErrNotFound
}

// AvailableNumbers lists room numbers of a type still open for booking.
func (r *Repo) AvailableNumbers(ctx context.Context, roomType string) ([]int, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT room_number FROM rooms
		WHERE room_type=$1 AND status=$2
		ORDER BY room_number`, roomType, string(reservation.StatusAvailable))
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	out := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, storeErr(err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *Repo) Create(ctx context.Context, in Input, images []string) (*Room, error) {
	if images == nil {
		images = []string{}
	}
	id := reservation.NewID()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO rooms(id, room_type, price_cents, room_number, facilities, bed_type, images)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		id, in.RoomType, in.PriceCents, in.RoomNumber, in.Facilities, in.BedType, images)
	if err != nil {
		return nil, storeErr(err)
	}
	return r.Get(ctx, id)
}

// Update rewrites descriptive fields and optionally the image set. When
// newImages is non-empty and keepExisting is false the replaced paths are
// returned for file cleanup. Status columns are untouched here.
func (r *Repo) Update(ctx context.Context, rawID string, in Input, newImages []string, keepExisting bool) (rm *Room, removed []string, err error) {
	prev, err := r.Get(ctx, rawID)
	if err != nil {
		return nil, nil, err
	}

	images := prev.Images
	switch {
	case keepExisting && len(newImages) > 0:
		images = append(append([]string{}, prev.Images...), newImages...)
	case len(newImages) > 0:
		images = newImages
		removed = prev.Images
	}

	_, err = r.DB.Exec(ctx, `
		UPDATE rooms SET room_type=$2, price_cents=$3, room_number=$4, facilities=$5, bed_type=$6, images=$7
		WHERE id=$1`,
		prev.ID, in.RoomType, in.PriceCents, in.RoomNumber, in.Facilities, in.BedType, images)
	if err != nil {
		return nil, nil, storeErr(err)
	}
	rm, err = r.Get(ctx, prev.ID)
	return rm, removed, err
}

func (r *Repo) Delete(ctx context.Context, rawID string) (images []string, err error) {
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return nil, err
	}
	for _, form := range forms {
		err := r.DB.QueryRow(ctx, `DELETE FROM rooms WHERE id=$1 RETURNING images`, form).Scan(&images)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, storeErr(err)
		}
		return images, nil
	}
	return nil, reservation.ErrNotFound
}

// RemoveImage drops one image path by index. The row is locked while the
// array is spliced so concurrent removals cannot resurrect a path.
func (r *Repo) RemoveImage(ctx context.Context, rawID string, index int) (rm *Room, removed string, err error) {
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return nil, "", err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, "", storeErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var id string
	var images []string
	found := false
	for _, form := range forms {
		err := tx.QueryRow(ctx, `SELECT id, images FROM rooms WHERE id=$1 FOR UPDATE`, form).Scan(&id, &images)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, "", storeErr(err)
		}
		found = true
		break
	}
	if !found {
		return nil, "", reservation.ErrNotFound
	}
	if index < 0 || index >= len(images) {
		return nil, "", fmt.Errorf("%w: image index %d out of range", reservation.ErrInvalidIdentifier, index)
	}

	removed = images[index]
	images = append(images[:index], images[index+1:]...)
	if _, err := tx.Exec(ctx, `UPDATE rooms SET images=$2 WHERE id=$1`, id, images); err != nil {
		return nil, "", storeErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, "", storeErr(err)
	}

	rm, err = r.Get(ctx, id)
	return rm, removed, err
}

// SetStatusByNumber is the explicit administrative reset, the one path that
// can move a booked room back to AVAILABLE. Still a single conditional
// write; the claim pair follows the target status so the claimant-iff-
// not-available invariant survives manual overrides.
func (r *Repo) SetStatusByNumber(ctx context.Context, roomNumber int, to reservation.Status) (*Room, error) {
	if !reservation.ValidStatus(to) {
		return nil, reservation.ErrInvalidTransition
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE rooms SET status=$2,
			reserved_by = CASE WHEN $2=$3 THEN NULL ELSE COALESCE(reserved_by, $4) END,
			reserved_at = CASE WHEN $2=$3 THEN NULL ELSE COALESCE(reserved_at, now()) END
		WHERE room_number=$1`,
		roomNumber, string(to), string(reservation.StatusAvailable), adminClaimant)
	if err != nil {
		return nil, storeErr(err)
	}
	if ct.RowsAffected() == 0 {
		return nil, reservation.ErrNotFound
	}

	var id string
	if err := r.DB.QueryRow(ctx, `SELECT id FROM rooms WHERE room_number=$1`, roomNumber).Scan(&id); err != nil {
		return nil, storeErr(err)
	}
	return r.Get(ctx, id)
}
