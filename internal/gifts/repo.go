package gifts

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hotel-system/internal/reservation"
)

type Repo struct{ DB *pgxpool.Pool }

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", reservation.ErrStoreUnavailable, err)
}

const giftCols = `id, name, price_cents, image, category, description,
	status, reserved_by, reserved_at, created_at, updated_at`

func scanGift(row pgx.Row) (*Gift, error) {
	var (
		g          Gift
		status     string
		reservedBy *string
	)
	err := row.Scan(&g.ID, &g.Name, &g.PriceCents, &g.Image, &g.Category, &g.Description,
		&status, &reservedBy, &g.ReservedAt, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return nil, err
	}
	g.Status = reservation.Status(status)
	if reservedBy != nil {
		g.ReservedBy = *reservedBy
	}
	g.Sold = g.Status == reservation.StatusPurchased
	return &g, nil
}

func (r *Repo) List(ctx context.Context) ([]*Gift, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+giftCols+` FROM gifts ORDER BY created_at DESC`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []*Gift
	for rows.Next() {
		g, err := scanGift(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, rawID string) (*Gift, error) {
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return nil, err
	}
	for _, form := range forms {
		g, err := scanGift(r.DB.QueryRow(ctx, `SELECT `+giftCols+` FROM gifts WHERE id=$1`, form))
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, storeErr(err)
		}
		return g, nil
	}
	return nil, reservation.ErrNotFound
}

func (r *Repo) Create(ctx context.Context, in Input) (*Gift, error) {
	id := reservation.NewID()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO gifts(id, name, price_cents, image, category, description)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		id, in.Name, in.PriceCents, in.Image, in.Category, in.Description)
	if err != nil {
		return nil, storeErr(err)
	}
	return r.Get(ctx, id)
}

// Update rewrites the descriptive fields, never the status columns: those
// belong to the reservation engine. The previous image path is returned so
// the caller can clean up the replaced file.
func (r *Repo) Update(ctx context.Context, rawID string, in Input) (g *Gift, oldImage string, err error) {
	prev, err := r.Get(ctx, rawID)
	if err != nil {
		return nil, "", err
	}
	image := in.Image
	if image == "" {
		image = prev.Image
	}
	ct, err := r.DB.Exec(ctx, `
		UPDATE gifts SET name=$2, price_cents=$3, image=$4, category=$5, description=$6, updated_at=now()
		WHERE id=$1`,
		prev.ID, in.Name, in.PriceCents, image, in.Category, in.Description)
	if err != nil {
		return nil, "", storeErr(err)
	}
	if ct.RowsAffected() == 0 {
		return nil, "", reservation.ErrNotFound
	}
	g, err = r.Get(ctx, prev.ID)
	if err != nil {
		return nil, "", err
	}
	if in.Image != "" && prev.Image != in.Image {
		oldImage = prev.Image
	}
	return g, oldImage, nil
}

// Delete removes the gift and reports its image path for best-effort file
// cleanup. Orders referencing the gift keep their line items; the
// reference just stops resolving.
func (r *Repo) Delete(ctx context.Context, rawID string) (imagePath string, err error) {
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return "", err
	}
	for _, form := range forms {
		var image string
		err := r.DB.QueryRow(ctx, `DELETE FROM gifts WHERE id=$1 RETURNING image`, form).Scan(&image)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return "", storeErr(err)
		}
		return image, nil
	}
	return "", reservation.ErrNotFound
}
