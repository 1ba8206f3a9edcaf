package vouchers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hotel-system/internal/reservation"
)

var voucherTypes = map[string]bool{
	"Experience": true, "Gift Card": true, "Product": true, "Service": true,
}

func ValidType(t string) bool { return voucherTypes[t] }

type Voucher struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	PriceCents     int       `json:"price_cents"`
	Description    string    `json:"description"`
	Category       string    `json:"category"`
	Image          string    `json:"image,omitempty"`
	ValidityPeriod string    `json:"validityPeriod"`
	Type           string    `json:"type"`
	Sold           bool      `json:"sold"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

type Input struct {
	Name           string
	PriceCents     int
	Description    string
	Category       string
	Image          string
	ValidityPeriod string
	Type           string
	Sold           bool
}

type Repo struct{ DB *pgxpool.Pool }

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", reservation.ErrStoreUnavailable, err)
}

const voucherCols = `id, name, price_cents, description, category, image,
	validity_period, type, sold, created_at, updated_at`

func scanVoucher(row pgx.Row) (*Voucher, error) {
	var v Voucher
	err := row.Scan(&v.ID, &v.Name, &v.PriceCents, &v.Description, &v.Category, &v.Image,
		&v.ValidityPeriod, &v.Type, &v.Sold, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *Repo) List(ctx context.Context) ([]*Voucher, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+voucherCols+` FROM vouchers ORDER BY created_at DESC`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []*Voucher
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, rawID string) (*Voucher, error) {
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return nil, err
	}
	for _, form := range forms {
		v, err := scanVoucher(r.DB.QueryRow(ctx, `SELECT `+voucherCols+` FROM vouchers WHERE id=$1`, form))
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, storeErr(err)
		}
		return v, nil
	}
	return nil, reservation.ErrNotFound
}

func (r *Repo) Create(ctx context.Context, in Input) (*Voucher, error) {
	if in.ValidityPeriod == "" {
		in.ValidityPeriod = "12 months"
	}
	if in.Type == "" {
		in.Type = "Experience"
	}
	id := reservation.NewID()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO vouchers(id, name, price_cents, description, category, image, validity_period, type)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		id, in.Name, in.PriceCents, in.Description, in.Category, in.Image, in.ValidityPeriod, in.Type)
	if err != nil {
		return nil, storeErr(err)
	}
	return r.Get(ctx, id)
}

func (r *Repo) Update(ctx context.Context, rawID string, in Input) (v *Voucher, oldImage string, err error) {
	prev, err := r.Get(ctx, rawID)
	if err != nil {
		return nil, "", err
	}
	image := in.Image
	if image == "" {
		image = prev.Image
	}
	if in.ValidityPeriod == "" {
		in.ValidityPeriod = prev.ValidityPeriod
	}
	if in.Type == "" {
		in.Type = prev.Type
	}
	_, err = r.DB.Exec(ctx, `
		UPDATE vouchers SET name=$2, price_cents=$3, description=$4, category=$5, image=$6,
			validity_period=$7, type=$8, sold=$9, updated_at=now()
		WHERE id=$1`,
		prev.ID, in.Name, in.PriceCents, in.Description, in.Category, image,
		in.ValidityPeriod, in.Type, in.Sold)
	if err != nil {
		return nil, "", storeErr(err)
	}
	v, err = r.Get(ctx, prev.ID)
	if err != nil {
		return nil, "", err
	}
	if in.Image != "" && prev.Image != in.Image {
		oldImage = prev.Image
	}
	return v, oldImage, nil
}

func (r *Repo) Delete(ctx context.Context, rawID string) (imagePath string, err error) {
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return "", err
	}
	for _, form := range forms {
		var image string
		err := r.DB.QueryRow(ctx, `DELETE FROM vouchers WHERE id=$1 RETURNING image`, form).Scan(&image)
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
