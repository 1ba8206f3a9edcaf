package foods

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hotel-system/internal/reservation"
)

type Ingredient struct {
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	IsDefault  bool   `json:"isDefault"`
}

type Food struct {
	ID              string       `json:"id"`
	Name            string       `json:"name"`
	SmallPriceCents int          `json:"small_price_cents,omitempty"`
	BigPriceCents   int          `json:"big_price_cents,omitempty"`
	PriceCents      int          `json:"price_cents"`
	Category        string       `json:"category"`
	Image           string       `json:"image,omitempty"`
	Ingredients     []Ingredient `json:"ingredients"`
	Description     string       `json:"description,omitempty"`
	CreatedAt       time.Time    `json:"createdAt"`
	UpdatedAt       time.Time    `json:"updatedAt"`
}

type Input struct {
	Name            string
	SmallPriceCents int
	BigPriceCents   int
	PriceCents      int
	Category        string
	Image           string
	Ingredients     []Ingredient
	Description     string
}

type Repo struct{ DB *pgxpool.Pool }

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", reservation.ErrStoreUnavailable, err)
}

const foodCols = `id, name, small_price_cents, big_price_cents, price_cents,
	category, image, ingredients, description, created_at, updated_at`

func scanFood(row pgx.Row) (*Food, error) {
	var (
		f           Food
		ingredients []byte
	)
	err := row.Scan(&f.ID, &f.Name, &f.SmallPriceCents, &f.BigPriceCents, &f.PriceCents,
		&f.Category, &f.Image, &ingredients, &f.Description, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	f.Ingredients = []Ingredient{}
	if len(ingredients) > 0 {
		_ = json.Unmarshal(ingredients, &f.Ingredients)
	}
	return &f, nil
}

func (r *Repo) List(ctx context.Context) ([]*Food, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+foodCols+` FROM foods ORDER BY category, name`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []*Food
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *Repo) Get(ctx context.Context, rawID string) (*Food, error) {
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return nil, err
	}
	for _, form := range forms {
		f, err := scanFood(r.DB.QueryRow(ctx, `SELECT `+foodCols+` FROM foods WHERE id=$1`, form))
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, storeErr(err)
		}
		return f, nil
	}
	return nil, reservation.ErrNotFound
}

func marshalIngredients(in []Ingredient) []byte {
	if in == nil {
		in = []Ingredient{}
	}
	b, _ := json.Marshal(in)
	return b
}

func (r *Repo) Create(ctx context.Context, in Input) (*Food, error) {
	id := reservation.NewID()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO foods(id, name, small_price_cents, big_price_cents, price_cents,
		                  category, image, ingredients, description)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		id, in.Name, in.SmallPriceCents, in.BigPriceCents, in.PriceCents,
		in.Category, in.Image, marshalIngredients(in.Ingredients), in.Description)
	if err != nil {
		return nil, storeErr(err)
	}
	return r.Get(ctx, id)
}

func (r *Repo) Update(ctx context.Context, rawID string, in Input) (f *Food, oldImage string, err error) {
	prev, err := r.Get(ctx, rawID)
	if err != nil {
		return nil, "", err
	}
	image := in.Image
	if image == "" {
		image = prev.Image
	}
	_, err = r.DB.Exec(ctx, `
		UPDATE foods SET name=$2, small_price_cents=$3, big_price_cents=$4, price_cents=$5,
			category=$6, image=$7, ingredients=$8, description=$9, updated_at=now()
		WHERE id=$1`,
		prev.ID, in.Name, in.SmallPriceCents, in.BigPriceCents, in.PriceCents,
		in.Category, image, marshalIngredients(in.Ingredients), in.Description)
	if err != nil {
		return nil, "", storeErr(err)
	}
	f, err = r.Get(ctx, prev.ID)
	if err != nil {
		return nil, "", err
	}
	if in.Image != "" && prev.Image != in.Image {
		oldImage = prev.Image
	}
	return f, oldImage, nil
}

func (r *Repo) Delete(ctx context.Context, rawID string) (imagePath string, err error) {
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return "", err
	}
	for _, form := range forms {
		var image string
		err := r.DB.QueryRow(ctx, `DELETE FROM foods WHERE id=$1 RETURNING image`, form).Scan(&image)
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
