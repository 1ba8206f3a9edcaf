package bills

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hotel-system/internal/reservation"
)

type Bill struct {
	ID             string          `json:"id"`
	CustomerName   string          `json:"customerName"`
	CustomerNumber string          `json:"customerNumber"`
	TotalCents     int             `json:"totalAmount"`
	SubTotalCents  int             `json:"subTotal"`
	TaxCents       int             `json:"tax"`
	PaymentMode    string          `json:"paymentMode"`
	CartItems      json.RawMessage `json:"cartItems"`
	UserID         string          `json:"userId,omitempty"`

	Payer reservation.Identity `json:"-"`

	CreatedAt time.Time `json:"createdAt"`
}

type Input struct {
	CustomerName   string
	CustomerNumber string
	TotalCents     int
	SubTotalCents  int
	TaxCents       int
	PaymentMode    string
	CartItems      json.RawMessage
	Payer          reservation.Identity
}

type Repo struct{ DB *pgxpool.Pool }

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", reservation.ErrStoreUnavailable, err)
}

const billCols = `id, customer_name, customer_number, total_cents, sub_total_cents,
	tax_cents, payment_mode, cart_items, payer_identity, created_at`

func scanBill(row pgx.Row) (*Bill, error) {
	var (
		b     Bill
		cart  []byte
		payer *string
	)
	err := row.Scan(&b.ID, &b.CustomerName, &b.CustomerNumber, &b.TotalCents, &b.SubTotalCents,
		&b.TaxCents, &b.PaymentMode, &cart, &payer, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	b.CartItems = json.RawMessage(cart)
	b.Payer = reservation.ParseIdentity(payer)
	b.UserID = b.Payer.Canonical()
	return &b, nil
}

func (r *Repo) Add(ctx context.Context, in Input) (*Bill, error) {
	cart := in.CartItems
	if cart == nil {
		cart = json.RawMessage(`[]`)
	}
	var payer *string
	if s := in.Payer.Canonical(); s != "" {
		payer = &s
	}
	id := reservation.NewID()
	_, err := r.DB.Exec(ctx, `
		INSERT INTO bills(id, customer_name, customer_number, total_cents, sub_total_cents,
		                  tax_cents, payment_mode, cart_items, payer_identity)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		id, in.CustomerName, in.CustomerNumber, in.TotalCents, in.SubTotalCents,
		in.TaxCents, in.PaymentMode, []byte(cart), payer)
	if err != nil {
		return nil, storeErr(err)
	}

	b, err := scanBill(r.DB.QueryRow(ctx, `SELECT `+billCols+` FROM bills WHERE id=$1`, id))
	if err != nil {
		return nil, storeErr(err)
	}
	return b, nil
}

func (r *Repo) List(ctx context.Context) ([]*Bill, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+billCols+` FROM bills ORDER BY created_at DESC`)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []*Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// ListByUser filters bills for one user. Indexed equality on the payer
// identity first; on no hits, a full scan reconciled through the identity
// union, also accepting the stored contact number, since older bills only
// carried name and phone.
func (r *Repo) ListByUser(ctx context.Context, target string) ([]*Bill, error) {
	if target == "" || target == "undefined" {
		return nil, reservation.ErrInvalidIdentifier
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+billCols+` FROM bills WHERE payer_identity=$1 ORDER BY created_at DESC`, target)
	if err != nil {
		return nil, storeErr(err)
	}
	var out []*Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			rows.Close()
			return nil, storeErr(err)
		}
		out = append(out, b)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	if len(out) > 0 {
		return out, nil
	}

	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, b := range all {
		if b.Payer.Matches(target) || b.CustomerNumber == target {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *Repo) Delete(ctx context.Context, rawID string) error {
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return err
	}
	for _, form := range forms {
		ct, err := r.DB.Exec(ctx, `DELETE FROM bills WHERE id=$1`, form)
		if err != nil {
			return storeErr(err)
		}
		if ct.RowsAffected() > 0 {
			return nil
		}
	}
	return reservation.ErrNotFound
}
