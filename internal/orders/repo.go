package orders

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hotel-system/internal/reservation"
)

type Repo struct{ DB *pgxpool.Pool }

type ItemInput struct {
	GiftID       string   `json:"gift"`
	FoodID       string   `json:"food"`
	Quantity     int      `json:"quantity"`
	GiftType     string   `json:"giftType"`
	GroupSize    int      `json:"groupSize"`
	Contributors []string `json:"contributors"`
}

type CreateInput struct {
	Kind            Kind
	Payer           reservation.Identity
	Items           []ItemInput
	TotalCents      int
	PaymentMethod   string
	CardLast4       string
	CardBrand       string
	DeliveryAddress *Address
	TableNo         *int
	CustomerName    string
	ContactNumber   string
	Email           string
	CartItems       json.RawMessage
	SubTotalCents   int
	TaxCents        int
	GrandTotalCents int
}

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", reservation.ErrStoreUnavailable, err)
}

// Create inserts the order and its line items in one transaction. Orders
// start pending; no reservation is taken here, the caller reserves gifts
// through the engine and compensates with releases if this insert fails.
func (r *Repo) Create(ctx context.Context, in CreateInput) (*Order, error) {
	if !ValidKind(in.Kind) {
		return nil, fmt.Errorf("invalid order kind %q", in.Kind)
	}
	for i := range in.Items {
		if in.Items[i].Quantity <= 0 {
			in.Items[i].Quantity = 1
		}
		if in.Items[i].GiftType == "" {
			in.Items[i].GiftType = "individual"
		}
		if in.Items[i].GroupSize <= 0 {
			in.Items[i].GroupSize = 1
		}
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, storeErr(err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	orderID := reservation.NewID()
	var payer *string
	if s := in.Payer.Canonical(); s != "" {
		payer = &s
	}
	var addr []byte
	if in.DeliveryAddress != nil {
		addr, _ = json.Marshal(in.DeliveryAddress)
	}
	cart := in.CartItems
	if cart == nil {
		cart = json.RawMessage(`[]`)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, kind, status, payer_identity, total_cents,
		                   payment_method, card_last4, card_brand, delivery_address,
		                   table_no, customer_name, contact_number, email,
		                   cart_items, sub_total_cents, tax_cents, grand_total_cents)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		orderID, string(in.Kind), string(StatusPending), payer, in.TotalCents,
		in.PaymentMethod, in.CardLast4, in.CardBrand, addr,
		in.TableNo, in.CustomerName, in.ContactNumber, in.Email,
		[]byte(cart), in.SubTotalCents, in.TaxCents, in.GrandTotalCents)
	if err != nil {
		return nil, storeErr(err)
	}

	for _, it := range in.Items {
		var giftID, foodID *string
		if it.GiftID != "" {
			id := it.GiftID
			giftID = &id
		}
		if it.FoodID != "" {
			id := it.FoodID
			foodID = &id
		}
		contributors := it.Contributors
		if contributors == nil {
			contributors = []string{}
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO order_items(order_id, gift_id, food_id, quantity, gift_type, group_size, contributors)
			VALUES ($1,$2,$3,$4,$5,$6,$7)`,
			orderID, giftID, foodID, it.Quantity, it.GiftType, it.GroupSize, contributors)
		if err != nil {
			return nil, storeErr(err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr(err)
	}
	return r.Get(ctx, orderID, in.Kind)
}

const orderCols = `id, kind, status, payer_identity, total_cents,
	payment_method, card_last4, card_brand, delivery_address,
	table_no, customer_name, contact_number, email,
	cart_items, sub_total_cents, tax_cents, grand_total_cents,
	created_at, updated_at`

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o     Order
		kind  string
		st    string
		payer *string
		addr  []byte
		cart  []byte
	)
	err := row.Scan(&o.ID, &kind, &st, &payer, &o.TotalCents,
		&o.PaymentMethod, &o.CardLast4, &o.CardBrand, &addr,
		&o.TableNo, &o.CustomerName, &o.ContactNumber, &o.Email,
		&cart, &o.SubTotalCents, &o.TaxCents, &o.GrandTotalCents,
		&o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	o.Kind = Kind(kind)
	o.Status = Status(st)
	o.Payer = reservation.ParseIdentity(payer)
	o.User = o.Payer.Canonical()
	if len(addr) > 0 {
		var a Address
		if json.Unmarshal(addr, &a) == nil {
			o.DeliveryAddress = &a
		}
	}
	if len(cart) > 0 {
		o.CartItems = json.RawMessage(cart)
	}
	o.Items = []Item{}
	return &o, nil
}

// Get resolves the order by identifier, canonical form first, raw spelling
// second. Kind "" matches any order type.
func (r *Repo) Get(ctx context.Context, rawID string, kind Kind) (*Order, error) {
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return nil, err
	}
	for _, form := range forms {
		q := `SELECT ` + orderCols + ` FROM orders WHERE id=$1`
		args := []any{form}
		if kind != "" {
			q += ` AND kind=$2`
			args = append(args, string(kind))
		}
		o, err := scanOrder(r.DB.QueryRow(ctx, q, args...))
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, storeErr(err)
		}
		if err := r.loadItems(ctx, []*Order{o}); err != nil {
			return nil, err
		}
		return o, nil
	}
	return nil, reservation.ErrNotFound
}

// GetStatus is the cheap status-only lookup used behind the cache.
func (r *Repo) GetStatus(ctx context.Context, rawID string) (Status, error) {
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return "", err
	}
	for _, form := range forms {
		var st string
		err := r.DB.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1`, form).Scan(&st)
		if err == nil {
			return Status(st), nil
		}
		if !errors.Is(err, pgx.ErrNoRows) {
			return "", storeErr(err)
		}
	}
	return "", reservation.ErrNotFound
}

// List returns orders newest first. Kind "" lists all.
func (r *Repo) List(ctx context.Context, kind Kind) ([]*Order, error) {
	q := `SELECT ` + orderCols + ` FROM orders`
	var args []any
	if kind != "" {
		q += ` WHERE kind=$1`
		args = append(args, string(kind))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	defer rows.Close()

	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, storeErr(err)
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}
	if err := r.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListByPayer finds orders belonging to an identity. The indexed equality
// lookup runs first; when it comes back empty the whole kind is scanned and
// reconciled through Identity.Matches, because payer identities were
// persisted in drifting representations (raw guest strings vs. user
// references) and an equality match can miss legitimate rows.
func (r *Repo) ListByPayer(ctx context.Context, kind Kind, target string) ([]*Order, error) {
	canonical, err := reservation.NormalizeID(target)
	if err != nil {
		return nil, err
	}

	q := `SELECT ` + orderCols + ` FROM orders WHERE payer_identity = ANY($1)`
	args := []any{[]string{canonical, target}}
	if kind != "" {
		q += ` AND kind=$2`
		args = append(args, string(kind))
	}
	q += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, storeErr(err)
	}
	var out []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			rows.Close()
			return nil, storeErr(err)
		}
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, storeErr(err)
	}

	if len(out) == 0 {
		all, err := r.List(ctx, kind)
		if err != nil {
			return nil, err
		}
		for _, o := range all {
			if o.Payer.Matches(target) {
				out = append(out, o)
			}
		}
		return out, nil
	}

	if err := r.loadItems(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// AdvanceStatus moves the order along the lifecycle. The transition table
// is checked against the status read here, and the write matches on that
// same status, so a concurrent writer that moved the row first turns this
// call into ErrPreconditionFailed instead of silently overwriting.
//
// Cancelling never releases reservables referenced by the order; that
// compensation is an explicit administrative call.
func (r *Repo) AdvanceStatus(ctx context.Context, rawID string, target Status, kind Kind) (*Order, error) {
	if !ValidStatus(target) {
		return nil, reservation.ErrInvalidTransition
	}
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return nil, err
	}

	for _, form := range forms {
		q := `SELECT status FROM orders WHERE id=$1`
		args := []any{form}
		if kind != "" {
			q += ` AND kind=$2`
			args = append(args, string(kind))
		}
		var cur string
		err := r.DB.QueryRow(ctx, q, args...).Scan(&cur)
		if errors.Is(err, pgx.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, storeErr(err)
		}

		if !CanTransition(Status(cur), target) {
			return nil, fmt.Errorf("%w: %s -> %s", reservation.ErrInvalidTransition, cur, target)
		}

		ct, err := r.DB.Exec(ctx,
			`UPDATE orders SET status=$2, updated_at=now() WHERE id=$1 AND status=$3`,
			form, string(target), cur)
		if err != nil {
			return nil, storeErr(err)
		}
		if ct.RowsAffected() == 0 {
			return nil, reservation.ErrPreconditionFailed
		}
		return r.Get(ctx, form, kind)
	}
	return nil, reservation.ErrNotFound
}

// Delete removes the order. Administrative only; referenced gifts and rooms
// are left exactly as they are.
func (r *Repo) Delete(ctx context.Context, rawID string, kind Kind) error {
	forms, err := reservation.LookupForms(rawID)
	if err != nil {
		return err
	}
	for _, form := range forms {
		q := `DELETE FROM orders WHERE id=$1`
		args := []any{form}
		if kind != "" {
			q += ` AND kind=$2`
			args = append(args, string(kind))
		}
		ct, err := r.DB.Exec(ctx, q, args...)
		if err != nil {
			return storeErr(err)
		}
		if ct.RowsAffected() > 0 {
			return nil
		}
	}
	return reservation.ErrNotFound
}

// loadItems attaches line items, resolving gift/food details through LEFT
// JOINs so a deleted reference shows up as a nil detail, never an error.
func (r *Repo) loadItems(ctx context.Context, os []*Order) error {
	if len(os) == 0 {
		return nil
	}
	byID := make(map[string]*Order, len(os))
	ids := make([]string, 0, len(os))
	for _, o := range os {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err := r.DB.Query(ctx, `
		SELECT i.order_id, i.gift_id, i.food_id, i.quantity, i.gift_type, i.group_size, i.contributors,
		       g.id, g.name, g.price_cents,
		       f.id, f.name, f.price_cents
		FROM order_items i
		LEFT JOIN gifts g ON g.id = i.gift_id
		LEFT JOIN foods f ON f.id = i.food_id
		WHERE i.order_id = ANY($1)
		ORDER BY i.id`, ids)
	if err != nil {
		return storeErr(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			orderID        string
			giftID, foodID *string
			it             Item
			gID, gName     *string
			gPrice         *int
			fID, fName     *string
			fPrice         *int
		)
		err := rows.Scan(&orderID, &giftID, &foodID, &it.Quantity, &it.GiftType, &it.GroupSize, &it.Contributors,
			&gID, &gName, &gPrice, &fID, &fName, &fPrice)
		if err != nil {
			return storeErr(err)
		}
		if giftID != nil {
			it.GiftID = *giftID
		}
		if foodID != nil {
			it.FoodID = *foodID
		}
		if gID != nil {
			it.Gift = &GiftRef{ID: *gID, Name: *gName, PriceCents: *gPrice}
		}
		if fID != nil {
			it.Food = &FoodRef{ID: *fID, Name: *fName, PriceCents: *fPrice}
		}
		if o, ok := byID[orderID]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}
