package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	"hotel-system/internal/events"
	kafkax "hotel-system/internal/kafka"
	"hotel-system/internal/orders"
	"hotel-system/internal/redisx"
	"hotel-system/internal/reservation"
)

type OrdersHandler struct {
	Repo   *orders.Repo
	Engine *reservation.Engine // gift store engine, for checkout reservations
	Redis  *redis.Client

	ProducerCreated *kafkax.Producer // order.created
	ProducerStatus  *kafkax.Producer // order.status.changed
	Service         string

	// Kind scopes the mounted routes; empty serves every order type.
	Kind orders.Kind
}

func (h *OrdersHandler) Register(r *chi.Mux, prefix string) {
	r.Route(prefix, func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/user/{userId}", h.listByUser)
		r.Get("/{id}", h.get)
		r.Get("/{id}/status", h.getStatus)
		r.Put("/{id}/status", h.updateStatus)
		r.Delete("/{id}", h.delete)
	})
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	os, err := h.Repo.List(ctx, h.Kind)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(os), os)
}

func (h *OrdersHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	os, err := h.Repo.ListByPayer(ctx, h.Kind, chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(os), os)
}

func (h *OrdersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	o, err := h.Repo.Get(ctx, chi.URLParam(r, "id"), h.Kind)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, o)
}

// getStatus serves from the Redis cache when it can; the DB stays the
// source of truth and refills the cache on a miss.
func (h *OrdersHandler) getStatus(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(s))
		return
	}

	st, err := h.Repo.GetStatus(ctx, orderID)
	if err != nil {
		respondError(w, err)
		return
	}
	b, _ := json.Marshal(map[string]any{"status": st})
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

type createOrderReq struct {
	User            string             `json:"user"`
	OrderType       orders.Kind        `json:"orderType"`
	Items           []orders.ItemInput `json:"items"`
	TotalAmount     int                `json:"totalAmount"`
	PaymentMethod   string             `json:"paymentMethod"`
	PaymentDetails  struct {
		CardLast4 string `json:"cardLast4"`
		CardBrand string `json:"cardBrand"`
	} `json:"paymentDetails"`
	DeliveryAddress *orders.Address `json:"deliveryAddress"`
	TableNo         *int            `json:"tableNo"`
	CustomerName    string          `json:"customerName"`
	ContactNumber   string          `json:"contactNumber"`
	Email           string          `json:"email"`
	CartItems       json.RawMessage `json:"cartItems"`
	SubTotal        int             `json:"subTotal"`
	Tax             int             `json:"tax"`
	GrandTotal      int             `json:"grandTotal"`
}

// create places an order. Gift checkouts first claim every referenced gift
// through the engine's conditional reserve; each claim stands on its own,
// so when one fails, or the order insert itself fails, the claims already
// won are compensated with releases before the error goes back out.
func (h *OrdersHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := decodeJSON(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	kind := h.Kind
	if kind == "" {
		kind = req.OrderType
		if kind == "" {
			kind = orders.KindFood
		}
	}
	if !orders.ValidKind(kind) {
		respondFail(w, http.StatusBadRequest, "invalid orderType")
		return
	}
	if len(req.Items) == 0 && len(req.CartItems) == 0 {
		respondFail(w, http.StatusBadRequest, "order has no items")
		return
	}
	if kind == orders.KindFood && (req.CustomerName == "" || req.ContactNumber == "" || req.TableNo == nil) {
		respondFail(w, http.StatusBadRequest, "missing fields")
		return
	}

	payer := reservation.ParseIdentity(&req.User)
	if payer.Kind == reservation.IdentityAbsent && kind == orders.KindGift {
		// guest checkout still gets an identity so the order stays findable
		payer = reservation.NewGuestIdentity()
	}
	claimant := payer.Canonical()

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	var reserved []string
	compensate := func() {
		for _, id := range reserved {
			// best effort; a failed release means someone else moved it on
			_ = h.Engine.Release(ctx, id)
		}
	}

	if kind == orders.KindGift {
		for _, it := range req.Items {
			if it.GiftID == "" {
				continue
			}
			if err := h.Engine.Reserve(ctx, it.GiftID, claimant); err != nil {
				compensate()
				respondError(w, err)
				return
			}
			reserved = append(reserved, it.GiftID)
		}
	}

	in := orders.CreateInput{
		Kind:            kind,
		Payer:           payer,
		Items:           req.Items,
		TotalCents:      req.TotalAmount,
		PaymentMethod:   req.PaymentMethod,
		CardLast4:       req.PaymentDetails.CardLast4,
		CardBrand:       req.PaymentDetails.CardBrand,
		DeliveryAddress: req.DeliveryAddress,
		TableNo:         req.TableNo,
		CustomerName:    req.CustomerName,
		ContactNumber:   req.ContactNumber,
		Email:           req.Email,
		CartItems:       req.CartItems,
		SubTotalCents:   req.SubTotal,
		TaxCents:        req.Tax,
		GrandTotalCents: req.GrandTotal,
	}
	o, err := h.Repo.Create(ctx, in)
	if err != nil {
		compensate()
		respondError(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)
	h.publishCreated(r, o)
	respondData(w, http.StatusCreated, o)
}

type orderStatusReq struct {
	Status orders.Status `json:"status"`
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req orderStatusReq
	if err := decodeJSON(r, &req); err != nil || req.Status == "" {
		respondFail(w, http.StatusBadRequest, "status is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.Repo.AdvanceStatus(ctx, chi.URLParam(r, "id"), req.Status, h.Kind)
	if err != nil {
		respondError(w, err)
		return
	}

	h.cacheStatus(ctx, o.ID, o.Status)
	h.publishStatusChanged(r, o)
	respondData(w, http.StatusOK, o)
}

func (h *OrdersHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	orderID := chi.URLParam(r, "id")
	if err := h.Repo.Delete(ctx, orderID, h.Kind); err != nil {
		respondError(w, err)
		return
	}
	_ = h.Redis.Del(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
	respondData(w, http.StatusOK, map[string]any{})
}

func (h *OrdersHandler) cacheStatus(ctx context.Context, orderID string, st orders.Status) {
	b, _ := json.Marshal(map[string]any{"status": st})
	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	_ = h.Redis.Set(ctx, key, b, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publishCreated(r *http.Request, o *orders.Order) {
	if h.ProducerCreated == nil {
		return
	}
	h.publish(h.ProducerCreated, r, o.ID, events.EventOrderCreated,
		events.OrderCreatedPayload{OrderID: o.ID, Kind: string(o.Kind), User: o.User, TotalCents: o.TotalCents})
}

func (h *OrdersHandler) publishStatusChanged(r *http.Request, o *orders.Order) {
	if h.ProducerStatus == nil {
		return
	}
	h.publish(h.ProducerStatus, r, o.ID, events.EventOrderStatusChanged,
		events.OrderStatusChangedPayload{OrderID: o.ID, Status: string(o.Status)})
}

func (h *OrdersHandler) publish(p *kafkax.Producer, r *http.Request, orderID, eventType string, payload any) {
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload:       kafkax.MustMarshal(payload),
	}
	p.Publish(events.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
