package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hotel-system/internal/bills"
	"hotel-system/internal/reservation"
)

type BillsHandler struct {
	Repo *bills.Repo
}

func (h *BillsHandler) Register(r *chi.Mux) {
	r.Route("/bills", func(r chi.Router) {
		r.Post("/add-bills", h.add)
		r.Get("/get-bills", h.list)
		r.Get("/get-user-bills/{userId}", h.listByUser)
		r.Delete("/delete-bills/{id}", h.delete)
	})
}

type billReq struct {
	CustomerName   string          `json:"customerName"`
	CustomerNumber string          `json:"customerNumber"`
	TotalAmount    int             `json:"totalAmount"`
	SubTotal       int             `json:"subTotal"`
	Tax            int             `json:"tax"`
	PaymentMode    string          `json:"paymentMode"`
	CartItems      json.RawMessage `json:"cartItems"`
	UserID         string          `json:"userId"`
}

func (h *BillsHandler) add(w http.ResponseWriter, r *http.Request) {
	var req billReq
	if err := decodeJSON(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.CustomerName == "" || req.CustomerNumber == "" || req.PaymentMode == "" {
		respondFail(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Repo.Add(ctx, bills.Input{
		CustomerName:   req.CustomerName,
		CustomerNumber: req.CustomerNumber,
		TotalCents:     req.TotalAmount,
		SubTotalCents:  req.SubTotal,
		TaxCents:       req.Tax,
		PaymentMode:    req.PaymentMode,
		CartItems:      req.CartItems,
		Payer:          reservation.ParseIdentity(&req.UserID),
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, b)
}

func (h *BillsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	bs, err := h.Repo.List(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(bs), bs)
}

func (h *BillsHandler) listByUser(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	bs, err := h.Repo.ListByUser(ctx, chi.URLParam(r, "userId"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(bs), bs)
}

func (h *BillsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Repo.Delete(ctx, chi.URLParam(r, "id")); err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, map[string]any{})
}
