package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"hotel-system/internal/foods"
	"hotel-system/internal/uploads"
)

// Food images arrive through the standalone upload endpoint first, so this
// handler speaks plain JSON and records the returned image path.
type FoodsHandler struct {
	Repo  *foods.Repo
	Files *uploads.Store
}

func (h *FoodsHandler) Register(r *chi.Mux) {
	r.Route("/foods", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *FoodsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	fs, err := h.Repo.List(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(fs), fs)
}

func (h *FoodsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	f, err := h.Repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, f)
}

type foodReq struct {
	Name            string             `json:"name"`
	SmallPriceCents int                `json:"small_price_cents"`
	BigPriceCents   int                `json:"big_price_cents"`
	PriceCents      int                `json:"price_cents"`
	Category        string             `json:"category"`
	Image           string             `json:"image"`
	Ingredients     []foods.Ingredient `json:"ingredients"`
	Description     string             `json:"description"`
}

func (req foodReq) input() foods.Input {
	return foods.Input{
		Name:            req.Name,
		SmallPriceCents: req.SmallPriceCents,
		BigPriceCents:   req.BigPriceCents,
		PriceCents:      req.PriceCents,
		Category:        req.Category,
		Image:           req.Image,
		Ingredients:     req.Ingredients,
		Description:     req.Description,
	}
}

func (h *FoodsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req foodReq
	if err := decodeJSON(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Name == "" || req.Category == "" {
		respondFail(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	f, err := h.Repo.Create(ctx, req.input())
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, f)
}

func (h *FoodsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req foodReq
	if err := decodeJSON(r, &req); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid json")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	f, oldImage, err := h.Repo.Update(ctx, chi.URLParam(r, "id"), req.input())
	if err != nil {
		respondError(w, err)
		return
	}
	if oldImage != "" {
		h.Files.Remove(oldImage)
	}
	respondData(w, http.StatusOK, f)
}

func (h *FoodsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	image, err := h.Repo.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	if image != "" {
		h.Files.Remove(image)
	}
	respondData(w, http.StatusOK, map[string]any{})
}
