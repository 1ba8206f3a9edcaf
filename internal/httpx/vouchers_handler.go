package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hotel-system/internal/uploads"
	"hotel-system/internal/vouchers"
)

var errInvalidVoucherType = errors.New("invalid voucher type")

type VouchersHandler struct {
	Repo  *vouchers.Repo
	Files *uploads.Store
}

func (h *VouchersHandler) Register(r *chi.Mux) {
	r.Route("/vouchers", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
	})
}

func (h *VouchersHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	vs, err := h.Repo.List(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(vs), vs)
}

func (h *VouchersHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	v, err := h.Repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, v)
}

func (h *VouchersHandler) voucherInput(r *http.Request) (vouchers.Input, error) {
	if err := r.ParseMultipartForm(uploads.MaxImageSize); err != nil {
		return vouchers.Input{}, err
	}
	price, _ := strconv.Atoi(r.FormValue("price_cents"))
	in := vouchers.Input{
		Name:           r.FormValue("name"),
		PriceCents:     price,
		Description:    r.FormValue("description"),
		Category:       r.FormValue("category"),
		ValidityPeriod: r.FormValue("validityPeriod"),
		Type:           r.FormValue("type"),
		Sold:           r.FormValue("sold") == "true",
	}
	if in.Type != "" && !vouchers.ValidType(in.Type) {
		return vouchers.Input{}, errInvalidVoucherType
	}
	file, hdr, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		p, err := h.Files.Save("vouchers", hdr.Filename, file)
		if err != nil {
			return vouchers.Input{}, err
		}
		in.Image = p
	}
	return in, nil
}

func (h *VouchersHandler) create(w http.ResponseWriter, r *http.Request) {
	in, err := h.voucherInput(r)
	if err != nil {
		respondFail(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Name == "" || in.Description == "" || in.Category == "" {
		respondFail(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	v, err := h.Repo.Create(ctx, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, v)
}

func (h *VouchersHandler) update(w http.ResponseWriter, r *http.Request) {
	in, err := h.voucherInput(r)
	if err != nil {
		respondFail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	v, oldImage, err := h.Repo.Update(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, err)
		return
	}
	if oldImage != "" {
		h.Files.Remove(oldImage)
	}
	respondData(w, http.StatusOK, v)
}

func (h *VouchersHandler) delete(w http.ResponseWriter, r *http.Request) {
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
