package httpx

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"hotel-system/internal/reservation"
	"hotel-system/internal/rooms"
	"hotel-system/internal/uploads"
)

type RoomsHandler struct {
	Repo   *rooms.Repo
	Engine *reservation.Engine
	Files  *uploads.Store
}

func (h *RoomsHandler) Register(r *chi.Mux) {
	r.Route("/rooms", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/available", h.available)
		r.Post("/add", h.create)
		r.Get("/get/{id}", h.get)
		r.Put("/update/{id}", h.update)
		r.Delete("/delete/{id}", h.delete)
		r.Delete("/image/{id}/{index}", h.removeImage)
		r.Patch("/updateStatus/{roomNumber}", h.updateStatus)
		r.Post("/{id}/reserve", h.reserve)
		r.Post("/{id}/release", h.release)
		r.Post("/{id}/book", h.book)
	})
}

func (h *RoomsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rs, err := h.Repo.List(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(rs), rs)
}

func (h *RoomsHandler) available(w http.ResponseWriter, r *http.Request) {
	roomType := r.URL.Query().Get("roomType")
	if roomType == "" {
		respondFail(w, http.StatusBadRequest, "roomType is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	nums, err := h.Repo.AvailableNumbers(ctx, roomType)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nums)
}

func (h *RoomsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	rm, err := h.Repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, rm)
}

func (h *RoomsHandler) roomInput(r *http.Request) (rooms.Input, []string, error) {
	if err := r.ParseMultipartForm(10 * uploads.MaxImageSize); err != nil {
		return rooms.Input{}, nil, err
	}
	price, _ := strconv.Atoi(r.FormValue("price_cents"))
	number, _ := strconv.Atoi(r.FormValue("roomNumber"))
	in := rooms.Input{
		RoomType:   r.FormValue("roomType"),
		PriceCents: price,
		RoomNumber: number,
		Facilities: r.FormValue("facilities"),
		BedType:    r.FormValue("bedType"),
	}

	var paths []string
	if r.MultipartForm != nil {
		for _, hdr := range r.MultipartForm.File["roomImages"] {
			f, err := hdr.Open()
			if err != nil {
				continue
			}
			p, err := h.Files.Save("rooms", hdr.Filename, f)
			f.Close()
			if err != nil {
				h.Files.RemoveAll(paths)
				return rooms.Input{}, nil, err
			}
			paths = append(paths, p)
		}
	}
	return in, paths, nil
}

func validRoomInput(in rooms.Input) string {
	switch {
	case !rooms.ValidRoomType(in.RoomType):
		return "invalid roomType"
	case !rooms.ValidBedType(in.BedType):
		return "invalid bedType"
	case in.RoomNumber <= 0:
		return "roomNumber is required"
	}
	return ""
}

func (h *RoomsHandler) create(w http.ResponseWriter, r *http.Request) {
	in, images, err := h.roomInput(r)
	if err != nil {
		respondFail(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validRoomInput(in); msg != "" {
		h.Files.RemoveAll(images)
		respondFail(w, http.StatusBadRequest, msg)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rm, err := h.Repo.Create(ctx, in, images)
	if err != nil {
		h.Files.RemoveAll(images)
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, rm)
}

func (h *RoomsHandler) update(w http.ResponseWriter, r *http.Request) {
	in, images, err := h.roomInput(r)
	if err != nil {
		respondFail(w, http.StatusBadRequest, err.Error())
		return
	}
	if msg := validRoomInput(in); msg != "" {
		h.Files.RemoveAll(images)
		respondFail(w, http.StatusBadRequest, msg)
		return
	}
	keep := r.FormValue("keepExistingImages") == "true"

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rm, removed, err := h.Repo.Update(ctx, chi.URLParam(r, "id"), in, images, keep)
	if err != nil {
		h.Files.RemoveAll(images)
		respondError(w, err)
		return
	}
	h.Files.RemoveAll(removed)
	respondData(w, http.StatusOK, rm)
}

func (h *RoomsHandler) delete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	images, err := h.Repo.Delete(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	h.Files.RemoveAll(images)
	respondData(w, http.StatusOK, map[string]any{})
}

func (h *RoomsHandler) removeImage(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondFail(w, http.StatusBadRequest, "invalid image index")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rm, removed, err := h.Repo.RemoveImage(ctx, chi.URLParam(r, "id"), index)
	if err != nil {
		respondError(w, err)
		return
	}
	if removed != "" {
		h.Files.Remove(removed)
	}
	respondData(w, http.StatusOK, rm)
}

type roomStatusReq struct {
	Status string `json:"status"`
}

func (h *RoomsHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "roomNumber"))
	if err != nil {
		respondFail(w, http.StatusBadRequest, "invalid room number")
		return
	}
	var req roomStatusReq
	if err := decodeJSON(r, &req); err != nil || req.Status == "" {
		respondFail(w, http.StatusBadRequest, "status is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	rm, err := h.Repo.SetStatusByNumber(ctx, number, reservation.Status(req.Status))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, rm)
}

func (h *RoomsHandler) reserve(w http.ResponseWriter, r *http.Request) {
	claimant := claimantFrom(r)
	if claimant == "" {
		respondFail(w, http.StatusBadRequest, "userId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.Engine.Reserve(ctx, id, claimant); err != nil {
		respondError(w, err)
		return
	}
	rm, err := h.Repo.Get(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, rm)
}

func (h *RoomsHandler) release(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.Engine.Release(ctx, id); err != nil {
		respondError(w, err)
		return
	}
	rm, err := h.Repo.Get(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, rm)
}

// book finalizes a reservation; the room stays booked until the front desk
// resets it through updateStatus.
func (h *RoomsHandler) book(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.Engine.Finalize(ctx, id); err != nil {
		respondError(w, err)
		return
	}
	rm, err := h.Repo.Get(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, rm)
}
