package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"

	"hotel-system/internal/events"
	"hotel-system/internal/gifts"
	kafkax "hotel-system/internal/kafka"
	"hotel-system/internal/reservation"
	"hotel-system/internal/uploads"
)

type GiftsHandler struct {
	Repo     *gifts.Repo
	Engine   *reservation.Engine
	Files    *uploads.Store
	Producer *kafkax.Producer // gift.lifecycle
	Service  string
}

func (h *GiftsHandler) Register(r *chi.Mux) {
	r.Route("/gifts", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Delete("/{id}", h.delete)
		r.Post("/{id}/reserve", h.reserve)
		r.Post("/{id}/release", h.release)
		r.Post("/{id}/purchase", h.purchase)
	})
}

func (h *GiftsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	gs, err := h.Repo.List(ctx)
	if err != nil {
		respondError(w, err)
		return
	}
	respondList(w, len(gs), gs)
}

func (h *GiftsHandler) get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	g, err := h.Repo.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, g)
}

// giftInput reads the multipart form shared by create and update. The
// image part is optional; when present it is stored before the DB write.
func (h *GiftsHandler) giftInput(r *http.Request) (gifts.Input, error) {
	if err := r.ParseMultipartForm(uploads.MaxImageSize); err != nil {
		return gifts.Input{}, err
	}
	price, err := strconv.Atoi(r.FormValue("price_cents"))
	if err != nil {
		price = 0
	}
	in := gifts.Input{
		Name:        r.FormValue("name"),
		PriceCents:  price,
		Category:    r.FormValue("category"),
		Description: r.FormValue("description"),
	}
	file, hdr, err := r.FormFile("image")
	if err == nil {
		defer file.Close()
		p, err := h.Files.Save("gifts", hdr.Filename, file)
		if err != nil {
			return gifts.Input{}, err
		}
		in.Image = p
	}
	return in, nil
}

func (h *GiftsHandler) create(w http.ResponseWriter, r *http.Request) {
	in, err := h.giftInput(r)
	if err != nil {
		respondFail(w, http.StatusBadRequest, err.Error())
		return
	}
	if in.Name == "" || in.Category == "" || in.Description == "" {
		respondFail(w, http.StatusBadRequest, "missing fields")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	g, err := h.Repo.Create(ctx, in)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusCreated, g)
}

func (h *GiftsHandler) update(w http.ResponseWriter, r *http.Request) {
	in, err := h.giftInput(r)
	if err != nil {
		respondFail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	g, oldImage, err := h.Repo.Update(ctx, chi.URLParam(r, "id"), in)
	if err != nil {
		respondError(w, err)
		return
	}
	if oldImage != "" {
		h.Files.Remove(oldImage)
	}
	respondData(w, http.StatusOK, g)
}

func (h *GiftsHandler) delete(w http.ResponseWriter, r *http.Request) {
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

type reserveReq struct {
	UserID string `json:"userId"`
}

func claimantFrom(r *http.Request) string {
	var req reserveReq
	_ = json.NewDecoder(r.Body).Decode(&req)
	if req.UserID != "" {
		return req.UserID
	}
	return r.Header.Get("X-User-Id")
}

func (h *GiftsHandler) reserve(w http.ResponseWriter, r *http.Request) {
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
	h.publishLifecycle(r, id, events.EventGiftReserved, string(reservation.StatusReserved), claimant)

	g, err := h.Repo.Get(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, g)
}

func (h *GiftsHandler) release(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.Engine.Release(ctx, id); err != nil {
		respondError(w, err)
		return
	}
	h.publishLifecycle(r, id, events.EventGiftReleased, string(reservation.StatusAvailable), "")

	g, err := h.Repo.Get(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, g)
}

func (h *GiftsHandler) purchase(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	id := chi.URLParam(r, "id")
	if err := h.Engine.Finalize(ctx, id); err != nil {
		respondError(w, err)
		return
	}
	h.publishLifecycle(r, id, events.EventGiftPurchased, string(reservation.StatusPurchased), "")

	g, err := h.Repo.Get(ctx, id)
	if err != nil {
		respondError(w, err)
		return
	}
	respondData(w, http.StatusOK, g)
}

func (h *GiftsHandler) publishLifecycle(r *http.Request, giftID, eventType, status, claimant string) {
	if h.Producer == nil {
		return
	}
	ev := events.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: giftID,
		Payload: kafkax.MustMarshal(events.GiftLifecyclePayload{
			GiftID: giftID, Status: status, Claimant: claimant,
		}),
	}
	h.Producer.Publish(events.PartitionKey(giftID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}
