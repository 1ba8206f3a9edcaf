package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hotel-system/internal/uploads"
)

// UploadsHandler is the standalone image upload endpoint used by clients
// that create the record afterwards with the returned path.
type UploadsHandler struct {
	Files *uploads.Store
}

func (h *UploadsHandler) Register(r *chi.Mux) {
	r.Post("/upload/item-image", h.itemImage)
}

func (h *UploadsHandler) itemImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(uploads.MaxImageSize); err != nil {
		respondFail(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, hdr, err := r.FormFile("image")
	if err != nil {
		respondFail(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	p, err := h.Files.Save("items", hdr.Filename, file)
	if err != nil {
		respondFail(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "File uploaded successfully",
		"imageUrl": p,
	})
}
