package httpx

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	DB    *pgxpool.Pool
	Redis *redis.Client
	start time.Time
}

func NewHealthHandler(db *pgxpool.Pool, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{DB: db, Redis: rdb, start: time.Now()}
}

func (h *HealthHandler) Register(r *chi.Mux) {
	r.Get("/api/health", h.health)
}

func (h *HealthHandler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbOK := h.DB.Ping(ctx) == nil
	redisOK := h.Redis.Ping(ctx).Err() == nil

	code := http.StatusOK
	if !dbOK {
		code = http.StatusInternalServerError
	}
	writeJSON(w, code, map[string]any{
		"success": dbOK,
		"server": map[string]any{
			"status":    "up",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(h.start).Seconds(),
		},
		"database": map[string]any{"connected": dbOK},
		"cache":    map[string]any{"connected": redisOK},
	})
}
