package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ariefcatur/go-lesson-shop.git/internal/catalog"
	"github.com/ariefcatur/go-lesson-shop.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CatalogStore is what the lesson endpoints need from the catalog.
type CatalogStore interface {
	List(ctx context.Context) ([]catalog.Lesson, error)
	Get(ctx context.Context, id string) (catalog.Lesson, error)
	Search(ctx context.Context, q string) ([]catalog.Lesson, error)
	Create(ctx context.Context, l *catalog.Lesson) (string, error)
	Update(ctx context.Context, id string, upd catalog.LessonUpdate) (int64, error)
	Delete(ctx context.Context, id string) (int64, error)
}

type LessonsHandler struct {
	Store CatalogStore
	Redis *redis.Client // optional read-through cache
	Log   *zap.Logger
	Gate  AdminGate
}

func (h *LessonsHandler) Register(r *chi.Mux) {
	r.Get("/lessons", h.list)
	r.Get("/lessons/search", h.search)
	r.Get("/lessons/{id}", h.get)

	r.Group(func(r chi.Router) {
		r.Use(h.Gate.Require)
		r.Post("/lessons", h.create)
		r.Put("/lessons/{id}", h.update)
		r.Delete("/lessons/{id}", h.delete)
	})
}

func (h *LessonsHandler) list(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if h.Redis != nil {
		if s, err := h.Redis.Get(ctx, redisx.KeyLessonList).Result(); err == nil && s != "" {
			writeRawJSON(w, http.StatusOK, []byte(s))
			return
		}
	}

	ls, err := h.Store.List(ctx)
	if err != nil {
		h.storeError(w, "list lessons", err)
		return
	}
	b, _ := json.Marshal(ls)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, redisx.KeyLessonList, b, redisx.TTLLessonCache).Err()
	}
	writeRawJSON(w, http.StatusOK, b)
}

func (h *LessonsHandler) get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	key := fmt.Sprintf(redisx.KeyLesson, id)
	if h.Redis != nil && catalog.ValidateID(id) == nil {
		if s, err := h.Redis.Get(ctx, key).Result(); err == nil && s != "" {
			writeRawJSON(w, http.StatusOK, []byte(s))
			return
		}
	}

	l, err := h.Store.Get(ctx, id)
	if err != nil {
		h.storeError(w, "get lesson", err)
		return
	}
	b, _ := json.Marshal(l)
	if h.Redis != nil {
		_ = h.Redis.Set(ctx, key, b, redisx.TTLLessonCache).Err()
	}
	writeRawJSON(w, http.StatusOK, b)
}

func (h *LessonsHandler) search(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	q := strings.TrimSpace(r.URL.Query().Get("q"))
	var (
		ls  []catalog.Lesson
		err error
	)
	if q == "" {
		ls, err = h.Store.List(ctx)
	} else {
		ls, err = h.Store.Search(ctx, q)
	}
	if err != nil {
		h.storeError(w, "search lessons", err)
		return
	}
	writeJSON(w, http.StatusOK, ls)
}

type createLessonReq struct {
	Topic    string  `json:"topic"`
	Location string  `json:"location"`
	Price    float64 `json:"price"`
	Spaces   int     `json:"spaces"`
	Image    string  `json:"image"`
}

func (h *LessonsHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createLessonReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	req.Topic = strings.TrimSpace(req.Topic)
	req.Location = strings.TrimSpace(req.Location)
	if req.Topic == "" || req.Location == "" || req.Price < 0 || req.Spaces < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing or invalid fields"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	id, err := h.Store.Create(ctx, &catalog.Lesson{
		Topic: req.Topic, Location: req.Location, Price: req.Price, Spaces: req.Spaces, Image: req.Image,
	})
	if err != nil {
		h.storeError(w, "create lesson", err)
		return
	}
	h.invalidate(ctx, id)
	writeJSON(w, http.StatusCreated, map[string]string{"insertedId": id})
}

func (h *LessonsHandler) update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var upd catalog.LessonUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if (upd.Price != nil && *upd.Price < 0) || (upd.Spaces != nil && *upd.Spaces < 0) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "price and spaces must be non-negative"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	matched, err := h.Store.Update(ctx, id, upd)
	if err != nil {
		h.storeError(w, "update lesson", err)
		return
	}
	if matched == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lesson not found"})
		return
	}
	h.invalidate(ctx, id)
	writeJSON(w, http.StatusOK, map[string]int64{"matchedCount": matched})
}

func (h *LessonsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	deleted, err := h.Store.Delete(ctx, id)
	if err != nil {
		h.storeError(w, "delete lesson", err)
		return
	}
	if deleted == 0 {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lesson not found"})
		return
	}
	h.invalidate(ctx, id)
	writeJSON(w, http.StatusOK, map[string]int64{"deletedCount": deleted})
}

func (h *LessonsHandler) invalidate(ctx context.Context, id string) {
	if h.Redis == nil {
		return
	}
	_ = h.Redis.Del(ctx, redisx.KeyLessonList, fmt.Sprintf(redisx.KeyLesson, id)).Err()
}

func (h *LessonsHandler) storeError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, catalog.ErrInvalidID):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid lesson id"})
	case errors.Is(err, catalog.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "lesson not found"})
	default:
		h.Log.Error(op, zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func writeRawJSON(w http.ResponseWriter, code int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}
