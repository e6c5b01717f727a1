package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	kafkax "github.com/ariefcatur/go-lesson-shop.git/internal/kafka"
	"github.com/ariefcatur/go-lesson-shop.git/internal/orders"
	"github.com/ariefcatur/go-lesson-shop.git/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventPublisher is satisfied by *kafka.Producer; tests record calls.
type EventPublisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type OrdersHandler struct {
	Engine    *orders.Service
	Publisher EventPublisher // optional
	Redis     *redis.Client  // optional
	Log       *zap.Logger
	Service   string
}

type placeOrderResp struct {
	Message        string `json:"message"`
	InsertedID     string `json:"insertedId"`
	PaymentStatus  string `json:"paymentStatus"`
	PaymentMessage string `json:"paymentMessage"`
}

func (h *OrdersHandler) Register(r *chi.Mux) {
	r.Post("/orders", h.placeOrder)
	r.Get("/orders", h.listOrders)
}

func (h *OrdersHandler) placeOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.PlaceOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	receipt, err := h.Engine.PlaceOrder(ctx, req)
	if err != nil {
		h.orderError(w, err)
		return
	}

	h.afterCommit(ctx, r, receipt, req)

	writeJSON(w, http.StatusCreated, placeOrderResp{
		Message:        "order created",
		InsertedID:     receipt.OrderID,
		PaymentStatus:  receipt.PaymentStatus,
		PaymentMessage: receipt.PaymentMessage,
	})
}

// afterCommit publishes the booking event and drops the lesson cache.
// Both are best-effort: the order is already durable and nothing here
// may fail the request.
func (h *OrdersHandler) afterCommit(ctx context.Context, r *http.Request, receipt *orders.Receipt, req orders.PlaceOrderRequest) {
	lines := make([]orders.Line, 0, len(req.LessonIDs))
	for i, id := range req.LessonIDs {
		lines = append(lines, orders.Line{LessonID: id, Quantity: req.Quantities[i]})
	}

	if h.Redis != nil {
		keys := []string{redisx.KeyLessonList}
		for _, ln := range lines {
			keys = append(keys, fmt.Sprintf(redisx.KeyLesson, ln.LessonID))
		}
		_ = h.Redis.Del(ctx, keys...).Err()
	}

	if h.Publisher == nil {
		return
	}
	ev := orders.Envelope{
		EventID:       uuid.NewString(),
		EventType:     orders.EventLessonBooked,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.Service,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: receipt.OrderID,
		Payload: kafkax.MustMarshal(orders.LessonBookedPayload{
			OrderID:       receipt.OrderID,
			Lines:         lines,
			PaymentStatus: receipt.PaymentStatus,
		}),
	}
	h.Publisher.Publish(orders.PartitionKey(receipt.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(orders.EventLessonBooked)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	os, err := h.Engine.ListOrders(ctx)
	if err != nil {
		h.orderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, os)
}

func (h *OrdersHandler) orderError(w http.ResponseWriter, err error) {
	var ve *orders.ValidationError
	var nf *orders.NotFoundError
	var ce *orders.CapacityError
	var se *orders.StorageError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ve.Error()})
	case errors.As(err, &nf):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": nf.Error()})
	case errors.As(err, &ce):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ce.Error()})
	case errors.As(err, &se):
		h.Log.Error("order storage failure", zap.Error(se))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	default:
		h.Log.Error("order failure", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}
