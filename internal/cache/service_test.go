package cache

import (
	"context"
	"testing"

	kafkax "github.com/ariefcatur/go-lesson-shop.git/internal/kafka"
	"github.com/ariefcatur/go-lesson-shop.git/internal/orders"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

func TestHandleLessonBooked_IgnoresOtherEventTypes(t *testing.T) {
	s := &Service{Log: zap.NewNop(), ServiceName: "test-cache"}

	env := orders.Envelope{EventID: "e1", EventType: "SomethingElse"}
	m := kafkago.Message{Value: kafkax.MustMarshal(env)}

	// No Redis client wired: reaching the invalidation path would panic,
	// so a nil return proves the event was ignored up front.
	if err := s.HandleLessonBooked(context.Background(), m); err != nil {
		t.Fatalf("foreign event type should be skipped, got %v", err)
	}
}

func TestHandleLessonBooked_RejectsMalformedEnvelope(t *testing.T) {
	s := &Service{Log: zap.NewNop(), ServiceName: "test-cache"}
	if err := s.HandleLessonBooked(context.Background(), kafkago.Message{Value: []byte("{")}); err == nil {
		t.Fatalf("malformed envelope must not be committed")
	}
}
