package cache

import (
	"context"
	"encoding/json"
	"fmt"

	kafkax "github.com/ariefcatur/go-lesson-shop.git/internal/kafka"
	"github.com/ariefcatur/go-lesson-shop.git/internal/orders"
	"github.com/ariefcatur/go-lesson-shop.git/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Service drops stale lesson cache entries when a booking commits.
// It runs behind the lesson.booked topic, so the HTTP path never
// waits on it; the worst case of a lost event is a cache entry that
// lives until its TTL.
type Service struct {
	Redis       *redis.Client
	Log         *zap.Logger
	ServiceName string
}

// HandleLessonBooked is the consumer handler for lesson.booked.
func (s *Service) HandleLessonBooked(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != orders.EventLessonBooked {
		return nil
	}

	// dedup by event id; replays are harmless but noisy
	dkey := fmt.Sprintf(redisx.KeyDedup, s.ServiceName, env.EventID)
	if exists, _ := redisx.Exists(ctx, s.Redis, dkey); exists {
		return nil
	}
	_ = s.Redis.Set(ctx, dkey, "1", redisx.TTLDedup).Err()

	p, err := kafkax.UnwrapPayload[orders.LessonBookedPayload](env.Payload)
	if err != nil {
		return err
	}

	keys := []string{redisx.KeyLessonList}
	for _, ln := range p.Lines {
		keys = append(keys, fmt.Sprintf(redisx.KeyLesson, ln.LessonID))
	}
	if err := s.Redis.Del(ctx, keys...).Err(); err != nil {
		return err
	}

	s.Log.Info("lesson cache invalidated",
		zap.String("order_id", p.OrderID),
		zap.Int("lessons", len(p.Lines)))
	return nil
}
