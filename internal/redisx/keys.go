package redisx

import "time"

const (
	// Cached catalog listing: lessons:all -> JSON array of lessons
	KeyLessonList = "lessons:all"

	// Cached single lesson: lesson:{id} -> JSON document
	KeyLesson = "lesson:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLLessonCache = 5 * time.Minute
	TTLDedup       = 48 * time.Hour
)
