package catalog

import "time"

// Lesson is one bookable class. Spaces is the remaining seat capacity;
// it is the only field mutated outside the admin endpoints (order
// placement decrements it, never below zero).
type Lesson struct {
	ID        string    `json:"id"`
	Topic     string    `json:"topic"`
	Location  string    `json:"location"`
	Price     float64   `json:"price"`
	Spaces    int       `json:"spaces"`
	Image     string    `json:"image,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// LessonUpdate is a partial update; nil fields are left untouched.
type LessonUpdate struct {
	Topic    *string  `json:"topic"`
	Location *string  `json:"location"`
	Price    *float64 `json:"price"`
	Spaces   *int     `json:"spaces"`
	Image    *string  `json:"image"`
}
