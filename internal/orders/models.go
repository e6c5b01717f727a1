package orders

import "time"

// Line is one (lesson, quantity) pair of an order. The HTTP contract
// carries lessonIDs and quantities as two parallel arrays; they are
// zipped into lines at the edge and everything below works on these.
type Line struct {
	LessonID string `json:"lessonId"`
	Quantity int    `json:"quantity"`
}

type Customer struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Postcode  string `json:"postcode"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
}

// Order is immutable once created; the engine writes it exactly once
// and nothing here ever updates or deletes it.
type Order struct {
	ID string `json:"id"`
	Customer
	Lines          []Line    `json:"lines"`
	PaymentMethod  string    `json:"paymentMethod"`
	PaymentStatus  string    `json:"paymentStatus"`
	PaymentMessage string    `json:"paymentMessage"`
	CreatedAt      time.Time `json:"createdAt"`
}
