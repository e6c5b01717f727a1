package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
)

// PlaceOrderRequest is the inbound shape of POST /orders. LessonIDs
// and Quantities arrive as parallel arrays; the engine validates them
// together and zips them into lines before touching the store.
type PlaceOrderRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Address   string `json:"address"`
	City      string `json:"city"`
	Country   string `json:"country"`
	Postcode  string `json:"postcode"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`

	LessonIDs  []string `json:"lessonIDs"`
	Quantities []int    `json:"quantities"`

	PaymentMethod string `json:"paymentMethod"`
	CardLast4     string `json:"cardLast4,omitempty"`
	CardBrand     string `json:"cardBrand,omitempty"`
}

type Receipt struct {
	OrderID        string
	PaymentStatus  string
	PaymentMessage string
}

// Store is what the engine needs from persistence. PlaceOrder must be
// atomic: all capacity decrements plus the order row, or nothing.
type Store interface {
	PlaceOrder(ctx context.Context, o *Order) (string, error)
	ListOrders(ctx context.Context) ([]Order, error)
}

// Service is the reservation engine: it validates a multi-line order,
// classifies the payment and hands the store one atomic commit.
type Service struct {
	store Store
}

func NewService(store Store) *Service { return &Service{store: store} }

func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (*Receipt, error) {
	cust, ok := req.customer()
	if !ok {
		return nil, &ValidationError{Reason: "missing required fields"}
	}
	lines, ok := req.lines()
	if !ok {
		return nil, &ValidationError{Reason: "invalid line items"}
	}

	// Derived before persistence and never allowed to block the write:
	// a failed outcome still produces an order marked failed.
	outcome := ClassifyPayment(req.PaymentMethod, req.CardLast4, req.CardBrand)

	o := &Order{
		Customer:       cust,
		Lines:          lines,
		PaymentMethod:  strings.ToLower(strings.TrimSpace(req.PaymentMethod)),
		PaymentStatus:  outcome.Status,
		PaymentMessage: outcome.Message,
	}

	id, err := s.store.PlaceOrder(ctx, o)
	if err != nil {
		var nf *NotFoundError
		var ce *CapacityError
		if errors.As(err, &nf) || errors.As(err, &ce) {
			return nil, err
		}
		return nil, &StorageError{Err: err}
	}

	return &Receipt{OrderID: id, PaymentStatus: outcome.Status, PaymentMessage: outcome.Message}, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	out, err := s.store.ListOrders(ctx)
	if err != nil {
		return nil, &StorageError{Err: err}
	}
	return out, nil
}

// customer trims every field and reports whether all are present.
func (r PlaceOrderRequest) customer() (Customer, bool) {
	c := Customer{
		FirstName: strings.TrimSpace(r.FirstName),
		LastName:  strings.TrimSpace(r.LastName),
		Address:   strings.TrimSpace(r.Address),
		City:      strings.TrimSpace(r.City),
		Country:   strings.TrimSpace(r.Country),
		Postcode:  strings.TrimSpace(r.Postcode),
		Phone:     strings.TrimSpace(r.Phone),
		Email:     strings.TrimSpace(r.Email),
	}
	for _, f := range []string{c.FirstName, c.LastName, c.Address, c.City, c.Country, c.Postcode, c.Phone, c.Email} {
		if f == "" {
			return Customer{}, false
		}
	}
	return c, true
}

// lines zips the parallel arrays. Both must be present, same length
// and non-empty, every quantity positive and every id well-formed.
func (r PlaceOrderRequest) lines() ([]Line, bool) {
	if len(r.LessonIDs) == 0 || len(r.LessonIDs) != len(r.Quantities) {
		return nil, false
	}
	out := make([]Line, 0, len(r.LessonIDs))
	for i, id := range r.LessonIDs {
		if _, err := uuid.Parse(id); err != nil {
			return nil, false
		}
		if r.Quantities[i] <= 0 {
			return nil, false
		}
		out = append(out, Line{LessonID: id, Quantity: r.Quantities[i]})
	}
	return out, true
}
