package orders

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
)

type memLesson struct {
	topic  string
	spaces int
}

// memStore mirrors the store contract: per-line existence and
// capacity checks in input order, all-or-nothing application.
type memStore struct {
	mu       sync.Mutex
	lessons  map[string]*memLesson
	orders   []Order
	failWith error
}

func newMemStore() *memStore {
	return &memStore{lessons: map[string]*memLesson{}}
}

func (s *memStore) addLesson(topic string, spaces int) string {
	id := uuid.NewString()
	s.lessons[id] = &memLesson{topic: topic, spaces: spaces}
	return id
}

func (s *memStore) PlaceOrder(ctx context.Context, o *Order) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return "", s.failWith
	}

	staged := map[string]int{}
	for _, ln := range o.Lines {
		l, ok := s.lessons[ln.LessonID]
		if !ok {
			return "", &NotFoundError{LessonID: ln.LessonID}
		}
		avail := l.spaces - staged[ln.LessonID]
		if avail < ln.Quantity {
			return "", &CapacityError{LessonID: ln.LessonID, Topic: l.topic, Requested: ln.Quantity, Available: avail}
		}
		staged[ln.LessonID] += ln.Quantity
	}
	for id, dec := range staged {
		s.lessons[id].spaces -= dec
	}
	cp := *o
	cp.ID = uuid.NewString()
	s.orders = append(s.orders, cp)
	return cp.ID, nil
}

func (s *memStore) ListOrders(ctx context.Context) ([]Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	return append([]Order{}, s.orders...), nil
}

func (s *memStore) spaces(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lessons[id].spaces
}

func (s *memStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func validRequest(lessonID string, qty int) PlaceOrderRequest {
	return PlaceOrderRequest{
		FirstName: "Ada", LastName: "Lovelace",
		Address: "1 Analytical Way", City: "London", Country: "UK",
		Postcode: "N1 7AA", Phone: "07000000000", Email: "ada@example.com",
		LessonIDs: []string{lessonID}, Quantities: []int{qty},
		PaymentMethod: "paypal",
	}
}

func TestPlaceOrder_Success(t *testing.T) {
	store := newMemStore()
	id := store.addLesson("Yoga", 5)
	svc := NewService(store)

	receipt, err := svc.PlaceOrder(context.Background(), validRequest(id, 3))
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if receipt.OrderID == "" {
		t.Fatalf("missing order id")
	}
	if receipt.PaymentStatus != PaymentSucceeded {
		t.Fatalf("unexpected payment status %q", receipt.PaymentStatus)
	}
	if got := store.spaces(id); got != 2 {
		t.Fatalf("spaces = %d, want 2", got)
	}
	if store.orderCount() != 1 {
		t.Fatalf("expected exactly one order, got %d", store.orderCount())
	}
}

func TestPlaceOrder_MissingFields(t *testing.T) {
	store := newMemStore()
	id := store.addLesson("Yoga", 5)
	svc := NewService(store)

	req := validRequest(id, 1)
	req.Email = "   "
	_, err := svc.PlaceOrder(context.Background(), req)

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Reason != "missing required fields" {
		t.Fatalf("expected missing-fields validation error, got %v", err)
	}
	if store.spaces(id) != 5 || store.orderCount() != 0 {
		t.Fatalf("state changed on validation failure")
	}
}

func TestPlaceOrder_InvalidLines(t *testing.T) {
	store := newMemStore()
	id := store.addLesson("Yoga", 5)
	svc := NewService(store)

	cases := map[string]func(*PlaceOrderRequest){
		"empty":           func(r *PlaceOrderRequest) { r.LessonIDs = nil; r.Quantities = nil },
		"length mismatch": func(r *PlaceOrderRequest) { r.Quantities = []int{1, 2} },
		"zero quantity":   func(r *PlaceOrderRequest) { r.Quantities = []int{0} },
		"negative":        func(r *PlaceOrderRequest) { r.Quantities = []int{-3} },
		"malformed id":    func(r *PlaceOrderRequest) { r.LessonIDs = []string{"not-a-uuid"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			req := validRequest(id, 1)
			mutate(&req)
			_, err := svc.PlaceOrder(context.Background(), req)
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Reason != "invalid line items" {
				t.Fatalf("expected invalid-line-items error, got %v", err)
			}
		})
	}
	if store.spaces(id) != 5 || store.orderCount() != 0 {
		t.Fatalf("state changed on validation failure")
	}
}

func TestPlaceOrder_FieldValidationWinsOverLines(t *testing.T) {
	store := newMemStore()
	svc := NewService(store)

	req := validRequest("not-a-uuid", 0)
	req.FirstName = ""
	_, err := svc.PlaceOrder(context.Background(), req)

	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Reason != "missing required fields" {
		t.Fatalf("field validation should come first, got %v", err)
	}
}

func TestPlaceOrder_LessonNotFound(t *testing.T) {
	store := newMemStore()
	keep := store.addLesson("Yoga", 5)
	svc := NewService(store)

	missing := uuid.NewString()
	req := validRequest(keep, 1)
	req.LessonIDs = []string{keep, missing}
	req.Quantities = []int{1, 1}

	_, err := svc.PlaceOrder(context.Background(), req)
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if nf.LessonID != missing {
		t.Fatalf("error names %q, want %q", nf.LessonID, missing)
	}
	if store.spaces(keep) != 5 || store.orderCount() != 0 {
		t.Fatalf("partial application after not-found")
	}
}

func TestPlaceOrder_CapacityNamesFirstShortfall(t *testing.T) {
	store := newMemStore()
	a := store.addLesson("Yoga", 0)
	b := store.addLesson("Chess", 0)
	svc := NewService(store)

	req := validRequest(a, 1)
	req.LessonIDs = []string{a, b}
	req.Quantities = []int{1, 1}

	_, err := svc.PlaceOrder(context.Background(), req)
	var ce *CapacityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if ce.Topic != "Yoga" {
		t.Fatalf("error names %q, want first shortfall Yoga", ce.Topic)
	}
}

func TestPlaceOrder_RollbackLeavesEarlierLinesUntouched(t *testing.T) {
	store := newMemStore()
	a := store.addLesson("Yoga", 5)
	b := store.addLesson("Chess", 0)
	svc := NewService(store)

	req := validRequest(a, 1)
	req.LessonIDs = []string{a, b}
	req.Quantities = []int{1, 1}

	_, err := svc.PlaceOrder(context.Background(), req)
	var ce *CapacityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if ce.LessonID != b || ce.Topic != "Chess" {
		t.Fatalf("error should reference the failing line only, got %+v", ce)
	}
	if store.spaces(a) != 5 {
		t.Fatalf("lesson A mutated despite rollback: %d", store.spaces(a))
	}
	if store.orderCount() != 0 {
		t.Fatalf("order created despite failure")
	}
}

func TestPlaceOrder_YogaExample(t *testing.T) {
	store := newMemStore()
	id := store.addLesson("Yoga", 5)
	svc := NewService(store)

	if _, err := svc.PlaceOrder(context.Background(), validRequest(id, 3)); err != nil {
		t.Fatalf("first order: %v", err)
	}
	if store.spaces(id) != 2 {
		t.Fatalf("spaces = %d, want 2", store.spaces(id))
	}

	_, err := svc.PlaceOrder(context.Background(), validRequest(id, 3))
	var ce *CapacityError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CapacityError, got %v", err)
	}
	if ce.Topic != "Yoga" || ce.Available != 2 || ce.Requested != 3 {
		t.Fatalf("unexpected capacity error: %+v", ce)
	}
	if !strings.Contains(ce.Error(), "Yoga") {
		t.Fatalf("message should name the lesson: %q", ce.Error())
	}
	if store.spaces(id) != 2 {
		t.Fatalf("spaces changed after rejected order: %d", store.spaces(id))
	}
}

func TestPlaceOrder_FailedPaymentStillCreatesOrder(t *testing.T) {
	store := newMemStore()
	id := store.addLesson("Yoga", 5)
	svc := NewService(store)

	req := validRequest(id, 2)
	req.PaymentMethod = "card" // no cardLast4 -> deterministic failure
	receipt, err := svc.PlaceOrder(context.Background(), req)
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	if receipt.PaymentStatus != PaymentFailed {
		t.Fatalf("payment status = %q, want failed", receipt.PaymentStatus)
	}
	if store.orderCount() != 1 || store.spaces(id) != 3 {
		t.Fatalf("failed payment must still commit the order")
	}

	got, err := svc.ListOrders(context.Background())
	if err != nil {
		t.Fatalf("list orders: %v", err)
	}
	if len(got) != 1 || got[0].PaymentStatus != PaymentFailed {
		t.Fatalf("order record should carry the failed status: %+v", got)
	}
}

func TestPlaceOrder_StorageErrorWrapped(t *testing.T) {
	store := newMemStore()
	id := store.addLesson("Yoga", 5)
	store.failWith = errors.New("connection reset")
	svc := NewService(store)

	_, err := svc.PlaceOrder(context.Background(), validRequest(id, 1))
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %v", err)
	}

	if _, err := svc.ListOrders(context.Background()); !errors.As(err, &se) {
		t.Fatalf("list should wrap storage errors too, got %v", err)
	}
}

func TestPlaceOrder_ConcurrentFullCapacity(t *testing.T) {
	store := newMemStore()
	id := store.addLesson("Yoga", 5)
	svc := NewService(store)

	const n = 16
	var wg sync.WaitGroup
	results := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.PlaceOrder(context.Background(), validRequest(id, 5))
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var successes, capacityFailures int
	for err := range results {
		if err == nil {
			successes++
			continue
		}
		var ce *CapacityError
		if !errors.As(err, &ce) {
			t.Fatalf("unexpected error under contention: %v", err)
		}
		capacityFailures++
	}
	if successes != 1 || capacityFailures != n-1 {
		t.Fatalf("successes=%d capacity failures=%d, want 1/%d", successes, capacityFailures, n-1)
	}
	if got := store.spaces(id); got != 0 {
		t.Fatalf("final spaces = %d, want 0 (never negative)", got)
	}
	if store.orderCount() != 1 {
		t.Fatalf("exactly one order must exist, got %d", store.orderCount())
	}
}
