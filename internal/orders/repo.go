package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Tx is the slice of pgx.Tx the store needs; tests swap in a mock.
type Tx interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type DBPool interface {
	BeginTx(ctx context.Context, opts pgx.TxOptions) (Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// pgxPool adapts *pgxpool.Pool to DBPool (BeginTx return type).
type pgxPool struct{ pool *pgxpool.Pool }

func (p pgxPool) BeginTx(ctx context.Context, opts pgx.TxOptions) (Tx, error) {
	return p.pool.BeginTx(ctx, opts)
}

func (p pgxPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return p.pool.Query(ctx, sql, args...)
}

type Repo struct{ db DBPool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{db: pgxPool{pool: pool}} }

// PlaceOrder runs the whole reservation in one transaction: per line,
// in input order, lock the lesson row, check capacity, decrement; then
// insert the order and its lines; commit. The first missing lesson or
// shortfall aborts the transaction, so either every decrement and the
// order row land together or nothing does. The decrement itself is
// conditional (spaces >= quantity), which keeps capacity from ever
// going negative even when two orders race on the same lesson.
func (s *Repo) PlaceOrder(ctx context.Context, o *Order) (string, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	for _, ln := range o.Lines {
		var topic string
		var spaces int
		err := tx.QueryRow(ctx, `SELECT topic, spaces FROM lessons WHERE id=$1 FOR UPDATE`, ln.LessonID).
			Scan(&topic, &spaces)
		if errors.Is(err, pgx.ErrNoRows) {
			return "", &NotFoundError{LessonID: ln.LessonID}
		}
		if err != nil {
			return "", err
		}
		if spaces < ln.Quantity {
			return "", &CapacityError{LessonID: ln.LessonID, Topic: topic, Requested: ln.Quantity, Available: spaces}
		}

		ct, err := tx.Exec(ctx, `
			UPDATE lessons SET spaces = spaces - $2, updated_at = now()
			WHERE id=$1 AND spaces >= $2`, ln.LessonID, ln.Quantity)
		if err != nil {
			return "", err
		}
		if ct.RowsAffected() != 1 {
			return "", &CapacityError{LessonID: ln.LessonID, Topic: topic, Requested: ln.Quantity, Available: spaces}
		}
	}

	orderID := uuid.NewString()
	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, first_name, last_name, address, city, country, postcode, phone, email,
		                   payment_method, payment_status, payment_message)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		orderID, o.FirstName, o.LastName, o.Address, o.City, o.Country, o.Postcode, o.Phone, o.Email,
		o.PaymentMethod, o.PaymentStatus, o.PaymentMessage)
	if err != nil {
		return "", err
	}
	for i, ln := range o.Lines {
		if _, err := tx.Exec(ctx, `
			INSERT INTO order_lines(order_id, position, lesson_id, quantity)
			VALUES ($1,$2,$3,$4)`, orderID, i, ln.LessonID, ln.Quantity); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return orderID, nil
}

func (s *Repo) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, first_name, last_name, address, city, country, postcode, phone, email,
		       payment_method, payment_status, payment_message, created_at
		FROM orders ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	out := []Order{}
	index := map[string]int{}
	for rows.Next() {
		var o Order
		if err := rows.Scan(&o.ID, &o.FirstName, &o.LastName, &o.Address, &o.City, &o.Country, &o.Postcode,
			&o.Phone, &o.Email, &o.PaymentMethod, &o.PaymentStatus, &o.PaymentMessage, &o.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		o.Lines = []Line{}
		index[o.ID] = len(out)
		out = append(out, o)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	lrows, err := s.db.Query(ctx, `SELECT order_id, lesson_id, quantity FROM order_lines ORDER BY order_id, position`)
	if err != nil {
		return nil, err
	}
	defer lrows.Close()
	for lrows.Next() {
		var orderID string
		var ln Line
		if err := lrows.Scan(&orderID, &ln.LessonID, &ln.Quantity); err != nil {
			return nil, err
		}
		if i, ok := index[orderID]; ok {
			out[i].Lines = append(out[i].Lines, ln)
		}
	}
	return out, lrows.Err()
}
