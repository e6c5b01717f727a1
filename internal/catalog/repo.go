package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("lesson not found")
	ErrInvalidID = errors.New("invalid lesson id")
)

// ValidateID rejects malformed identifiers before they are ever used
// as a store filter.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

// DBPool is the subset of *pgxpool.Pool the store uses; tests swap in
// a mock.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type Repo struct{ db DBPool }

func NewRepo(pool *pgxpool.Pool) *Repo { return &Repo{db: pool} }

const lessonCols = `id, topic, location, price, spaces, image, created_at, updated_at`

func (s *Repo) List(ctx context.Context) ([]Lesson, error) {
	rows, err := s.db.Query(ctx, `SELECT `+lessonCols+` FROM lessons ORDER BY topic, id`)
	if err != nil {
		return nil, err
	}
	return scanLessons(rows)
}

func (s *Repo) Get(ctx context.Context, id string) (Lesson, error) {
	if err := ValidateID(id); err != nil {
		return Lesson{}, err
	}
	var l Lesson
	err := s.db.QueryRow(ctx, `SELECT `+lessonCols+` FROM lessons WHERE id=$1`, id).
		Scan(&l.ID, &l.Topic, &l.Location, &l.Price, &l.Spaces, &l.Image, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lesson{}, ErrNotFound
	}
	if err != nil {
		return Lesson{}, err
	}
	return l, nil
}

// Search matches a case-insensitive substring against topic and
// location. It also matches against the stringified price and spaces
// columns: the original UI sent numeric queries through the same box,
// so the behaviour is kept even though a substring rarely means
// anything against a number.
func (s *Repo) Search(ctx context.Context, q string) ([]Lesson, error) {
	pattern := "%" + escapeLike(q) + "%"
	rows, err := s.db.Query(ctx, `
		SELECT `+lessonCols+` FROM lessons
		WHERE topic ILIKE $1 OR location ILIKE $1
		   OR price::text ILIKE $1 OR spaces::text ILIKE $1
		ORDER BY topic, id`, pattern)
	if err != nil {
		return nil, err
	}
	return scanLessons(rows)
}

func (s *Repo) Create(ctx context.Context, l *Lesson) (string, error) {
	id := uuid.NewString()
	_, err := s.db.Exec(ctx, `
		INSERT INTO lessons(id, topic, location, price, spaces, image)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		id, l.Topic, l.Location, l.Price, l.Spaces, l.Image)
	if err != nil {
		return "", err
	}
	return id, nil
}

// Update applies the non-nil fields of upd and reports how many rows
// matched (0 or 1).
func (s *Repo) Update(ctx context.Context, id string, upd LessonUpdate) (int64, error) {
	if err := ValidateID(id); err != nil {
		return 0, err
	}

	sets := []string{"updated_at = now()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if upd.Topic != nil {
		add("topic", *upd.Topic)
	}
	if upd.Location != nil {
		add("location", *upd.Location)
	}
	if upd.Price != nil {
		add("price", *upd.Price)
	}
	if upd.Spaces != nil {
		add("spaces", *upd.Spaces)
	}
	if upd.Image != nil {
		add("image", *upd.Image)
	}

	ct, err := s.db.Exec(ctx, `UPDATE lessons SET `+strings.Join(sets, ", ")+` WHERE id=$1`, args...)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func (s *Repo) Delete(ctx context.Context, id string) (int64, error) {
	if err := ValidateID(id); err != nil {
		return 0, err
	}
	ct, err := s.db.Exec(ctx, `DELETE FROM lessons WHERE id=$1`, id)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

func scanLessons(rows pgx.Rows) ([]Lesson, error) {
	defer rows.Close()
	out := []Lesson{} // JSON-encodes as [], never null
	for rows.Next() {
		var l Lesson
		if err := rows.Scan(&l.ID, &l.Topic, &l.Location, &l.Price, &l.Spaces, &l.Image, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
