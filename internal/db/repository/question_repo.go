package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Yo1k/qaws/internal/question"
)

// Storage failure classes, matched with errors.Is at call sites.
var (
	// ErrUnavailable wraps connection and timeout failures; the operation
	// may succeed when retried later.
	ErrUnavailable = errors.New("question storage unavailable")
	// ErrInvalidRecord marks a question missing a required field. Such a
	// record is rejected before any SQL runs.
	ErrInvalidRecord = errors.New("invalid question record")
)

// querier is the subset of pgxpool.Pool the repository needs; tests provide
// their own implementation.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// QuestionRepository provides keyed access to the questions table. Rows are
// write-once: there is no update or delete path.
type QuestionRepository struct {
	db querier
}

func NewQuestionRepository(db querier) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Exists reports whether a question with the given id is stored. A missing
// id is a normal outcome, not an error.
func (r *QuestionRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM questions WHERE id = $1)
	`, id).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: check question %d: %v", ErrUnavailable, id, err)
	}
	return exists, nil
}

// InsertIfAbsent persists q unless a row with its id already exists, and
// reports whether this call performed the insert. The conflict is resolved
// inside Postgres by the primary key, so two concurrent writers of the same
// id never produce two rows and never see an error: one insert wins, the
// other observes inserted=false. On success q.CreatedAt carries the
// store-assigned timestamp.
func (r *QuestionRepository) InsertIfAbsent(ctx context.Context, q *question.Question) (bool, error) {
	if q == nil || q.ID <= 0 || q.Text == "" || q.Answer == "" {
		return false, ErrInvalidRecord
	}
	err := r.db.QueryRow(ctx, `
		INSERT INTO questions (id, question, answer)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING
		RETURNING created_at
	`, q.ID, q.Text, q.Answer).Scan(&q.CreatedAt)
	if err != nil {
		// No RETURNING row means the id was already present.
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%w: insert question %d: %v", ErrUnavailable, q.ID, err)
	}
	return true, nil
}

// CountAvailable returns the number of stored questions. Callers use it for
// reporting and retry heuristics, never for dedup correctness.
func (r *QuestionRepository) CountAvailable(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM questions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: count questions: %v", ErrUnavailable, err)
	}
	return count, nil
}
