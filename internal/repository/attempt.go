package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/inkwell/inkwell-go/internal/model"
)

// AttemptRepository handles login-attempt audit records. Rows are
// insert-only; the only read is the windowed failure count used by the
// login throttle.
type AttemptRepository struct {
	db *sql.DB
}

// NewAttemptRepository creates a new AttemptRepository.
func NewAttemptRepository(db *sql.DB) *AttemptRepository {
	return &AttemptRepository{db: db}
}

// Record inserts one login attempt.
func (r *AttemptRepository) Record(ctx context.Context, attempt *model.LoginAttempt) error {
	query := `INSERT INTO login_attempts (id, email, ip_address, user_id, success, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, query,
		attempt.ID, attempt.Email, nullString(attempt.IPAddress), nullString(attempt.UserID),
		attempt.Success, attempt.CreatedAt,
	)
	return err
}

// CountRecentFailures counts failed attempts for the email since the given
// time. The count is per email only; the recorded IP does not narrow it.
func (r *AttemptRepository) CountRecentFailures(ctx context.Context, email string, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM login_attempts WHERE email = ? AND success = 0 AND created_at >= ?`

	var count int
	if err := r.db.QueryRowContext(ctx, query, email, since).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}
