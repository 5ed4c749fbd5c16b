package service

import (
	"context"
	"time"

	"github.com/inkwell/inkwell-go/internal/model"
)

// The services depend on these capability interfaces rather than on the
// concrete repositories, so tests can substitute in-memory fakes. The
// repository package satisfies all of them.

// UserStore is the persistence capability set the auth service needs for
// user records.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
}

// AttemptStore records login attempts and answers the throttle's windowed
// failure count.
type AttemptStore interface {
	Record(ctx context.Context, attempt *model.LoginAttempt) error
	CountRecentFailures(ctx context.Context, email string, since time.Time) (int, error)
}

// EntryStore is the persistence capability set for journal entries and tags.
type EntryStore interface {
	Create(ctx context.Context, entry *model.Entry) error
	Get(ctx context.Context, userID, entryID string) (*model.Entry, error)
	Update(ctx context.Context, entry *model.Entry) error
	Delete(ctx context.Context, userID, entryID string) error
	ListByUser(ctx context.Context, userID string, opts model.ListOptions) ([]model.Entry, error)
	ListTags(ctx context.Context, userID string) ([]model.TagCount, error)
}

// PasswordHasher is the one-way salted hash capability.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// TokenIssuer signs identity tokens bound to a user ID.
type TokenIssuer interface {
	Issue(userID string) (string, error)
}
