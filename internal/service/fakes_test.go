package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/inkwell/inkwell-go/internal/crypto"
	"github.com/inkwell/inkwell-go/internal/model"
	"github.com/inkwell/inkwell-go/internal/repository"
)

// In-memory fakes for the store interfaces. They return the repository
// package's sentinel errors so the services translate them exactly as they
// would in production.

type fakeUserStore struct {
	users        map[string]*model.User // keyed by ID
	createErr    error
	lookupErr    error
	missOnLookup bool // simulate a lost race between lookup and insert
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) Create(_ context.Context, user *model.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrDuplicateEmail
		}
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*model.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	if f.missOnLookup {
		return nil, repository.ErrUserNotFound
	}
	for _, u := range f.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (*model.User, error) {
	if f.lookupErr != nil {
		return nil, f.lookupErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

type fakeAttemptStore struct {
	attempts  []model.LoginAttempt
	recordErr error
	countErr  error
}

func (f *fakeAttemptStore) Record(_ context.Context, attempt *model.LoginAttempt) error {
	if f.recordErr != nil {
		return f.recordErr
	}
	f.attempts = append(f.attempts, *attempt)
	return nil
}

func (f *fakeAttemptStore) CountRecentFailures(_ context.Context, email string, since time.Time) (int, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	count := 0
	for _, a := range f.attempts {
		if a.Email == email && !a.Success && !a.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (f *fakeAttemptStore) forEmail(email string) []model.LoginAttempt {
	var result []model.LoginAttempt
	for _, a := range f.attempts {
		if a.Email == email {
			result = append(result, a)
		}
	}
	return result
}

// countingHasher wraps a real Hasher and counts Verify calls, so tests can
// prove the throttle short-circuits before any password comparison.
type countingHasher struct {
	inner       *crypto.Hasher
	verifyCalls int
}

func newCountingHasher() *countingHasher {
	return &countingHasher{
		inner: crypto.NewHasherWithParams(crypto.HashParams{
			Memory:      8 * 1024,
			Iterations:  1,
			Parallelism: 1,
			SaltLength:  16,
			KeyLength:   32,
		}),
	}
}

func (h *countingHasher) Hash(password string) (string, error) {
	return h.inner.Hash(password)
}

func (h *countingHasher) Verify(password, encodedHash string) (bool, error) {
	h.verifyCalls++
	return h.inner.Verify(password, encodedHash)
}

type failingHasher struct{}

func (failingHasher) Hash(string) (string, error) {
	return "", errors.New("hashing unavailable")
}

func (failingHasher) Verify(string, string) (bool, error) {
	return false, errors.New("hashing unavailable")
}

type fakeEntryStore struct {
	entries   map[string]*model.Entry // keyed by ID
	createErr error
}

func newFakeEntryStore() *fakeEntryStore {
	return &fakeEntryStore{entries: make(map[string]*model.Entry)}
}

func (f *fakeEntryStore) Create(_ context.Context, entry *model.Entry) error {
	if f.createErr != nil {
		return f.createErr
	}
	clone := *entry
	f.entries[entry.ID] = &clone
	return nil
}

func (f *fakeEntryStore) Get(_ context.Context, userID, entryID string) (*model.Entry, error) {
	e, ok := f.entries[entryID]
	if !ok || e.UserID != userID {
		return nil, repository.ErrEntryNotFound
	}
	clone := *e
	return &clone, nil
}

func (f *fakeEntryStore) Update(_ context.Context, entry *model.Entry) error {
	existing, ok := f.entries[entry.ID]
	if !ok || existing.UserID != entry.UserID {
		return repository.ErrEntryNotFound
	}
	existing.Title = entry.Title
	existing.Body = entry.Body
	existing.Tags = entry.Tags
	existing.UpdatedAt = entry.UpdatedAt
	return nil
}

func (f *fakeEntryStore) Delete(_ context.Context, userID, entryID string) error {
	e, ok := f.entries[entryID]
	if !ok || e.UserID != userID {
		return repository.ErrEntryNotFound
	}
	delete(f.entries, entryID)
	return nil
}

func (f *fakeEntryStore) ListByUser(_ context.Context, userID string, opts model.ListOptions) ([]model.Entry, error) {
	var all []model.Entry
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		if opts.Tag != "" && !containsTag(e.Tags, opts.Tag) {
			continue
		}
		all = append(all, *e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })

	if opts.Offset >= len(all) {
		return nil, nil
	}
	all = all[opts.Offset:]
	if opts.Limit > 0 && len(all) > opts.Limit {
		all = all[:opts.Limit]
	}
	return all, nil
}

func (f *fakeEntryStore) ListTags(_ context.Context, userID string) ([]model.TagCount, error) {
	counts := make(map[string]int)
	for _, e := range f.entries {
		if e.UserID != userID {
			continue
		}
		for _, tag := range e.Tags {
			counts[tag]++
		}
	}

	var names []string
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	var result []model.TagCount
	for _, name := range names {
		result = append(result, model.TagCount{Name: name, Count: counts[name]})
	}
	return result, nil
}

func containsTag(tags []string, want string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}
