package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwell/inkwell-go/internal/apperr"
	"github.com/inkwell/inkwell-go/internal/model"
	"github.com/inkwell/inkwell-go/internal/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// EntryService handles journal entry business logic. All operations are
// scoped to the authenticated user; entries owned by someone else are
// indistinguishable from missing ones.
type EntryService struct {
	entries EntryStore
}

// NewEntryService creates a new EntryService.
func NewEntryService(entries EntryStore) *EntryService {
	return &EntryService{entries: entries}
}

// Create persists a new entry with its tag set.
func (s *EntryService) Create(ctx context.Context, userID string, req model.EntryRequest) (model.EntryResponse, error) {
	now := time.Now().UTC()
	entry := &model.Entry{
		ID:        model.NewID(),
		UserID:    userID,
		Title:     req.Title,
		Body:      req.Body,
		Tags:      normalizeTags(req.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.entries.Create(ctx, entry); err != nil {
		slog.Error("entry: insert failed", "user_id", userID, "error", err)
		return model.EntryResponse{}, apperr.Internal("could not create entry", err)
	}

	return entryToResponse(entry), nil
}

// Get retrieves one of the user's entries.
func (s *EntryService) Get(ctx context.Context, userID, entryID string) (model.EntryResponse, error) {
	entry, err := s.entries.Get(ctx, userID, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return model.EntryResponse{}, apperr.NotFound("entry not found")
		}
		slog.Error("entry: lookup failed", "user_id", userID, "entry_id", entryID, "error", err)
		return model.EntryResponse{}, apperr.Internal("could not load entry", err)
	}

	return entryToResponse(entry), nil
}

// Update replaces an entry's title, body and tags.
func (s *EntryService) Update(ctx context.Context, userID, entryID string, req model.EntryRequest) (model.EntryResponse, error) {
	entry := &model.Entry{
		ID:        entryID,
		UserID:    userID,
		Title:     req.Title,
		Body:      req.Body,
		Tags:      normalizeTags(req.Tags),
		UpdatedAt: time.Now().UTC(),
	}

	if err := s.entries.Update(ctx, entry); err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return model.EntryResponse{}, apperr.NotFound("entry not found")
		}
		slog.Error("entry: update failed", "user_id", userID, "entry_id", entryID, "error", err)
		return model.EntryResponse{}, apperr.Internal("could not update entry", err)
	}

	// Re-read for authoritative timestamps.
	updated, err := s.entries.Get(ctx, userID, entryID)
	if err != nil {
		slog.Error("entry: reload after update failed", "user_id", userID, "entry_id", entryID, "error", err)
		return model.EntryResponse{}, apperr.Internal("could not update entry", err)
	}

	return entryToResponse(updated), nil
}

// Delete removes one of the user's entries.
func (s *EntryService) Delete(ctx context.Context, userID, entryID string) error {
	err := s.entries.Delete(ctx, userID, entryID)
	if err != nil {
		if errors.Is(err, repository.ErrEntryNotFound) {
			return apperr.NotFound("entry not found")
		}
		slog.Error("entry: delete failed", "user_id", userID, "entry_id", entryID, "error", err)
		return apperr.Internal("could not delete entry", err)
	}
	return nil
}

// List returns a page of the user's entries, newest first, optionally
// narrowed to one tag. Page size is clamped to maxPageSize.
func (s *EntryService) List(ctx context.Context, userID string, opts model.ListOptions) (model.EntryListResponse, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultPageSize
	}
	if opts.Limit > maxPageSize {
		opts.Limit = maxPageSize
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	entries, err := s.entries.ListByUser(ctx, userID, opts)
	if err != nil {
		slog.Error("entry: list failed", "user_id", userID, "error", err)
		return model.EntryListResponse{}, apperr.Internal("could not list entries", err)
	}

	return model.EntryListResponse{
		Entries: entriesToResponse(entries),
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	}, nil
}

// ListTags returns the user's tags with usage counts.
func (s *EntryService) ListTags(ctx context.Context, userID string) ([]model.TagCount, error) {
	tags, err := s.entries.ListTags(ctx, userID)
	if err != nil {
		slog.Error("entry: tag list failed", "user_id", userID, "error", err)
		return nil, apperr.Internal("could not list tags", err)
	}
	if tags == nil {
		tags = []model.TagCount{}
	}
	return tags, nil
}

// normalizeTags lowercases, trims and dedupes tag names, preserving first
// occurrence order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	var result []string
	for _, tag := range tags {
		name := strings.ToLower(strings.TrimSpace(tag))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}

func entryToResponse(entry *model.Entry) model.EntryResponse {
	tags := entry.Tags
	if tags == nil {
		tags = []string{}
	}
	return model.EntryResponse{
		ID:        entry.ID,
		Title:     entry.Title,
		Body:      entry.Body,
		Tags:      tags,
		CreatedAt: entry.CreatedAt,
		UpdatedAt: entry.UpdatedAt,
	}
}

// entriesToResponse converts a slice of Entry to a slice of EntryResponse.
func entriesToResponse(entries []model.Entry) []model.EntryResponse {
	result := make([]model.EntryResponse, len(entries))
	for i := range entries {
		result[i] = entryToResponse(&entries[i])
	}
	return result
}
