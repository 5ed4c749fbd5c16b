package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/inkwell/inkwell-go/internal/model"
)

var ErrEntryNotFound = errors.New("journal entry not found")

// EntryRepository handles journal entry persistence, including the tag set
// attached to each entry. All queries are scoped by user ID so entries never
// leak across accounts.
type EntryRepository struct {
	db *sql.DB
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

// Create inserts a new entry and its tag set in one transaction.
func (r *EntryRepository) Create(ctx context.Context, entry *model.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO entries (id, user_id, title, body, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	if _, err := tx.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.Title, entry.Body, entry.CreatedAt, entry.UpdatedAt,
	); err != nil {
		return err
	}

	if err := r.setTags(ctx, tx, entry.UserID, entry.ID, entry.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// Get retrieves one entry with its tags. Entries owned by other users are
// reported as not found.
func (r *EntryRepository) Get(ctx context.Context, userID, entryID string) (*model.Entry, error) {
	query := `SELECT id, user_id, title, body, created_at, updated_at
		FROM entries WHERE id = ? AND user_id = ?`

	entry := &model.Entry{}
	err := r.db.QueryRowContext(ctx, query, entryID, userID).Scan(
		&entry.ID, &entry.UserID, &entry.Title, &entry.Body, &entry.CreatedAt, &entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	tags, err := r.tagsForEntries(ctx, []string{entry.ID})
	if err != nil {
		return nil, err
	}
	entry.Tags = tags[entry.ID]

	return entry, nil
}

// Update replaces an entry's title, body and tag set.
func (r *EntryRepository) Update(ctx context.Context, entry *model.Entry) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `UPDATE entries SET title = ?, body = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`

	result, err := tx.ExecContext(ctx, query,
		entry.Title, entry.Body, entry.UpdatedAt, entry.ID, entry.UserID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM entry_tags WHERE entry_id = ?`, entry.ID); err != nil {
		return err
	}
	if err := r.setTags(ctx, tx, entry.UserID, entry.ID, entry.Tags); err != nil {
		return err
	}

	return tx.Commit()
}

// Delete removes an entry. The entry_tags rows go with it via cascade.
func (r *EntryRepository) Delete(ctx context.Context, userID, entryID string) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM entries WHERE id = ? AND user_id = ?`, entryID, userID)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrEntryNotFound
	}

	return nil
}

// ListByUser retrieves a page of entries, newest first, optionally narrowed
// to one tag.
func (r *EntryRepository) ListByUser(ctx context.Context, userID string, opts model.ListOptions) ([]model.Entry, error) {
	var (
		query string
		args  []any
	)

	if opts.Tag != "" {
		query = `SELECT e.id, e.user_id, e.title, e.body, e.created_at, e.updated_at
			FROM entries e
			JOIN entry_tags et ON et.entry_id = e.id
			JOIN tags t ON t.id = et.tag_id
			WHERE e.user_id = ? AND t.name = ?
			ORDER BY e.created_at DESC LIMIT ? OFFSET ?`
		args = []any{userID, opts.Tag, opts.Limit, opts.Offset}
	} else {
		query = `SELECT id, user_id, title, body, created_at, updated_at
			FROM entries WHERE user_id = ?
			ORDER BY created_at DESC LIMIT ? OFFSET ?`
		args = []any{userID, opts.Limit, opts.Offset}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []model.Entry
	var ids []string
	for rows.Next() {
		var e model.Entry
		if err := rows.Scan(&e.ID, &e.UserID, &e.Title, &e.Body, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
		ids = append(ids, e.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tags, err := r.tagsForEntries(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Tags = tags[entries[i].ID]
	}

	return entries, nil
}

// ListTags returns the user's distinct tag names with usage counts,
// alphabetically.
func (r *EntryRepository) ListTags(ctx context.Context, userID string) ([]model.TagCount, error) {
	query := `SELECT t.name, COUNT(et.entry_id)
		FROM tags t
		JOIN entry_tags et ON et.tag_id = t.id
		WHERE t.user_id = ?
		GROUP BY t.name ORDER BY t.name ASC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []model.TagCount
	for rows.Next() {
		var tc model.TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, err
		}
		tags = append(tags, tc)
	}

	return tags, rows.Err()
}

// setTags links the entry to each named tag, creating tags that do not yet
// exist for this user.
func (r *EntryRepository) setTags(ctx context.Context, tx *sql.Tx, userID, entryID string, names []string) error {
	for _, name := range names {
		tagID, err := r.ensureTag(ctx, tx, userID, name)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT IGNORE INTO entry_tags (entry_id, tag_id) VALUES (?, ?)`, entryID, tagID); err != nil {
			return err
		}
	}
	return nil
}

// ensureTag returns the ID of the user's tag with the given name, inserting
// it first if needed.
func (r *EntryRepository) ensureTag(ctx context.Context, tx *sql.Tx, userID, name string) (string, error) {
	var tagID string
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM tags WHERE user_id = ? AND name = ?`, userID, name).Scan(&tagID)
	if err == nil {
		return tagID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", err
	}

	tagID = model.NewID()
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tags (id, user_id, name) VALUES (?, ?, ?)`, tagID, userID, name); err != nil {
		return "", err
	}
	return tagID, nil
}

// tagsForEntries loads tag names for a batch of entry IDs in one query.
func (r *EntryRepository) tagsForEntries(ctx context.Context, entryIDs []string) (map[string][]string, error) {
	result := make(map[string][]string, len(entryIDs))
	if len(entryIDs) == 0 {
		return result, nil
	}

	placeholders := strings.Repeat("?,", len(entryIDs))
	placeholders = placeholders[:len(placeholders)-1]

	query := `SELECT et.entry_id, t.name
		FROM entry_tags et
		JOIN tags t ON t.id = et.tag_id
		WHERE et.entry_id IN (` + placeholders + `)
		ORDER BY t.name ASC`

	args := make([]any, len(entryIDs))
	for i, id := range entryIDs {
		args[i] = id
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var entryID, name string
		if err := rows.Scan(&entryID, &name); err != nil {
			return nil, err
		}
		result[entryID] = append(result[entryID], name)
	}

	return result, rows.Err()
}
