package model

import "time"

// Entry represents a journal entry in the database. Tags are loaded from the
// entry_tags join and set-replaced on update.
type Entry struct {
	ID        string
	UserID    string
	Title     string
	Body      string
	Tags      []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// EntryRequest represents an entry create or update request.
type EntryRequest struct {
	Title string   `json:"title" validate:"required,max=200"`
	Body  string   `json:"body" validate:"max=65535"`
	Tags  []string `json:"tags" validate:"max=20,dive,required,max=50"`
}

// EntryResponse represents a journal entry in API responses.
type EntryResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntryListResponse represents a page of journal entries.
type EntryListResponse struct {
	Entries []EntryResponse `json:"entries"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// ListOptions narrows and pages an entry listing.
type ListOptions struct {
	Tag    string
	Limit  int
	Offset int
}

// TagCount represents a tag name with its usage count.
type TagCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
