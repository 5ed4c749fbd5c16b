package model

import "github.com/oklog/ulid/v2"

// NewID returns a new lexicographically sortable identifier. All persisted
// records use ULID strings as primary keys.
func NewID() string {
	return ulid.Make().String()
}
