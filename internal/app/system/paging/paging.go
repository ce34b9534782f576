// internal/app/system/paging/paging.go
package paging

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PageSize is the default number of rows returned by paged endpoints.
// Keep this as an int; call sites cast to int64 for Find().SetLimit().
const PageSize = 50

// MaxPageSize caps the "limit" query parameter.
const MaxPageSize = 500

// ErrBadCursor is returned by ParseBefore for a malformed cursor.
var ErrBadCursor = errors.New("invalid cursor")

// ParseLimit extracts the "limit" query parameter. Returns PageSize when it
// is absent or invalid, and MaxPageSize when it is larger.
func ParseLimit(r *http.Request) int {
	s := query.Get(r, "limit")
	if s == "" {
		return PageSize
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return PageSize
	}
	if n > MaxPageSize {
		return MaxPageSize
	}
	return n
}

// ParseBefore extracts the "before" cursor (an ObjectID hex string).
// Absent means the first page and yields NilObjectID.
func ParseBefore(r *http.Request) (primitive.ObjectID, error) {
	s := query.Get(r, "before")
	if s == "" {
		return primitive.NilObjectID, nil
	}
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, ErrBadCursor
	}
	return id, nil
}

// LimitPlusOne returns limit+1 for look-ahead pagination
// (fetch one extra document to detect hasNext).
func LimitPlusOne(limit int) int64 { return int64(limit + 1) }

// TrimPage trims rows fetched with LimitPlusOne back to limit and reports
// whether an older page exists.
func TrimPage[T any](rows *[]T, limit int) (hasNext bool) {
	if len(*rows) > limit {
		*rows = (*rows)[:limit]
		return true
	}
	return false
}

// NextCursor returns the cursor for the following page, or "" when there is none.
func NextCursor[T any](rows []T, hasNext bool, idFn func(T) primitive.ObjectID) string {
	if !hasNext || len(rows) == 0 {
		return ""
	}
	return idFn(rows[len(rows)-1]).Hex()
}
