// Package store persists users and documents. Postgres repositories are the
// production implementations; the in-memory ones back the service and
// handler tests.
package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"mahfaza/pkg/types"
)

func psql() sq.StatementBuilderType {
	return sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
}

type UserStore interface {
	// Create persists the user and assigns ID. A taken username is reported
	// as types.ErrDuplicateUsername via the store's uniqueness constraint,
	// not a pre-check.
	Create(ctx context.Context, user *types.User) error
	ByUsername(ctx context.Context, username string) (*types.User, error)
	ByID(ctx context.Context, id int64) (*types.User, error)
}

type DocumentStore interface {
	// Create persists the document, assigning ID and UploadDate.
	Create(ctx context.Context, doc *types.Document) error
	// ByIDForUser returns types.ErrNotFound both for unknown ids and for
	// documents owned by someone else.
	ByIDForUser(ctx context.Context, id, userID int64) (*types.Document, error)
	// ByUserID lists the user's documents newest-upload-first.
	ByUserID(ctx context.Context, userID int64) ([]*types.Document, error)
	// Update rewrites the record scoped by (doc.ID, doc.UserID) in one
	// statement; no matching row is types.ErrNotFound.
	Update(ctx context.Context, doc *types.Document) error
	Delete(ctx context.Context, id, userID int64) error
	// ByStorageName finds the caller's document whose front or back
	// attachment is name. Used by the download access gate.
	ByStorageName(ctx context.Context, userID int64, name string) (*types.Document, error)
}
