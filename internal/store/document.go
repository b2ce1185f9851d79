package store

import (
	"context"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5/pgxpool"

	"mahfaza/internal/utils"
	"mahfaza/pkg/types"
)

const documentTableName = "documents"

var documentColumns = utils.StructTagValues(types.Document{})

type DocumentRepository struct {
	pool *pgxpool.Pool
}

func NewDocumentRepository(pool *pgxpool.Pool) *DocumentRepository {
	return &DocumentRepository{pool: pool}
}

func (r *DocumentRepository) Create(ctx context.Context, doc *types.Document) error {
	doc.UploadDate = time.Now()

	query, args, err := psql().
		Insert(documentTableName).
		SetMap(utils.StructToMap(doc, "id")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("build create document query: %w", err)
	}

	if err := r.pool.QueryRow(ctx, query, args...).Scan(&doc.ID); err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	return nil
}

func (r *DocumentRepository) ByIDForUser(ctx context.Context, id, userID int64) (*types.Document, error) {
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.Eq{"id": id, "user_id": userID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build document-by-id query: %w", err)
	}

	var doc types.Document
	err = pgxscan.Get(ctx, r.pool, &doc, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("fetch document: %w", err)
	}

	return &doc, nil
}

func (r *DocumentRepository) ByUserID(ctx context.Context, userID int64) ([]*types.Document, error) {
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.Eq{"user_id": userID}).
		OrderBy("upload_date DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build documents-by-user query: %w", err)
	}

	docs := make([]*types.Document, 0)
	if err := pgxscan.Select(ctx, r.pool, &docs, query, args...); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return docs, nil
}

func (r *DocumentRepository) Update(ctx context.Context, doc *types.Document) error {
	query, args, err := psql().
		Update(documentTableName).
		SetMap(utils.StructToMap(doc, "id", "user_id", "upload_date")).
		Where(sq.Eq{"id": doc.ID, "user_id": doc.UserID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update document query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	return nil
}

func (r *DocumentRepository) Delete(ctx context.Context, id, userID int64) error {
	query, args, err := psql().
		Delete(documentTableName).
		Where(sq.Eq{"id": id, "user_id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete document query: %w", err)
	}

	tag, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}

	return nil
}

func (r *DocumentRepository) ByStorageName(ctx context.Context, userID int64, name string) (*types.Document, error) {
	query, args, err := psql().
		Select(documentColumns...).
		From(documentTableName).
		Where(sq.And{
			sq.Eq{"user_id": userID},
			sq.Or{sq.Eq{"filename": name}, sq.Eq{"filename_back": name}},
		}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build document-by-storage-name query: %w", err)
	}

	var doc types.Document
	err = pgxscan.Get(ctx, r.pool, &doc, query, args...)
	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("fetch document by storage name: %w", err)
	}

	return &doc, nil
}
