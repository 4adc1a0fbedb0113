package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"docvault/internal/listing"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentPostgres is a PostgreSQL implementation of repository.DocumentRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type DocumentPostgres struct {
	db *sql.DB
}

// NewDocumentPostgres creates a new DocumentPostgres repository.
func NewDocumentPostgres(db *sql.DB) *DocumentPostgres {
	return &DocumentPostgres{db: db}
}

var _ repository.DocumentRepository = (*DocumentPostgres)(nil)

type rowScanner interface {
	Scan(dest ...any) error
}

// Create inserts the document row, its versions and its permissions in one transaction.
func (r *DocumentPostgres) Create(ctx context.Context, doc *model.Document) (*model.Document, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	const q = `
		INSERT INTO documents (id, title, description, tags, category, owner_id, is_public,
			file_name, file_path, file_size, mime_type, current_version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`
	out := doc.Clone()
	if err := tx.QueryRowContext(ctx, q,
		doc.ID,
		doc.Title,
		doc.Description,
		pq.Array(doc.Tags),
		doc.Category,
		doc.OwnerID,
		doc.IsPublic,
		doc.FileName,
		doc.FilePath,
		doc.FileSize,
		doc.MimeType,
		doc.CurrentVersion,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&out.ID, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}

	for _, v := range doc.Versions {
		if err := insertVersion(ctx, tx, doc.ID, v); err != nil {
			return nil, err
		}
	}
	for userID, level := range doc.Permissions {
		if err := upsertPermission(ctx, tx, doc.ID, userID, level); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return out, nil
}

// FindByID fetches a single document with its versions and permissions.
func (r *DocumentPostgres) FindByID(ctx context.Context, id string) (*model.Document, error) {
	q := `SELECT ` + documentColumns + ` FROM documents d WHERE d.id = $1`
	d, err := scanDocument(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select document: %w", err)
	}

	if err := r.loadChildren(ctx, []*model.Document{d}); err != nil {
		return nil, err
	}
	return d, nil
}

// List returns one page of visible, matching documents and their total count.
func (r *DocumentPostgres) List(ctx context.Context, q listing.Query) (*repository.PageResult[*model.Document], error) {
	b := newDocumentQuery(q)

	countSQL, countArgs := b.buildCount()
	var total int
	if err := r.db.QueryRowContext(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	pageSQL, pageArgs := b.buildPage(q.Limit, q.Skip())
	rows, err := r.db.QueryContext(ctx, pageSQL, pageArgs...)
	if err != nil {
		return nil, fmt.Errorf("select documents: %w", err)
	}
	defer rows.Close()

	items := make([]*model.Document, 0, q.Limit)
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadChildren(ctx, items); err != nil {
		return nil, err
	}

	return &repository.PageResult[*model.Document]{
		Items: items,
		Total: total,
	}, nil
}

// Update writes metadata and, when appended is set, the new version under a row lock.
func (r *DocumentPostgres) Update(ctx context.Context, doc *model.Document, appended *model.Version) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var current int
	err = tx.QueryRowContext(ctx, `SELECT current_version FROM documents WHERE id = $1 FOR UPDATE`, doc.ID).Scan(&current)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return repository.ErrNotFound
		}
		return fmt.Errorf("lock document: %w", err)
	}

	if appended == nil {
		const q = `
			UPDATE documents
			SET title = $2, description = $3, tags = $4, category = $5, is_public = $6, updated_at = $7
			WHERE id = $1
		`
		if _, err := tx.ExecContext(ctx, q,
			doc.ID, doc.Title, doc.Description, pq.Array(doc.Tags), doc.Category, doc.IsPublic, doc.UpdatedAt,
		); err != nil {
			return fmt.Errorf("update document: %w", err)
		}
		return commit(tx)
	}

	if current != appended.Number-1 {
		return repository.ErrVersionConflict
	}
	if err := insertVersion(ctx, tx, doc.ID, *appended); err != nil {
		return err
	}

	const q = `
		UPDATE documents
		SET title = $2, description = $3, tags = $4, category = $5, is_public = $6,
			file_name = $7, file_path = $8, file_size = $9, mime_type = $10,
			current_version = $11, updated_at = $12
		WHERE id = $1
	`
	if _, err := tx.ExecContext(ctx, q,
		doc.ID, doc.Title, doc.Description, pq.Array(doc.Tags), doc.Category, doc.IsPublic,
		appended.FileName, appended.FilePath, appended.FileSize, appended.MimeType,
		appended.Number, doc.UpdatedAt,
	); err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return commit(tx)
}

// SetPermission upserts or removes a permission entry and touches the document.
func (r *DocumentPostgres) SetPermission(ctx context.Context, documentID, userID string, level model.AccessLevel) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE documents SET updated_at = NOW() WHERE id = $1`, documentID)
	if err != nil {
		return fmt.Errorf("touch document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return repository.ErrNotFound
	}

	if err := upsertPermission(ctx, tx, documentID, userID, level); err != nil {
		return err
	}
	return commit(tx)
}

// Delete removes a document by ID. Versions and permissions cascade. It does not return an
// error if the row does not exist.
func (r *DocumentPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM documents WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}

func scanDocument(s rowScanner) (*model.Document, error) {
	d := &model.Document{Permissions: model.Permissions{}}
	var tags pq.StringArray
	if err := s.Scan(
		&d.ID,
		&d.Title,
		&d.Description,
		&tags,
		&d.Category,
		&d.OwnerID,
		&d.IsPublic,
		&d.FileName,
		&d.FilePath,
		&d.FileSize,
		&d.MimeType,
		&d.CurrentVersion,
		&d.CreatedAt,
		&d.UpdatedAt,
	); err != nil {
		return nil, err
	}
	d.Tags = []string(tags)
	if d.Tags == nil {
		d.Tags = []string{}
	}
	return d, nil
}

// loadChildren batch loads versions and permissions for docs.
func (r *DocumentPostgres) loadChildren(ctx context.Context, docs []*model.Document) error {
	if len(docs) == 0 {
		return nil
	}
	byID := make(map[string]*model.Document, len(docs))
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		byID[d.ID] = d
		ids = append(ids, d.ID)
	}

	const qVersions = `
		SELECT document_id, version_number, file_name, file_path, file_size, mime_type, uploaded_at, uploaded_by
		FROM document_versions
		WHERE document_id = ANY($1)
		ORDER BY document_id, version_number
	`
	rows, err := r.db.QueryContext(ctx, qVersions, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("select versions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var docID string
		var v model.Version
		if err := rows.Scan(&docID, &v.Number, &v.FileName, &v.FilePath, &v.FileSize, &v.MimeType, &v.UploadedAt, &v.UploadedBy); err != nil {
			return fmt.Errorf("scan version: %w", err)
		}
		if d, ok := byID[docID]; ok {
			d.Versions = append(d.Versions, v)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	const qPermissions = `
		SELECT document_id, user_id, access_type
		FROM document_permissions
		WHERE document_id = ANY($1)
	`
	prows, err := r.db.QueryContext(ctx, qPermissions, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("select permissions: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var docID, userID, accessType string
		if err := prows.Scan(&docID, &userID, &accessType); err != nil {
			return fmt.Errorf("scan permission: %w", err)
		}
		level, err := model.ParseAccessLevel(accessType)
		if err != nil {
			return fmt.Errorf("document %s: %w", docID, err)
		}
		if d, ok := byID[docID]; ok {
			d.Permissions.Set(userID, level)
		}
	}
	return prows.Err()
}

func insertVersion(ctx context.Context, tx *sql.Tx, documentID string, v model.Version) error {
	const q = `
		INSERT INTO document_versions (document_id, version_number, file_name, file_path, file_size, mime_type, uploaded_at, uploaded_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.ExecContext(ctx, q,
		documentID, v.Number, v.FileName, v.FilePath, v.FileSize, v.MimeType, v.UploadedAt, v.UploadedBy,
	); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrVersionConflict
		}
		return fmt.Errorf("insert version: %w", err)
	}
	return nil
}

func upsertPermission(ctx context.Context, tx *sql.Tx, documentID, userID string, level model.AccessLevel) error {
	if level == model.AccessNone {
		const q = `DELETE FROM document_permissions WHERE document_id = $1 AND user_id = $2`
		if _, err := tx.ExecContext(ctx, q, documentID, userID); err != nil {
			return fmt.Errorf("delete permission: %w", err)
		}
		return nil
	}

	const q = `
		INSERT INTO document_permissions (document_id, user_id, access_type)
		VALUES ($1, $2, $3)
		ON CONFLICT (document_id, user_id) DO UPDATE SET access_type = EXCLUDED.access_type
	`
	if _, err := tx.ExecContext(ctx, q, documentID, userID, level.String()); err != nil {
		return fmt.Errorf("upsert permission: %w", err)
	}
	return nil
}

func commit(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
