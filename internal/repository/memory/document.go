package memory

import (
	"context"
	"fmt"

	"docvault/internal/listing"
	"docvault/internal/model"
	"docvault/internal/repository"
)

// DocumentRepository implements repository.DocumentRepository on DB. Stored documents are
// never handed out: every read and write goes through a deep copy.
type DocumentRepository struct {
	*DB
}

// NewDocumentRepository returns a document repository backed by d.
func NewDocumentRepository(d *DB) *DocumentRepository {
	return &DocumentRepository{DB: d}
}

var _ repository.DocumentRepository = (*DocumentRepository)(nil)

func (r *DocumentRepository) Create(_ context.Context, doc *model.Document) (*model.Document, error) {
	txn := r.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tblDocuments, "id", doc.ID)
	if err != nil {
		return nil, fmt.Errorf("create document %s: %w", doc.ID, err)
	}
	if existing != nil {
		return nil, fmt.Errorf("create document %s: %w", doc.ID, repository.ErrDuplicate)
	}

	if err := txn.Insert(tblDocuments, doc.Clone()); err != nil {
		return nil, fmt.Errorf("create document %s: %w", doc.ID, err)
	}
	txn.Commit()

	return doc.Clone(), nil
}

func (r *DocumentRepository) FindByID(_ context.Context, id string) (*model.Document, error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", id)
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}
	if raw == nil {
		return nil, repository.ErrNotFound
	}
	return raw.(*model.Document).Clone(), nil
}

func (r *DocumentRepository) List(_ context.Context, q listing.Query) (*repository.PageResult[*model.Document], error) {
	txn := r.db.Txn(false)
	defer txn.Abort()

	iter, err := txn.Get(tblDocuments, "id")
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	var matched []*model.Document
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		doc := raw.(*model.Document)
		if q.Matches(doc) {
			matched = append(matched, doc)
		}
	}
	listing.SortNewestFirst(matched)

	items := make([]*model.Document, 0, q.Limit)
	for i := q.Skip(); i < len(matched) && len(items) < q.Limit; i++ {
		items = append(items, matched[i].Clone())
	}

	return &repository.PageResult[*model.Document]{
		Items: items,
		Total: len(matched),
	}, nil
}

func (r *DocumentRepository) Update(_ context.Context, doc *model.Document, appended *model.Version) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", doc.ID)
	if err != nil {
		return fmt.Errorf("update document %s: %w", doc.ID, err)
	}
	if raw == nil {
		return repository.ErrNotFound
	}

	stored := raw.(*model.Document).Clone()
	stored.Title = doc.Title
	stored.Description = doc.Description
	stored.Tags = append([]string{}, doc.Tags...)
	stored.Category = doc.Category
	stored.IsPublic = doc.IsPublic
	stored.UpdatedAt = doc.UpdatedAt

	if appended != nil {
		if stored.CurrentVersion != appended.Number-1 {
			return repository.ErrVersionConflict
		}
		stored.Versions = append(stored.Versions, *appended)
		stored.CurrentVersion = appended.Number
		stored.FileName = appended.FileName
		stored.FilePath = appended.FilePath
		stored.FileSize = appended.FileSize
		stored.MimeType = appended.MimeType
	}

	if err := txn.Insert(tblDocuments, stored); err != nil {
		return fmt.Errorf("update document %s: %w", doc.ID, err)
	}
	txn.Commit()
	return nil
}

func (r *DocumentRepository) SetPermission(_ context.Context, documentID, userID string, level model.AccessLevel) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	raw, err := txn.First(tblDocuments, "id", documentID)
	if err != nil {
		return fmt.Errorf("set permission on %s: %w", documentID, err)
	}
	if raw == nil {
		return repository.ErrNotFound
	}

	stored := raw.(*model.Document).Clone()
	stored.SetPermission(userID, level)
	stored.UpdatedAt = r.now()

	if err := txn.Insert(tblDocuments, stored); err != nil {
		return fmt.Errorf("set permission on %s: %w", documentID, err)
	}
	txn.Commit()
	return nil
}

func (r *DocumentRepository) Delete(_ context.Context, id string) error {
	txn := r.db.Txn(true)
	defer txn.Abort()

	if _, err := txn.DeleteAll(tblDocuments, "id", id); err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	txn.Commit()
	return nil
}
