package repository

import (
	"context"

	"docvault/internal/listing"
	"docvault/internal/model"
)

// DocumentRepository defines data access for documents, their version history and their
// permission entries. No business logic here: access decisions belong to the caller.
type DocumentRepository interface {
	// Create inserts a new document with its initial versions and permissions.
	// Returns the stored document.
	Create(ctx context.Context, doc *model.Document) (*model.Document, error)

	// FindByID returns a document by its ID, or ErrNotFound.
	FindByID(ctx context.Context, id string) (*model.Document, error)

	// List returns one page of documents matching q, newest first, and the total number
	// of matching documents.
	List(ctx context.Context, q listing.Query) (*PageResult[*model.Document], error)

	// Update persists the owner-editable metadata of doc. When appended is non-nil the
	// version is recorded and made current in the same transaction; if the stored
	// current version is no longer appended.Number-1, ErrVersionConflict is returned and
	// nothing is written.
	Update(ctx context.Context, doc *model.Document, appended *model.Version) error

	// SetPermission upserts the explicit access level of userID on the document.
	// AccessNone removes the entry.
	SetPermission(ctx context.Context, documentID, userID string, level model.AccessLevel) error

	// Delete removes a document and everything it owns. It returns nil if the row was
	// deleted or did not exist.
	Delete(ctx context.Context, id string) error
}
