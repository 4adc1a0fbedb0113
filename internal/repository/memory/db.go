// Package memory implements the repositories on an in-memory database. It backs
// DB_DRIVER=memory and the end-to-end service tests.
package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/hashicorp/go-memdb"
)

var (
	tblUsers     = "users"
	tblDocuments = "documents"
)

var schema = &memdb.DBSchema{
	Tables: map[string]*memdb.TableSchema{
		tblUsers: {
			Name: tblUsers,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"username": {
					Name:         "username",
					Unique:       true,
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "Username"},
				},
				"email": {
					Name:         "email",
					Unique:       true,
					AllowMissing: true,
					Indexer:      &memdb.StringFieldIndex{Field: "Email"},
				},
			},
		},
		tblDocuments: {
			Name: tblDocuments,
			Indexes: map[string]*memdb.IndexSchema{
				"id": {
					Name:    "id",
					Unique:  true,
					Indexer: &memdb.StringFieldIndex{Field: "ID"},
				},
				"owner_id": {
					Name:    "owner_id",
					Indexer: &memdb.StringFieldIndex{Field: "OwnerID"},
				},
			},
		},
	},
}

// DB is an in-memory database for testing or temporarily.
type DB struct {
	db  *memdb.MemDB
	now func() time.Time
}

// New returns a new in-memory database.
func New() (*DB, error) {
	memDB, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("new memdb: %w", err)
	}

	return &DB{
		db:  memDB,
		now: time.Now,
	}, nil
}

// PingContext always succeeds; it lets the health endpoint treat DB like *sql.DB.
func (d *DB) PingContext(_ context.Context) error {
	return nil
}

// Close closes the database.
func (d *DB) Close() error {
	return nil
}
