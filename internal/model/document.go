package model

import "time"

// DefaultCategory is assigned to documents uploaded without a category.
const DefaultCategory = "Uncategorized"

// Document is the versioned file-with-metadata aggregate.
// This is a pure domain model with no database-specific dependencies or tags.
//
// FileName, FilePath, FileSize and MimeType always mirror the version numbered CurrentVersion.
type Document struct {
	ID             string      `json:"id"`
	Title          string      `json:"title"`
	Description    string      `json:"description"`
	Tags           []string    `json:"tags"`
	Category       string      `json:"category"`
	OwnerID        string      `json:"owner_id"`
	IsPublic       bool        `json:"is_public"`
	Permissions    Permissions `json:"permissions"`
	Versions       []Version   `json:"versions"`
	CurrentVersion int         `json:"current_version"`
	FileName       string      `json:"file_name"`
	FilePath       string      `json:"file_path"`
	FileSize       int64       `json:"file_size"`
	MimeType       string      `json:"mime_type"`
	CreatedAt      time.Time   `json:"created_at"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// Metadata holds the owner-editable descriptive fields of a document.
type Metadata struct {
	Title       string
	Description string
	Tags        []string
	Category    string
	IsPublic    bool
}

// NewDocument creates a document owned by ownerID whose first version is file.
func NewDocument(id, ownerID string, meta Metadata, file StoredFile, at time.Time) *Document {
	category := meta.Category
	if category == "" {
		category = DefaultCategory
	}
	tags := meta.Tags
	if tags == nil {
		tags = []string{}
	}

	d := &Document{
		ID:          id,
		Title:       meta.Title,
		Description: meta.Description,
		Tags:        tags,
		Category:    category,
		OwnerID:     ownerID,
		IsPublic:    meta.IsPublic,
		Permissions: Permissions{},
		Versions:    make([]Version, 0, 1),
		CreatedAt:   at,
	}
	d.AppendVersion(file, ownerID, at)
	return d
}

// IsOwnedBy reports whether userID owns the document.
func (d *Document) IsOwnedBy(userID string) bool {
	return userID != "" && d.OwnerID == userID
}

// SetPermission upserts the explicit access level of userID. AccessNone removes the entry.
func (d *Document) SetPermission(userID string, level AccessLevel) {
	if d.Permissions == nil {
		d.Permissions = Permissions{}
	}
	d.Permissions.Set(userID, level)
}

// StoredPaths lists every physical path the document references, history first and the
// current path last, without duplicates.
func (d *Document) StoredPaths() []string {
	seen := make(map[string]struct{}, len(d.Versions)+1)
	paths := make([]string, 0, len(d.Versions)+1)
	add := func(p string) {
		if p == "" {
			return
		}
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		paths = append(paths, p)
	}
	for _, v := range d.Versions {
		add(v.FilePath)
	}
	add(d.FilePath)
	return paths
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := *d
	out.Tags = append([]string(nil), d.Tags...)
	if out.Tags == nil {
		out.Tags = []string{}
	}
	out.Permissions = d.Permissions.Clone()
	out.Versions = append([]Version(nil), d.Versions...)
	return &out
}
