package model

import "time"

// Version is one immutable snapshot of a document's physical file.
type Version struct {
	Number     int       `json:"version_number"`
	FileName   string    `json:"file_name"`
	FilePath   string    `json:"file_path"`
	FileSize   int64     `json:"file_size"`
	MimeType   string    `json:"mime_type"`
	UploadedAt time.Time `json:"uploaded_at"`
	UploadedBy string    `json:"uploaded_by"`
}

// StoredFile describes a file already written to storage.
type StoredFile struct {
	Name     string
	Path     string
	Size     int64
	MimeType string
}

// AppendVersion records file as the next version and makes it current.
//
// It only updates the metadata record: releasing the physical file of the previous
// current version is left to the caller.
func (d *Document) AppendVersion(file StoredFile, uploader string, at time.Time) Version {
	v := Version{
		Number:     d.CurrentVersion + 1,
		FileName:   file.Name,
		FilePath:   file.Path,
		FileSize:   file.Size,
		MimeType:   file.MimeType,
		UploadedAt: at,
		UploadedBy: uploader,
	}
	d.Versions = append(d.Versions, v)
	d.CurrentVersion = v.Number
	d.FileName = v.FileName
	d.FilePath = v.FilePath
	d.FileSize = v.FileSize
	d.MimeType = v.MimeType
	d.UpdatedAt = at
	return v
}

// Current returns the version the document currently mirrors.
func (d *Document) Current() (Version, bool) {
	for i := len(d.Versions) - 1; i >= 0; i-- {
		if d.Versions[i].Number == d.CurrentVersion {
			return d.Versions[i], true
		}
	}
	return Version{}, false
}
