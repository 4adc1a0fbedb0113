package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"docvault/internal/access"
	"docvault/internal/listing"
	"docvault/internal/metrics"
	"docvault/internal/model"
	"docvault/internal/repository"
	"docvault/internal/storage"
)

var tracer = otel.Tracer("docvault/internal/service")

// DocumentListResult is the service-level DTO for a page of documents.
type DocumentListResult struct {
	Documents  []*model.Document  `json:"documents"`
	Pagination listing.Pagination `json:"pagination"`
}

// FileInput is an uploaded file as received from the client.
type FileInput struct {
	Reader      io.Reader
	Name        string
	ContentType string
	Size        int64
}

// UploadInput creates a document. Empty Title falls back to the file name.
type UploadInput struct {
	File        *FileInput
	Title       string
	Description string
	Category    string
	Tags        []string
	IsPublic    bool
}

// UpdateInput changes a document. Nil fields are left untouched; a non-nil File appends a
// new version.
type UpdateInput struct {
	Title       *string
	Description *string
	Category    *string
	Tags        []string
	SetTags     bool
	IsPublic    *bool
	File        *FileInput
}

// Download is the current file of a document, ready to stream.
type Download struct {
	Body        io.ReadCloser
	FileName    string
	ContentType string
	Size        int64
}

// IdentityLookup resolves identities by ID.
type IdentityLookup interface {
	FindUser(ctx context.Context, id string) (*model.User, error)
}

// DocumentService defines the use cases for handling documents. Every operation acts on
// behalf of requesterID and enforces access control before touching storage.
type DocumentService interface {
	// Upload stages the file, then saves metadata; the staged file is removed if the save fails.
	Upload(ctx context.Context, requesterID string, in UploadInput) (*model.Document, error)

	// List returns the page of documents visible to the requester that match p.
	List(ctx context.Context, requesterID string, p listing.Params) (*DocumentListResult, error)

	// Get returns a single document the requester can read.
	Get(ctx context.Context, requesterID, id string) (*model.Document, error)

	// Download opens the current file of a document the requester can read.
	Download(ctx context.Context, requesterID, id string) (*Download, error)

	// Update edits metadata and optionally appends a version. Owner only.
	Update(ctx context.Context, requesterID, id string, in UpdateInput) (*model.Document, error)

	// SetPermission grants, changes or (with AccessNone) revokes access for userID. Owner only.
	SetPermission(ctx context.Context, requesterID, id, userID string, level model.AccessLevel) (*model.Document, error)

	// Delete removes a document and releases every file it references. Owner only.
	Delete(ctx context.Context, requesterID, id string) error
}

// documentService is a concrete implementation of DocumentService.
type documentService struct {
	store      storage.Storage
	repo       repository.DocumentRepository
	identities IdentityLookup
	logger     *zap.SugaredLogger
	metrics    *metrics.Metrics
	listing    listing.Config
	maxUpload  int64
	now        func() time.Time
}

// Option configures a DocumentService.
type Option func(*documentService)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(s *documentService) { s.logger = l.Named("documents") }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *documentService) { s.metrics = m }
}

// WithMaxUploadSize rejects files larger than n bytes. Zero disables the check.
func WithMaxUploadSize(n int64) Option {
	return func(s *documentService) { s.maxUpload = n }
}

func WithListingConfig(c listing.Config) Option {
	return func(s *documentService) { s.listing = c }
}

// WithIdentities makes SetPermission reject grants to unknown identities.
func WithIdentities(l IdentityLookup) Option {
	return func(s *documentService) { s.identities = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *documentService) { s.now = now }
}

// NewDocumentService constructs a new DocumentService.
func NewDocumentService(store storage.Storage, repo repository.DocumentRepository, opts ...Option) DocumentService {
	s := &documentService{
		store:   store,
		repo:    repo,
		logger:  zap.NewNop().Sugar(),
		listing: listing.DefaultConfig(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *documentService) Upload(ctx context.Context, requesterID string, in UploadInput) (_ *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Upload")
	defer endSpan(span, &err)

	if err := s.checkFile(in.File); err != nil {
		return nil, err
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = in.File.Name
	}
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrValidation)
	}

	id := uuid.New().String()
	staged, err := s.stage(ctx, id, in.File)
	if err != nil {
		return nil, err
	}

	doc := model.NewDocument(id, requesterID, model.Metadata{
		Title:       title,
		Description: in.Description,
		Tags:        in.Tags,
		Category:    strings.TrimSpace(in.Category),
		IsPublic:    in.IsPublic,
	}, staged, s.now().UTC())

	stored, err := s.repo.Create(ctx, doc)
	if err != nil {
		s.release(ctx, "upload", staged.Path)
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	span.SetAttributes(attribute.String("document.id", stored.ID))
	s.metrics.DocumentUploaded()
	s.logger.Infow("document uploaded", "document_id", stored.ID, "owner_id", requesterID, "size", staged.Size)
	return stored, nil
}

func (s *documentService) List(ctx context.Context, requesterID string, p listing.Params) (_ *DocumentListResult, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.List")
	defer endSpan(span, &err)

	q := listing.Build(requesterID, p, s.listing)
	res, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	docs := res.Items
	if docs == nil {
		docs = []*model.Document{}
	}
	return &DocumentListResult{
		Documents:  docs,
		Pagination: listing.NewPagination(res.Total, q),
	}, nil
}

func (s *documentService) Get(ctx context.Context, requesterID, id string) (_ *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Get", trace.WithAttributes(attribute.String("document.id", id)))
	defer endSpan(span, &err)

	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(doc, requesterID, "read"); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *documentService) Download(ctx context.Context, requesterID, id string) (_ *Download, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Download", trace.WithAttributes(attribute.String("document.id", id)))
	defer endSpan(span, &err)

	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRead(doc, requesterID, "download"); err != nil {
		return nil, err
	}

	body, info, err := s.store.Get(ctx, doc.FilePath)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) || errors.Is(err, storage.ErrInvalidKey) {
			return nil, ErrFileNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStorage, err)
	}

	contentType := doc.MimeType
	if contentType == "" {
		contentType = info.ContentType
	}
	return &Download{
		Body:        body,
		FileName:    attachmentName(doc),
		ContentType: contentType,
		Size:        info.Size,
	}, nil
}

func (s *documentService) Update(ctx context.Context, requesterID, id string, in UpdateInput) (_ *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Update", trace.WithAttributes(attribute.String("document.id", id)))
	defer endSpan(span, &err)

	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeManage(doc, requesterID, "update"); err != nil {
		return nil, err
	}

	if in.Title != nil && strings.TrimSpace(*in.Title) != "" {
		doc.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		doc.Description = *in.Description
	}
	if in.Category != nil && strings.TrimSpace(*in.Category) != "" {
		doc.Category = strings.TrimSpace(*in.Category)
	}
	if in.SetTags {
		doc.Tags = append([]string{}, in.Tags...)
	}
	if in.IsPublic != nil {
		doc.IsPublic = *in.IsPublic
	}

	now := s.now().UTC()
	if in.File == nil {
		doc.UpdatedAt = now
		if err := s.repo.Update(ctx, doc, nil); err != nil {
			return nil, mapRepoError(err)
		}
		return doc, nil
	}

	if err := s.checkFile(in.File); err != nil {
		return nil, err
	}

	previous := doc.FilePath
	staged, err := s.stage(ctx, doc.ID, in.File)
	if err != nil {
		return nil, err
	}

	v := doc.AppendVersion(staged, requesterID, now)
	if err := s.repo.Update(ctx, doc, &v); err != nil {
		s.release(ctx, "update", staged.Path)
		return nil, mapRepoError(err)
	}

	if previous != "" && previous != staged.Path {
		s.release(ctx, "update", previous)
	}

	s.metrics.VersionAppended()
	s.logger.Infow("document version appended", "document_id", doc.ID, "version", v.Number)
	return doc, nil
}

func (s *documentService) SetPermission(ctx context.Context, requesterID, id, userID string, level model.AccessLevel) (_ *model.Document, err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.SetPermission", trace.WithAttributes(attribute.String("document.id", id)))
	defer endSpan(span, &err)

	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("%w: userId is required", ErrValidation)
	}

	doc, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeManage(doc, requesterID, "set_permission"); err != nil {
		return nil, err
	}

	if level != model.AccessNone && s.identities != nil {
		if _, err := s.identities.FindUser(ctx, userID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.SetPermission(ctx, doc.ID, userID, level); err != nil {
		return nil, mapRepoError(err)
	}

	doc.SetPermission(userID, level)
	doc.UpdatedAt = s.now().UTC()
	s.logger.Infow("document permission set", "document_id", doc.ID, "user_id", userID, "access_type", level.String())
	return doc, nil
}

func (s *documentService) Delete(ctx context.Context, requesterID, id string) (err error) {
	ctx, span := tracer.Start(ctx, "DocumentService.Delete", trace.WithAttributes(attribute.String("document.id", id)))
	defer endSpan(span, &err)

	doc, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizeManage(doc, requesterID, "delete"); err != nil {
		return err
	}

	// Metadata goes first: a failed delete leaves the document and all its files intact.
	if err := s.repo.Delete(ctx, doc.ID); err != nil {
		return err
	}

	for _, p := range doc.StoredPaths() {
		s.release(ctx, "delete", p)
	}

	s.metrics.DocumentDeleted()
	s.logger.Infow("document deleted", "document_id", doc.ID, "files", len(doc.StoredPaths()))
	return nil
}

func (s *documentService) load(ctx context.Context, id string) (*model.Document, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return doc, nil
}

func (s *documentService) authorizeRead(doc *model.Document, requesterID, op string) error {
	if !access.Evaluate(doc, requesterID).CanRead() {
		s.metrics.AccessDenied(op)
		return ErrForbidden
	}
	return nil
}

func (s *documentService) authorizeManage(doc *model.Document, requesterID, op string) error {
	if !access.Evaluate(doc, requesterID).CanManage() {
		s.metrics.AccessDenied(op)
		return ErrForbidden
	}
	return nil
}

func (s *documentService) checkFile(f *FileInput) error {
	if f == nil || f.Reader == nil {
		return ErrFileRequired
	}
	if s.maxUpload > 0 && f.Size > s.maxUpload {
		return fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, f.Size, s.maxUpload)
	}
	return nil
}

// stage writes f under a fresh key owned by the document.
func (s *documentService) stage(ctx context.Context, documentID string, f *FileInput) (model.StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(f.Name))
	storedName := uuid.New().String() + ext
	key := path.Join("documents", documentID, storedName)

	info, err := s.store.Put(ctx, key, f.Reader, storage.PutObjectOptions{
		Size:        f.Size,
		ContentType: f.ContentType,
		Metadata: map[string]string{
			"original-filename": f.Name,
		},
	})
	if err != nil {
		return model.StoredFile{}, fmt.Errorf("%w: upload to storage: %v", ErrStorage, err)
	}

	size := info.Size
	if size <= 0 {
		size = f.Size
	}
	return model.StoredFile{
		Name:     storedName,
		Path:     key,
		Size:     size,
		MimeType: f.ContentType,
	}, nil
}

// release removes a stored file. Failures are logged and counted, never returned.
func (s *documentService) release(ctx context.Context, op, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.metrics.FileReleaseFailed(op)
		s.logger.Warnw("failed to release stored file", "operation", op, "key", key, "error", err)
	}
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrVersionConflict):
		return ErrVersionConflict
	default:
		return err
	}
}

// attachmentName is the document title, with the stored file's extension appended when the
// title has none.
func attachmentName(doc *model.Document) string {
	name := doc.Title
	if name == "" {
		name = doc.FileName
	}
	if filepath.Ext(name) == "" {
		name += filepath.Ext(doc.FileName)
	}
	return name
}

func endSpan(span trace.Span, err *error) {
	if *err != nil {
		span.RecordError(*err)
		span.SetStatus(codes.Error, (*err).Error())
	}
	span.End()
}
