package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"docvault/internal/listing"
	"docvault/internal/metrics"
	"docvault/internal/model"
	"docvault/internal/repository"
	repoMocks "docvault/internal/repository/mocks"
	"docvault/internal/storage"
	storeMocks "docvault/internal/storage/mocks"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// twoVersionDoc is owned by "owner" and shares view access with "viewer".
func twoVersionDoc() *model.Document {
	doc := model.NewDocument("doc-1", "owner", model.Metadata{Title: "report"}, model.StoredFile{
		Name:     "v1.pdf",
		Path:     "documents/doc-1/v1.pdf",
		Size:     10,
		MimeType: "application/pdf",
	}, fixedNow.Add(-time.Hour))
	doc.AppendVersion(model.StoredFile{
		Name:     "v2.pdf",
		Path:     "documents/doc-1/v2.pdf",
		Size:     20,
		MimeType: "application/pdf",
	}, "owner", fixedNow.Add(-time.Minute))
	doc.SetPermission("viewer", model.AccessView)
	return doc
}

func newTestService(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository, opts ...Option) DocumentService {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewDocumentService(mStore, mRepo, opts...)
}

func pdfFile(body string) *FileInput {
	return &FileInput{
		Reader:      strings.NewReader(body),
		Name:        "report.pdf",
		ContentType: "application/pdf",
		Size:        int64(len(body)),
	}
}

func TestDocumentService_Upload(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		in         func() UploadInput
		opts       []Option
		setupMocks func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository)
		wantErr    error
		wantErrMsg string
	}{
		{
			name: "happy path",
			in: func() UploadInput {
				return UploadInput{File: pdfFile("hello"), Tags: []string{"q1"}}
			},
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
					return strings.HasPrefix(key, "documents/") && strings.HasSuffix(key, ".pdf")
				}), mock.Anything, storage.PutObjectOptions{
					Size:        5,
					ContentType: "application/pdf",
					Metadata:    map[string]string{"original-filename": "report.pdf"},
				}).Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
					return storage.ObjectInfo{Key: key, Size: 5}
				}, nil)

				mRepo.On("Create", mock.Anything, mock.MatchedBy(func(doc *model.Document) bool {
					return doc.Title == "report.pdf" &&
						doc.OwnerID == "owner" &&
						doc.Category == model.DefaultCategory &&
						doc.CurrentVersion == 1 &&
						len(doc.Versions) == 1 &&
						strings.HasPrefix(doc.FilePath, "documents/"+doc.ID+"/") &&
						doc.FileSize == 5
				})).Return(&model.Document{ID: "gen-id"}, nil)
			},
		},
		{
			name:       "missing file",
			in:         func() UploadInput { return UploadInput{Title: "x"} },
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrFileRequired,
		},
		{
			name:       "file too large",
			in:         func() UploadInput { return UploadInput{File: pdfFile("hello")} },
			opts:       []Option{WithMaxUploadSize(4)},
			setupMocks: func(*storeMocks.MockStorage, *repoMocks.MockDocumentRepository) {},
			wantErr:    ErrFileTooLarge,
		},
		{
			name: "storage error",
			in:   func() UploadInput { return UploadInput{File: pdfFile("hello")} },
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("storage fail"))
			},
			wantErr:    ErrStorage,
			wantErrMsg: "upload to storage: storage fail",
		},
		{
			name: "repository error releases staged file",
			in:   func() UploadInput { return UploadInput{File: pdfFile("hello")} },
			setupMocks: func(mStore *storeMocks.MockStorage, mRepo *repoMocks.MockDocumentRepository) {
				var staged string
				mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
						staged = key
						return storage.ObjectInfo{Key: key}
					}, nil)
				mRepo.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("db fail"))
				mStore.On("Delete", mock.Anything, mock.MatchedBy(func(key string) bool {
					return key == staged
				})).Return(nil)
			},
			wantErrMsg: "db save failed: db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mStore := new(storeMocks.MockStorage)
			mRepo := new(repoMocks.MockDocumentRepository)
			svc := newTestService(mStore, mRepo, tt.opts...)
			tt.setupMocks(mStore, mRepo)

			doc, err := svc.Upload(ctx, "owner", tt.in())

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.wantErrMsg != "" {
					assert.Contains(t, err.Error(), tt.wantErrMsg)
				}
			case tt.wantErrMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrMsg)
			default:
				assert.NoError(t, err)
				assert.NotNil(t, doc)
			}

			mStore.AssertExpectations(t)
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_List(t *testing.T) {
	ctx := context.Background()
	mStore := new(storeMocks.MockStorage)
	mRepo := new(repoMocks.MockDocumentRepository)
	svc := newTestService(mStore, mRepo, WithListingConfig(listing.Config{DefaultLimit: 10, MaxLimit: 20}))

	want := listing.Query{
		RequesterID: "u1",
		Search:      "report",
		Tags:        []string{"a", "b"},
		Page:        2,
		Limit:       20,
	}
	mRepo.On("List", mock.Anything, want).Return(&repository.PageResult[*model.Document]{
		Items: []*model.Document{twoVersionDoc()},
		Total: 41,
	}, nil)

	res, err := svc.List(ctx, "u1", listing.Params{Search: " report ", Tags: "a, b", Page: 2, Limit: 500})
	require.NoError(t, err)
	assert.Len(t, res.Documents, 1)
	assert.Equal(t, listing.Pagination{Total: 41, Page: 2, Limit: 20, Pages: 3}, res.Pagination)
	mRepo.AssertExpectations(t)
}

func TestDocumentService_List_EmptyAndError(t *testing.T) {
	ctx := context.Background()

	mRepo := new(repoMocks.MockDocumentRepository)
	mRepo.On("List", mock.Anything, mock.Anything).Return(&repository.PageResult[*model.Document]{}, nil).Once()
	mRepo.On("List", mock.Anything, mock.Anything).Return(nil, errors.New("db fail")).Once()
	svc := newTestService(new(storeMocks.MockStorage), mRepo)

	res, err := svc.List(ctx, "u1", listing.Params{})
	require.NoError(t, err)
	assert.NotNil(t, res.Documents)
	assert.Empty(t, res.Documents)
	assert.Equal(t, 0, res.Pagination.Pages)

	_, err = svc.List(ctx, "u1", listing.Params{})
	assert.EqualError(t, err, "db fail")
}

func TestDocumentService_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		id        string
		requester string
		setup     func(mRepo *repoMocks.MockDocumentRepository)
		wantErr   error
		wantMsg   string
	}{
		{name: "empty id", id: "", requester: "owner", setup: func(*repoMocks.MockDocumentRepository) {}, wantErr: ErrIDRequired},
		{
			name: "not found", id: "missing", requester: "owner",
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, "missing").Return(nil, repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
		{
			name: "owner", id: "doc-1", requester: "owner",
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
			},
		},
		{
			name: "explicit viewer", id: "doc-1", requester: "viewer",
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
			},
		},
		{
			name: "stranger", id: "doc-1", requester: "stranger",
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
			},
			wantErr: ErrForbidden,
		},
		{
			name: "db error passes through", id: "doc-1", requester: "owner",
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, "doc-1").Return(nil, errors.New("db fail"))
			},
			wantMsg: "db fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			tt.setup(mRepo)
			svc := newTestService(new(storeMocks.MockStorage), mRepo)

			doc, err := svc.Get(ctx, tt.requester, tt.id)
			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				assert.EqualError(t, err, tt.wantMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, "doc-1", doc.ID)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Download(t *testing.T) {
	ctx := context.Background()

	t.Run("streams the current version", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
		mStore.On("Get", mock.Anything, "documents/doc-1/v2.pdf").
			Return(io.NopCloser(strings.NewReader("v2 body")), storage.ObjectInfo{Size: 7}, nil)

		dl, err := newTestService(mStore, mRepo).Download(ctx, "viewer", "doc-1")
		require.NoError(t, err)
		defer dl.Body.Close()

		body, _ := io.ReadAll(dl.Body)
		assert.Equal(t, "v2 body", string(body))
		assert.Equal(t, "report.pdf", dl.FileName)
		assert.Equal(t, "application/pdf", dl.ContentType)
		assert.Equal(t, int64(7), dl.Size)
	})

	t.Run("missing file", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
		mStore.On("Get", mock.Anything, mock.Anything).Return(nil, storage.ObjectInfo{}, storage.ErrNotFound)

		_, err := newTestService(mStore, mRepo).Download(ctx, "owner", "doc-1")
		assert.ErrorIs(t, err, ErrFileNotFound)
	})

	t.Run("stranger never touches storage", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)

		_, err := newTestService(mStore, mRepo).Download(ctx, "stranger", "doc-1")
		assert.ErrorIs(t, err, ErrForbidden)
		mStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	})
}

func TestAttachmentName(t *testing.T) {
	tests := []struct {
		title, file, want string
	}{
		{title: "report", file: "abc.pdf", want: "report.pdf"},
		{title: "report.docx", file: "abc.pdf", want: "report.docx"},
		{title: "", file: "abc.pdf", want: "abc.pdf"},
		{title: "notes", file: "abc", want: "notes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, attachmentName(&model.Document{Title: tt.title, FileName: tt.file}))
	}
}

func TestDocumentService_Update(t *testing.T) {
	ctx := context.Background()
	title := "renamed"
	blank := "  "
	public := true

	t.Run("metadata only", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
		mRepo.On("Update", mock.Anything, mock.MatchedBy(func(d *model.Document) bool {
			return d.Title == "renamed" && d.IsPublic && d.CurrentVersion == 2 && d.Category == model.DefaultCategory
		}), (*model.Version)(nil)).Return(nil)

		doc, err := newTestService(mStore, mRepo).Update(ctx, "owner", "doc-1", UpdateInput{
			Title:    &title,
			Category: &blank,
			IsPublic: &public,
			Tags:     []string{"x"},
			SetTags:  true,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, doc.Tags)
		assert.Equal(t, fixedNow, doc.UpdatedAt)
		assert.Len(t, doc.Versions, 2)
		mRepo.AssertExpectations(t)
		mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("new file appends a version and releases the previous file", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
		mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
				return storage.ObjectInfo{Key: key, Size: opt.Size}
			}, nil)
		mRepo.On("Update", mock.Anything, mock.Anything, mock.MatchedBy(func(v *model.Version) bool {
			return v != nil && v.Number == 3 && v.UploadedBy == "owner"
		})).Return(nil)
		mStore.On("Delete", mock.Anything, "documents/doc-1/v2.pdf").Return(nil)

		reg := prometheus.NewRegistry()
		m, err := metrics.New(reg)
		require.NoError(t, err)

		doc, err := newTestService(mStore, mRepo, WithMetrics(m)).Update(ctx, "owner", "doc-1", UpdateInput{File: pdfFile("third")})
		require.NoError(t, err)
		assert.Equal(t, 3, doc.CurrentVersion)
		assert.Len(t, doc.Versions, 3)
		assert.Equal(t, "documents/doc-1/v2.pdf", doc.Versions[1].FilePath, "history keeps earlier entries")
		assert.Equal(t, int64(5), doc.FileSize)

		expected := `
# HELP docvault_document_versions_appended_total Total number of versions appended to existing documents.
# TYPE docvault_document_versions_appended_total counter
docvault_document_versions_appended_total 1
`
		assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "docvault_document_versions_appended_total"))
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("lost race releases the staged file", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
		var staged string
		mStore.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(func(ctx context.Context, key string, r io.Reader, opt storage.PutObjectOptions) storage.ObjectInfo {
				staged = key
				return storage.ObjectInfo{Key: key}
			}, nil)
		mRepo.On("Update", mock.Anything, mock.Anything, mock.Anything).Return(repository.ErrVersionConflict)
		mStore.On("Delete", mock.Anything, mock.MatchedBy(func(key string) bool { return key == staged })).Return(nil)

		_, err := newTestService(mStore, mRepo).Update(ctx, "owner", "doc-1", UpdateInput{File: pdfFile("third")})
		assert.ErrorIs(t, err, ErrVersionConflict)
		mStore.AssertExpectations(t)
		mStore.AssertNotCalled(t, "Delete", mock.Anything, "documents/doc-1/v2.pdf")
	})

	t.Run("viewer is forbidden", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)

		reg := prometheus.NewRegistry()
		m, err := metrics.New(reg)
		require.NoError(t, err)

		_, err = newTestService(new(storeMocks.MockStorage), mRepo, WithMetrics(m)).
			Update(ctx, "viewer", "doc-1", UpdateInput{Title: &title})
		assert.ErrorIs(t, err, ErrForbidden)
		mRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)

		count, err := testutil.GatherAndCount(reg, "docvault_access_denied_total")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})
}

type fakeIdentities map[string]*model.User

func (f fakeIdentities) FindUser(_ context.Context, id string) (*model.User, error) {
	if u, ok := f[id]; ok {
		return u, nil
	}
	return nil, ErrUserNotFound
}

func TestDocumentService_SetPermission(t *testing.T) {
	ctx := context.Background()
	identities := fakeIdentities{"bob": {ID: "bob"}}

	tests := []struct {
		name      string
		requester string
		userID    string
		level     model.AccessLevel
		setup     func(mRepo *repoMocks.MockDocumentRepository)
		wantErr   error
		want      model.AccessLevel
	}{
		{
			name: "grant edit", requester: "owner", userID: "bob", level: model.AccessEdit,
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
				mRepo.On("SetPermission", mock.Anything, "doc-1", "bob", model.AccessEdit).Return(nil)
			},
			want: model.AccessEdit,
		},
		{
			name: "revoke skips identity lookup", requester: "owner", userID: "viewer", level: model.AccessNone,
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
				mRepo.On("SetPermission", mock.Anything, "doc-1", "viewer", model.AccessNone).Return(nil)
			},
			want: model.AccessNone,
		},
		{
			name: "unknown identity", requester: "owner", userID: "ghost", level: model.AccessView,
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
			},
			wantErr: ErrUserNotFound,
		},
		{
			name: "missing user id", requester: "owner", userID: " ", level: model.AccessView,
			setup:   func(*repoMocks.MockDocumentRepository) {},
			wantErr: ErrValidation,
		},
		{
			name: "grantee cannot delegate", requester: "viewer", userID: "bob", level: model.AccessView,
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
			},
			wantErr: ErrForbidden,
		},
		{
			name: "document vanished", requester: "owner", userID: "bob", level: model.AccessView,
			setup: func(mRepo *repoMocks.MockDocumentRepository) {
				mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
				mRepo.On("SetPermission", mock.Anything, "doc-1", "bob", model.AccessView).Return(repository.ErrNotFound)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mRepo := new(repoMocks.MockDocumentRepository)
			tt.setup(mRepo)
			svc := newTestService(new(storeMocks.MockStorage), mRepo, WithIdentities(identities))

			doc, err := svc.SetPermission(ctx, tt.requester, "doc-1", tt.userID, tt.level)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				mRepo.AssertNotCalled(t, "SetPermission", mock.Anything, mock.Anything, tt.userID, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Permissions.Lookup(tt.userID))
			if tt.level == model.AccessNone {
				_, ok := doc.Permissions[tt.userID]
				assert.False(t, ok)
			}
			mRepo.AssertExpectations(t)
		})
	}
}

func TestDocumentService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("releases every stored file", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
		mRepo.On("Delete", mock.Anything, "doc-1").Return(nil)
		mStore.On("Delete", mock.Anything, "documents/doc-1/v1.pdf").Return(nil)
		mStore.On("Delete", mock.Anything, "documents/doc-1/v2.pdf").Return(nil)

		err := newTestService(mStore, mRepo).Delete(ctx, "owner", "doc-1")
		require.NoError(t, err)
		mStore.AssertExpectations(t)
		mRepo.AssertExpectations(t)
	})

	t.Run("release failure is logged not returned", func(t *testing.T) {
		core, logs := observer.New(zap.WarnLevel)
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
		mRepo.On("Delete", mock.Anything, "doc-1").Return(nil)
		mStore.On("Delete", mock.Anything, "documents/doc-1/v1.pdf").Return(errors.New("disk gone"))
		mStore.On("Delete", mock.Anything, "documents/doc-1/v2.pdf").Return(nil)

		err := newTestService(mStore, mRepo, WithLogger(zap.New(core).Sugar())).Delete(ctx, "owner", "doc-1")
		require.NoError(t, err)

		entries := logs.FilterMessage("failed to release stored file").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "documents/doc-1/v1.pdf", entries[0].ContextMap()["key"])
	})

	t.Run("metadata failure keeps files", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)
		mRepo.On("Delete", mock.Anything, "doc-1").Return(errors.New("db fail"))

		err := newTestService(mStore, mRepo).Delete(ctx, "owner", "doc-1")
		assert.EqualError(t, err, "db fail")
		mStore.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("viewer is forbidden", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", mock.Anything, "doc-1").Return(twoVersionDoc(), nil)

		err := newTestService(new(storeMocks.MockStorage), mRepo).Delete(ctx, "viewer", "doc-1")
		assert.ErrorIs(t, err, ErrForbidden)
		mRepo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})

	t.Run("not found", func(t *testing.T) {
		mRepo := new(repoMocks.MockDocumentRepository)
		mRepo.On("FindByID", mock.Anything, "doc-1").Return(nil, repository.ErrNotFound)

		err := newTestService(new(storeMocks.MockStorage), mRepo).Delete(ctx, "owner", "doc-1")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
