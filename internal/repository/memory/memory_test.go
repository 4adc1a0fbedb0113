package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/listing"
	"docvault/internal/model"
	"docvault/internal/repository"
)

func newDB(t *testing.T) *DB {
	t.Helper()
	db, err := New()
	require.NoError(t, err)
	return db
}

func newDoc(id, owner string, meta model.Metadata, at time.Time) *model.Document {
	return model.NewDocument(id, owner, meta, model.StoredFile{
		Name: id + ".pdf", Path: "documents/" + id + "/v1.pdf", Size: 10, MimeType: "application/pdf",
	}, at)
}

func TestDocumentRepository_CreateFind(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(newDB(t))
	now := time.Now()

	doc := newDoc("doc-1", "owner", model.Metadata{Title: "Report", Tags: []string{"a"}}, now)
	_, err := repo.Create(ctx, doc)
	require.NoError(t, err)

	_, err = repo.Create(ctx, doc)
	assert.ErrorIs(t, err, repository.ErrDuplicate)

	doc.Title = "mutated after create"
	doc.Tags[0] = "mutated"

	got, err := repo.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Report", got.Title)
	assert.Equal(t, []string{"a"}, got.Tags)

	got.Versions[0].FileName = "mutated"
	again, err := repo.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "doc-1.pdf", again.Versions[0].FileName)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestDocumentRepository_UpdateVersion(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(newDB(t))
	now := time.Now()

	_, err := repo.Create(ctx, newDoc("doc-1", "owner", model.Metadata{Title: "Report"}, now))
	require.NoError(t, err)

	first, err := repo.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, "doc-1")
	require.NoError(t, err)

	v2 := first.AppendVersion(model.StoredFile{Name: "a.pdf", Path: "p/a"}, "owner", now)
	require.NoError(t, repo.Update(ctx, first, &v2))

	// second was loaded before the append and tries to claim the same number.
	stale := second.AppendVersion(model.StoredFile{Name: "b.pdf", Path: "p/b"}, "owner", now)
	assert.ErrorIs(t, repo.Update(ctx, second, &stale), repository.ErrVersionConflict)

	got, err := repo.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, got.Versions, 2)
	assert.Equal(t, 2, got.CurrentVersion)
	assert.Equal(t, "a.pdf", got.FileName)
	assert.Equal(t, "p/a", got.FilePath)
}

func TestDocumentRepository_UpdateMetadataKeepsFile(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(newDB(t))
	now := time.Now()

	_, err := repo.Create(ctx, newDoc("doc-1", "owner", model.Metadata{Title: "Report"}, now))
	require.NoError(t, err)

	stale, err := repo.FindByID(ctx, "doc-1")
	require.NoError(t, err)

	fresh, err := repo.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	v2 := fresh.AppendVersion(model.StoredFile{Name: "a.pdf", Path: "p/a"}, "owner", now)
	require.NoError(t, repo.Update(ctx, fresh, &v2))

	stale.Title = "Renamed"
	stale.IsPublic = true
	require.NoError(t, repo.Update(ctx, stale, nil))

	got, err := repo.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.True(t, got.IsPublic)
	assert.Equal(t, 2, got.CurrentVersion, "metadata update must not roll back the file")
	assert.Equal(t, "p/a", got.FilePath)
}

func TestDocumentRepository_SetPermission(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(newDB(t))

	_, err := repo.Create(ctx, newDoc("doc-1", "owner", model.Metadata{Title: "Report"}, time.Now()))
	require.NoError(t, err)

	require.NoError(t, repo.SetPermission(ctx, "doc-1", "u2", model.AccessView))
	require.NoError(t, repo.SetPermission(ctx, "doc-1", "u2", model.AccessEdit))

	got, err := repo.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Len(t, got.Permissions, 1)
	assert.Equal(t, model.AccessEdit, got.Permissions.Lookup("u2"))

	require.NoError(t, repo.SetPermission(ctx, "doc-1", "u2", model.AccessNone))
	got, err = repo.FindByID(ctx, "doc-1")
	require.NoError(t, err)
	assert.Empty(t, got.Permissions)

	assert.ErrorIs(t, repo.SetPermission(ctx, "missing", "u2", model.AccessView), repository.ErrNotFound)
}

func TestDocumentRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(newDB(t))

	_, err := repo.Create(ctx, newDoc("doc-1", "owner", model.Metadata{Title: "Report"}, time.Now()))
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, "doc-1"))
	_, err = repo.FindByID(ctx, "doc-1")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.NoError(t, repo.Delete(ctx, "doc-1"))
}

func TestDocumentRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(newDB(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mine := newDoc("mine", "me", model.Metadata{Title: "Quarterly Report", Tags: []string{"finance"}, Category: "Work"}, base)
	public := newDoc("public", "other", model.Metadata{Title: "Handbook", Description: "company REPORT", IsPublic: true}, base.Add(time.Hour))
	shared := newDoc("shared", "other", model.Metadata{Title: "Budget", Tags: []string{"finance", "q3"}}, base.Add(2*time.Hour))
	shared.SetPermission("me", model.AccessView)
	hidden := newDoc("hidden", "other", model.Metadata{Title: "Secret report"}, base.Add(3*time.Hour))

	for _, d := range []*model.Document{mine, public, shared, hidden} {
		_, err := repo.Create(ctx, d)
		require.NoError(t, err)
	}

	ids := func(res *repository.PageResult[*model.Document]) []string {
		out := make([]string, 0, len(res.Items))
		for _, d := range res.Items {
			out = append(out, d.ID)
		}
		return out
	}

	tests := []struct {
		name   string
		params listing.Params
		want   []string
	}{
		{name: "visibility", params: listing.Params{}, want: []string{"shared", "public", "mine"}},
		{name: "search title or description", params: listing.Params{Search: "report"}, want: []string{"public", "mine"}},
		{name: "tags any of", params: listing.Params{Tags: "q3, finance"}, want: []string{"shared", "mine"}},
		{name: "category", params: listing.Params{Category: "Work"}, want: []string{"mine"}},
		{name: "no match", params: listing.Params{Search: "zzz"}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := listing.Build("me", tt.params, listing.DefaultConfig())
			res, err := repo.List(ctx, q)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(res))
			assert.Equal(t, len(tt.want), res.Total)
		})
	}
}

func TestDocumentRepository_ListPagination(t *testing.T) {
	ctx := context.Background()
	repo := NewDocumentRepository(newDB(t))
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 25; i++ {
		d := newDoc(fmt.Sprintf("doc-%02d", i), "me", model.Metadata{Title: "t"}, base.Add(time.Duration(i)*time.Minute))
		_, err := repo.Create(ctx, d)
		require.NoError(t, err)
	}

	q := listing.Build("me", listing.Params{Page: 3, Limit: 10}, listing.DefaultConfig())
	res, err := repo.List(ctx, q)
	require.NoError(t, err)

	assert.Equal(t, 25, res.Total)
	require.Len(t, res.Items, 5)
	assert.Equal(t, "doc-04", res.Items[0].ID)
	assert.Equal(t, "doc-00", res.Items[4].ID)

	p := listing.NewPagination(res.Total, q)
	assert.Equal(t, 3, p.Pages)

	q = listing.Build("me", listing.Params{Page: 9, Limit: 10}, listing.DefaultConfig())
	res, err = repo.List(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, res.Items)
	assert.Equal(t, 25, res.Total)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository(newDB(t))

	u := &model.User{ID: "u-1", Username: "jane", Email: "jane@example.com", Role: model.RoleUser}
	require.NoError(t, repo.Create(ctx, u))

	dupName := &model.User{ID: "u-2", Username: "jane", Email: "other@example.com"}
	assert.ErrorIs(t, repo.Create(ctx, dupName), repository.ErrDuplicate)

	dupEmail := &model.User{ID: "u-3", Username: "other", Email: "jane@example.com"}
	assert.ErrorIs(t, repo.Create(ctx, dupEmail), repository.ErrDuplicate)

	got, err := repo.FindByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)

	got, err = repo.FindByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "jane", got.Username)

	_, err = repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	exists, err := repo.ExistsByUsernameOrEmail(ctx, "jane", "nobody@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.ExistsByUsernameOrEmail(ctx, "nobody", "nobody@example.com")
	require.NoError(t, err)
	assert.False(t, exists)
}
