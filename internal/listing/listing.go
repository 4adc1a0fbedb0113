// Package listing builds the filtered, paginated document listing query.
//
// A Query combines a visibility clause (owner, public, or explicit permission) with the
// optional search, tag and category clauses. Storage backends either render it (SQL) or
// evaluate it directly with Matches.
package listing

import (
	"sort"
	"strings"

	"docvault/internal/model"
)

// Config bounds caller-supplied pagination values.
type Config struct {
	DefaultLimit int
	MaxLimit     int
}

// DefaultConfig matches the page size the web client expects and caps result sets at 100.
func DefaultConfig() Config {
	return Config{DefaultLimit: 10, MaxLimit: 100}
}

// Params are the raw listing inputs as received from the caller.
type Params struct {
	Search   string
	Tags     string
	Category string
	Page     int
	Limit    int
}

// Query is a normalized listing request.
type Query struct {
	RequesterID string
	Search      string
	Tags        []string
	Category    string
	Page        int
	Limit       int
}

// Build normalizes p into a Query scoped to requesterID.
func Build(requesterID string, p Params, cfg Config) Query {
	if cfg.DefaultLimit < 1 {
		cfg.DefaultLimit = DefaultConfig().DefaultLimit
	}
	if cfg.MaxLimit < cfg.DefaultLimit {
		cfg.MaxLimit = cfg.DefaultLimit
	}

	q := Query{
		RequesterID: requesterID,
		Search:      strings.TrimSpace(p.Search),
		Tags:        ParseTags(p.Tags),
		Category:    p.Category,
		Page:        p.Page,
		Limit:       p.Limit,
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = cfg.DefaultLimit
	}
	if q.Limit > cfg.MaxLimit {
		q.Limit = cfg.MaxLimit
	}
	return q
}

// ParseTags splits a comma separated tag list, trimming blanks and dropping empty entries.
func ParseTags(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Skip is the number of matching documents before the requested page.
func (q Query) Skip() int {
	return (q.Page - 1) * q.Limit
}

// Visible reports whether the requester may see doc in a listing.
// Any explicit permission entry counts, whatever its level.
func (q Query) Visible(doc *model.Document) bool {
	if doc.IsOwnedBy(q.RequesterID) || doc.IsPublic {
		return true
	}
	_, ok := doc.Permissions[q.RequesterID]
	return ok
}

// Matches evaluates the whole filter against doc.
func (q Query) Matches(doc *model.Document) bool {
	if !q.Visible(doc) {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(doc.Title), needle) &&
			!strings.Contains(strings.ToLower(doc.Description), needle) {
			return false
		}
	}
	if len(q.Tags) > 0 && !anyTag(doc.Tags, q.Tags) {
		return false
	}
	if q.Category != "" && doc.Category != q.Category {
		return false
	}
	return true
}

func anyTag(have, want []string) bool {
	for _, h := range have {
		for _, w := range want {
			if h == w {
				return true
			}
		}
	}
	return false
}

// SortNewestFirst orders documents by creation time descending, breaking ties by ID
// descending so that pages are stable.
func SortNewestFirst(docs []*model.Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID > docs[j].ID
	})
}

// Pagination describes the page window returned alongside a listing.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Pages int `json:"pages"`
}

// NewPagination computes pages as ceil(total/limit).
func NewPagination(total int, q Query) Pagination {
	pages := 0
	if q.Limit > 0 {
		pages = total / q.Limit
		if total%q.Limit != 0 {
			pages++
		}
	}
	return Pagination{Total: total, Page: q.Page, Limit: q.Limit, Pages: pages}
}
