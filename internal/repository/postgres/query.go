package postgres

import (
	"fmt"
	"strings"

	"github.com/lib/pq"

	"docvault/internal/listing"
)

const documentColumns = `d.id, d.title, d.description, d.tags, d.category, d.owner_id, d.is_public,
		d.file_name, d.file_path, d.file_size, d.mime_type, d.current_version, d.created_at, d.updated_at`

type condition struct {
	clause string
	args   []any
}

// documentQuery renders a listing.Query as SQL with automatic parameter numbering.
type documentQuery struct {
	conditions []condition
}

func newDocumentQuery(q listing.Query) *documentQuery {
	b := &documentQuery{}
	b.where(`(d.owner_id = $%d OR d.is_public OR EXISTS (
		SELECT 1 FROM document_permissions p WHERE p.document_id = d.id AND p.user_id = $%d))`,
		q.RequesterID, q.RequesterID)

	if q.Search != "" {
		pattern := "%" + escapeLike(q.Search) + "%"
		b.where("(d.title ILIKE $%d OR d.description ILIKE $%d)", pattern, pattern)
	}
	if len(q.Tags) > 0 {
		b.where("d.tags && $%d", pq.Array(q.Tags))
	}
	if q.Category != "" {
		b.where("d.category = $%d", q.Category)
	}
	return b
}

func (b *documentQuery) where(clause string, args ...any) {
	b.conditions = append(b.conditions, condition{clause: clause, args: args})
}

// buildCount returns a COUNT(*) query with the current conditions.
func (b *documentQuery) buildCount() (string, []any) {
	where, args, _ := b.buildWhere(1)
	return "SELECT COUNT(*) FROM documents d" + where, args
}

// buildPage returns the page SELECT ordered newest first.
func (b *documentQuery) buildPage(limit, offset int) (string, []any) {
	where, args, next := b.buildWhere(1)
	sql := fmt.Sprintf(
		"SELECT %s FROM documents d%s ORDER BY d.created_at DESC, d.id DESC LIMIT $%d OFFSET $%d",
		documentColumns, where, next, next+1,
	)
	return sql, append(args, limit, offset)
}

func (b *documentQuery) buildWhere(startParam int) (string, []any, int) {
	if len(b.conditions) == 0 {
		return "", nil, startParam
	}

	clauses := make([]string, 0, len(b.conditions))
	args := make([]any, 0)
	paramIdx := startParam

	for _, cond := range b.conditions {
		clause := cond.clause
		for _, arg := range cond.args {
			clause = strings.Replace(clause, "$%d", fmt.Sprintf("$%d", paramIdx), 1)
			args = append(args, arg)
			paramIdx++
		}
		clauses = append(clauses, clause)
	}

	return " WHERE " + strings.Join(clauses, " AND "), args, paramIdx
}

// escapeLike makes LIKE wildcards in s match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
