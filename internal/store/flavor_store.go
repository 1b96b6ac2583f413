// Package store reads the flavor catalog through gorm. The recommendation
// pipeline only ever reads; catalog writes happen in cmd/seed.
package store

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/proteinpick/backend/internal/model"
	"github.com/pageza/proteinpick/backend/internal/query"
)

// FlavorStore runs candidate queries against the flavor search view.
type FlavorStore struct {
	db *gorm.DB
}

// NewFlavorStore creates a new FlavorStore instance
func NewFlavorStore(db *gorm.DB) *FlavorStore {
	return &FlavorStore{db: db}
}

var knownColumns = func() map[string]bool {
	m := make(map[string]bool, len(query.Columns))
	for _, c := range query.Columns {
		m[c] = true
	}
	return m
}()

// SearchCandidates executes q and returns at most q.Limit rows in the view's
// natural order.
func (s *FlavorStore) SearchCandidates(ctx context.Context, q query.Query) ([]model.FlavorItem, error) {
	tx := s.db.WithContext(ctx).
		Model(&model.FlavorItem{}).
		Select(query.Columns).
		Limit(q.Limit)

	postgres := s.db.Dialector.Name() == "postgres"

	for _, p := range q.And {
		clause, args, err := render(p, postgres)
		if err != nil {
			return nil, err
		}
		tx = tx.Where(clause, args...)
	}

	if len(q.Or) > 0 {
		clauses := make([]string, 0, len(q.Or))
		var args []interface{}
		for _, p := range q.Or {
			clause, pArgs, err := render(p, postgres)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, clause)
			args = append(args, pArgs...)
		}
		tx = tx.Where("("+strings.Join(clauses, " OR ")+")", args...)
	}

	var items []model.FlavorItem
	if err := tx.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	return items, nil
}

// render serializes one predicate for the connected dialect. Column names come
// from a closed set; values are always bound parameters.
func render(p query.Predicate, postgres bool) (string, []interface{}, error) {
	if !knownColumns[p.Column] {
		return "", nil, fmt.Errorf("unknown column %q", p.Column)
	}

	switch p.Op {
	case query.OpIn:
		return p.Column + " IN ?", []interface{}{p.Values}, nil
	case query.OpEq:
		return p.Column + " = ?", []interface{}{p.Value()}, nil
	case query.OpILike:
		if postgres {
			return p.Column + " ILIKE ?", []interface{}{p.Value()}, nil
		}
		// SQLite LIKE is case-insensitive for ASCII
		return p.Column + " LIKE ?", []interface{}{p.Value()}, nil
	case query.OpContains:
		if postgres {
			return p.Column + " @> ?::jsonb", []interface{}{p.Value()}, nil
		}
		return "EXISTS (SELECT 1 FROM json_each(" + p.Column + ") AS have, json_each(?) AS want" +
			" WHERE json_extract(have.value, '$.id') = json_extract(want.value, '$.id'))", []interface{}{p.Value()}, nil
	default:
		return "", nil, fmt.Errorf("unsupported operator %q", p.Op)
	}
}

// ListTasteKeywords reads the keyword catalog ordered by sort_order, then label.
func (s *FlavorStore) ListTasteKeywords(ctx context.Context) ([]model.TasteKeyword, error) {
	var keywords []model.TasteKeyword
	if err := s.db.WithContext(ctx).
		Order("sort_order ASC").
		Order("label ASC").
		Find(&keywords).Error; err != nil {
		return nil, fmt.Errorf("failed to list taste keywords: %w", err)
	}
	return keywords, nil
}

// ExcludeTastes drops every item tagged with any of the excluded keyword ids.
// Negated containment cannot share the query's OR group, so it runs here.
func ExcludeTastes(items []model.FlavorItem, exclude []string) []model.FlavorItem {
	if len(exclude) == 0 {
		return items
	}
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		if id != "" {
			excluded[id] = true
		}
	}
	if len(excluded) == 0 {
		return items
	}

	kept := make([]model.FlavorItem, 0, len(items))
outer:
	for _, item := range items {
		for _, id := range item.TasteKeywords.IDs() {
			if excluded[id] {
				continue outer
			}
		}
		kept = append(kept, item)
	}
	return kept
}
