// Package query builds the candidate query as a predicate tree: an AND list
// plus at most one OR group. Serialization to a store dialect happens at the
// boundary (see internal/store and Encode).
package query

import (
	"fmt"
	"strings"

	"github.com/pageza/proteinpick/backend/internal/filters"
)

// View is the flat, denormalized collection candidates are read from.
const View = "flavor_search_view"

const (
	ColID            = "id"
	ColBrand         = "brand"
	ColProductName   = "product_name"
	ColFlavorName    = "flavor_name"
	ColSummaryText   = "summary_text"
	ColSweetness     = "sweetness"
	ColFishy         = "fishy"
	ColArtificial    = "artificial"
	ColBloating      = "bloating"
	ColWater         = "water"
	ColMilk          = "milk"
	ColImageURL      = "image_url"
	ColProteinType   = "protein_type"
	ColTasteKeywords = "taste_keywords"
)

// Columns is the fixed candidate projection.
var Columns = []string{
	ColID, ColBrand, ColProductName, ColFlavorName, ColSummaryText,
	ColSweetness, ColFishy, ColArtificial, ColBloating, ColWater, ColMilk,
	ColImageURL, ColProteinType, ColTasteKeywords,
}

// DefaultCandidateLimit bounds the candidate set.
const DefaultCandidateLimit = 200

// Op is a predicate operator.
type Op string

const (
	OpIn       Op = "in"
	OpEq       Op = "eq"
	OpILike    Op = "ilike"
	OpContains Op = "cs"
)

// Predicate is one column test. In takes every value, the other operators
// take exactly one.
type Predicate struct {
	Column string
	Op     Op
	Values []string
}

// Value returns the single operand of an eq, ilike or cs predicate.
func (p Predicate) Value() string {
	if len(p.Values) == 0 {
		return ""
	}
	return p.Values[0]
}

// Query is a bounded read over View.
type Query struct {
	And   []Predicate
	Or    []Predicate
	Limit int
}

// Build translates normalized filters and an optional brand/product search
// term into a Query. A search term and taste ids share the single OR group,
// so together they widen the result to the union of both.
func Build(f filters.NormalizedFilters, search string, limit int) Query {
	if limit <= 0 {
		limit = DefaultCandidateLimit
	}
	q := Query{Limit: limit}

	if len(f.ProteinType) > 0 {
		types := make([]string, len(f.ProteinType))
		for i, pt := range f.ProteinType {
			types[i] = string(pt)
		}
		q.in(ColProteinType, types)
	}
	q.in(ColSweetness, f.Sweetness)
	q.in(ColFishy, f.Fishy)
	q.in(ColArtificial, f.Artificial)
	q.in(ColBloating, f.Bloating)

	if f.Water != "" {
		q.And = append(q.And, Predicate{Column: ColWater, Op: OpEq, Values: []string{string(f.Water)}})
	}
	if f.Milk != "" {
		q.And = append(q.And, Predicate{Column: ColMilk, Op: OpEq, Values: []string{string(f.Milk)}})
	}

	if term := SafeSearch(search); term != "" {
		like := "%" + term + "%"
		for _, col := range []string{ColBrand, ColProductName, ColFlavorName} {
			q.Or = append(q.Or, Predicate{Column: col, Op: OpILike, Values: []string{like}})
		}
	}

	seen := make(map[string]bool)
	for _, id := range f.Taste {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		q.Or = append(q.Or, Predicate{Column: ColTasteKeywords, Op: OpContains, Values: []string{ContainsPattern(id)}})
	}

	return q
}

func (q *Query) in(column string, values []string) {
	if len(values) == 0 {
		return
	}
	q.And = append(q.And, Predicate{Column: column, Op: OpIn, Values: values})
}

var searchSanitizer = strings.NewReplacer("%", "", ",", " ", "&", " ")

// SafeSearch strips characters that would break the OR expression syntax.
func SafeSearch(s string) string {
	return strings.TrimSpace(searchSanitizer.Replace(s))
}

var patternEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// ContainsPattern is the single-element JSON document matched against the
// taste_keywords array: [{"id":"<id>"}].
func ContainsPattern(id string) string {
	return `[{"id":"` + patternEscaper.Replace(id) + `"}]`
}

// Encode renders the query in PostgREST filter syntax. It is used for logs
// and as a stable, comparable form in tests.
func (q Query) Encode() string {
	parts := []string{"select=" + strings.Join(Columns, ",")}
	for _, p := range q.And {
		parts = append(parts, p.Column+"="+encodePredicateValue(p))
	}
	if len(q.Or) > 0 {
		group := make([]string, len(q.Or))
		for i, p := range q.Or {
			group[i] = p.Column + "." + encodePredicateValue(p)
		}
		parts = append(parts, "or=("+strings.Join(group, ",")+")")
	}
	parts = append(parts, fmt.Sprintf("limit=%d", q.Limit))
	return strings.Join(parts, "&")
}

func encodePredicateValue(p Predicate) string {
	if p.Op == OpIn {
		return "in.(" + strings.Join(p.Values, ",") + ")"
	}
	return string(p.Op) + "." + p.Value()
}
