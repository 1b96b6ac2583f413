package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pageza/proteinpick/backend/internal/filters"
	"github.com/pageza/proteinpick/backend/internal/model"
	"github.com/pageza/proteinpick/backend/internal/query"
	th "github.com/pageza/proteinpick/backend/internal/testhelpers"
)

func ids(items []model.FlavorItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

type candidateCase struct {
	name    string
	filters filters.NormalizedFilters
	search  string
	limit   int
	want    []string
}

var candidateCases = []candidateCase{
	{
		name: "no filters",
		want: []string{
			th.FlavorMyproteinChocolate, th.FlavorMyproteinStrawberry, th.FlavorOptimumChocolate,
			th.FlavorOptimumVanilla, th.FlavorSynthaCookies, th.FlavorSynthaChocoStraw,
		},
	},
	{
		name:    "protein type",
		filters: filters.NormalizedFilters{ProteinType: []filters.ProteinType{filters.WPI}},
		want:    []string{th.FlavorOptimumChocolate, th.FlavorOptimumVanilla},
	},
	{
		name:    "low sweetness",
		filters: filters.NormalizedFilters{Sweetness: []string{"약함", "약간 약함"}},
		want:    []string{th.FlavorOptimumVanilla},
	},
	{
		name:    "fishy and water are ANDed",
		filters: filters.NormalizedFilters{Fishy: []string{"없음", "거의 없음"}, Water: filters.Recommended},
		want:    []string{th.FlavorMyproteinChocolate, th.FlavorMyproteinStrawberry, th.FlavorOptimumVanilla},
	},
	{
		name:    "taste containment",
		filters: filters.NormalizedFilters{Taste: []string{th.KeywordChocolate}},
		want: []string{
			th.FlavorMyproteinChocolate, th.FlavorOptimumChocolate,
			th.FlavorSynthaCookies, th.FlavorSynthaChocoStraw,
		},
	},
	{
		name:   "brand search is case-insensitive",
		search: "myprotein",
		want:   []string{th.FlavorMyproteinChocolate, th.FlavorMyproteinStrawberry},
	},
	{
		name:    "search and taste share one OR group",
		filters: filters.NormalizedFilters{Taste: []string{th.KeywordVanilla}},
		search:  "syntha",
		want:    []string{th.FlavorOptimumVanilla, th.FlavorSynthaCookies, th.FlavorSynthaChocoStraw},
	},
	{
		name:    "OR group stays under the AND list",
		filters: filters.NormalizedFilters{ProteinType: []filters.ProteinType{filters.WPI}, Taste: []string{th.KeywordChocolate}},
		want:    []string{th.FlavorOptimumChocolate},
	},
	{
		name:    "unknown taste id",
		filters: filters.NormalizedFilters{Taste: []string{`no"such\id`}},
		want:    []string{},
	},
}

func runCandidateCases(t *testing.T, db *gorm.DB) {
	s := NewFlavorStore(db)
	for _, tc := range candidateCases {
		t.Run(tc.name, func(t *testing.T) {
			items, err := s.SearchCandidates(context.Background(), query.Build(tc.filters, tc.search, tc.limit))
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.want, ids(items))
		})
	}
}

func TestSearchCandidates_SQLite(t *testing.T) {
	db := th.SetupSQLiteDB(t)
	th.SeedFixture(t, db)
	runCandidateCases(t, db)
}

func TestSearchCandidates_Postgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-based test in short mode")
	}
	db := th.SetupPostgresDB(t)
	th.SeedFixture(t, db)
	runCandidateCases(t, db)
}

func TestSearchCandidates_Limit(t *testing.T) {
	db := th.SetupSQLiteDB(t)
	th.SeedFixture(t, db)

	items, err := NewFlavorStore(db).SearchCandidates(context.Background(), query.Build(filters.NormalizedFilters{}, "", 2))
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestSearchCandidates_DecodesRow(t *testing.T) {
	db := th.SetupSQLiteDB(t)
	th.SeedFixture(t, db)

	items, err := NewFlavorStore(db).SearchCandidates(context.Background(), query.Query{
		And:   []query.Predicate{{Column: query.ColID, Op: query.OpEq, Values: []string{th.FlavorSynthaChocoStraw}}},
		Limit: 10,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)

	item := items[0]
	assert.Equal(t, "Syntha", item.Brand)
	assert.Equal(t, "Syntha Syntha-6 Chocolate Strawberry", item.Title())
	assert.Equal(t, "WPC", model.Deref(item.ProteinType))
	assert.Equal(t, "비추천", model.Deref(item.Milk))
	assert.Nil(t, item.ImageURL)
	assert.Equal(t, []string{th.KeywordChocolate, th.KeywordStrawberry}, item.TasteKeywords.IDs())
	assert.Empty(t, item.TasteKeywords[0].Label)
}

func TestSearchCandidates_RejectsUnknownColumn(t *testing.T) {
	db := th.SetupSQLiteDB(t)

	_, err := NewFlavorStore(db).SearchCandidates(context.Background(), query.Query{
		And:   []query.Predicate{{Column: "brand; DROP TABLE products", Op: query.OpEq, Values: []string{"x"}}},
		Limit: 1,
	})
	assert.Error(t, err)
}

func TestListTasteKeywords(t *testing.T) {
	db := th.SetupSQLiteDB(t)
	th.SeedFixture(t, db)

	keywords, err := NewFlavorStore(db).ListTasteKeywords(context.Background())
	require.NoError(t, err)

	got := make([]string, len(keywords))
	for i, k := range keywords {
		got[i] = k.ID
	}
	assert.Equal(t, []string{
		th.KeywordChocolate, th.KeywordStrawberry, th.KeywordVanilla, th.KeywordCookies, th.KeywordBanana,
	}, got)
	assert.Equal(t, "icons/chocolate.svg", model.Deref(keywords[0].IconURL))
}

func TestExcludeTastes(t *testing.T) {
	item := func(id string, kws ...string) model.FlavorItem {
		refs := model.TasteKeywordRefs{}
		for _, k := range kws {
			refs = append(refs, model.TasteKeywordRef{ID: k})
		}
		return model.FlavorItem{ID: id, TasteKeywords: refs}
	}
	items := []model.FlavorItem{
		item("a", "chocolate"),
		item("b", "chocolate", "strawberry"),
		item("c"),
		item("d", "vanilla"),
	}

	tests := []struct {
		name    string
		exclude []string
		want    []string
	}{
		{"nil exclusion is a no-op", nil, []string{"a", "b", "c", "d"}},
		{"blank ids are ignored", []string{""}, []string{"a", "b", "c", "d"}},
		{"non-matching exclusion", []string{"banana"}, []string{"a", "b", "c", "d"}},
		{"any intersection drops the row", []string{"strawberry"}, []string{"a", "c", "d"}},
		{"several ids", []string{"chocolate", "vanilla"}, []string{"c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(ExcludeTastes(items, tt.exclude)))
		})
	}
}
