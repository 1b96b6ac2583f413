package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/proteinpick/backend/internal/filters"
)

func TestBuild_AndPredicates(t *testing.T) {
	f := filters.NormalizedFilters{
		ProteinType: []filters.ProteinType{filters.WPI},
		Sweetness:   []string{"약함", "약간 약함"},
		Fishy:       []string{"없음"},
		Water:       filters.Recommended,
	}

	q := Build(f, "", 0)

	assert.Equal(t, DefaultCandidateLimit, q.Limit)
	assert.Empty(t, q.Or)
	assert.Equal(t, []Predicate{
		{Column: ColProteinType, Op: OpIn, Values: []string{"WPI"}},
		{Column: ColSweetness, Op: OpIn, Values: []string{"약함", "약간 약함"}},
		{Column: ColFishy, Op: OpIn, Values: []string{"없음"}},
		{Column: ColWater, Op: OpEq, Values: []string{"추천"}},
	}, q.And)
}

func TestBuild_EmptyFilters(t *testing.T) {
	q := Build(filters.NormalizedFilters{}, "  ", 50)
	assert.Empty(t, q.And)
	assert.Empty(t, q.Or)
	assert.Equal(t, 50, q.Limit)
}

func TestBuild_SearchAndTasteShareOneOrGroup(t *testing.T) {
	f := filters.NormalizedFilters{Taste: []string{"chocolate", "vanilla", "chocolate"}}

	q := Build(f, "myprotein", 200)

	require.Len(t, q.Or, 5)
	assert.Equal(t, Predicate{Column: ColBrand, Op: OpILike, Values: []string{"%myprotein%"}}, q.Or[0])
	assert.Equal(t, Predicate{Column: ColFlavorName, Op: OpILike, Values: []string{"%myprotein%"}}, q.Or[2])
	assert.Equal(t, `[{"id":"vanilla"}]`, q.Or[4].Value())

	assert.Equal(t,
		"select=id,brand,product_name,flavor_name,summary_text,sweetness,fishy,artificial,bloating,water,milk,image_url,protein_type,taste_keywords"+
			`&or=(brand.ilike.%myprotein%,product_name.ilike.%myprotein%,flavor_name.ilike.%myprotein%,taste_keywords.cs.[{"id":"chocolate"}],taste_keywords.cs.[{"id":"vanilla"}])`+
			"&limit=200",
		q.Encode())
}

func TestSafeSearch(t *testing.T) {
	assert.Equal(t, "myprotein  x", SafeSearch(" my%protein,&x "))
	assert.Equal(t, "", SafeSearch("%%,"))
}

func TestContainsPattern_Escapes(t *testing.T) {
	assert.Equal(t, `[{"id":"cookies and cream"}]`, ContainsPattern("cookies and cream"))
	assert.Equal(t, `[{"id":"a\"}]"}]`, ContainsPattern(`a"}]`))
	assert.Equal(t, `[{"id":"back\\slash"}]`, ContainsPattern(`back\slash`))
}
