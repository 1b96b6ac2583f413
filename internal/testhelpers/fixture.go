package testhelpers

import (
	"github.com/pageza/proteinpick/backend/internal/database"
	"github.com/pageza/proteinpick/backend/internal/model"
)

// Str returns a pointer to s.
func Str(s string) *string { return &s }

// Fixture ids.
const (
	KeywordChocolate  = "chocolate"
	KeywordStrawberry = "strawberry"
	KeywordVanilla    = "vanilla"
	KeywordCookies    = "cookies and cream"
	KeywordBanana     = "banana"

	FlavorMyproteinChocolate  = "mp-choco"
	FlavorMyproteinStrawberry = "mp-straw"
	FlavorOptimumChocolate    = "on-choco"
	FlavorOptimumVanilla      = "on-vanilla"
	FlavorSynthaCookies       = "sy-cookie"
	FlavorSynthaChocoStraw    = "sy-choco-straw"
)

type flavorRow struct {
	id, product, name                      string
	sweetness, fishy, artificial, bloating string
	water, milk                            string
	keywords                               []string
}

// FixtureCatalog is a small catalog of three products and six flavors. Banana
// is in the keyword catalog but tags no flavor.
func FixtureCatalog() database.Catalog {
	c := database.Catalog{
		Products: []model.Product{
			{ID: "mp-impact", Brand: "Myprotein", ProductName: "Impact Whey", ProteinType: Str("WPC"), ImageURL: Str("products/mp-impact.png")},
			{ID: "on-gold", Brand: "Optimum Nutrition", ProductName: "Gold Standard Whey", ProteinType: Str("WPI"), ImageURL: Str("https://cdn.example.com/on-gold.png")},
			{ID: "syntha-6", Brand: "Syntha", ProductName: "Syntha-6", ProteinType: Str("WPC")},
		},
		Keywords: []model.TasteKeyword{
			{ID: KeywordChocolate, Label: "초코", IconURL: Str("icons/chocolate.svg"), SortOrder: 1},
			{ID: KeywordStrawberry, Label: "딸기", IconURL: Str("icons/strawberry.svg"), SortOrder: 2},
			{ID: KeywordVanilla, Label: "바닐라", SortOrder: 3},
			{ID: KeywordCookies, Label: "쿠키앤크림", SortOrder: 4},
			{ID: KeywordBanana, Label: "바나나", SortOrder: 5},
		},
	}

	rows := []flavorRow{
		{FlavorMyproteinChocolate, "mp-impact", "Chocolate Smooth", "보통", "거의 없음", "보통", "거의 없음", "추천", "추천", []string{KeywordChocolate}},
		{FlavorMyproteinStrawberry, "mp-impact", "Strawberry Cream", "강함", "없음", "약간 있음", "보통", "추천", "비추천", []string{KeywordStrawberry}},
		{FlavorOptimumChocolate, "on-gold", "Double Rich Chocolate", "약간 강함", "없음", "거의 없음", "없음", "비추천", "추천", []string{KeywordChocolate}},
		{FlavorOptimumVanilla, "on-gold", "French Vanilla Creme", "약함", "거의 없음", "없음", "없음", "추천", "추천", []string{KeywordVanilla}},
		{FlavorSynthaCookies, "syntha-6", "Cookies and Cream", "강함", "보통", "있음", "약간 있음", "비추천", "추천", []string{KeywordCookies, KeywordChocolate}},
		{FlavorSynthaChocoStraw, "syntha-6", "Chocolate Strawberry", "강함", "보통", "보통", "보통", "추천", "비추천", []string{KeywordChocolate, KeywordStrawberry}},
	}
	for _, r := range rows {
		c.Flavors = append(c.Flavors, model.Flavor{
			ID:          r.id,
			ProductID:   r.product,
			FlavorName:  r.name,
			SummaryText: Str(r.name + " flavor"),
			Sweetness:   Str(r.sweetness),
			Fishy:       Str(r.fishy),
			Artificial:  Str(r.artificial),
			Bloating:    Str(r.bloating),
			Water:       Str(r.water),
			Milk:        Str(r.milk),
		})
		for pos, kw := range r.keywords {
			c.Links = append(c.Links, model.FlavorTasteKeyword{FlavorID: r.id, TasteKeywordID: kw, Position: pos})
		}
	}
	return c
}
