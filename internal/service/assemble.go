package service

import (
	"context"

	"github.com/pageza/proteinpick/backend/internal/filters"
	"github.com/pageza/proteinpick/backend/internal/model"
	"github.com/pageza/proteinpick/backend/internal/observability"
)

// Mixing liquids for best_with.
const (
	LiquidWater = "물"
	LiquidMilk  = "우유"
)

// HydratedItem is a picked candidate ready for display.
type HydratedItem struct {
	model.FlavorItem
	Title    string        `json:"title"`
	Tags     CandidateTags `json:"tags"`
	BestWith string        `json:"best_with"`
}

// decideBestWith prefers a forced single-liquid choice, then the item's own
// milk-only recommendation, and defaults to water.
func decideBestWith(forced filters.LiquidOverride, item model.FlavorItem) string {
	if forced.Water == filters.Recommended && forced.Milk != filters.Recommended {
		return LiquidWater
	}
	if forced.Milk == filters.Recommended && forced.Water != filters.Recommended {
		return LiquidMilk
	}

	water, milk := model.Deref(item.Water), model.Deref(item.Milk)
	if milk == string(filters.Recommended) && water != string(filters.Recommended) {
		return LiquidMilk
	}
	return LiquidWater
}

// hydrateKeywords fills missing labels and icons from the catalog. Values
// already on the reference win.
func hydrateKeywords(refs model.TasteKeywordRefs, catalog map[string]model.TasteKeyword) model.TasteKeywordRefs {
	out := make(model.TasteKeywordRefs, len(refs))
	for i, ref := range refs {
		out[i] = ref
		kw, ok := catalog[ref.ID]
		if ref.ID == "" || !ok {
			continue
		}
		if out[i].Label == "" {
			out[i].Label = kw.Label
		}
		if out[i].IconURL == "" {
			out[i].IconURL = model.Deref(kw.IconURL)
		}
	}
	return out
}

// assemble resolves picks against the candidate rows in pick order. Ids that
// match no candidate and repeated ids are dropped, and at most maxPicks items
// are returned.
func (r *Recommender) assemble(ctx context.Context, sel Selection, items []model.FlavorItem, catalog []model.TasteKeyword, forced filters.LiquidOverride) []HydratedItem {
	byID := make(map[string]model.FlavorItem, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}
	keywords := make(map[string]model.TasteKeyword, len(catalog))
	for _, kw := range catalog {
		keywords[kw.ID] = kw
	}

	picked := make([]HydratedItem, 0, maxPicks)
	seen := make(map[string]bool, len(sel.Picks))
	for _, p := range sel.Picks {
		if len(picked) == maxPicks {
			break
		}
		item, ok := byID[p.ID]
		if !ok || seen[p.ID] {
			continue
		}
		seen[p.ID] = true
		item.TasteKeywords = hydrateKeywords(item.TasteKeywords, keywords)
		item.ImageURL = r.resolveImage(ctx, item.ImageURL)

		picked = append(picked, HydratedItem{
			FlavorItem: item,
			Title:      item.Title(),
			Tags:       tagsOf(item),
			BestWith:   decideBestWith(forced, item),
		})
	}
	return picked
}

func (r *Recommender) resolveImage(ctx context.Context, stored *string) *string {
	if stored == nil || r.images == nil {
		return stored
	}
	url, err := r.images.ResolveImageURL(ctx, *stored)
	if err != nil {
		log := observability.FromContext(ctx, r.log)
		log.Warn().Err(err).Str("image", *stored).Msg("failed to resolve image url")
		return stored
	}
	return &url
}
