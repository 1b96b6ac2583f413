package filters

import "github.com/tidwall/gjson"

// NormalizedFilters is the canonical, request-scoped filter record. Every
// populated list is non-empty and deduplicated.
type NormalizedFilters struct {
	ProteinType  []ProteinType `json:"protein_type,omitempty"`
	Sweetness    []string      `json:"sweetness,omitempty"`
	Fishy        []string      `json:"fishy,omitempty"`
	Artificial   []string      `json:"artificial,omitempty"`
	Bloating     []string      `json:"bloating,omitempty"`
	Water        Reco          `json:"water,omitempty"`
	Milk         Reco          `json:"milk,omitempty"`
	Taste        []string      `json:"taste,omitempty"`
	TasteExclude []string      `json:"taste_exclude,omitempty"`
}

// Result is everything the candidate stage needs from the user's text.
type Result struct {
	Filters NormalizedFilters
	// SearchTerm is the brand token found in the text, if any.
	SearchTerm string
	Taste      TasteMatch
	// Liquid is the forced water/milk choice, reused for the pairing decision.
	Liquid LiquidOverride
}

const combinedPresenceKey = "fishy/artificial/bloating"

// Normalize reconciles the LLM's extracted filters object with the text rules.
// A rule that fires wins over the LLM value for its dimension. Malformed LLM
// fields are treated as absent.
func Normalize(text string, extracted gjson.Result, catalog []Keyword) Result {
	raw := map[string]gjson.Result{}
	if extracted.IsObject() {
		raw = extracted.Map()
	}

	fishy, artificial, bloating := unwrapField(raw["fishy"]), unwrapField(raw["artificial"]), unwrapField(raw["bloating"])
	if combined := unwrapField(raw[combinedPresenceKey]); combined.shape != shapeAbsent &&
		!present(raw["fishy"]) && !present(raw["artificial"]) && !present(raw["bloating"]) {
		fishy, artificial, bloating = combined, combined, combined
	}

	var f NormalizedFilters

	if UserMentionedProteinType(text) {
		f.ProteinType = InferProteinTypeFromText(text)
		if f.ProteinType == nil {
			f.ProteinType = ClampProteinTypes(unwrapField(raw["protein_type"]).stringList())
		}
	}

	f.Sweetness = sweetness(text, unwrapField(raw["sweetness"]))
	f.Fishy = firstNonEmpty(InferLowFishy(text), ClampLevels(fishy.stringList(), PresenceLevels))
	f.Artificial = firstNonEmpty(InferLowArtificial(text), ClampLevels(artificial.stringList(), PresenceLevels))
	f.Bloating = firstNonEmpty(InferLowBloating(text), ClampLevels(bloating.stringList(), PresenceLevels))

	liquid := InferWaterMilk(text)
	f.Water, f.Milk = liquid.Water, liquid.Milk

	taste := MatchTaste(text, catalog)
	f.Taste = taste.Include
	f.TasteExclude = taste.Exclude

	return Result{
		Filters:    f,
		SearchTerm: BrandSearchTerm(text),
		Taste:      taste,
		Liquid:     liquid,
	}
}

func sweetness(text string, llm field) []string {
	if low := InferLowSweetness(text); low != nil {
		return low
	}
	if n, ok := llm.number(); ok {
		if mapped := MapSweetnessNumber(n); mapped != nil {
			return mapped
		}
	}
	return ClampLevels(llm.stringList(), SweetnessLevels)
}

func firstNonEmpty(lists ...[]string) []string {
	for _, l := range lists {
		if len(l) > 0 {
			return l
		}
	}
	return nil
}
