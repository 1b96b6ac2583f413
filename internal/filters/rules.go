package filters

import (
	"math"
	"regexp"
	"strings"
)

// Rule overrides derived directly from the user's text. When a rule fires its
// value wins over anything the LLM extracted for the same dimension.

var lowIntensityPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(없(음|어|어요|다)|안\s*나(요|다)?|거의\s*없)`),
	regexp.MustCompile(`(약하(다|고|면|네|지|긴)?|약한|약하게|약함|미약|약\s*한)`),
	regexp.MustCompile(`(강하(지)?\s*않|강하지\s*않|세(지)?\s*않|세지\s*않|진하(지)?\s*않|진하지\s*않)`),
	regexp.MustCompile(`(부담\s*없|부담\s*없는|자극(적)?\s*없|자극(적)?\s*않|자극적이지\s*않)`),
	regexp.MustCompile(`(덜|적(게|은)?|낮(게|은)?)`),
}

var (
	fishyMention      = regexp.MustCompile(`(비린|비린맛|비린내|역한|누린)`)
	artificialMention = regexp.MustCompile(`(인공|인공감|화학|합성|향이\s*인공)`)
	bloatingMention   = regexp.MustCompile(`(더부룩|속\s*불편|소화|가스|배\s*아프|복부)`)

	sweetMention   = regexp.MustCompile(`(단맛|당도|달[고지게아았]|달아서|달면|달지)`)
	sweetNegated   = regexp.MustCompile(`(안\s*달|덜\s*달|달지\s*않|달고\s*싶지\s*않)`)
	sweetThenLow   = regexp.MustCompile(`(단맛|당도).*(약하|낮|적)`)
	lowThenSweet   = regexp.MustCompile(`(약하|낮|적).*(단맛|당도)`)
	notStrongSweet = regexp.MustCompile(`(심하(지)?\s*않|강하(지)?\s*않|세(지)?\s*않).*(단맛|당도|달)`)

	waterMix = regexp.MustCompile(`물(에|로|로만|로\s*타|에\s*타|에만|만\s*타|만\s*먹)`)
	milkMix  = regexp.MustCompile(`우유(에|로|로만|로\s*타|에\s*타|에만|만\s*타|만\s*먹)`)

	isolateWords     = regexp.MustCompile(`(?i)(wpi|아이솔|아이솔레이트|isolate)`)
	concentrateWords = regexp.MustCompile(`(?i)(wpc|콘센|콘센트레이트|농축)`)
	proteinTypeWords = regexp.MustCompile(`(?i)(wpi|wpc|아이솔|아이솔레이트|isolate|콘센|콘센트레이트|농축)`)
)

// WantsLowIntensity reports whether text asks for a weak, absent or
// unobtrusive level of some characteristic.
func WantsLowIntensity(text string) bool {
	for _, re := range lowIntensityPatterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// InferLowPresence returns the two lowest presence levels when mention matches
// text and the text asks for low intensity.
func InferLowPresence(text string, mention *regexp.Regexp) []string {
	if !mention.MatchString(text) || !WantsLowIntensity(text) {
		return nil
	}
	return copyLevels(lowPresence)
}

func InferLowFishy(text string) []string      { return InferLowPresence(text, fishyMention) }
func InferLowArtificial(text string) []string { return InferLowPresence(text, artificialMention) }
func InferLowBloating(text string) []string   { return InferLowPresence(text, bloatingMention) }

// InferLowSweetness returns the two weakest sweetness levels when the text
// mentions sweetness and explicitly asks for less of it.
func InferLowSweetness(text string) []string {
	if !sweetMention.MatchString(text) {
		return nil
	}
	wantsLow := sweetNegated.MatchString(text) ||
		sweetThenLow.MatchString(text) ||
		lowThenSweet.MatchString(text) ||
		notStrongSweet.MatchString(text)
	if !wantsLow {
		return nil
	}
	return copyLevels(lowSweetness)
}

// MapSweetnessNumber maps a 1-5 score onto a single sweetness level, clamping
// out-of-range scores. Non-finite input yields nil.
func MapSweetnessNumber(n float64) []string {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return nil
	}
	x := math.Floor(n + 0.5)
	switch {
	case x <= 1:
		return []string{SweetnessLevels[0]}
	case x >= 5:
		return []string{SweetnessLevels[4]}
	default:
		return []string{SweetnessLevels[int(x)-1]}
	}
}

// LiquidOverride is the forced water/milk choice read from text. An empty
// field means no override, never "not recommended".
type LiquidOverride struct {
	Water Reco `json:"water,omitempty"`
	Milk  Reco `json:"milk,omitempty"`
}

// InferWaterMilk forces water or milk to "recommended" when exactly one of the
// two is requested as the mixing liquid.
func InferWaterMilk(text string) LiquidOverride {
	lower := strings.ToLower(text)
	wantsWater := waterMix.MatchString(text) || strings.Contains(lower, "water")
	wantsMilk := milkMix.MatchString(text) || strings.Contains(lower, "milk")

	switch {
	case wantsWater && !wantsMilk:
		return LiquidOverride{Water: Recommended}
	case wantsMilk && !wantsWater:
		return LiquidOverride{Milk: Recommended}
	default:
		return LiquidOverride{}
	}
}

// UserMentionedProteinType reports whether the text names a whey type at all.
func UserMentionedProteinType(text string) bool {
	return proteinTypeWords.MatchString(text)
}

// InferProteinTypeFromText maps isolate/concentrate vocabulary to a type.
// Isolate wins when both appear.
func InferProteinTypeFromText(text string) []ProteinType {
	if isolateWords.MatchString(text) {
		return []ProteinType{WPI}
	}
	if concentrateWords.MatchString(text) {
		return []ProteinType{WPC}
	}
	return nil
}
