// Package filters turns free text plus untrusted LLM extraction output into the
// canonical filter record used to query the flavor catalog.
package filters

import "strings"

// ProteinType is the whey processing type of a product.
type ProteinType string

const (
	WPC ProteinType = "WPC"
	WPI ProteinType = "WPI"
)

// Reco is a water/milk pairing recommendation.
type Reco string

const (
	Recommended    Reco = "추천"
	NotRecommended Reco = "비추천"
)

// Ordinal levels, weakest first.
var (
	SweetnessLevels = []string{"약함", "약간 약함", "보통", "약간 강함", "강함"}
	PresenceLevels  = []string{"없음", "거의 없음", "보통", "약간 있음", "있음"}
)

var (
	lowSweetness = []string{"약함", "약간 약함"}
	lowPresence  = []string{"없음", "거의 없음"}
)

// LLMs tend to drop the space inside two-word levels.
var levelSpacing = strings.NewReplacer(
	"거의없음", "거의 없음",
	"약간약함", "약간 약함",
	"약간강함", "약간 강함",
	"약간있음", "약간 있음",
)

func normalizeLevel(v string) string {
	return levelSpacing.Replace(strings.TrimSpace(v))
}

// ClampLevels keeps the members of values that belong to allowed, in order and
// without duplicates. It returns nil when nothing survives.
func ClampLevels(values, allowed []string) []string {
	if len(values) == 0 {
		return nil
	}
	permitted := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		permitted[a] = struct{}{}
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = normalizeLevel(v)
		if _, ok := permitted[v]; ok {
			out = append(out, v)
		}
	}
	out = uniq(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

// ClampProteinTypes keeps the WPC/WPI members of values, case-insensitively.
func ClampProteinTypes(values []string) []ProteinType {
	var out []ProteinType
	seen := make(map[ProteinType]bool)
	for _, v := range values {
		pt := ProteinType(strings.ToUpper(strings.TrimSpace(v)))
		if pt != WPC && pt != WPI {
			continue
		}
		if !seen[pt] {
			seen[pt] = true
			out = append(out, pt)
		}
	}
	return out
}

func uniq(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := values[:0:0]
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func copyLevels(levels []string) []string {
	return append([]string(nil), levels...)
}
