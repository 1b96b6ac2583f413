package filters

import "regexp"

var (
	brandVocabulary = regexp.MustCompile(`(?i)(마이프로틴|myprotein|옵티멈|optimumnutrition|on\b|신타|bsn|syntha|컴뱃|combat|머슬팜|musclepharm|제품|브랜드)`)

	brandAliases = []struct {
		pattern *regexp.Regexp
		term    string
	}{
		{regexp.MustCompile(`(?i)(마이프로틴|myprotein)`), "myprotein"},
		{regexp.MustCompile(`(?i)(신타|syntha-?6|syntha|bsn)`), "syntha"},
		{regexp.MustCompile(`(?i)(옵티멈|optimumnutrition|\bon\b)`), "optimum"},
		{regexp.MustCompile(`(?i)(컴뱃|combat|머슬팜|musclepharm)`), "combat"},
	}
)

// BrandSearchTerm returns the canonical brand search token named in text.
// The LLM's own "query" field is never used for searching.
func BrandSearchTerm(text string) string {
	if !brandVocabulary.MatchString(text) {
		return ""
	}
	for _, alias := range brandAliases {
		if alias.pattern.MatchString(text) {
			return alias.term
		}
	}
	return ""
}
