package filters

import (
	"regexp"
	"strings"
)

// Keyword is one entry of the active taste keyword catalog.
type Keyword struct {
	ID    string
	Label string
}

// TasteMatch is the outcome of matching free text against the keyword catalog.
// Mentioned with empty Include and Exclude means the user talked about taste
// but nothing resolved to a known id.
type TasteMatch struct {
	Mentioned bool     `json:"mentioned"`
	Include   []string `json:"include,omitempty"`
	Exclude   []string `json:"exclude,omitempty"`
}

// Unresolved reports whether taste was referenced without resolving to any id.
func (m TasteMatch) Unresolved() bool {
	return m.Mentioned && len(m.Include) == 0 && len(m.Exclude) == 0
}

const negationWindow = 10

// Mixing liquids are never tastes.
var stopTokens = []string{"우유", "물", "milk", "water", "밀크"}

var negationMarkers = []string{"말고", "말곤", "말구", "제외", "제외하고", "빼고", "빼", "아닌", "싫", "말지"}

var tasteHint = regexp.MustCompile(`(딸기|스트로베리|바닐라|초코|초콜|바나나|카라멜|민트|커피|말차|녹차|쿠키|요거트|블루베리)`)

// tasteAliases is a closed table of surface forms per taste id. Chocolate maps
// to literal chocolate words only. Do not add fuzzy forms here.
var tasteAliases = []struct {
	id     string
	tokens []string
}{
	{"white chocolate", []string{"화이트초콜렛", "화이트초콜릿", "화이트초코", "whitechocolate", "whitechoc"}},
	{"dark chocolate", []string{"다크초콜렛", "다크초콜릿", "다크초코", "darkchocolate", "darkchoc"}},
	{"chocolate", []string{"초콜렛", "초콜릿", "초콜", "초코", "chocolate", "choc"}},
	{"cookies and cream", []string{"쿠키앤크림", "쿠키and크림", "쿠키&크림", "쿠앤크", "cookiesandcream", "cookiesncream"}},
	{"strawberry", []string{"딸기", "스트로베리", "strawberry"}},
	{"vanilla", []string{"바닐라", "vanilla"}},
	{"banana", []string{"바나나", "banana"}},
	{"caramel", []string{"카라멜", "캬라멜", "caramel"}},
	{"mint", []string{"민트", "mint"}},
	{"coffee", []string{"커피", "coffee"}},
	{"milk tea", []string{"밀크티", "milktea"}},
	{"matcha", []string{"말차", "matcha"}},
	{"green tea", []string{"녹차", "그린티", "greentea", "green tea"}},
	{"mocha latte", []string{"모카", "모카라떼", "모카라테", "mocha", "mochalatte", "mocha latte"}},
	{"yogurt", []string{"요거트", "요구르트", "yogurt"}},
	{"blueberry", []string{"블루베리", "blueberry"}},
}

var tasteSynonyms = strings.NewReplacer("&", "and", "앤", "and")

// NormalizeTasteText lowercases s, spells out "&" and "앤" as "and" and keeps
// only ASCII digits, ASCII letters and Hangul syllables.
func NormalizeTasteText(s string) string {
	s = tasteSynonyms.Replace(strings.ToLower(s))
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'z', r >= '가' && r <= '힣':
			b.WriteRune(r)
		}
	}
	return b.String()
}

var normalizedStops = func() map[string]struct{} {
	m := make(map[string]struct{}, len(stopTokens))
	for _, s := range stopTokens {
		m[NormalizeTasteText(s)] = struct{}{}
	}
	return m
}()

func isStopToken(s string) bool {
	_, ok := normalizedStops[NormalizeTasteText(s)]
	return ok
}

// onlyMixingMethod reports whether text names a mixing liquid and no real
// taste word at all, e.g. "물에 타 먹을만한 거".
func onlyMixingMethod(raw string) bool {
	norm := NormalizeTasteText(raw)
	if norm == "" {
		return false
	}
	hasStop := false
	for stop := range normalizedStops {
		if stop != "" && strings.Contains(norm, stop) {
			hasStop = true
			break
		}
	}
	return hasStop && !tasteHint.MatchString(raw)
}

// span is a half-open rune range.
type span struct{ start, end int }

type occurrence struct {
	id string
	span
}

// MatchTaste finds the taste ids requested and excluded by text, restricted to
// the ids present in catalog.
func MatchTaste(text string, catalog []Keyword) TasteMatch {
	if onlyMixingMethod(text) {
		return TasteMatch{}
	}

	active := make(map[string]struct{}, len(catalog))
	for _, k := range catalog {
		if id := strings.TrimSpace(k.ID); id != "" {
			active[id] = struct{}{}
		}
	}

	lower := []rune(strings.ToLower(text))
	var (
		mentioned bool
		spanned   []occurrence
		plain     []string
	)

	for _, alias := range tasteAliases {
		if _, ok := active[alias.id]; !ok {
			continue
		}
		for _, tok := range alias.tokens {
			tok = strings.ToLower(tok)
			if tok == "" || isStopToken(tok) {
				continue
			}
			needle := []rune(tok)
			for _, at := range findAll(lower, needle) {
				mentioned = true
				spanned = append(spanned, occurrence{id: alias.id, span: span{at, at + len(needle)}})
			}
		}
	}

	normText := NormalizeTasteText(text)
	for _, k := range catalog {
		id, label := strings.TrimSpace(k.ID), strings.TrimSpace(k.Label)
		if id == "" || label == "" {
			continue
		}
		labelNorm := NormalizeTasteText(label)
		if _, stop := normalizedStops[labelNorm]; stop {
			continue
		}
		needle := []rune(strings.ToLower(label))
		if at := indexRunes(lower, needle, 0); at >= 0 {
			mentioned = true
			spanned = append(spanned, occurrence{id: id, span: span{at, at + len(needle)}})
			continue
		}
		if labelNorm != "" && strings.Contains(normText, labelNorm) {
			mentioned = true
			plain = append(plain, id)
		}
	}

	markers := findMarkers(lower)
	var include, exclude []string
	for i, occ := range spanned {
		if negated(i, spanned, markers) {
			exclude = append(exclude, occ.id)
		} else {
			include = append(include, occ.id)
		}
	}
	include = append(include, plain...)

	exclude = uniq(exclude)
	excluded := make(map[string]struct{}, len(exclude))
	for _, id := range exclude {
		excluded[id] = struct{}{}
	}
	var final []string
	for _, id := range uniq(include) {
		if _, ok := excluded[id]; !ok {
			final = append(final, id)
		}
	}

	m := TasteMatch{Mentioned: mentioned, Include: final}
	if len(exclude) > 0 {
		m.Exclude = exclude
	}
	return m
}

// negated classifies occurrence i. A marker after the occurrence always
// negates it. A marker before it negates it unless the marker already follows
// an earlier occurrence within the window, since Korean negation is
// postpositional ("딸기 말고 초코").
func negated(i int, all []occurrence, markers []span) bool {
	occ := all[i]
	for _, m := range markers {
		if inPostWindow(m, occ.span) {
			return true
		}
	}
	for _, m := range markers {
		if !inPreWindow(m, occ.span) {
			continue
		}
		bound := false
		for j, other := range all {
			if j != i && other.end <= m.start && inPostWindow(m, other.span) {
				bound = true
				break
			}
		}
		if !bound {
			return true
		}
	}
	return false
}

func inPreWindow(m, s span) bool {
	return m.start >= s.start-negationWindow && m.end <= s.start
}

func inPostWindow(m, s span) bool {
	return m.start >= s.end && m.end <= s.end+negationWindow
}

func findMarkers(hay []rune) []span {
	var out []span
	for _, marker := range negationMarkers {
		needle := []rune(marker)
		for at := indexRunes(hay, needle, 0); at >= 0; at = indexRunes(hay, needle, at+1) {
			out = append(out, span{at, at + len(needle)})
		}
	}
	return out
}

// findAll returns the start of every non-overlapping occurrence of needle.
func findAll(hay, needle []rune) []int {
	if len(needle) == 0 {
		return nil
	}
	var out []int
	for at := indexRunes(hay, needle, 0); at >= 0; at = indexRunes(hay, needle, at+len(needle)) {
		out = append(out, at)
	}
	return out
}

func indexRunes(hay, needle []rune, from int) int {
	if len(needle) == 0 {
		return -1
	}
	for i := from; i+len(needle) <= len(hay); i++ {
		match := true
		for j, r := range needle {
			if hay[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
