package service

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pageza/proteinpick/backend/internal/metrics"
	"github.com/pageza/proteinpick/backend/internal/model"
	"github.com/pageza/proteinpick/backend/internal/observability"
)

const maxPicks = 3

const selectSystemPrompt = "너는 '후보 내 추천'만 하는 추천봇이야.\n" +
	"반드시 JSON 오브젝트만 출력해. 설명 문장/코드블록 금지.\n" +
	"아래 후보 리스트의 id 중에서만 1~3개 picks에 넣어.\n" +
	"후보 밖의 제품명 생성 금지.\n" +
	"키는 picks, followup만 허용.\n" +
	"picks의 각 원소는 id만 허용.\n" +
	`출력형식: {"picks":[{"id":"..."}],"followup":string|null}`

const retrySystemPrompt = "너는 포맷 검증을 통과해야 한다.\n" +
	"절대 다른 키를 출력하지 마라. (recommendations/product/reason/name/summary/why/best_with/status_code/valid/result 금지)\n" +
	"오직 picks, followup만 허용.\n" +
	"picks[*].id는 allowed_ids 중 하나여야 한다.\n" +
	`정확한 형식: {"picks":[{"id":"<allowed_ids 중 하나>"}],"followup":null}`

// Pick is one selected candidate id.
type Pick struct {
	ID string `json:"id"`
}

// Selection is the selector's answer. Outcome records which attempt produced
// it: first, retry or fallback.
type Selection struct {
	Picks    []Pick
	Followup *string
	Outcome  string
}

// CandidateTags are the filterable attributes shown to the selector.
type CandidateTags struct {
	Sweetness  *string `json:"sweetness"`
	Fishy      *string `json:"fishy"`
	Artificial *string `json:"artificial"`
	Bloating   *string `json:"bloating"`
	Water      *string `json:"water"`
	Milk       *string `json:"milk"`
}

func tagsOf(item model.FlavorItem) CandidateTags {
	return CandidateTags{
		Sweetness:  item.Sweetness,
		Fishy:      item.Fishy,
		Artificial: item.Artificial,
		Bloating:   item.Bloating,
		Water:      item.Water,
		Milk:       item.Milk,
	}
}

type compactCandidate struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	SummaryText *string       `json:"summary_text"`
	ProteinType *string       `json:"protein_type"`
	Tags        CandidateTags `json:"tags"`
}

func compactCandidates(items []model.FlavorItem) []compactCandidate {
	out := make([]compactCandidate, len(items))
	for i, item := range items {
		out[i] = compactCandidate{
			ID:          item.ID,
			Title:       item.Title(),
			SummaryText: item.SummaryText,
			ProteinType: item.ProteinType,
			Tags:        tagsOf(item),
		}
	}
	return out
}

// selectPicks runs first attempt, validation, retry with allowed ids, then the
// deterministic fallback. It never fails.
func (r *Recommender) selectPicks(ctx context.Context, text string, items []model.FlavorItem) Selection {
	log := observability.FromContext(ctx, r.log)

	compact := compactCandidates(items)
	candidatesJSON, err := json.Marshal(compact)
	if err != nil {
		log.Error().Err(err).Msg("failed to encode candidates")
		return r.finish(fallbackSelection(items))
	}

	first, err := r.llm.ChatJSON(ctx, "select", []Message{
		{Role: "system", Content: selectSystemPrompt},
		{Role: "user", Content: "사용자 질문:\n" + text + "\n\n후보:\n" + string(candidatesJSON)},
	})
	if err != nil {
		log.Warn().Err(err).Msg("selection call failed")
	} else if sel, ok := parseSelection(unwrapLLMObject(first)); ok {
		sel.Outcome = metrics.SelectorFirst
		return r.finish(sel)
	}
	log.Debug().Str("raw", first.Raw).Msg("selection rejected, retrying with allowed ids")

	allowed := make([]string, len(items))
	for i, item := range items {
		allowed[i] = item.ID
	}
	allowedJSON, _ := json.Marshal(allowed)

	second, err := r.llm.ChatJSON(ctx, "select_retry", []Message{
		{Role: "system", Content: retrySystemPrompt},
		{Role: "user", Content: "사용자 질문:\n" + text + "\n\nallowed_ids:\n" + string(allowedJSON) +
			"\n\n후보:\n" + string(candidatesJSON)},
	})
	if err != nil {
		log.Warn().Err(err).Msg("selection retry failed")
	} else if sel, ok := parseSelection(unwrapLLMObject(second)); ok {
		sel.Outcome = metrics.SelectorRetry
		return r.finish(sel)
	}

	log.Debug().
		Str("first_raw", first.Raw).
		Str("second_raw", second.Raw).
		Msg("selection rejected twice, using fallback")
	return r.finish(fallbackSelection(items))
}

func (r *Recommender) finish(sel Selection) Selection {
	metrics.RecordSelectorOutcome(sel.Outcome)
	return sel
}

// fallbackSelection takes the first candidates in query order.
func fallbackSelection(items []model.FlavorItem) Selection {
	n := len(items)
	if n > maxPicks {
		n = maxPicks
	}
	picks := make([]Pick, n)
	for i := 0; i < n; i++ {
		picks[i] = Pick{ID: items[i].ID}
	}
	return Selection{Picks: picks, Outcome: metrics.SelectorFallback}
}

// parseSelection validates {picks:[{id}], followup}. picks must be a non-empty
// array of objects with a non-blank string id, and followup must be present
// as null or a string.
func parseSelection(raw gjson.Result) (Selection, bool) {
	if !raw.IsObject() {
		return Selection{}, false
	}

	picks := raw.Get("picks")
	if !picks.IsArray() {
		return Selection{}, false
	}
	elems := picks.Array()
	if len(elems) == 0 {
		return Selection{}, false
	}

	sel := Selection{Picks: make([]Pick, 0, len(elems))}
	for _, p := range elems {
		if !p.IsObject() {
			return Selection{}, false
		}
		id := p.Get("id")
		if id.Type != gjson.String || strings.TrimSpace(id.String()) == "" {
			return Selection{}, false
		}
		sel.Picks = append(sel.Picks, Pick{ID: id.String()})
	}

	followup := raw.Get("followup")
	switch followup.Type {
	case gjson.Null:
		if !followup.Exists() {
			return Selection{}, false
		}
	case gjson.String:
		s := followup.String()
		sel.Followup = &s
	default:
		return Selection{}, false
	}
	return sel, true
}

var objectWrappers = []string{"result", "data", "output"}

var textWrappers = []string{"text", "content", "message"}

// unwrapLLMObject peels one known wrapper off a reply: an object under
// result, data or output, or a JSON document carried as a string under text,
// content or message. Anything else is returned unchanged.
func unwrapLLMObject(raw gjson.Result) gjson.Result {
	if !raw.IsObject() {
		return raw
	}
	for _, key := range objectWrappers {
		if v := raw.Get(key); v.IsObject() {
			return v
		}
	}
	for _, key := range textWrappers {
		v := raw.Get(key)
		if !v.Exists() || v.Type == gjson.Null {
			continue
		}
		if v.Type == gjson.String {
			if obj, ok := firstJSONObject(v.String()); ok {
				return obj
			}
		}
		break
	}
	return raw
}
