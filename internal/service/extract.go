package service

import (
	"context"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/pageza/proteinpick/backend/internal/metrics"
	"github.com/pageza/proteinpick/backend/internal/observability"
)

const extractSystemPrompt = "너는 프로틴 추천을 위한 '필터 추출기'야.\n" +
	"반드시 JSON 오브젝트만 출력해. 설명 문장/코드블록 금지.\n" +
	"유저가 말하지 않은 조건은 채우지 마라.\n" +
	"단맛/당도 관련 요청은 sweetness로만 추출하고 taste를 채우지 마라.\n" +
	"sweetness는 1~5 숫자 또는 [\"약함\",\"약간 약함\",\"보통\",\"약간 강함\",\"강함\"] 중에서.\n" +
	"fishy/artificial/bloating은 [\"없음\",\"거의 없음\",\"보통\",\"약간 있음\",\"있음\"] 중에서.\n" +
	"protein_type은 WPC 또는 WPI.\n" +
	"꼭 되물어야 할 때만 mustAsk에 질문을 넣고, 아니면 null.\n" +
	`출력형식: {"query":string|null,"mustAsk":string|null,"filters":{...}}`

// Extraction is the parsed output of the filter-extraction call. Filters is
// passed to filters.Normalize as-is; it is untrusted.
type Extraction struct {
	MustAsk string
	Filters gjson.Result
	Raw     gjson.Result
}

// extract asks the LLM for filters. Any failure yields an empty Extraction so
// that the text rules still apply.
func (r *Recommender) extract(ctx context.Context, text string) Extraction {
	raw, err := r.llm.ChatJSON(ctx, "extract", []Message{
		{Role: "system", Content: extractSystemPrompt},
		{Role: "user", Content: "사용자 질문:\n" + text},
	})
	if err != nil {
		metrics.RecordExtractionFailure()
		log := observability.FromContext(ctx, r.log)
		log.Warn().Err(err).Msg("filter extraction failed, continuing with text rules")
		return Extraction{}
	}
	return parseExtraction(raw)
}

func parseExtraction(raw gjson.Result) Extraction {
	ex := Extraction{Raw: raw}
	if !raw.IsObject() {
		return ex
	}
	if ask := raw.Get("mustAsk"); ask.Type == gjson.String {
		ex.MustAsk = strings.TrimSpace(ask.String())
	}
	ex.Filters = raw.Get("filters")
	return ex
}
