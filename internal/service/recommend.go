package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/pageza/proteinpick/backend/internal/filters"
	"github.com/pageza/proteinpick/backend/internal/metrics"
	"github.com/pageza/proteinpick/backend/internal/model"
	"github.com/pageza/proteinpick/backend/internal/observability"
	"github.com/pageza/proteinpick/backend/internal/query"
	"github.com/pageza/proteinpick/backend/internal/store"
)

// ErrEmptyMessage is returned for blank user text.
var ErrEmptyMessage = errors.New("empty message")

// Response types. ResponseError only labels metrics; errors are returned.
const (
	ResponseAsk   = "ask"
	ResponseEmpty = "empty"
	ResponseOK    = "ok"
	ResponseError = "error"
)

// DefaultStoreTimeout bounds each catalog read and candidate query.
const DefaultStoreTimeout = 5 * time.Second

const (
	MessageNoMatch = "조건에 맞는 데이터가 아직 없어요."
	MessageNoPicks = "추천을 만들 수 없었어."
)

// Response is one of ask, empty or ok.
type Response struct {
	Type            string
	Message         string
	Picks           []HydratedItem
	Followup        *string
	CandidatesCount int
}

// MarshalJSON emits only the fields that belong to the response type.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Type == ResponseOK {
		picks := r.Picks
		if picks == nil {
			picks = []HydratedItem{}
		}
		return json.Marshal(struct {
			Type            string         `json:"type"`
			Picks           []HydratedItem `json:"picks"`
			Followup        *string        `json:"followup"`
			CandidatesCount int            `json:"candidatesCount"`
		}{r.Type, picks, r.Followup, r.CandidatesCount})
	}
	return json.Marshal(struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}{r.Type, r.Message})
}

// Recommender runs the recommendation pipeline for one user turn.
type Recommender struct {
	llm            ChatCompleter
	candidates     CandidateStore
	keywords       KeywordCatalog
	images         ImageResolver
	candidateLimit int
	storeTimeout   time.Duration
	log            zerolog.Logger
}

// NewRecommender creates a new Recommender. images may be nil.
func NewRecommender(llm ChatCompleter, candidates CandidateStore, keywords KeywordCatalog, images ImageResolver, candidateLimit int, log zerolog.Logger) *Recommender {
	if candidateLimit <= 0 {
		candidateLimit = query.DefaultCandidateLimit
	}
	return &Recommender{
		llm:            llm,
		candidates:     candidates,
		keywords:       keywords,
		images:         images,
		candidateLimit: candidateLimit,
		storeTimeout:   DefaultStoreTimeout,
		log:            log,
	}
}

// WithStoreTimeout sets the bound on each store call. Zero or less leaves the
// calls on the request context.
func (r *Recommender) WithStoreTimeout(d time.Duration) *Recommender {
	r.storeTimeout = d
	return r
}

func (r *Recommender) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.storeTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.storeTimeout)
}

// Recommend answers text. Store failures are returned as errors; LLM failures
// degrade to absent filters or fallback picks.
func (r *Recommender) Recommend(ctx context.Context, text string) (*Response, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	log := observability.FromContext(ctx, r.log)

	// The catalog read and the extraction call are independent.
	var (
		catalog    []model.TasteKeyword
		extraction Extraction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sctx, cancel := r.storeContext(gctx)
		defer cancel()
		var err error
		catalog, err = r.keywords.ListTasteKeywords(sctx)
		return err
	})
	g.Go(func() error {
		extraction = r.extract(gctx, text)
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Str("text", text).Msg("failed to load taste keywords")
		metrics.RecordResponse(ResponseError)
		return nil, fmt.Errorf("failed to load taste keywords: %w", err)
	}

	log.Debug().Str("text", text).RawJSON("extracted", rawOrNull(extraction.Raw.Raw)).Msg("filters extracted")

	if extraction.MustAsk != "" {
		return respond(&Response{Type: ResponseAsk, Message: extraction.MustAsk}), nil
	}

	keywords := make([]filters.Keyword, len(catalog))
	for i, kw := range catalog {
		keywords[i] = filters.Keyword{ID: kw.ID, Label: kw.Label}
	}
	res := filters.Normalize(text, extraction.Filters, keywords)

	log.Debug().
		Str("query", res.SearchTerm).
		Interface("filters", res.Filters).
		Strs("taste_exclude", res.Filters.TasteExclude).
		Msg("filters normalized")

	if res.Taste.Unresolved() {
		return respond(&Response{Type: ResponseEmpty, Message: MessageNoMatch}), nil
	}

	q := query.Build(res.Filters, res.SearchTerm, r.candidateLimit)
	sctx, cancel := r.storeContext(ctx)
	items, err := r.candidates.SearchCandidates(sctx, q)
	cancel()
	if err != nil {
		log.Error().Err(err).
			Str("text", text).
			RawJSON("extracted", rawOrNull(extraction.Raw.Raw)).
			Interface("filters", res.Filters).
			Str("query", q.Encode()).
			Msg("candidate query failed")
		metrics.RecordResponse(ResponseError)
		return nil, fmt.Errorf("candidate query failed: %w", err)
	}
	items = store.ExcludeTastes(items, res.Filters.TasteExclude)

	metrics.RecordCandidates(len(items))
	log.Debug().Int("candidates", len(items)).Str("query", q.Encode()).Msg("candidates loaded")

	if len(items) == 0 {
		return respond(&Response{Type: ResponseEmpty, Message: MessageNoMatch}), nil
	}

	sel := r.selectPicks(ctx, text, items)
	log.Debug().Str("outcome", sel.Outcome).Interface("picks", sel.Picks).Msg("picks selected")

	picked := r.assemble(ctx, sel, items, catalog, res.Liquid)
	if len(picked) == 0 {
		return respond(&Response{Type: ResponseEmpty, Message: MessageNoPicks}), nil
	}

	return respond(&Response{
		Type:            ResponseOK,
		Picks:           picked,
		Followup:        sel.Followup,
		CandidatesCount: len(items),
	}), nil
}

func respond(resp *Response) *Response {
	metrics.RecordResponse(resp.Type)
	return resp
}

func rawOrNull(raw string) []byte {
	if raw == "" {
		return []byte("null")
	}
	return []byte(raw)
}
