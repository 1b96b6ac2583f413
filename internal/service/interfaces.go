package service

import (
	"context"

	"github.com/tidwall/gjson"

	"github.com/pageza/proteinpick/backend/internal/model"
	"github.com/pageza/proteinpick/backend/internal/query"
)

// ChatCompleter returns the JSON object found in an LLM reply.
type ChatCompleter interface {
	ChatJSON(ctx context.Context, call string, messages []Message) (gjson.Result, error)
}

// CandidateStore executes candidate queries.
type CandidateStore interface {
	SearchCandidates(ctx context.Context, q query.Query) ([]model.FlavorItem, error)
}

// KeywordCatalog reads the taste keyword catalog in display order.
type KeywordCatalog interface {
	ListTasteKeywords(ctx context.Context) ([]model.TasteKeyword, error)
}

// ImageResolver turns a stored image reference into a URL clients can load.
type ImageResolver interface {
	ResolveImageURL(ctx context.Context, stored string) (string, error)
}
