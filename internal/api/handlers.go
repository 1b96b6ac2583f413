package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"

	"github.com/pageza/proteinpick/backend/internal/model"
	"github.com/pageza/proteinpick/backend/internal/service"
)

// HealthCheck returns the health status of the API
func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"message": "proteinpick API is running",
	})
}

// Recommender answers one user turn.
type Recommender interface {
	Recommend(ctx context.Context, text string) (*service.Response, error)
}

// RecommendHandler serves the recommendation endpoint.
type RecommendHandler struct {
	recommender Recommender
}

// NewRecommendHandler creates a new RecommendHandler instance
func NewRecommendHandler(recommender Recommender) *RecommendHandler {
	return &RecommendHandler{recommender: recommender}
}

// Recommend accepts {"message": "..."} or {"messages": [..., {"content": "..."}]}.
func (h *RecommendHandler) Recommend(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil || !gjson.ValidBytes(body) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	resp, err := h.recommender.Recommend(c.Request.Context(), userText(gjson.ParseBytes(body)))
	if errors.Is(err, service.ErrEmptyMessage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Empty"})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// userText picks the user turn: message when it is a string, otherwise the
// content of the last element of messages.
func userText(body gjson.Result) string {
	if msg := body.Get("message"); msg.Type == gjson.String {
		return msg.String()
	}
	if msgs := body.Get("messages"); msgs.IsArray() {
		all := msgs.Array()
		if len(all) == 0 {
			return ""
		}
		if content := all[len(all)-1].Get("content"); content.Exists() && content.Type != gjson.Null {
			return content.String()
		}
	}
	return ""
}

// KeywordCatalog reads the taste keyword catalog.
type KeywordCatalog interface {
	ListTasteKeywords(ctx context.Context) ([]model.TasteKeyword, error)
}

// TasteKeywordHandler serves the keyword catalog to the filter panel.
type TasteKeywordHandler struct {
	catalog KeywordCatalog
}

// NewTasteKeywordHandler creates a new TasteKeywordHandler instance
func NewTasteKeywordHandler(catalog KeywordCatalog) *TasteKeywordHandler {
	return &TasteKeywordHandler{catalog: catalog}
}

// List returns the catalog ordered by sort_order, then label.
func (h *TasteKeywordHandler) List(c *gin.Context) {
	keywords, err := h.catalog.ListTasteKeywords(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	if keywords == nil {
		keywords = []model.TasteKeyword{}
	}
	c.JSON(http.StatusOK, gin.H{"taste_keywords": keywords})
}

// Invalidator drops cached catalog data.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// AdminHandler serves catalog maintenance routes.
type AdminHandler struct {
	cache Invalidator
}

// NewAdminHandler creates a new AdminHandler. cache is nil when caching is off.
func NewAdminHandler(cache Invalidator) *AdminHandler {
	return &AdminHandler{cache: cache}
}

// InvalidateKeywords drops the cached keyword catalog.
func (h *AdminHandler) InvalidateKeywords(c *gin.Context) {
	if h.cache == nil {
		c.JSON(http.StatusOK, gin.H{"invalidated": false, "reason": "keyword cache disabled"})
		return
	}
	if err := h.cache.Invalidate(c.Request.Context()); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"invalidated": true})
}
