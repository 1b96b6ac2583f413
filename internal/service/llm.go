package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/tidwall/gjson"

	"github.com/pageza/proteinpick/backend/config"
	"github.com/pageza/proteinpick/backend/internal/metrics"
)

// ErrNoJSONObject is returned when neither the reply nor its repair contains
// a parseable JSON object.
var ErrNoJSONObject = errors.New("no JSON object found")

// Message represents a message in the chat
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request represents a chat-completion request
type Request struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
	Stream         bool              `json:"stream"`
}

const repairSystemPrompt = "너는 JSON 리페어 도구야. 반드시 JSON 오브젝트만 출력해. 설명/문장/코드블록 금지."

const repairUserPrompt = "아래 출력은 JSON이 아니거나 깨졌어. 같은 의미로 VALID JSON 오브젝트만 다시 출력해.\n\n"

// ChatClient talks to an OpenAI-compatible chat-completion endpoint. Replies
// are treated as untrusted text that should contain one JSON object.
type ChatClient struct {
	apiKey     string
	apiURL     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
	log        zerolog.Logger
}

// NewChatClient creates a new ChatClient from the LLM settings in cfg.
func NewChatClient(cfg *config.Config, log zerolog.Logger) *ChatClient {
	return &ChatClient{
		apiKey:     cfg.LLMAPIKey,
		apiURL:     cfg.LLMAPIURL,
		model:      cfg.LLMModel,
		timeout:    cfg.LLMTimeout,
		httpClient: &http.Client{},
		log:        log,
	}
}

// ChatJSON sends messages and returns the first JSON object in the reply. When
// the reply holds none, one repair round trip is made before giving up with
// ErrNoJSONObject. call labels the latency metric.
func (c *ChatClient) ChatJSON(ctx context.Context, call string, messages []Message) (gjson.Result, error) {
	out, err := c.complete(ctx, call, messages)
	if err != nil {
		return gjson.Result{}, err
	}
	if obj, ok := firstJSONObject(out); ok {
		return obj, nil
	}

	c.log.Debug().Str("call", call).Str("reply", truncate(out, 400)).Msg("reply is not JSON, requesting repair")

	repaired, err := c.complete(ctx, call+"_repair", []Message{
		{Role: "system", Content: repairSystemPrompt},
		{Role: "user", Content: repairUserPrompt + out},
	})
	if err != nil {
		return gjson.Result{}, err
	}
	if obj, ok := firstJSONObject(repaired); ok {
		return obj, nil
	}
	return gjson.Result{}, ErrNoJSONObject
}

func (c *ChatClient) complete(ctx context.Context, call string, messages []Message) (content string, err error) {
	started := time.Now()
	defer func() { metrics.ObserveLLMCall(call, started, err) }()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	reqBody := Request{
		Model:    c.model,
		Messages: messages,
		ResponseFormat: map[string]string{
			"type": "json_object",
		},
		Temperature: 0.2,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(string(body), 400))
	}

	// OpenAI-style choices first, then Ollama's single message
	parsed := gjson.ParseBytes(body)
	if msg := parsed.Get("choices.0.message.content"); msg.Exists() {
		return msg.String(), nil
	}
	if msg := parsed.Get("message.content"); msg.Exists() {
		return msg.String(), nil
	}
	return "", fmt.Errorf("no response from API")
}

// firstJSONObject strips code fences and parses the span between the first
// '{' and the last '}'.
func firstJSONObject(text string) (gjson.Result, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return gjson.Result{}, false
	}
	candidate := text[start : end+1]
	if !gjson.Valid(candidate) {
		return gjson.Result{}, false
	}
	return gjson.Parse(candidate), true
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
