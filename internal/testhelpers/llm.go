package testhelpers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tidwall/gjson"
)

// ChatReply answers one chat-completion request given its system and last
// user prompt.
type ChatReply func(system, user string) string

// NewFakeLLM serves an OpenAI-compatible chat-completion endpoint backed by
// reply. Close is registered with t.Cleanup.
func NewFakeLLM(t *testing.T, reply ChatReply) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		var system, user string
		for _, m := range gjson.GetBytes(body, "messages").Array() {
			switch m.Get("role").String() {
			case "system":
				system = m.Get("content").String()
			case "user":
				user = m.Get("content").String()
			}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": reply(system, user)}},
			},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}
