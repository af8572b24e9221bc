package feedback_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/speechcoach/backend/internal/feedback"
)

func TestChatClientComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))

		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama", body["model"])
		assert.InDelta(t, 0.7, body["temperature"], 1e-9)
		assert.EqualValues(t, 500, body["max_tokens"])
		msgs, _ := body["messages"].([]any)
		assert.Len(t, msgs, 2)

		_, _ = io.WriteString(w, `{"choices":[{"message":{"role":"assistant","content":"Nice work!"}}]}`)
	}))
	defer srv.Close()

	c := feedback.NewChatClient(feedback.ChatConfig{APIKey: "key", BaseURL: srv.URL + "/", Model: "llama"}, nil)
	out, err := c.Complete(context.Background(), "sys", "user", 0.7, 500)
	require.NoError(t, err)
	assert.Equal(t, "Nice work!", out)
}

func TestChatClientErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{"quota", http.StatusTooManyRequests, `{"error":"quota"}`, "status 429"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "empty completion"},
		{"bad json", http.StatusOK, `nope`, "decode response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			_, err := feedback.NewChatClient(feedback.ChatConfig{BaseURL: srv.URL}, nil).Complete(context.Background(), "s", "u", 0.7, 10)
			require.ErrorIs(t, err, feedback.ErrProvider)
			assert.Contains(t, err.Error(), tt.wantMsg)

			var pe *feedback.ProviderError
			require.ErrorAs(t, err, &pe)
		})
	}
}
