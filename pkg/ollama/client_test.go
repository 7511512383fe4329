package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeModelJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"trailing comma", `{"a":[1,2,],}`, `{"a":[1,2]}`},
		{"block comment", `{"a":/* one */1}`, `{"a":1}`},
		{"line comment", "{\n// note\n\"a\":1}", "{\n\n\"a\":1}"},
		{"prose around", `Here you go: {"a":1} hope it helps`, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizeModelJSON(tt.in))
		})
	}
}

func TestParseLocateResult(t *testing.T) {
	res := parseLocateResult("```json\n" + `{"primary":{"label":"moon","confidence":0.9,"box":{"x":0.1,"y":0.2,"w":0.3,"h":0.4}},"description":"full moon",}` + "\n```")
	assert.Equal(t, "moon", res.Primary.Label)
	assert.Equal(t, 0.9, res.Primary.Confidence)
	assert.Equal(t, 0.3, res.Primary.Box.W)
	assert.Equal(t, "full moon", res.Description)
}

func TestParseLocateResultFallbacks(t *testing.T) {
	assert.Equal(t, "unclear image", parseLocateResult("I see a nebula").Primary.Label)
	assert.Equal(t, "parse error", parseLocateResult(`{"primary": nope}`).Primary.Label)
}

func TestNewClientInvalidURL(t *testing.T) {
	_, err := NewClient("localhost")
	assert.Error(t, err)

	_, err = NewClient("http://localhost:11434/api/chat")
	assert.NoError(t, err)
}

func TestModelOptions(t *testing.T) {
	assert.Equal(t, 0.7, modelOptions("openbmb/minicpm-v4.5")["temperature"])
	assert.Equal(t, 0.2, modelOptions("llava")["temperature"])
	assert.NotContains(t, modelOptions("llava"), "num_ctx")
}

func TestLocateSubject(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Content string   `json:"content"`
			Images  []string `json:"images"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)

		answer := `{"primary":{"label":"comet","confidence":0.6,"box":{"x":0.5,"y":0.5,"w":0.2,"h":0.2}},"description":"a comet"}`
		resp := map[string]any{
			"model":   "llava",
			"message": map[string]any{"role": "assistant", "content": answer},
			"done":    true,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	res, err := c.LocateSubject(context.Background(), "llava", "find it", []byte{0xff, 0xd8})
	require.NoError(t, err)

	assert.Equal(t, "comet", res.Primary.Label)
	assert.Equal(t, 0.2, res.Primary.Box.W)
	assert.Equal(t, "llava", got.Model)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "find it", got.Messages[0].Content)
	assert.Len(t, got.Messages[0].Images, 1)
}

func TestLocateSubjectServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"model not found"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.LocateSubject(context.Background(), "missing", "p", []byte{1})
	assert.Error(t, err)
}
