package groq

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quinn-backend/internal/application/port/output"
	"quinn-backend/internal/domain/entity"
)

func TestConvertResponseMessage_WithContent(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role:    "assistant",
		Content: "Hello, world!",
	}

	result := convertResponseMessage(msg)

	assert.Equal(t, entity.RoleAssistant, result.Role)
	assert.Equal(t, "Hello, world!", result.Content)
}

func TestConvertResponseMessage_WithToolCalls(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role: "assistant",
		ToolCalls: []openai.ToolCall{
			{
				ID:   "call_123",
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      "click",
					Arguments: `{"text":"Book now"}`,
				},
			},
		},
	}

	result := convertResponseMessage(msg)

	require.Len(t, result.ToolCalls, 1)
	assert.Equal(t, "call_123", result.ToolCalls[0].ID)
	assert.Equal(t, "click", result.ToolCalls[0].Name)
}

func TestConvertMessages_ToolRoundTrip(t *testing.T) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: "system prompt"},
		{Role: entity.RoleAssistant, ToolCalls: []entity.ToolCall{
			{ID: "call_1", Name: "fill", Arguments: `{"selector":"#email","text":"a@b.c"}`},
		}},
		{Role: entity.RoleTool, ToolCallID: "call_1", Name: "fill", Content: "filled"},
	}

	result := convertMessages(messages)

	require.Len(t, result, 3)
	assert.Equal(t, "system", result[0].Role)
	require.Len(t, result[1].ToolCalls, 1)
	assert.Equal(t, "fill", result[1].ToolCalls[0].Function.Name)
	assert.Equal(t, "call_1", result[2].ToolCallID)
}

func TestChat(t *testing.T) {
	var gotReq openai.ChatCompletionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: `{"category":"quote"}`}},
			},
		})
	}))
	defer srv.Close()

	a := New(Config{APIKey: "test", Model: "llama-3.3-70b-versatile", BaseURL: srv.URL})

	resp, err := a.Chat(context.Background(), output.ChatRequest{
		Messages:    []entity.Message{{Role: entity.RoleUser, Content: "classify this"}},
		Temperature: 0.0,
		MaxTokens:   500,
	})
	require.NoError(t, err)

	assert.Equal(t, `{"category":"quote"}`, resp.Message.Content)
	assert.Equal(t, "llama-3.3-70b-versatile", gotReq.Model)
	assert.Equal(t, 500, gotReq.MaxTokens)
	assert.Empty(t, gotReq.Tools, "no tools requested, none sent")
}

func TestChatNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{})
	}))
	defer srv.Close()

	a := New(Config{APIKey: "test", Model: "m", BaseURL: srv.URL})

	_, err := a.Chat(context.Background(), output.ChatRequest{
		Messages: []entity.Message{{Role: entity.RoleUser, Content: "hi"}},
	})
	assert.Error(t, err)
}

func TestDefaultConfigPointsAtGroq(t *testing.T) {
	cfg := DefaultConfig("key", "model")
	assert.Equal(t, defaultBaseURL, cfg.BaseURL)
}
