package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeminiClient_RequiresAPIKey(t *testing.T) {
	client, err := NewGeminiClient(context.Background(), DefaultConfig(), "")
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestNewClient_UnsupportedProvider(t *testing.T) {
	client, err := NewClient(context.Background(), &Config{Provider: "other"}, "key")
	require.Error(t, err)
	assert.Nil(t, client)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestResponseText(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{genai.Text("Question: "), genai.Blob{MIMEType: "image/png"}, genai.Text("why?")}},
		}},
	}

	text, err := responseText(resp)
	require.NoError(t, err)
	assert.Equal(t, "Question: why?", text)
}

func TestResponseText_Failures(t *testing.T) {
	tests := []struct {
		name    string
		resp    *genai.GenerateContentResponse
		blocked bool
	}{
		{"nil", nil, false},
		{"no candidates", &genai.GenerateContentResponse{}, false},
		{"no content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}, false},
		{"no text", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []genai.Part{genai.Blob{MIMEType: "image/png"}}}}},
		}, false},
		{"prompt blocked", &genai.GenerateContentResponse{
			PromptFeedback: &genai.PromptFeedback{BlockReason: genai.BlockReasonSafety},
		}, true},
		{"answer stopped for safety", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := responseText(tt.resp)
			require.Error(t, err)

			var blocked *BlockedError
			assert.Equal(t, tt.blocked, errors.As(err, &blocked))
		})
	}
}
