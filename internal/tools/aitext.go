package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
	"google.golang.org/genai"
	"wallet-mcp/internal/tool"
)

// DefaultTextModel is used when no model is configured.
const DefaultTextModel = "gemini-2.0-flash"

// TextGenerator abstracts the Gemini API call so tests can substitute a fake.
type TextGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator wraps the official SDK client to satisfy TextGenerator.
type GeminiGenerator struct {
	client *genai.Client
}

// NewGeminiGenerator creates a GeminiGenerator from an SDK client.
func NewGeminiGenerator(client *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{client: client}
}

// GenerateContent calls the SDK's GenerateContent method.
func (g *GeminiGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.client.Models.GenerateContent(ctx, model, contents, config)
}

// GenerateText returns a tool producing model-written text for a prompt.
func GenerateText(gen TextGenerator, model string) tool.Tool {
	if model == "" {
		model = DefaultTextModel
	}
	return tool.Tool{
		Name:        "generate_text",
		Description: "Generate text with an AI model from a prompt",
		Schema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"prompt": {Type: "string"},
			},
			Required: []string{"prompt"},
		},
		Execute: func(ctx context.Context, params map[string]any) (any, error) {
			prompt, _ := params["prompt"].(string)
			if prompt == "" {
				return nil, errors.New("prompt is required")
			}
			if gen == nil {
				return nil, errors.New("text generation is not configured, set GEMINI_API_KEY")
			}

			contents := []*genai.Content{
				{Role: "user", Parts: []*genai.Part{genai.NewPartFromText(prompt)}},
			}
			resp, err := gen.GenerateContent(ctx, model, contents, nil)
			if err != nil {
				return nil, fmt.Errorf("generating text: %w", err)
			}
			text, err := responseText(resp)
			if err != nil {
				return nil, err
			}
			return map[string]any{"model": model, "text": text}, nil
		},
	}
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", errors.New("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return "", errors.New("empty candidate content")
	}
	var text string
	for _, part := range candidate.Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}
	return text, nil
}
