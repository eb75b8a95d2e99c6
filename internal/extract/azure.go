package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/invite-sh/server/internal/config"
)

// Invoker performs the external model call: prompt in, raw response text out.
type Invoker interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// eventListSchema constrains the model output to a single object holding an
// ordered list of events. title/start/end are required at the schema level;
// the validator re-checks them because schema enforcement is best-effort on
// the provider side.
var eventListSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"events": map[string]interface{}{
			"type": "array",
			"items": map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"title":       map[string]interface{}{"type": "string"},
					"start":       map[string]interface{}{"type": "string"},
					"end":         map[string]interface{}{"type": "string"},
					"allDay":      map[string]interface{}{"type": "boolean"},
					"rRule":       map[string]interface{}{"type": []string{"string", "null"}},
					"description": map[string]interface{}{"type": []string{"string", "null"}},
					"location":    map[string]interface{}{"type": []string{"string", "null"}},
					"busy":        map[string]interface{}{"type": "boolean"},
				},
				"required":             []string{"title", "start", "end"},
				"additionalProperties": false,
			},
		},
	},
	"required":             []string{"events"},
	"additionalProperties": false,
}

// AzureClient invokes an Azure OpenAI chat deployment. Sampling is pinned to
// temperature 0 and output is capped at a fixed token budget so the call is
// as deterministic and bounded as the provider allows.
type AzureClient struct {
	client     *resty.Client
	deployment string
	apiVersion string
	maxTokens  int
}

func NewAzureClient(cfg *config.Config) *AzureClient {
	c := resty.New().
		SetBaseURL(cfg.AzureBaseURL()).
		SetHeader("Content-Type", "application/json").
		SetHeader("api-key", cfg.AzureOpenAIAPIKey).
		SetTimeout(cfg.ExtractTimeout)

	return &AzureClient{
		client:     c,
		deployment: cfg.AzureOpenAIDeploymentID,
		apiVersion: cfg.AzureOpenAIAPIVersion,
		maxTokens:  cfg.MaxOutputTokens,
	}
}

type chatRequest struct {
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type       string      `json:"type"`
	JSONSchema *jsonSchema `json:"json_schema,omitempty"`
}

type jsonSchema struct {
	Name   string      `json:"name"`
	Strict bool        `json:"strict"`
	Schema interface{} `json:"schema"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Complete sends the prompt and returns the raw structured-output text.
func (a *AzureClient) Complete(ctx context.Context, prompt string) (string, error) {
	body := chatRequest{
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: 0,
		MaxTokens:   a.maxTokens,
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchema{
				Name:   "calendar_events",
				Strict: true,
				Schema: eventListSchema,
			},
		},
	}

	resp, err := a.client.R().
		SetContext(ctx).
		SetQueryParam("api-version", a.apiVersion).
		SetBody(&body).
		Post(fmt.Sprintf("/openai/deployments/%s/chat/completions", a.deployment))
	if err != nil {
		return "", fmt.Errorf("model request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return "", fmt.Errorf("model status %d: %s", resp.StatusCode(), resp.String())
	}

	var out chatResponse
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return "", fmt.Errorf("model response decode: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("model error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("model returned no choices")
	}
	return out.Choices[0].Message.Content, nil
}
