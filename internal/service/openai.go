package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"projectsearch/internal/config"
	"projectsearch/internal/logger"
	"projectsearch/internal/utils"
)

// OpenAIClient handles OpenAI-compatible API interactions
type OpenAIClient struct {
	config     *config.OpenAIConfig
	httpClient *http.Client
	schema     *gojsonschema.Schema
	log        logger.Logger
}

// NewOpenAIClient creates a new OpenAI-compatible client
func NewOpenAIClient(cfg *config.OpenAIConfig, log logger.Logger) (*OpenAIClient, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(filterSchema))
	if err != nil {
		return nil, fmt.Errorf("compile filter schema: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenAIClient{
		config:     cfg,
		schema:     schema,
		log:        log,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// IsEnabled returns whether the client is configured and ready
func (c *OpenAIClient) IsEnabled() bool {
	return c != nil && c.config.Enabled
}

// ChatCompletionRequest represents a chat completion request
type ChatCompletionRequest struct {
	Model          string          `json:"model"`
	Messages       []ChatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
}

// ChatMessage represents a single message in the conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat specifies the format of the response
type ResponseFormat struct {
	Type string `json:"type"` // "json_object" or "text"
}

// ChatCompletionResponse represents the API response
type ChatCompletionResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int         `json:"index"`
		Message      ChatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// ChatCompletion performs a chat completion request
func (c *OpenAIClient) ChatCompletion(ctx context.Context, req ChatCompletionRequest) (*ChatCompletionResponse, error) {
	if !c.IsEnabled() {
		return nil, ErrModelUnavailable
	}

	if req.Model == "" {
		req.Model = c.config.ChatModel
	}
	if req.MaxTokens == 0 && c.config.ChatMaxTokens > 0 {
		req.MaxTokens = c.config.ChatMaxTokens
	}

	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.config.APIBase)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}

	var result ChatCompletionResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal response: %v", ErrModelResponseInvalid, err)
	}

	return &result, nil
}

const filterSystemPrompt = `You extract search filters from Indian real-estate queries.
Respond ONLY with one JSON object with exactly these keys:
- city: lowercase city name or null
- locality: lowercase locality or neighbourhood name or null
- bhk: positive integer bedroom count or null
- budget_lakhs_min: minimum budget in lakhs (1 crore = 100 lakhs) or null
- budget_lakhs_max: maximum budget in lakhs or null
- possession_status: "ready", "under-construction" or null
- amenities: array of amenities such as "gym", "swimming pool", "parking", "clubhouse"
- free_text_terms: array of remaining meaningful words (project names, descriptors)

Rules:
- "under 1.2 Cr" means budget_lakhs_max 120
- "between 80 lakh and 1 crore" means budget_lakhs_min 80 and budget_lakhs_max 100
- "ready to move" means possession_status "ready"
- Never invent values that are not in the query; use null or [] instead

Example:
Query: "3BHK in Baner Pune under 1.2 Cr with gym"
Response: {"city": "pune", "locality": "baner", "bhk": 3, "budget_lakhs_min": null, "budget_lakhs_max": 120, "possession_status": null, "amenities": ["gym"], "free_text_terms": []}`

const filterSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"properties": {
		"city": {"type": ["string", "null"]},
		"locality": {"type": ["string", "null"]},
		"bhk": {"type": ["integer", "null"], "minimum": 1, "maximum": 20},
		"budget_lakhs_min": {"type": ["number", "null"], "minimum": 0},
		"budget_lakhs_max": {"type": ["number", "null"], "exclusiveMinimum": 0},
		"possession_status": {"type": ["string", "null"]},
		"amenities": {"type": ["array", "null"], "items": {"type": "string"}},
		"free_text_terms": {"type": ["array", "null"], "items": {"type": "string"}}
	}
}`

// ExtractFilters asks the model for a filter object, then decodes and validates the reply
func (c *OpenAIClient) ExtractFilters(ctx context.Context, query string) (*AIFilterResponse, error) {
	req := ChatCompletionRequest{
		Messages: []ChatMessage{
			{Role: "system", Content: filterSystemPrompt},
			{Role: "user", Content: query},
		},
		Temperature:    c.config.ChatTemperature,
		ResponseFormat: &ResponseFormat{Type: "json_object"},
	}

	resp, err := c.ChatCompletion(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrModelResponseInvalid)
	}

	content := resp.Choices[0].Message.Content
	result, err := c.decodeFilters(content)
	if err != nil {
		c.log.Debug("model reply rejected", map[string]interface{}{
			"content": truncate(content, 300),
			"error":   err.Error(),
		})
		return nil, err
	}
	return result, nil
}

func (c *OpenAIClient) decodeFilters(content string) (*AIFilterResponse, error) {
	var doc map[string]interface{}
	if err := utils.ParseAIJSON(content, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelResponseInvalid, err)
	}

	res, err := c.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("%w: schema validation: %v", ErrModelResponseInvalid, err)
	}
	if !res.Valid() {
		msgs := make([]string, len(res.Errors()))
		for i, e := range res.Errors() {
			msgs[i] = e.String()
		}
		return nil, fmt.Errorf("%w: %s", ErrModelResponseInvalid, strings.Join(msgs, "; "))
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelResponseInvalid, err)
	}
	var out AIFilterResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrModelResponseInvalid, err)
	}

	if out.BudgetLakhsMin != nil && out.BudgetLakhsMax != nil && *out.BudgetLakhsMin > *out.BudgetLakhsMax {
		return nil, fmt.Errorf("%w: budget_lakhs_min (%.2f) is greater than budget_lakhs_max (%.2f)",
			ErrModelResponseInvalid, *out.BudgetLakhsMin, *out.BudgetLakhsMax)
	}
	return &out, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
