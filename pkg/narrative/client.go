// Package narrative asks Gemini for a short written commentary on the
// computed activity aggregates. The pipeline never depends on it; the CLI
// only calls it when explicitly requested.
package narrative

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"google.golang.org/genai"
)

// Response is the structured narrative returned by the model.
type Response struct {
	Headline        string `json:"headline"`
	Summary         string `json:"summary"`
	ConfidenceLevel string `json:"confidence_level"` // "high", "medium", or "low"
}

// Cache stores generated narratives keyed on model and prompt so repeated
// runs over the same aggregates do not re-call the API.
type Cache interface {
	Get(key string) (data []byte, etag string, ok bool)
	Set(key string, data []byte, etag string)
}

// Client calls the Gemini API.
type Client struct {
	logger     *slog.Logger
	cache      Cache // optional
	apiKey     string
	model      string
	gcpProject string
}

// NewClient creates a Gemini client. With an empty apiKey the client falls
// back to Vertex AI with Application Default Credentials and gcpProject.
// cache may be nil to disable response caching.
func NewClient(apiKey, model, gcpProject string, cache Cache, logger *slog.Logger) *Client {
	return &Client{
		apiKey:     apiKey,
		model:      model,
		gcpProject: gcpProject,
		cache:      cache,
		logger:     logger,
	}
}

// Generate produces a narrative for the given evidence prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (*Response, error) {
	if cached := c.checkCache(prompt); cached != nil {
		return cached, nil
	}

	client, err := c.createClient(ctx)
	if err != nil {
		return nil, err
	}

	modelName, contents, genConfig := c.configureRequest(prompt)

	resp, err := c.generateWithRetry(ctx, client, modelName, contents, genConfig)
	if err != nil {
		return nil, err
	}

	narrative, err := c.parseResponse(resp)
	if err != nil {
		return nil, err
	}
	c.cacheResponse(prompt, narrative)
	return narrative, nil
}

func (c *Client) cacheKey(prompt string) string {
	return fmt.Sprintf("genai:%s:%s", c.modelName(), prompt)
}

// checkCache returns a previously generated narrative for the same model and
// prompt, or nil on a miss or an unusable cached value.
func (c *Client) checkCache(prompt string) *Response {
	if c.cache == nil {
		return nil
	}

	data, _, found := c.cache.Get(c.cacheKey(prompt))
	if !found {
		return nil
	}

	var result Response
	if err := json.Unmarshal(data, &result); err != nil {
		c.logger.Debug("failed to unmarshal cached narrative", "error", err)
		return nil
	}
	if result.Summary == "" {
		c.logger.Warn("cached narrative is empty, fetching fresh")
		return nil
	}
	c.logger.Debug("using cached narrative", "headline", result.Headline)
	return &result
}

func (c *Client) cacheResponse(prompt string, narrative *Response) {
	if c.cache == nil {
		return
	}
	data, err := json.Marshal(narrative)
	if err != nil {
		c.logger.Debug("failed to marshal narrative for cache", "error", err)
		return
	}
	c.cache.Set(c.cacheKey(prompt), data, "")
}

func (c *Client) createClient(ctx context.Context) (*genai.Client, error) {
	var config *genai.ClientConfig
	if c.apiKey != "" {
		config = &genai.ClientConfig{
			Backend: genai.BackendGeminiAPI,
			APIKey:  c.apiKey,
		}
		c.logger.Debug("using Gemini API with API key")
	} else {
		config = &genai.ClientConfig{
			Backend:  genai.BackendVertexAI,
			Project:  c.gcpProject,
			Location: "us-central1",
		}
		c.logger.Debug("using Vertex AI with default credentials", "project", c.gcpProject)
	}

	client, err := genai.NewClient(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return client, nil
}

func (c *Client) modelName() string {
	name := c.model
	if name == "" {
		name = "gemini-2.5-flash-lite"
	}
	return strings.TrimPrefix(name, "models/")
}

func (c *Client) configureRequest(prompt string) (string, []*genai.Content, *genai.GenerateContentConfig) {
	modelName := c.modelName()

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	maxTokens := int32(1200)
	temperature := float32(0.2)
	genConfig := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  maxTokens,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"headline": {
					Type:        genai.TypeString,
					Description: "One-sentence finding about the cohort's activity patterns",
				},
				"summary": {
					Type:        genai.TypeString,
					Description: "Two to four sentences describing the most notable age and gender contrasts in the aggregates",
				},
				"confidence_level": {
					Type:        genai.TypeString,
					Enum:        []string{"high", "medium", "low"},
					Description: "How strongly the aggregates support the summary",
				},
			},
			PropertyOrdering: []string{"headline", "summary", "confidence_level"},
			Required:         []string{"headline", "summary", "confidence_level"},
		},
	}
	return modelName, contents, genConfig
}

func (c *Client) generateWithRetry(ctx context.Context, client *genai.Client, modelName string,
	contents []*genai.Content, config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	const maxRetries = 3
	baseDelay := 100 * time.Millisecond
	jitter := 50 * time.Millisecond

	for attempt := 0; ; attempt++ {
		resp, err := client.Models.GenerateContent(ctx, modelName, contents, config)
		if err == nil {
			return resp, nil
		}
		if attempt == maxRetries {
			return nil, fmt.Errorf("gemini call failed after %d attempts: %w", maxRetries+1, err)
		}
		if !isTransientError(err) {
			return nil, fmt.Errorf("non-transient gemini error: %w", err)
		}

		delay := baseDelay*time.Duration(1<<uint(attempt)) + time.Duration(rand.Int64N(int64(jitter)))
		c.logger.Debug("retrying gemini call", "attempt", attempt+1, "delay_ms", delay.Milliseconds(), "error", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
}

func isTransientError(err error) bool {
	errStr := strings.ToLower(err.Error())
	for _, indicator := range []string{
		"rate limit", "quota", "timeout", "deadline", "unavailable",
		"internal server error", "502", "503", "504",
	} {
		if strings.Contains(errStr, indicator) {
			return true
		}
	}
	return false
}

func (c *Client) parseResponse(resp *genai.GenerateContentResponse) (*Response, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from gemini")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return nil, fmt.Errorf("no content in gemini response")
	}
	text := candidate.Content.Parts[0].Text
	if text == "" {
		return nil, fmt.Errorf("empty text in gemini response")
	}

	var narrative Response
	if err := json.Unmarshal([]byte(text), &narrative); err != nil {
		return nil, fmt.Errorf("parsing gemini response: %w", err)
	}
	if narrative.Summary == "" {
		return nil, fmt.Errorf("gemini response missing summary")
	}
	return &narrative, nil
}
