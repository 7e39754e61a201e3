// Package llm talks to the OpenAI chat completions API for the two
// recipe-curation helpers: tag suggestion and ingredient normalization.
// These utilities share nothing with the deployer beyond configuration.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/imroc/req/v3"

	"github.com/cooklabs/cookdrive/internal/version"
)

const (
	DefaultModel  = "gpt-4o-mini"
	defaultAPIURL = "https://api.openai.com/v1"

	epChatCompletions = "/chat/completions"
)

var ErrNoChoices = errors.New("llm: empty completion response")

// APIError is an OpenAI API error response.
type APIError struct {
	Status int `json:"-"`
	Detail struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("openai api error: %d %s %s", e.Status, e.Detail.Type, e.Detail.Message)
}

// Client is a minimal chat-completions client constrained to JSON replies.
type Client struct {
	client *req.Client
	model  string
}

func New(apiKey string) *Client {
	return &Client{
		client: req.C().
			SetBaseURL(defaultAPIURL).
			SetUserAgent(version.AppName + "/" + version.Version).
			SetCommonBearerAuthToken(apiKey).
			SetCommonErrorResult(&APIError{}).
			SetTimeout(2 * time.Minute),
		model: DefaultModel,
	}
}

// WithModel overrides the default model.
func (c *Client) WithModel(model string) *Client {
	c.model = model
	return c
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// completeJSON sends one user prompt and decodes the JSON object the model
// returns into out.
func (c *Client) completeJSON(ctx context.Context, prompt string, out any) error {
	var completion chatResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(&chatRequest{
			Model:          c.model,
			Messages:       []chatMessage{{Role: "user", Content: prompt}},
			ResponseFormat: &respFormat{Type: "json_object"},
		}).
		SetSuccessResult(&completion).
		Post(epChatCompletions)

	if err != nil {
		return fmt.Errorf("chat completion: %w", err)
	}
	if resp.IsErrorState() {
		if apiErr, ok := resp.ErrorResult().(*APIError); ok && apiErr != nil {
			apiErr.Status = resp.StatusCode
			return apiErr
		}
		return fmt.Errorf("chat completion: unexpected status %d: %s", resp.StatusCode, resp.String())
	}
	if len(completion.Choices) == 0 {
		return ErrNoChoices
	}

	content := completion.Choices[0].Message.Content
	if err := json.Unmarshal([]byte(content), out); err != nil {
		return fmt.Errorf("parse model reply: %w", err)
	}
	return nil
}

// SuggestTags asks the model for normalized, reusable tags for a recipe,
// steering it towards the repository's popular tags.
func (c *Client) SuggestTags(ctx context.Context, recipe, popularTags string) ([]string, error) {
	var reply struct {
		RecommendedTags []string `json:"recommended_tags"`
	}
	prompt := fmt.Sprintf(suggestTagsPrompt, popularTags, recipe)
	if err := c.completeJSON(ctx, prompt, &reply); err != nil {
		return nil, err
	}
	return reply.RecommendedTags, nil
}

// NewItem is a previously unknown ingredient with its assigned aisle.
type NewItem struct {
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Normalization maps recipe ingredients onto the aisle config: either as a
// synonym of an existing item or as a new item in a category.
type Normalization struct {
	Synonyms map[string]string `json:"synonyms"`
	NewItems []NewItem         `json:"new_items"`
}

// NormalizeIngredients classifies unknown ingredients against the known list
// and the existing categories.
func (c *Client) NormalizeIngredients(ctx context.Context, known, categories, unknown []string) (*Normalization, error) {
	var reply Normalization
	prompt := fmt.Sprintf(normalizeIngredientsPrompt,
		joinLines(known), joinLines(categories), joinLines(unknown))
	if err := c.completeJSON(ctx, prompt, &reply); err != nil {
		return nil, err
	}
	if reply.Synonyms == nil {
		reply.Synonyms = map[string]string{}
	}
	return &reply, nil
}

func joinLines(items []string) string {
	out := ""
	for _, item := range items {
		out += "- " + item + "\n"
	}
	if out == "" {
		out = "(none)\n"
	}
	return out
}
