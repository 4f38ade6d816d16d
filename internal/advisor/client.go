package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// ErrNoToken is returned when neither the config nor the environment holds a token
var ErrNoToken = errors.New("no API token provided: set advisor.api_token or ANTHROPIC_API_KEY")

// Guide is implemented by anything that can answer a guidance request
type Guide interface {
	Guide(ctx context.Context, req *Request) (*Guidance, error)
	Model() string
}

// Client wraps the Anthropic API client
type Client struct {
	client  *anthropic.Client
	model   string
	timeout time.Duration
}

// NewClient creates a new advisor client
func NewClient(model string, apiToken string, timeoutSeconds int) (*Client, error) {
	token := apiToken
	if token == "" {
		token = os.Getenv("ANTHROPIC_API_KEY")
	}
	if token == "" {
		return nil, ErrNoToken
	}

	client := anthropic.NewClient(option.WithAPIKey(token))

	timeout := time.Duration(timeoutSeconds) * time.Second
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client:  client,
		model:   mapModelName(model),
		timeout: timeout,
	}, nil
}

const defaultModel = "claude-sonnet-4-20250514"

var modelAliases = map[string]string{
	"haiku":  "claude-3-5-haiku-latest",
	"sonnet": defaultModel,
	"opus":   "claude-opus-4-20250514",
}

// mapModelName resolves an alias; full model ids pass through unchanged
func mapModelName(name string) string {
	if id, ok := modelAliases[strings.ToLower(name)]; ok {
		return id
	}
	if strings.HasPrefix(name, "claude-") {
		return name
	}
	return defaultModel
}

// Guide asks the model how to migrate one manual finding
func (c *Client) Guide(ctx context.Context, req *Request) (*Guidance, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.F(c.model),
		MaxTokens: anthropic.F(int64(1024)),
		System: anthropic.F([]anthropic.TextBlockParam{
			anthropic.NewTextBlock(GuidanceSystemPrompt),
		}),
		Messages: anthropic.F([]anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(BuildGuidancePrompt(req))),
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}

	responseText := extractTextContent(message)
	if responseText == "" {
		return nil, errors.New("empty response from API")
	}

	guidance, err := parseGuidance(responseText, req.RuleID)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	guidance.TokensUsed = int(message.Usage.InputTokens + message.Usage.OutputTokens)

	return guidance, nil
}

// Model returns the resolved model ID
func (c *Client) Model() string {
	return c.model
}

func extractTextContent(message *anthropic.Message) string {
	var text strings.Builder
	for _, block := range message.Content {
		if block.Type == anthropic.ContentBlockTypeText {
			text.WriteString(block.Text)
		}
	}
	return text.String()
}

func parseGuidance(text string, ruleID string) (*Guidance, error) {
	text = extractJSON(text)

	var raw struct {
		Summary     string   `json:"summary"`
		Steps       []string `json:"steps"`
		Replacement string   `json:"replacement"`
		Caveats     string   `json:"caveats"`
	}
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, err
	}
	if strings.TrimSpace(raw.Summary) == "" && len(raw.Steps) == 0 {
		return nil, errors.New("response has neither summary nor steps")
	}

	return &Guidance{
		RuleID:      ruleID,
		Summary:     strings.TrimSpace(raw.Summary),
		Steps:       raw.Steps,
		Replacement: raw.Replacement,
		Caveats:     strings.TrimSpace(raw.Caveats),
	}, nil
}

// extractJSON returns the outermost JSON object of a reply, unwrapping a markdown fence if present
func extractJSON(text string) string {
	text = strings.TrimSpace(text)

	if open := strings.Index(text, "```"); open != -1 {
		body := text[open+3:]
		// Drop the fence info string ("json") up to the first newline
		if nl := strings.IndexByte(body, '\n'); nl != -1 {
			body = body[nl+1:]
		}
		if end := strings.LastIndex(body, "```"); end != -1 {
			body = body[:end]
		}
		text = body
	}

	first, last := strings.IndexByte(text, '{'), strings.LastIndexByte(text, '}')
	if first != -1 && last > first {
		text = text[first : last+1]
	}
	return strings.TrimSpace(text)
}
