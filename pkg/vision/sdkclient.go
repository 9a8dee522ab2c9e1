package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const extractPrompt = `You are a product analyst identifying visible attributes of a %s (%s) in the image.
%s
Identify these attributes: %s

For each attribute, report the value you can see. If an attribute is not
visible or you cannot tell, use the string "unknown".

Return a valid JSON object:
{"attributes": {"<attribute>": <value>, ...}, "confidence": <0.0-1.0 overall confidence>}`

const comparePrompt = `You are comparing two shopping listings against a reference product photo.

The first image is the reference product. The second image is candidate A.
The third image is candidate B.

Judge which candidate is more likely the exact same product as the reference.
Score each candidate 0-100 on visual similarity to the reference.

Return a valid JSON object:
{"score_a": <0-100>, "score_b": <0-100>, "winner": "a" or "b", "reasoning": "<brief explanation>"}`

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
}

// SDKOption configures the SDK-backed client.
type SDKOption func(*sdkClient)

// WithModel sets the model used for vision calls.
func WithModel(model string) SDKOption {
	return func(c *sdkClient) {
		c.model = model
	}
}

// WithMaxTokens sets the response token budget.
func WithMaxTokens(n int64) SDKOption {
	return func(c *sdkClient) {
		c.maxTokens = n
	}
}

// NewClient creates a vision client backed by the SDK.
func NewClient(apiKey string, opts ...SDKOption) Client {
	c := &sdkClient{
		client: sdk.NewClient(
			option.WithAPIKey(apiKey),
		),
		model:     "claude-haiku-4-5-20251001",
		maxTokens: 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *sdkClient) ExtractAttributes(ctx context.Context, req ExtractRequest) (*ExtractResult, error) {
	if req.ImageURL == "" {
		return nil, eris.New("vision: extract requires an image URL")
	}

	hint := ""
	if req.Context != "" {
		hint = "Listing context: " + req.Context + "\n"
	}
	prompt := fmt.Sprintf(extractPrompt,
		req.Subcategory, req.Category, hint, strings.Join(req.Attributes, ", "))

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(
				sdk.NewImageBlock(sdk.URLImageSourceParam{URL: req.ImageURL}),
				sdk.NewTextBlock(prompt),
			),
		},
		Temperature: sdk.Float(0),
	})
	if err != nil {
		return nil, eris.Wrap(err, "vision: extract attributes")
	}

	result, err := parseExtractResponse(messageText(msg))
	if err != nil {
		return nil, err
	}
	result.Usage = TokenUsage{
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
	return result, nil
}

func (c *sdkClient) CompareProducts(ctx context.Context, req CompareRequest) (*CompareResult, error) {
	if req.ReferenceImageURL == "" || req.ImageA == "" || req.ImageB == "" {
		return nil, eris.New("vision: compare requires three image URLs")
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(
				sdk.NewImageBlock(sdk.URLImageSourceParam{URL: req.ReferenceImageURL}),
				sdk.NewImageBlock(sdk.URLImageSourceParam{URL: req.ImageA}),
				sdk.NewImageBlock(sdk.URLImageSourceParam{URL: req.ImageB}),
				sdk.NewTextBlock(comparePrompt),
			),
		},
		Temperature: sdk.Float(0),
	})
	if err != nil {
		return nil, eris.Wrap(err, "vision: compare products")
	}

	result, err := parseCompareResponse(messageText(msg))
	if err != nil {
		return nil, err
	}
	result.Usage = TokenUsage{
		InputTokens:  msg.Usage.InputTokens,
		OutputTokens: msg.Usage.OutputTokens,
	}
	return result, nil
}

// messageText concatenates all text blocks of a response.
func messageText(msg *sdk.Message) string {
	var sb strings.Builder
	for _, b := range msg.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	return sb.String()
}

// parseExtractResponse parses the extraction JSON. A malformed response is an
// error here; the pipeline treats it as a skipped candidate.
func parseExtractResponse(text string) (*ExtractResult, error) {
	cleaned := cleanJSON(text)

	var raw struct {
		Attributes map[string]any `json:"attributes"`
		Confidence float64        `json:"confidence"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		zap.L().Warn("vision: failed to parse extraction JSON", zap.Error(err))
		return nil, eris.Wrap(err, "vision: parse extraction response")
	}
	if raw.Attributes == nil {
		raw.Attributes = make(map[string]any)
	}
	if raw.Confidence < 0 {
		raw.Confidence = 0
	}
	if raw.Confidence > 1 {
		raw.Confidence = 1
	}
	return &ExtractResult{Attributes: raw.Attributes, Confidence: raw.Confidence}, nil
}

func parseCompareResponse(text string) (*CompareResult, error) {
	cleaned := cleanJSON(text)

	var raw struct {
		ScoreA    float64 `json:"score_a"`
		ScoreB    float64 `json:"score_b"`
		Winner    string  `json:"winner"`
		Reasoning string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		zap.L().Warn("vision: failed to parse comparison JSON", zap.Error(err))
		return nil, eris.Wrap(err, "vision: parse comparison response")
	}

	winner := strings.ToLower(strings.TrimSpace(raw.Winner))
	if winner != "a" && winner != "b" {
		// Fall back to the scores when the declared winner is malformed.
		winner = "a"
		if raw.ScoreB > raw.ScoreA {
			winner = "b"
		}
	}

	return &CompareResult{
		ScoreA:    raw.ScoreA,
		ScoreB:    raw.ScoreB,
		Winner:    winner,
		Reasoning: raw.Reasoning,
	}, nil
}

// cleanJSON strips markdown code fences and surrounding prose from an LLM
// response, keeping the outermost JSON object.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start >= 0 && end > start {
		text = text[start : end+1]
	}

	return strings.TrimSpace(text)
}
