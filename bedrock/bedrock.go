package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bedrockproxy"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
)

const (
	AnthropicVersion = "bedrock-2023-05-31"
	MaxTokens        = 4096
	Temperature      = 0.7
	contentTypeJSON  = "application/json"
)

// InvokeModelAPI is the part of *bedrockruntime.Client the adapter needs.
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Client turns a prompt into generated text with one InvokeModel call.
// It holds no mutable state and is shared by all invocations of a warm instance.
type Client struct {
	api     InvokeModelAPI
	modelID string
}

// New wraps api; modelID is sent with every InvokeModel call.
func New(api InvokeModelAPI, modelID string) *Client {
	return &Client{api: api, modelID: modelID}
}

// NewRuntimeClient builds the Bedrock runtime client from the default AWS config chain.
func NewRuntimeClient(ctx context.Context, region string) (*bedrockruntime.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}
	return bedrockruntime.NewFromConfig(cfg), nil
}

// ModelID is the Bedrock model every call of this client targets.
func (c *Client) ModelID() string {
	return c.modelID
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float64   `json:"temperature"`
	Messages         []message `json:"messages"`
}

type response struct {
	Content []ContentBlock `json:"content"`
}

// RequestBody renders the Anthropic messages envelope for a single user prompt.
func RequestBody(prompt string) ([]byte, error) {
	return json.Marshal(request{
		AnthropicVersion: AnthropicVersion,
		MaxTokens:        MaxTokens,
		Temperature:      Temperature,
		Messages: []message{
			{Role: "user", Content: prompt},
		},
	})
}

// GenerateText sends prompt to the model and returns the concatenated text blocks.
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	log := bedrockproxy.Logger

	body, err := RequestBody(prompt)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	log.Debug("Invoke model", "model", c.modelID, "prompt_bytes", len(prompt))
	out, err := c.api.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        body,
		ContentType: aws.String(contentTypeJSON),
		Accept:      aws.String(contentTypeJSON),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return "", newProviderError(apiErr)
		}
		return "", fmt.Errorf("invoke model %s: %w", c.modelID, err)
	}

	return ParseResponse(out.Body)
}

// ParseResponse extracts the text of every "text" block of a response body, in order.
func ParseResponse(body []byte) (string, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", &ResponseParseError{Err: err}
	}

	var text strings.Builder
	for _, block := range resp.Content {
		switch block.Kind {
		case KindText:
			text.WriteString(block.Text)
		case KindOther:
			// tool_use, image and friends carry no answer text
		}
	}
	if text.Len() == 0 {
		return "", ErrEmptyGeneration
	}
	return text.String(), nil
}
