package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/go-resty/resty/v2"
	"github.com/ollama/ollama/api"
)

const gatewayTimeout = 120 * time.Second

// GatewayModel talks to an ollama-compatible generate endpoint behind an
// API gateway: POST {base}/api/generate with a bearer token, stream off.
// It implements the eino chat-model interface so it can sit in compose
// chains like any other backend.
type GatewayModel struct {
	client *resty.Client
	model  string
}

// NewGatewayModel creates a gateway-backed chat model.
func NewGatewayModel(baseURL, apiKey, modelName string) *GatewayModel {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(gatewayTimeout)
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}

	return &GatewayModel{client: c, model: modelName}
}

// Generate flattens the messages into a single prompt and performs one
// non-streaming generate call.
func (g *GatewayModel) Generate(ctx context.Context, in []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	stream := false
	reqBody := api.GenerateRequest{
		Model:  g.model,
		Prompt: flattenMessages(in),
		Stream: &stream,
	}

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(&reqBody).
		Post("/api/generate")
	if err != nil {
		return nil, fmt.Errorf("gateway request: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("gateway status %d: %s", resp.StatusCode(), resp.String())
	}

	var gr api.GenerateResponse
	if err := sonic.Unmarshal(resp.Body(), &gr); err != nil {
		return nil, fmt.Errorf("gateway decode: %w", err)
	}
	text := gr.Response
	if text == "" {
		// Some gateway deployments answer with {"text": ...} instead.
		var alt struct {
			Text string `json:"text"`
		}
		if err := sonic.Unmarshal(resp.Body(), &alt); err == nil {
			text = alt.Text
		}
	}

	return schema.AssistantMessage(text, nil), nil
}

// Stream satisfies the chat-model interface; the gateway protocol is used
// non-streaming, so the full answer arrives as a single frame.
func (g *GatewayModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := g.Generate(ctx, in, opts...)
	if err != nil {
		return nil, err
	}
	return schema.StreamReaderFromArray([]*schema.Message{msg}), nil
}

// flattenMessages folds a chat transcript into one prompt for the
// completion-style generate endpoint. System text goes first, bare.
func flattenMessages(in []*schema.Message) string {
	var sb strings.Builder
	for i, msg := range in {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(msg.Content)
	}
	return sb.String()
}
