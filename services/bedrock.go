package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"investment-tracker/config"
	"investment-tracker/observability"
)

const (
	defaultBedrockMaxTokens        = 1024
	defaultBedrockAnthropicVersion = "bedrock-2023-05-31"
)

// bedrockClient is the subset of the runtime client we call
type bedrockClient interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockService invokes a hosted Claude model through AWS Bedrock
type BedrockService struct {
	client           bedrockClient
	model            string
	maxTokens        int
	anthropicVersion string
}

// ClaudeRequest is the Bedrock messages payload for Claude models
type ClaudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system,omitempty"`
	Messages         []ClaudeMessage `json:"messages"`
}

type ClaudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ClaudeResponse struct {
	ID      string `json:"id"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

// NewBedrockService loads AWS credentials from the default chain
func NewBedrockService(ctx context.Context, cfg config.BedrockConfig) (*BedrockService, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	var opts []func(*bedrockruntime.Options)
	if cfg.Endpoint != "" {
		opts = append(opts, func(o *bedrockruntime.Options) {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		})
	}

	s := &BedrockService{
		client:           bedrockruntime.NewFromConfig(awsCfg, opts...),
		model:            cfg.ModelID,
		maxTokens:        cfg.MaxTokens,
		anthropicVersion: cfg.AnthropicVersion,
	}
	if s.maxTokens <= 0 {
		s.maxTokens = defaultBedrockMaxTokens
	}
	if s.anthropicVersion == "" {
		s.anthropicVersion = defaultBedrockAnthropicVersion
	}
	return s, nil
}

// InvokeWithPrompt sends a single-turn prompt and returns the first text block
func (s *BedrockService) InvokeWithPrompt(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody, err := json.Marshal(ClaudeRequest{
		AnthropicVersion: s.anthropicVersion,
		MaxTokens:        s.maxTokens,
		System:           systemPrompt,
		Messages:         []ClaudeMessage{{Role: "user", Content: userPrompt}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	metrics := observability.GetMetrics()
	metrics.RecordExternalAPIRequest(BreakerBedrock, "invoke")
	timer := metrics.NewTimer()
	defer timer.ObserveExternalAPI(BreakerBedrock, "invoke")

	output, err := WithCircuitBreaker(ctx, BreakerBedrock, func() (*bedrockruntime.InvokeModelOutput, error) {
		return s.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
			ModelId:     aws.String(s.model),
			Body:        reqBody,
			ContentType: aws.String("application/json"),
		})
	})
	if err != nil {
		metrics.RecordExternalAPIError(BreakerBedrock, "invoke", errorType(err))
		return "", fmt.Errorf("%w: failed to invoke model: %w", ErrProvider, err)
	}

	var response ClaudeResponse
	if err := json.Unmarshal(output.Body, &response); err != nil {
		return "", fmt.Errorf("%w: failed to unmarshal response: %w", ErrProvider, err)
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("%w: empty response from model", ErrProvider)
	}

	return response.Content[0].Text, nil
}
