package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	"github.com/Innominate-Dev/Halal-Stock-Screener/models"
	"github.com/Innominate-Dev/Halal-Stock-Screener/observability"
)

const classifierSystemPrompt = `You are a shariah-compliance analyst. You will be given the business summary of a publicly traded company.

Classify the business described in the summary as exactly one of:
- compliant: the business activities raise no shariah concerns
- non-compliant: the business derives revenue from prohibited activities (gambling, alcohol, tobacco, adult entertainment, interest-based finance, insurance, weapons)
- doubtful: the compliance of the business cannot be determined from the summary, or a material part of its revenue may come from prohibited activities

Respond with the single label only, no explanation.`

// BedrockClassifier classifies free text via a Claude model on AWS Bedrock.
// It backs the classifier strategy of the textual risk evaluation.
type BedrockClassifier struct {
	client bedrockClient
	model  string
}

// bedrockClient is the subset of the Bedrock runtime API the classifier uses
type bedrockClient interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// claudeRequest represents the request format for Claude models via Bedrock
type claudeRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	System           string          `json:"system,omitempty"`
	Messages         []claudeMessage `json:"messages"`
}

// claudeMessage represents a message in the Claude conversation
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse represents the response from Claude models
type claudeResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Role    string `json:"role"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

// NewBedrockClassifier creates a new BedrockClassifier instance
func NewBedrockClassifier(ctx context.Context, region, modelID string) (*BedrockClassifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return &BedrockClassifier{
		client: bedrockruntime.NewFromConfig(cfg),
		model:  modelID,
	}, nil
}

// Classify maps a free-text passage to a compliance label
func (s *BedrockClassifier) Classify(ctx context.Context, text string) (models.TextualLabel, error) {
	return WithCircuitBreaker(ctx, BreakerBedrock, func() (models.TextualLabel, error) {
		metrics := observability.GetMetrics()
		metrics.RecordExternalAPIRequest("bedrock", "classify")
		timer := metrics.NewTimer()
		defer timer.ObserveExternalAPI("bedrock", "classify")

		request := claudeRequest{
			AnthropicVersion: "bedrock-2023-05-31",
			MaxTokens:        16,
			System:           classifierSystemPrompt,
			Messages: []claudeMessage{
				{Role: "user", Content: text},
			},
		}

		reqBody, err := json.Marshal(request)
		if err != nil {
			return "", fmt.Errorf("failed to marshal request: %w", err)
		}

		output, err := s.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
			ModelId:     aws.String(s.model),
			Body:        reqBody,
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			metrics.RecordExternalAPIError("bedrock", "classify", "invoke")
			return "", fmt.Errorf("failed to invoke model: %w", err)
		}

		var response claudeResponse
		if err := json.Unmarshal(output.Body, &response); err != nil {
			metrics.RecordExternalAPIError("bedrock", "classify", "decode")
			return "", fmt.Errorf("failed to unmarshal response: %w", err)
		}

		if len(response.Content) == 0 {
			return "", fmt.Errorf("empty response from model")
		}

		return parseLabel(response.Content[0].Text)
	})
}

// parseLabel normalizes the model output to a TextualLabel
func parseLabel(text string) (models.TextualLabel, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "compliant", "halal":
		return models.LabelCompliant, nil
	case "non-compliant", "noncompliant", "haram":
		return models.LabelNonCompliant, nil
	case "doubtful":
		return models.LabelDoubtful, nil
	default:
		return "", fmt.Errorf("unexpected classifier label %q", text)
	}
}

// Compile-time interface verification
var _ TextClassifierInterface = (*BedrockClassifier)(nil)
