package openai

import (
	"context"
	"fmt"

	"github.com/maj/doc-classifier/internal/core"
	"github.com/maj/doc-classifier/internal/oracle"
	"github.com/maj/doc-classifier/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// OpenAIClient is an implementation of the OracleClient interface using OpenAI
type OpenAIClient struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewOpenAIClient creates a new OpenAI client
func NewOpenAIClient(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OpenAIClient {
	return &OpenAIClient{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// DetectSubscription asks the model whether the email is a subscription notice.
func (c *OpenAIClient) DetectSubscription(ctx context.Context, doc *core.Document) (*core.SubscriptionFinding, error) {
	body := c.textProcessor.ProcessText(doc.Body, c.maxBodySize)
	prompt := oracle.BuildSubscriptionPrompt(doc.Sender, doc.Subject, body)

	text, err := c.complete(ctx, "You are a subscription detection system. Respond only with JSON.", prompt)
	if err != nil {
		return nil, err
	}
	return oracle.ParseSubscriptionResponse(text)
}

// ClassifyDocument asks the model to type an OCR'd document.
func (c *OpenAIClient) ClassifyDocument(ctx context.Context, text, filename string) (*core.DocumentFinding, error) {
	content := c.textProcessor.ProcessText(text, c.maxBodySize)
	prompt := oracle.BuildDocumentPrompt(filename, content)

	out, err := c.complete(ctx, "You are a document classification system. Respond only with JSON.", prompt)
	if err != nil {
		return nil, err
	}
	return oracle.ParseDocumentResponse(out, oracle.DocumentScoreScale)
}

// ModelName identifies the backing model for result attribution.
func (c *OpenAIClient) ModelName() string {
	return c.modelName
}

func (c *OpenAIClient) complete(ctx context.Context, system, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: system,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}

	// Add response format if supported by the client version
	responseFormat := openai.ChatCompletionResponseFormat{
		Type: "json",
	}
	req.ResponseFormat = &responseFormat

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}

	c.logger.Debug("OpenAI completion received",
		zap.String("model", c.modelName),
		zap.String("completion_id", resp.ID))

	return resp.Choices[0].Message.Content, nil
}
