package gemini

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/maj/doc-classifier/internal/core"
	"github.com/maj/doc-classifier/internal/oracle"
	"github.com/maj/doc-classifier/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// GeminiClient is an implementation of the OracleClient interface using Google Gemini
type GeminiClient struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &GeminiClient{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// DetectSubscription asks the model whether the email is a subscription notice.
func (c *GeminiClient) DetectSubscription(ctx context.Context, doc *core.Document) (*core.SubscriptionFinding, error) {
	body := c.textProcessor.ProcessText(doc.Body, c.maxBodySize)
	prompt := oracle.BuildSubscriptionPrompt(doc.Sender, doc.Subject, body)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return oracle.ParseSubscriptionResponse(text)
}

// ClassifyDocument asks the model to type an OCR'd document.
func (c *GeminiClient) ClassifyDocument(ctx context.Context, text, filename string) (*core.DocumentFinding, error) {
	content := c.textProcessor.ProcessText(text, c.maxBodySize)
	prompt := oracle.BuildDocumentPrompt(filename, content)

	out, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return oracle.ParseDocumentResponse(out, oracle.DocumentScoreScale)
}

// ModelName identifies the backing model for result attribution.
func (c *GeminiClient) ModelName() string {
	return c.modelName
}

func (c *GeminiClient) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}

	responseText := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])

	c.logger.Debug("Gemini completion received",
		zap.String("model", c.modelName),
		zap.Int("response_size", len(responseText)))

	return responseText, nil
}
