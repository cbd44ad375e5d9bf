package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/maj/doc-classifier/internal/core"
	"github.com/maj/doc-classifier/internal/oracle"
	"github.com/maj/doc-classifier/internal/utils"
	"go.uber.org/zap"
)

// OllamaClient is an implementation of the OracleClient interface using
// a local Ollama server's /api/generate endpoint.
type OllamaClient struct {
	httpClient    *http.Client
	baseURL       string
	modelName     string
	temperature   float32
	topP          float32
	numPredict    int
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// generateRequest is the Ollama /api/generate request body. Streaming
// is always disabled; format "json" constrains decoding on the server.
type generateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Format  string                 `json:"format,omitempty"`
	Options map[string]interface{} `json:"options,omitempty"`
}

// generateResponse is the subset of the Ollama response we consume.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaClient creates a new Ollama client
func NewOllamaClient(
	httpClient *http.Client,
	baseURL string,
	modelName string,
	numPredict int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *OllamaClient {
	return &OllamaClient{
		httpClient:    httpClient,
		baseURL:       baseURL,
		modelName:     modelName,
		numPredict:    numPredict,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// DetectSubscription asks the model whether the email is a subscription notice.
func (c *OllamaClient) DetectSubscription(ctx context.Context, doc *core.Document) (*core.SubscriptionFinding, error) {
	body := c.textProcessor.ProcessText(doc.Body, c.maxBodySize)
	prompt := oracle.BuildSubscriptionPrompt(doc.Sender, doc.Subject, body)

	text, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return oracle.ParseSubscriptionResponse(text)
}

// ClassifyDocument asks the model to type an OCR'd document.
func (c *OllamaClient) ClassifyDocument(ctx context.Context, text, filename string) (*core.DocumentFinding, error) {
	content := c.textProcessor.ProcessText(text, c.maxBodySize)
	prompt := oracle.BuildDocumentPrompt(filename, content)

	out, err := c.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}
	return oracle.ParseDocumentResponse(out, oracle.DocumentScoreScale)
}

// ModelName identifies the backing model for result attribution.
func (c *OllamaClient) ModelName() string {
	return c.modelName
}

// generate issues a single non-streaming completion request.
func (c *OllamaClient) generate(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{
		Model:  c.modelName,
		Prompt: prompt,
		Stream: false,
		Format: "json",
		Options: map[string]interface{}{
			"temperature": c.temperature,
			"top_p":       c.topP,
			"num_predict": c.numPredict,
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal Ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build Ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Ollama: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read Ollama response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("Ollama returned status %d: %s", resp.StatusCode, string(raw))
	}

	var genResp generateResponse
	if err := json.Unmarshal(raw, &genResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal Ollama response: %w", err)
	}
	if genResp.Response == "" {
		return "", fmt.Errorf("empty response from Ollama model %s", c.modelName)
	}

	c.logger.Debug("Ollama completion received",
		zap.String("model", c.modelName),
		zap.Int("response_size", len(genResp.Response)))

	return genResp.Response, nil
}
