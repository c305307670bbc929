package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Categorizer defines the interface for grouping partner stores into segments.
type Categorizer interface {
	Categorize(ctx context.Context, stores []string) (map[string][]string, error)
}

// AICategorizer implements Categorizer using Google Generative AI.
type AICategorizer struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *zap.Logger
}

// NewAICategorizer creates a new AICategorizer.
func NewAICategorizer(ctx context.Context, apiKey string, logger *zap.Logger) (*AICategorizer, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required for AICategorizer")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	model := client.GenerativeModel("gemini-2.5-flash-lite")
	model.ResponseMIMEType = "application/json"

	return &AICategorizer{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// Close closes the underlying client.
func (c *AICategorizer) Close() {
	c.client.Close()
}

// Categorize groups a list of store names into merchant segments. Batches of
// 50 keep each prompt within token limits; a failed batch is logged and
// skipped so the remaining stores still get grouped.
func (c *AICategorizer) Categorize(ctx context.Context, stores []string) (map[string][]string, error) {
	if len(stores) == 0 {
		return nil, nil
	}

	batchSize := 50
	allSegments := make(map[string][]string)

	for i := 0; i < len(stores); i += batchSize {
		end := i + batchSize
		if end > len(stores) {
			end = len(stores)
		}

		batch := stores[i:end]
		segments, err := c.categorizeBatch(ctx, batch)
		if err != nil {
			c.logger.Warn("store categorization batch failed",
				zap.Int("from", i), zap.Int("to", end), zap.Error(err))
			continue
		}

		for k, v := range segments {
			allSegments[k] = v
		}
	}

	return allSegments, nil
}

func (c *AICategorizer) categorizeBatch(ctx context.Context, stores []string) (map[string][]string, error) {
	prompt := fmt.Sprintf(`You are a merchant categorizer for a Brazilian loyalty/cashback portal.
Group the following partner stores into standard merchant segments in Portuguese (e.g., Moda, Eletrônicos, Viagens, Mercado, Beleza & Saúde, Casa & Decoração, Esportes, Livros & Educação, Pets, Serviços).
A store can belong to multiple segments.
Return ONLY a JSON object where keys are store names and values are arrays of segment strings.
Do not include markdown formatting like `+"```json"+`.

Stores:
%s`, strings.Join(stores, "\n"))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("no content generated")
	}

	var result map[string][]string
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			// Clean up potential markdown code blocks if the model ignores instructions
			cleanTxt := strings.TrimSpace(string(txt))
			cleanTxt = strings.TrimPrefix(cleanTxt, "```json")
			cleanTxt = strings.TrimPrefix(cleanTxt, "```")
			cleanTxt = strings.TrimSuffix(cleanTxt, "```")

			if err := json.Unmarshal([]byte(cleanTxt), &result); err != nil {
				return nil, fmt.Errorf("failed to unmarshal JSON response: %w. Response: %s", err, cleanTxt)
			}
			break // Only process the first text part
		}
	}

	return result, nil
}
