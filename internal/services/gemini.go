package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// TextModel turns a prompt into free text.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

type GeminiModel struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	log      *zap.Logger
	rateChan chan struct{} // Token bucket
	rateWait time.Duration
}

const defaultRateWait = 30 * time.Second

func NewGeminiModel(ctx context.Context, apiKey, modelName string, concurrentReqs int, log *zap.Logger) (*GeminiModel, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(0.7)
	model.SetMaxOutputTokens(500)

	if concurrentReqs < 1 {
		concurrentReqs = 1
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &GeminiModel{
		client:   client,
		model:    model,
		log:      log,
		rateChan: rateChan,
		rateWait: defaultRateWait,
	}, nil
}

func (g *GeminiModel) Close() {
	g.client.Close()
}

// acquireRate blocks until a rate slot is available
func (g *GeminiModel) acquireRate(ctx context.Context) error {
	timer := time.NewTimer(g.rateWait)
	defer timer.Stop()

	select {
	case <-g.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timeout waiting for Gemini rate slot")
	}
}

func (g *GeminiModel) releaseRate() {
	g.rateChan <- struct{}{}
}

func (g *GeminiModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	if err := g.acquireRate(ctx); err != nil {
		return "", err
	}
	defer g.releaseRate()

	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	for i, cand := range resp.Candidates {
		if cand.FinishReason != genai.FinishReasonStop {
			g.log.Warn("Gemini stopped early",
				zap.Int("candidate", i),
				zap.String("finish_reason", cand.FinishReason.String()))
		}
	}

	return extractText(resp), nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}
