package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/lshigami/platebank/config"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const plateReadingPrompt = `You are shown a colour vision test plate (an Ishihara-style pseudo-isochromatic image).
Reply with only what a person with normal colour vision reads in the plate: the number, letter or short word.
If nothing can be read, reply with the single word NONE.`

// AnswerAdvisor reads a plate image and proposes the answer a person with normal colour vision would give.
type AnswerAdvisor interface {
	Enabled() bool
	SuggestAnswer(ctx context.Context, image []byte, format string) (string, error)
}

type geminiAdvisor struct {
	client *genai.GenerativeModel
}

func NewGeminiAdvisor(cfg *config.Config) (AnswerAdvisor, error) {
	if cfg.GeminiApiKey == "" {
		log.Warn().Msg("GEMINI_API_KEY is not set. Answer suggestions are disabled.")
		return &geminiAdvisor{}, nil
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(cfg.GeminiApiKey))
	if err != nil {
		log.Error().Err(err).Msg("Failed to create Gemini client")
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(cfg.GeminiModel)
	model.SetTemperature(0)
	return &geminiAdvisor{client: model}, nil
}

func (a *geminiAdvisor) Enabled() bool { return a.client != nil }

func (a *geminiAdvisor) SuggestAnswer(ctx context.Context, image []byte, format string) (string, error) {
	if a.client == nil {
		return "", ErrAdvisorUnavailable
	}

	resp, err := a.client.GenerateContent(ctx, genai.ImageData(format, image), genai.Text(plateReadingPrompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		log.Warn().Interface("geminiResponse", resp).Msg("Gemini response was empty or malformed")
		return "", fmt.Errorf("gemini returned no content")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
