package services

import (
	"context"
	"strings"

	"github.com/shashiranjanraj/propelyu/pkg/apperr"
)

// GenAIService exposes free-form text generation to authenticated users.
type GenAIService struct {
	text TextGenerator
}

func NewGenAIService(text TextGenerator) *GenAIService {
	return &GenAIService{text: text}
}

func (s *GenAIService) GenerateText(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", apperr.Validation(map[string]string{"prompt": "The prompt field is required."})
	}
	out, err := s.text.GenerateText(ctx, prompt)
	if err != nil {
		return "", apperr.Unavailable(err, "Text generation failed")
	}
	return out, nil
}
