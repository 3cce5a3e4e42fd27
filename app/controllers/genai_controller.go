package controllers

import (
	"github.com/shashiranjanraj/propelyu/app/services"
	"github.com/shashiranjanraj/propelyu/pkg/ctx"
)

type generateTextForm struct {
	Prompt string `form:"prompt" validate:"required"`
}

type GenAIController struct {
	genai *services.GenAIService
}

func NewGenAIController(genai *services.GenAIService) *GenAIController {
	return &GenAIController{genai: genai}
}

// GenerateText handles POST /genai/generate-text with a form field "prompt".
func (h *GenAIController) GenerateText(c *ctx.Context) {
	var in generateTextForm
	if !c.BindForm(&in) {
		return
	}
	content, err := h.genai.GenerateText(c.Context(), in.Prompt)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]string{"content": content})
}
