package controllers

import (
	"github.com/shashiranjanraj/propelyu/app/services"
	"github.com/shashiranjanraj/propelyu/pkg/ctx"
	"github.com/shashiranjanraj/propelyu/pkg/workerpool"
)

type suggestPriceRequest struct {
	Category    string `json:"category"    validate:"required"`
	Description string `json:"description" validate:"required"`
}

type AIController struct {
	suggestions *services.SuggestionService
	pool        *workerpool.Pool
}

func NewAIController(suggestions *services.SuggestionService, pool *workerpool.Pool) *AIController {
	return &AIController{suggestions: suggestions, pool: pool}
}

// SuggestPrice handles POST /ai/suggest-price.
func (h *AIController) SuggestPrice(c *ctx.Context) {
	var in suggestPriceRequest
	if !c.BindJSON(&in) {
		return
	}
	c.Success(h.suggestions.SuggestPrice(c.Context(), in.Description))
}

// SimilarHouses handles GET /ai/similar-houses/{id}.
func (h *AIController) SimilarHouses(c *ctx.Context) {
	ads, err := h.suggestions.SimilarByPriceBand(c.Context(), c.Param("id"))
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(map[string]any{"similar_adverts": ads})
}

// Retrain handles POST /ai/retrain-model. Training runs on the worker pool.
func (h *AIController) Retrain(c *ctx.Context) {
	if err := h.suggestions.RetrainInBackground(h.pool); err != nil {
		c.Fail(err)
		return
	}
	c.Accepted("Model retraining initiated.")
}
