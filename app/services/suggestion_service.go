package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shashiranjanraj/propelyu/app/models"
	"github.com/shashiranjanraj/propelyu/app/repositories"
	"github.com/shashiranjanraj/propelyu/pkg/apperr"
	"github.com/shashiranjanraj/propelyu/pkg/logger"
	"github.com/shashiranjanraj/propelyu/pkg/metrics"
	"github.com/shashiranjanraj/propelyu/pkg/suggest"
	"github.com/shashiranjanraj/propelyu/pkg/workerpool"
	"go.uber.org/atomic"
)

// ModelUnavailable is the message returned while no model is trained.
const ModelUnavailable = "Price suggestion model is not available due to insufficient data."

// ModelState is one trained model and its metadata. Never mutated after it
// is published.
type ModelState struct {
	Model     *suggest.Model
	Version   uint64
	Samples   int
	TrainedAt time.Time
}

type PriceSuggestion struct {
	SuggestedPrice float64 `json:"suggested_price"`
	Message        string  `json:"message,omitempty"`
	ModelVersion   uint64  `json:"model_version,omitempty"`
}

// SuggestionService serves price suggestions from the current model and
// swaps in retrained models atomically. A nil state means untrained.
type SuggestionService struct {
	adverts repositories.AdvertRepository

	current atomic.Pointer[ModelState]
	version atomic.Uint64
	trainMu sync.Mutex
	now     func() time.Time
}

func NewSuggestionService(adverts repositories.AdvertRepository) *SuggestionService {
	return &SuggestionService{adverts: adverts, now: time.Now}
}

// State returns the published model, or nil when untrained.
func (s *SuggestionService) State() *ModelState {
	return s.current.Load()
}

// Retrain fits a model on every advert and publishes it. With fewer than two
// adverts the service becomes untrained and suggest.ErrInsufficientData is
// returned. Any other failure keeps the previous model.
func (s *SuggestionService) Retrain(ctx context.Context) (*ModelState, error) {
	s.trainMu.Lock()
	defer s.trainMu.Unlock()

	start := time.Now()
	defer func() { metrics.ModelTrainDuration.Observe(time.Since(start).Seconds()) }()

	samples, err := s.adverts.TrainingSamples(ctx)
	if err != nil {
		metrics.ModelTrainings.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("retrain: load samples: %w", err)
	}

	m, err := suggest.Train(ctx, samples)
	if errors.Is(err, suggest.ErrInsufficientData) {
		s.current.Store(nil)
		metrics.ModelTrainings.WithLabelValues("insufficient_data").Inc()
		metrics.ModelVersion.Set(0)
		metrics.ModelSamples.Set(float64(len(samples)))
		return nil, err
	}
	if err != nil {
		metrics.ModelTrainings.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("retrain: %w", err)
	}

	state := &ModelState{
		Model:     m,
		Version:   s.version.Inc(),
		Samples:   m.Samples(),
		TrainedAt: s.now().UTC(),
	}
	s.current.Store(state)

	metrics.ModelTrainings.WithLabelValues("trained").Inc()
	metrics.ModelVersion.Set(float64(state.Version))
	metrics.ModelSamples.Set(float64(state.Samples))
	logger.WithCtx(ctx).Info("price model trained",
		"version", state.Version, "samples", state.Samples, "vocabulary", m.VocabularySize())
	return state, nil
}

// RetrainInBackground queues a retrain on pool. A full pool is reported as
// Unavailable.
func (s *SuggestionService) RetrainInBackground(pool *workerpool.Pool) error {
	err := pool.Submit("model:retrain", func(ctx context.Context) {
		if _, err := s.Retrain(ctx); err != nil {
			if errors.Is(err, suggest.ErrInsufficientData) {
				logger.Info("price model left untrained", "reason", err)
				return
			}
			logger.Error("price model retrain failed", "error", err)
		}
	})
	if err != nil {
		return apperr.Unavailable(err, "Model retraining is busy, try again later.")
	}
	return nil
}

// SuggestPrice predicts a price for description. Untrained is not an error:
// the suggestion is 0 with an explanatory message.
func (s *SuggestionService) SuggestPrice(_ context.Context, description string) PriceSuggestion {
	state := s.current.Load()
	if state == nil {
		return PriceSuggestion{SuggestedPrice: 0, Message: ModelUnavailable}
	}
	return PriceSuggestion{
		SuggestedPrice: suggest.RoundPrice(state.Model.Predict(description)),
		ModelVersion:   state.Version,
	}
}

// SimilarByPriceBand lists up to five other adverts of the same category
// priced within 20% of the target.
func (s *SuggestionService) SimilarByPriceBand(ctx context.Context, id string) ([]models.Advert, error) {
	if _, err := repositories.ParseID(id); err != nil {
		return nil, apperr.Unprocessable("Invalid advert ID received!")
	}
	target, err := s.adverts.FindByID(ctx, id)
	if err != nil {
		return nil, storeErr(err, "similar by price", advertNotFound)
	}
	ads, err := s.adverts.FindInPriceBand(ctx, repositories.PriceBandQuery{Target: *target})
	if err != nil {
		return nil, fmt.Errorf("similar by price: %w", err)
	}
	return ads, nil
}
