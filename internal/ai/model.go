// Package ai provides the heuristic model ensemble that turns market data
// into trading signals with confidence readings.
package ai

import (
	"context"
	"fmt"
	"time"

	"marketdesk/internal/models"
)

// Model is one member of the ensemble.
type Model interface {
	// Name returns the unique name of the model.
	Name() string
	// Evaluate scores the input. Score is in [-100, +100], positive bullish.
	Evaluate(ctx context.Context, in Input) (*Result, error)
	// Weight returns the model's weight for consensus calculation (0-1).
	Weight() float64
}

// Input carries everything a model may consult.
type Input struct {
	Symbol       string
	Candles      []models.Candle
	Sentiment    *models.SentimentSnapshot
	CurrentPrice float64
}

// Result is one model's reading.
type Result struct {
	ModelName  string
	Score      float64 // -100 bearish to +100 bullish
	Confidence float64 // 0-100
	Reasoning  string
	Timestamp  time.Time
}

// Validate checks that a result is well formed.
func (r *Result) Validate() error {
	if r.ModelName == "" {
		return fmt.Errorf("model name is required")
	}
	if r.Score < -100 || r.Score > 100 {
		return fmt.Errorf("score must be between -100 and 100, got %f", r.Score)
	}
	if r.Confidence < 0 || r.Confidence > 100 {
		return fmt.Errorf("confidence must be between 0 and 100, got %f", r.Confidence)
	}
	if r.Reasoning == "" {
		return fmt.Errorf("reasoning is required")
	}
	return nil
}

// BaseModel provides common functionality for ensemble members.
type BaseModel struct {
	name   string
	weight float64
}

// NewBaseModel creates a base model, clamping weight to [0, 1].
func NewBaseModel(name string, weight float64) BaseModel {
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}
	return BaseModel{name: name, weight: weight}
}

// Name returns the model's name.
func (b *BaseModel) Name() string {
	return b.name
}

// Weight returns the model's consensus weight.
func (b *BaseModel) Weight() float64 {
	return b.weight
}

// NewResult creates a result with common fields populated. Score and
// confidence are clamped to their valid ranges.
func (b *BaseModel) NewResult(score, confidence float64, reasoning string) *Result {
	return &Result{
		ModelName:  b.name,
		Score:      clampScore(score),
		Confidence: ClampConfidence(confidence),
		Reasoning:  reasoning,
		Timestamp:  time.Now(),
	}
}

// ClampConfidence restricts confidence to [0, 100].
func ClampConfidence(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 100 {
		return 100
	}
	return confidence
}

func clampScore(score float64) float64 {
	if score < -100 {
		return -100
	}
	if score > 100 {
		return 100
	}
	return score
}
