package service

import (
	"context"
	"errors"

	"projectsearch/internal/logger"
	"projectsearch/internal/metrics"
	"projectsearch/internal/model"
)

// QueryParser turns free text into a Filter. Implementations share one output contract.
type QueryParser interface {
	Name() string
	Available() bool
	Parse(ctx context.Context, text string) (model.Filter, error)
}

// ParserSelector picks the model parser when asked for and available, and falls back
// to the rule-based parser on any failure.
type ParserSelector struct {
	rules QueryParser
	model QueryParser
	log   logger.Logger
}

// NewParserSelector creates a selector. modelParser may be nil.
func NewParserSelector(rules QueryParser, modelParser QueryParser, log logger.Logger) *ParserSelector {
	return &ParserSelector{rules: rules, model: modelParser, log: log}
}

// Parse returns the filter and the name of the parser that produced it. It never fails.
func (s *ParserSelector) Parse(ctx context.Context, text string, useExternalModel bool) (model.Filter, string) {
	if useExternalModel {
		if f, ok := s.tryModel(ctx, text); ok {
			return f, s.model.Name()
		}
	}
	f, err := s.rules.Parse(ctx, text)
	if err != nil {
		s.log.Error("rule-based parser failed", map[string]interface{}{"error": err.Error()})
		return model.Filter{}, s.rules.Name()
	}
	return f, s.rules.Name()
}

func (s *ParserSelector) tryModel(ctx context.Context, text string) (model.Filter, bool) {
	if s.model == nil || !s.model.Available() {
		s.fallback("unavailable", ErrModelUnavailable)
		return model.Filter{}, false
	}
	f, err := s.model.Parse(ctx, text)
	if err != nil {
		s.fallback(fallbackReason(err), err)
		return model.Filter{}, false
	}
	return f, true
}

func (s *ParserSelector) fallback(reason string, err error) {
	metrics.ParserFallbacks.WithLabelValues(reason).Inc()
	s.log.Warn("external model parser unavailable, using rule-based parser", map[string]interface{}{
		"reason": reason,
		"error":  err.Error(),
	})
}

func fallbackReason(err error) string {
	switch {
	case errors.Is(err, ErrModelUnavailable):
		return "unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, ErrModelResponseInvalid):
		return "invalid_response"
	default:
		return "error"
	}
}
