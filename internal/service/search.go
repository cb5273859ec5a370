package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"projectsearch/internal/cache"
	"projectsearch/internal/logger"
	"projectsearch/internal/metrics"
	"projectsearch/internal/model"
	"projectsearch/internal/presenter"
)

const searchLogTimeout = 5 * time.Second

// RowSource supplies the immutable project rows and an identifier for the snapshot
type RowSource interface {
	Rows() []model.ProjectRow
	Fingerprint() string
}

// SearchLogger persists searches and feedback on them
type SearchLogger interface {
	LogSearch(ctx context.Context, entry model.SearchLogEntry) error
	LogFeedback(ctx context.Context, searchID, projectID, action string) (bool, error)
}

// SearchService runs the query pipeline: parse, search, summarize, present
type SearchService struct {
	rows       RowSource
	selector   *ParserSelector
	engine     *SearchEngine
	summarizer *Summarizer
	cache      cache.ResponseCache
	searchLog  SearchLogger
	log        logger.Logger

	defaultTopK int
	maxTopK     int

	pending sync.WaitGroup
}

// ServiceOption configures a SearchService
type ServiceOption func(*SearchService)

// WithCache enables response caching
func WithCache(c cache.ResponseCache) ServiceOption {
	return func(s *SearchService) {
		s.cache = c
	}
}

// WithSearchLog enables search and feedback logging
func WithSearchLog(l SearchLogger) ServiceOption {
	return func(s *SearchService) {
		s.searchLog = l
	}
}

// WithTopK sets the default and maximum result counts
func WithTopK(defaultTopK, maxTopK int) ServiceOption {
	return func(s *SearchService) {
		if defaultTopK > 0 {
			s.defaultTopK = defaultTopK
		}
		if maxTopK > 0 {
			s.maxTopK = maxTopK
		}
	}
}

// NewSearchService creates a new search service
func NewSearchService(
	rows RowSource,
	selector *ParserSelector,
	engine *SearchEngine,
	log logger.Logger,
	opts ...ServiceOption,
) *SearchService {
	s := &SearchService{
		rows:        rows,
		selector:    selector,
		engine:      engine,
		summarizer:  NewSummarizer(),
		log:         log,
		defaultTopK: DefaultTopK,
		maxTopK:     50,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// HandleQuery answers one free-text query. The only error it returns is the
// caller's context error; every dependency failure degrades to a fallback.
func (s *SearchService) HandleQuery(ctx context.Context, text string, useExternalModel bool, topK int) (*model.QueryResponse, error) {
	startTime := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	topK = s.clampTopK(topK)

	key := cache.Key(s.rows.Fingerprint(), text, useExternalModel, topK)
	if resp := s.cached(ctx, key); resp != nil {
		resp.SearchID = uuid.NewString()
		resp.Cached = true
		resp.Took = time.Since(startTime).Milliseconds()
		s.record(text, resp)
		return resp, nil
	}

	filter, parserName := s.selector.Parse(ctx, text, useExternalModel)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outcome := s.engine.SearchWithTrace(s.rows.Rows(), filter, topK)

	resp := &model.QueryResponse{
		SearchID:    uuid.NewString(),
		Filters:     filter,
		Summary:     s.summarizer.Summarize(outcome.Results, filter),
		Cards:       presenter.ToCards(outcome.Results),
		Results:     outcome.Results,
		Relaxations: outcome.Relaxations,
		Parser:      parserName,
	}
	resp.Took = time.Since(startTime).Milliseconds()

	metrics.QueriesTotal.WithLabelValues(parserName).Inc()
	metrics.QueryDuration.WithLabelValues(parserName).Observe(time.Since(startTime).Seconds())
	metrics.ResultCount.Observe(float64(len(resp.Results)))

	s.store(ctx, key, resp)
	s.record(text, resp)

	s.log.Debug("query handled", map[string]interface{}{
		"search_id":   resp.SearchID,
		"parser":      parserName,
		"results":     len(resp.Results),
		"relaxations": strings.Join(resp.Relaxations, ","),
		"took_ms":     resp.Took,
	})
	return resp, nil
}

// LogFeedback records a user action against a logged search
func (s *SearchService) LogFeedback(ctx context.Context, searchID, projectID, action string) error {
	if s.searchLog == nil {
		return ErrFeedbackDisabled
	}
	found, err := s.searchLog.LogFeedback(ctx, searchID, projectID, action)
	if err != nil {
		return err
	}
	if !found {
		return ErrSearchNotFound
	}
	return nil
}

// Wait blocks until pending search log writes finish
func (s *SearchService) Wait() {
	s.pending.Wait()
}

func (s *SearchService) clampTopK(topK int) int {
	if topK <= 0 {
		topK = s.defaultTopK
	}
	if topK > s.maxTopK {
		topK = s.maxTopK
	}
	return topK
}

func (s *SearchService) cached(ctx context.Context, key string) *model.QueryResponse {
	if s.cache == nil {
		return nil
	}
	resp, err := s.cache.Get(ctx, key)
	switch {
	case err == nil:
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return resp
	case errors.Is(err, cache.ErrCacheMiss):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		metrics.DependencyErrors.WithLabelValues("redis").Inc()
		s.log.Warn("response cache lookup failed", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

func (s *SearchService) store(ctx context.Context, key string, resp *model.QueryResponse) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, resp); err != nil {
		metrics.DependencyErrors.WithLabelValues("redis").Inc()
		s.log.Warn("response cache store failed", map[string]interface{}{"error": err.Error()})
	}
}

// record writes the search log entry in the background
func (s *SearchService) record(text string, resp *model.QueryResponse) {
	if s.searchLog == nil {
		return
	}
	entry := model.SearchLogEntry{
		SearchID:       resp.SearchID,
		Query:          text,
		Parser:         resp.Parser,
		Filters:        resp.Filters,
		Relaxations:    resp.Relaxations,
		ResultCount:    len(resp.Results),
		ProjectIDs:     make([]string, len(resp.Results)),
		ResponseTimeMs: int(resp.Took),
	}
	for i, r := range resp.Results {
		entry.ProjectIDs[i] = r.Project.ProjectID
	}

	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), searchLogTimeout)
		defer cancel()
		if err := s.searchLog.LogSearch(ctx, entry); err != nil {
			metrics.DependencyErrors.WithLabelValues("search_log").Inc()
			s.log.Warn("failed to log search", map[string]interface{}{
				"search_id": entry.SearchID,
				"error":     err.Error(),
			})
		}
	}()
}
