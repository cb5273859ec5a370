package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"projectsearch/internal/logger"
	"projectsearch/internal/model"
	"projectsearch/internal/utils"
)

// MaxModelRetries bounds the retries after a failed model call
const MaxModelRetries = 1

// ModelParser extracts filters with an external chat model
type ModelParser struct {
	client     AIClient
	timeout    time.Duration
	maxRetries int
	log        logger.Logger
}

// NewModelParser creates a model parser. A nil client makes the parser unavailable.
// maxRetries is clamped to [0, MaxModelRetries].
func NewModelParser(client AIClient, timeout time.Duration, maxRetries int, log logger.Logger) *ModelParser {
	if maxRetries < 0 {
		maxRetries = 0
	}
	if maxRetries > MaxModelRetries {
		maxRetries = MaxModelRetries
	}
	return &ModelParser{client: client, timeout: timeout, maxRetries: maxRetries, log: log}
}

func (p *ModelParser) Name() string { return "external-model" }

// Available reports whether an API client is configured
func (p *ModelParser) Available() bool {
	return p.client != nil && p.client.IsEnabled()
}

// Parse calls the model with a per-attempt timeout, retrying up to maxRetries times
func (p *ModelParser) Parse(ctx context.Context, text string) (model.Filter, error) {
	if !p.Available() {
		return model.Filter{}, ErrModelUnavailable
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return model.Filter{}, nil
	}

	var lastErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return model.Filter{}, err
		}
		resp, err := p.extract(ctx, text)
		if err == nil {
			return toFilter(resp), nil
		}
		lastErr = err
		if errors.Is(err, ErrModelUnavailable) || ctx.Err() != nil {
			break
		}
		p.log.Debug("model parse attempt failed", map[string]interface{}{
			"attempt": attempt + 1,
			"error":   err.Error(),
		})
	}
	if ctx.Err() != nil {
		return model.Filter{}, ctx.Err()
	}
	return model.Filter{}, fmt.Errorf("model parse failed: %w", lastErr)
}

func (p *ModelParser) extract(ctx context.Context, text string) (*AIFilterResponse, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	resp, err := p.client.ExtractFilters(ctx, text)
	if err != nil {
		if ctx.Err() != nil && !errors.Is(err, ctx.Err()) {
			return nil, fmt.Errorf("%w: %v", ctx.Err(), err)
		}
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("%w: empty reply", ErrModelResponseInvalid)
	}
	return resp, nil
}

// toFilter applies the same normalization the rule-based parser guarantees
func toFilter(r *AIFilterResponse) model.Filter {
	var f model.Filter
	if v := normalizeText(r.City); v != "" {
		f.City = &v
	}
	if v := normalizeText(r.Locality); v != "" {
		f.Locality = &v
	}
	if r.BHK != nil && *r.BHK > 0 {
		f.BHK = model.IntPtr(*r.BHK)
	}
	if r.BudgetLakhsMin != nil && *r.BudgetLakhsMin > 0 {
		f.BudgetLakhsMin = model.FloatPtr(*r.BudgetLakhsMin)
	}
	if r.BudgetLakhsMax != nil && *r.BudgetLakhsMax > 0 {
		f.BudgetLakhsMax = model.FloatPtr(*r.BudgetLakhsMax)
	}
	if r.PossessionStatus != nil {
		if p := model.ParsePossession(*r.PossessionStatus); p != model.PossessionUnknown {
			f.Possession = &p
		}
	}
	seen := map[string]bool{}
	for _, a := range r.Amenities {
		c, _ := utils.NormalizeAmenity(a)
		if c != "" && !seen[c] {
			seen[c] = true
			f.Amenities = append(f.Amenities, c)
		}
	}
	seenTerms := map[string]bool{}
	for _, t := range r.FreeTextTerms {
		t = strings.Join(strings.Fields(strings.ToLower(t)), " ")
		if t != "" && !seenTerms[t] {
			seenTerms[t] = true
			f.FreeTextTerms = append(f.FreeTextTerms, t)
		}
	}
	return f
}

func normalizeText(s *string) string {
	if s == nil {
		return ""
	}
	return strings.Join(strings.Fields(strings.ToLower(*s)), " ")
}
