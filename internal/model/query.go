package model

// SearchRequest represents a search query request
type SearchRequest struct {
	Query            string `json:"query"`
	UseExternalModel bool   `json:"use_external_model"`
	UseGemini        bool   `json:"use_gemini"` // accepted alias of use_external_model
	TopK             int    `json:"top_k"`
}

// WantsExternalModel reports whether either model flag was set
func (r *SearchRequest) WantsExternalModel() bool {
	return r.UseExternalModel || r.UseGemini
}

// QueryResponse represents the full pipeline output for one query
type QueryResponse struct {
	SearchID    string         `json:"search_id"`
	Filters     Filter         `json:"filters"`
	Summary     string         `json:"summary"`
	Cards       []Card         `json:"cards"`
	Results     []RankedResult `json:"results"`
	Relaxations []string       `json:"relaxations"`
	Parser      string         `json:"parser"`
	Cached      bool           `json:"cached"`
	Took        int64          `json:"took_ms"` // Response time in milliseconds
}

// FeedbackRequest represents user feedback/action on a result card
type FeedbackRequest struct {
	SearchID  string `json:"search_id" binding:"required"`
	ProjectID string `json:"project_id" binding:"required"`
	Action    string `json:"action" binding:"required"` // click, contact, view_details
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SearchLogEntry is one row of the search log
type SearchLogEntry struct {
	SearchID       string   `db:"search_id"`
	Query          string   `db:"query"`
	Parser         string   `db:"parser"`
	Filters        Filter   `db:"-"`
	Relaxations    []string `db:"-"`
	ResultCount    int      `db:"result_count"`
	ProjectIDs     []string `db:"-"`
	ResponseTimeMs int      `db:"response_time_ms"`
}
