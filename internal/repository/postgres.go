package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"projectsearch/internal/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresRepository loads the project table and records the search log
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(dsn string, maxConn, maxIdleConn int) (*PostgresRepository, error) {
	// Disable prepared statement caching to avoid "unnamed prepared statement does not exist" errors
	if strings.Contains(dsn, "://") {
		if !strings.Contains(dsn, "?") {
			dsn += "?prefer_simple_protocol=true"
		} else {
			dsn += "&prefer_simple_protocol=true"
		}
	}

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(maxConn)
	db.SetMaxIdleConns(maxIdleConn)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(2 * time.Minute)

	return &PostgresRepository{db: db}, nil
}

// NewPostgresRepositoryFromDB wraps an existing handle
func NewPostgresRepositoryFromDB(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection
func (r *PostgresRepository) Close() error {
	return r.db.Close()
}

type projectRecord struct {
	ProjectID   string           `db:"project_id"`
	ProjectName string           `db:"project_name"`
	City        string           `db:"city"`
	Locality    string           `db:"locality"`
	Possession  string           `db:"possession_status"`
	Amenities   model.StringList `db:"amenities"`
}

type variantRecord struct {
	ProjectID  string   `db:"project_id"`
	VariantID  string   `db:"variant_id"`
	BHK        *int     `db:"bhk"`
	PriceLakhs *float64 `db:"price_lakhs"`
}

// LoadProjects reads every project with its configuration variants, in a stable order
func (r *PostgresRepository) LoadProjects(ctx context.Context) ([]model.ProjectRow, error) {
	var projects []projectRecord
	err := r.db.SelectContext(ctx, &projects, `
		SELECT project_id, project_name,
			COALESCE(city, '') AS city,
			COALESCE(locality, '') AS locality,
			COALESCE(possession_status, '') AS possession_status,
			amenities
		FROM projects
		ORDER BY project_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects: %w", err)
	}

	var variants []variantRecord
	err = r.db.SelectContext(ctx, &variants, `
		SELECT project_id, variant_id, bhk, price_lakhs
		FROM project_variants
		ORDER BY project_id, sort_order, variant_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load project variants: %w", err)
	}

	byProject := make(map[string][]model.ConfigurationVariant, len(projects))
	for _, v := range variants {
		byProject[v.ProjectID] = append(byProject[v.ProjectID], model.ConfigurationVariant{
			VariantID:  v.VariantID,
			BHK:        v.BHK,
			PriceLakhs: v.PriceLakhs,
		})
	}

	rows := make([]model.ProjectRow, 0, len(projects))
	for _, p := range projects {
		rows = append(rows, model.ProjectRow{
			ProjectID:   p.ProjectID,
			ProjectName: p.ProjectName,
			City:        p.City,
			Locality:    p.Locality,
			Possession:  model.ParsePossession(p.Possession),
			Amenities:   p.Amenities,
			Variants:    byProject[p.ProjectID],
		})
	}
	return rows, nil
}

// LogSearch records one handled query
func (r *PostgresRepository) LogSearch(ctx context.Context, entry model.SearchLogEntry) error {
	filters, err := json.Marshal(entry.Filters)
	if err != nil {
		return fmt.Errorf("failed to encode filters: %w", err)
	}
	query := `
		INSERT INTO search_logs (search_id, query, parser, filters, relaxations, result_count, returned_project_ids, response_time_ms)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = r.db.ExecContext(ctx, query,
		entry.SearchID,
		entry.Query,
		entry.Parser,
		filters,
		model.StringList(nonNil(entry.Relaxations)),
		entry.ResultCount,
		model.StringList(nonNil(entry.ProjectIDs)),
		entry.ResponseTimeMs,
	)
	if err != nil {
		return fmt.Errorf("failed to log search: %w", err)
	}
	return nil
}

// LogFeedback attaches a user action to a logged search. It reports whether the search was found.
func (r *PostgresRepository) LogFeedback(ctx context.Context, searchID, projectID, action string) (bool, error) {
	query := `
		UPDATE search_logs
		SET clicked_project_id = $2, action = $3, action_at = NOW()
		WHERE search_id = $1
	`
	res, err := r.db.ExecContext(ctx, query, searchID, projectID, action)
	if err != nil {
		return false, fmt.Errorf("failed to log feedback: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to log feedback: %w", err)
	}
	return n > 0, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
