// Package postgres reads the job collection straight from its Postgres table,
// for deployments that reach the database rather than its HTTP API.
package postgres

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JakeFAU/mission-site/internal/mission"
	"github.com/JakeFAU/mission-site/internal/source"
)

var validIdentifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config controls the Postgres connection pool used to read jobs.
type Config struct {
	DSN             string
	Table           string
	MaxConns        int32
	MaxConnLifetime time.Duration
}

type queryCloser interface {
	Query(context.Context, string, ...any) (pgx.Rows, error)
	Ping(context.Context) error
	Close()
}

// Store implements source.Fetcher over a pgx pool.
type Store struct {
	pool  queryCloser
	table string
}

// NewStore creates a Postgres-backed Store using the provided config.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("source.dsn is required")
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewStoreWithPool(pool, cfg.Table)
}

// NewStoreWithPool constructs a store from an existing pool (primarily for testing).
func NewStoreWithPool(pool queryCloser, table string) (*Store, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "jobs"
	}
	if !validIdentifier.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &Store{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// Ping checks that the pool can reach the database.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return source.ErrNotConfigured
	}
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

// Fetch runs one SELECT for the requested projection.
func (s *Store) Fetch(ctx context.Context, q source.Query) ([]mission.Job, error) {
	if s == nil || s.pool == nil {
		return nil, source.ErrNotConfigured
	}
	cols, err := resolveColumns(q.Columns)
	if err != nil {
		return nil, err
	}
	query, err := s.selectSQL(cols, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", s.table, err)
	}
	defer rows.Close()

	var jobs []mission.Job
	for rows.Next() {
		var r row
		dest := make([]any, len(cols))
		for i, c := range cols {
			dest[i] = c.target(&r)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", s.table, err)
		}
		jobs = append(jobs, r.job())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", s.table, err)
	}
	return jobs, nil
}

func (s *Store) selectSQL(cols []column, q source.Query) (string, error) {
	exprs := make([]string, len(cols))
	for i, c := range cols {
		exprs[i] = c.expr
	}
	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(exprs, ", "), s.table)
	if q.OrderBy != "" {
		if !validIdentifier.MatchString(q.OrderBy) {
			return "", fmt.Errorf("invalid order column %q", q.OrderBy)
		}
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		fmt.Fprintf(&b, " ORDER BY %s %s", q.OrderBy, dir)
	}
	return b.String(), nil
}

type row struct {
	id, slug, title, company, location *string
	kind, description                  *string
	salary, salaryType                 *string
	requirements, benefits             []string
	postedDate, createdAt, updatedAt   *time.Time
	applicants                         *int32
	featured                           *bool
}

func (r row) job() mission.Job {
	job := mission.Job{
		ID:           str(r.id),
		Slug:         str(r.slug),
		Title:        str(r.title),
		Company:      str(r.company),
		Location:     str(r.location),
		Type:         str(r.kind),
		Description:  str(r.description),
		Salary:       str(r.salary),
		SalaryType:   str(r.salaryType),
		Requirements: r.requirements,
		Benefits:     r.benefits,
		PostedDate:   r.postedDate,
		CreatedAt:    r.createdAt,
		UpdatedAt:    r.updatedAt,
	}
	if r.applicants != nil {
		job.Applicants = int(*r.applicants)
	}
	if r.featured != nil {
		job.Featured = *r.featured
	}
	return job
}

type column struct {
	name   string
	expr   string
	target func(*row) any
}

// columns is the full row in select=* order. Text casts keep id and salary
// independent of the table's exact numeric types.
var columns = []column{
	{"id", "id::text", func(r *row) any { return &r.id }},
	{"slug", "slug", func(r *row) any { return &r.slug }},
	{"title", "title", func(r *row) any { return &r.title }},
	{"company", "company", func(r *row) any { return &r.company }},
	{"location", "location", func(r *row) any { return &r.location }},
	{"type", "type", func(r *row) any { return &r.kind }},
	{"description", "description", func(r *row) any { return &r.description }},
	{"salary", "salary::text", func(r *row) any { return &r.salary }},
	{"salary_type", "salary_type", func(r *row) any { return &r.salaryType }},
	{"requirements", "requirements", func(r *row) any { return &r.requirements }},
	{"benefits", "benefits", func(r *row) any { return &r.benefits }},
	{"posted_date", "posted_date", func(r *row) any { return &r.postedDate }},
	{"created_at", "created_at", func(r *row) any { return &r.createdAt }},
	{"updated_at", "updated_at", func(r *row) any { return &r.updatedAt }},
	{"applicants", "applicants", func(r *row) any { return &r.applicants }},
	{"featured", "featured", func(r *row) any { return &r.featured }},
}

func resolveColumns(names []string) ([]column, error) {
	if len(names) == 0 {
		return columns, nil
	}
	out := make([]column, 0, len(names))
	for _, name := range names {
		c, ok := lookupColumn(name)
		if !ok {
			return nil, fmt.Errorf("unknown job column %q", name)
		}
		out = append(out, c)
	}
	return out, nil
}

func lookupColumn(name string) (column, bool) {
	for _, c := range columns {
		if c.name == name {
			return c, true
		}
	}
	return column{}, false
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
