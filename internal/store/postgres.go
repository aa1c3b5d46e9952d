package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/leadspider-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 10
	pgxCfg.MinConns = 2
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

// NewPostgresFromPool wraps an existing pool; used by tests with pgxmock.
func NewPostgresFromPool(pool Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	start_urls JSONB NOT NULL,
	status     TEXT NOT NULL DEFAULT 'crawling',
	companies  INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS observations (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	company_url TEXT NOT NULL,
	payload     JSONB NOT NULL,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_observations_kind ON observations(kind);
CREATE INDEX IF NOT EXISTS idx_observations_company ON observations(company_url);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) appendObservation(ctx context.Context, kind model.Kind, company model.CompanyID, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrapf(err, "postgres: marshal %s observation", kind)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO observations (id, kind, company_url, payload, created_at) VALUES ($1, $2, $3, $4, $5)`,
		uuid.New().String(), string(kind), string(company), string(data), time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: insert %s observation", kind)
}

func (s *PostgresStore) AppendGeneral(ctx context.Context, info model.GeneralInfo) error {
	return s.appendObservation(ctx, model.KindGeneralInfo, info.Company, info)
}

func (s *PostgresStore) AppendPrice(ctx context.Context, sample model.PriceSample) error {
	return s.appendObservation(ctx, model.KindPrice, sample.Company, sample)
}

func (s *PostgresStore) AppendContact(ctx context.Context, contact model.ContactInfo) error {
	return s.appendObservation(ctx, model.KindContact, contact.Company, contact)
}

func (s *PostgresStore) listPayloads(ctx context.Context, kind model.Kind) ([][]byte, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT payload FROM observations WHERE kind = $1 ORDER BY created_at, id`,
		string(kind),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: list %s observations", kind)
	}
	defer rows.Close()

	var payloads [][]byte
	for rows.Next() {
		var p []byte
		if err := rows.Scan(&p); err != nil {
			return nil, eris.Wrapf(err, "postgres: scan %s observation", kind)
		}
		payloads = append(payloads, p)
	}
	return payloads, eris.Wrapf(rows.Err(), "postgres: iterate %s observations", kind)
}

func (s *PostgresStore) ListGeneral(ctx context.Context) ([]model.GeneralInfo, error) {
	payloads, err := s.listPayloads(ctx, model.KindGeneralInfo)
	if err != nil {
		return nil, err
	}
	infos := make([]model.GeneralInfo, 0, len(payloads))
	for _, p := range payloads {
		var info model.GeneralInfo
		if err := json.Unmarshal(p, &info); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal general observation")
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *PostgresStore) ListPrice(ctx context.Context) ([]model.PriceSample, error) {
	payloads, err := s.listPayloads(ctx, model.KindPrice)
	if err != nil {
		return nil, err
	}
	samples := make([]model.PriceSample, 0, len(payloads))
	for _, p := range payloads {
		var sample model.PriceSample
		if err := json.Unmarshal(p, &sample); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal price observation")
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func (s *PostgresStore) ListContact(ctx context.Context) ([]model.ContactInfo, error) {
	payloads, err := s.listPayloads(ctx, model.KindContact)
	if err != nil {
		return nil, err
	}
	contacts := make([]model.ContactInfo, 0, len(payloads))
	for _, p := range payloads {
		var contact model.ContactInfo
		if err := json.Unmarshal(p, &contact); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal contact observation")
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, startURLs []string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	urlsJSON, err := json.Marshal(startURLs)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal start urls")
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, start_urls, status, created_at, updated_at) VALUES ($1, $2, $3, $4, $5)`,
		id, string(urlsJSON), string(RunStatusCrawling), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert run")
	}

	return &Run{
		ID:        id,
		StartURLs: startURLs,
		Status:    RunStatusCrawling,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *PostgresStore) FinishRun(ctx context.Context, runID string, status RunStatus, companies int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, companies = $2, updated_at = $3 WHERE id = $4`,
		string(status), companies, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: finish run %s", runID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, start_urls, status, companies, created_at, updated_at FROM runs WHERE id = $1`,
		runID,
	)

	var run Run
	var urlsJSON []byte
	err := row.Scan(&run.ID, &urlsJSON, &run.Status, &run.Companies, &run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: scan run")
	}
	if err := json.Unmarshal(urlsJSON, &run.StartURLs); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal start urls")
	}
	return &run, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx,
		`SELECT id, start_urls, status, companies, created_at, updated_at FROM runs ORDER BY created_at DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var urlsJSON []byte
		if err := rows.Scan(&run.ID, &urlsJSON, &run.Status, &run.Companies, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if err := json.Unmarshal(urlsJSON, &run.StartURLs); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal start urls")
		}
		runs = append(runs, run)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: iterate runs")
}
