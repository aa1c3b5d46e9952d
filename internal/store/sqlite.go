package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/leadspider-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS runs (
	id         TEXT PRIMARY KEY,
	start_urls TEXT NOT NULL,
	status     TEXT NOT NULL DEFAULT 'crawling',
	companies  INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	updated_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS observations (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	company_url TEXT NOT NULL,
	payload     TEXT NOT NULL,
	created_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_runs_status ON runs(status);
CREATE INDEX IF NOT EXISTS idx_observations_kind ON observations(kind);
CREATE INDEX IF NOT EXISTS idx_observations_company ON observations(company_url);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) appendObservation(ctx context.Context, kind model.Kind, company model.CompanyID, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return eris.Wrapf(err, "sqlite: marshal %s observation", kind)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO observations (id, kind, company_url, payload, created_at) VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), string(kind), string(company), string(data), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert %s observation", kind)
}

func (s *SQLiteStore) AppendGeneral(ctx context.Context, info model.GeneralInfo) error {
	return s.appendObservation(ctx, model.KindGeneralInfo, info.Company, info)
}

func (s *SQLiteStore) AppendPrice(ctx context.Context, sample model.PriceSample) error {
	return s.appendObservation(ctx, model.KindPrice, sample.Company, sample)
}

func (s *SQLiteStore) AppendContact(ctx context.Context, contact model.ContactInfo) error {
	return s.appendObservation(ctx, model.KindContact, contact.Company, contact)
}

func (s *SQLiteStore) listPayloads(ctx context.Context, kind model.Kind) ([][]byte, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM observations WHERE kind = ? ORDER BY created_at, id`,
		string(kind),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: list %s observations", kind)
	}
	defer rows.Close() //nolint:errcheck

	var payloads [][]byte
	for rows.Next() {
		var p []byte
		if err := rows.Scan(&p); err != nil {
			return nil, eris.Wrapf(err, "sqlite: scan %s observation", kind)
		}
		payloads = append(payloads, p)
	}
	return payloads, eris.Wrapf(rows.Err(), "sqlite: iterate %s observations", kind)
}

func (s *SQLiteStore) ListGeneral(ctx context.Context) ([]model.GeneralInfo, error) {
	payloads, err := s.listPayloads(ctx, model.KindGeneralInfo)
	if err != nil {
		return nil, err
	}
	infos := make([]model.GeneralInfo, 0, len(payloads))
	for _, p := range payloads {
		var info model.GeneralInfo
		if err := json.Unmarshal(p, &info); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal general observation")
		}
		infos = append(infos, info)
	}
	return infos, nil
}

func (s *SQLiteStore) ListPrice(ctx context.Context) ([]model.PriceSample, error) {
	payloads, err := s.listPayloads(ctx, model.KindPrice)
	if err != nil {
		return nil, err
	}
	samples := make([]model.PriceSample, 0, len(payloads))
	for _, p := range payloads {
		var sample model.PriceSample
		if err := json.Unmarshal(p, &sample); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal price observation")
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

func (s *SQLiteStore) ListContact(ctx context.Context) ([]model.ContactInfo, error) {
	payloads, err := s.listPayloads(ctx, model.KindContact)
	if err != nil {
		return nil, err
	}
	contacts := make([]model.ContactInfo, 0, len(payloads))
	for _, p := range payloads {
		var contact model.ContactInfo
		if err := json.Unmarshal(p, &contact); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal contact observation")
		}
		contacts = append(contacts, contact)
	}
	return contacts, nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, startURLs []string) (*Run, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	urlsJSON, err := json.Marshal(startURLs)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal start urls")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, start_urls, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		id, string(urlsJSON), string(RunStatusCrawling), now, now,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert run")
	}

	return &Run{
		ID:        id,
		StartURLs: startURLs,
		Status:    RunStatusCrawling,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *SQLiteStore) FinishRun(ctx context.Context, runID string, status RunStatus, companies int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, companies = ?, updated_at = ? WHERE id = ?`,
		string(status), companies, time.Now().UTC(), runID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: finish run %s", runID)
	}
	return checkRowsAffected(res, runID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, start_urls, status, companies, created_at, updated_at FROM runs WHERE id = ?`,
		runID,
	)
	return scanRun(row, runID)
}

func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, start_urls, status, companies, created_at, updated_at FROM runs ORDER BY created_at DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close() //nolint:errcheck

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows, "")
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: iterate runs")
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable, runID string) (*Run, error) {
	var run Run
	var urlsJSON string
	err := row.Scan(&run.ID, &urlsJSON, &run.Status, &run.Companies, &run.CreatedAt, &run.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "store: scan run")
	}
	if err := json.Unmarshal([]byte(urlsJSON), &run.StartURLs); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal start urls")
	}
	return &run, nil
}

func checkRowsAffected(res sql.Result, runID string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "store: rows affected")
	}
	if n == 0 {
		return eris.Wrapf(ErrNotFound, "run %s", runID)
	}
	return nil
}
