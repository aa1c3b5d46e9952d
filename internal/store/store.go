// Package store persists observation tables and crawl-run bookkeeping.
// Three backends exist: an append-only flat CSV directory (the canonical
// interchange format, one file per observation kind), SQLite and Postgres.
package store

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/leadspider-cli/internal/model"
)

// ErrNotFound marks a missing table or run. Callers decide whether a
// missing table is tolerable (price/contact read as empty) or fatal
// (general info anchors the report join).
var ErrNotFound = eris.New("store: not found")

// RunStatus is the lifecycle state of a crawl run.
type RunStatus string

const (
	RunStatusCrawling RunStatus = "crawling"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run records one crawl invocation.
type Run struct {
	ID        string    `json:"id"`
	StartURLs []string  `json:"start_urls"`
	Status    RunStatus `json:"status"`
	Companies int       `json:"companies"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ObservationStore appends and reads back the three observation tables.
// Observations are append-only during a run; reads materialize the full
// table for aggregation.
type ObservationStore interface {
	AppendGeneral(ctx context.Context, info model.GeneralInfo) error
	AppendPrice(ctx context.Context, sample model.PriceSample) error
	AppendContact(ctx context.Context, contact model.ContactInfo) error

	// ListGeneral returns ErrNotFound (wrapped) when the general-info
	// table does not exist; ListPrice/ListContact do the same and the
	// caller downgrades that to an empty table.
	ListGeneral(ctx context.Context) ([]model.GeneralInfo, error)
	ListPrice(ctx context.Context) ([]model.PriceSample, error)
	ListContact(ctx context.Context) ([]model.ContactInfo, error)

	Close() error
}

// Store adds run bookkeeping on top of observation persistence.
type Store interface {
	ObservationStore

	CreateRun(ctx context.Context, startURLs []string) (*Run, error)
	FinishRun(ctx context.Context, runID string, status RunStatus, companies int) error
	GetRun(ctx context.Context, runID string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)

	Migrate(ctx context.Context) error
}
