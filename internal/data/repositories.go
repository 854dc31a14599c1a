package data

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrRecordNotFound = errors.New("record not found")
)

// DBTX is a common interface for *sql.DB and *sql.Tx
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// AlertRecord is the persisted shape of an alert.
type AlertRecord struct {
	ID             uuid.UUID      `json:"id"`
	HazardType     string         `json:"hazard_type"`
	Severity       string         `json:"severity"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	LocationName   string         `json:"location_name"`
	Latitude       *float64       `json:"latitude,omitempty"`
	Longitude      *float64       `json:"longitude,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
	Details        map[string]any `json:"details"`
	DeliveryStatus string         `json:"delivery_status"`
	Delivered      bool           `json:"delivered"`
	PushMessageID  string         `json:"push_message_id,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}

// AlertStats aggregates persisted alerts over a period.
type AlertStats struct {
	Total      int            `json:"total_alerts"`
	ByType     map[string]int `json:"by_type"`
	BySeverity map[string]int `json:"by_severity"`
	ByStatus   map[string]int `json:"by_status"`
}

// AlertRepository is the persistence contract the dispatch pipeline and
// the read-only API depend on.
type AlertRepository interface {
	Insert(ctx context.Context, rec *AlertRecord) (uuid.UUID, error)
	ListRecent(ctx context.Context, limit int, hazardType string) ([]*AlertRecord, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, delivered bool, messageID string) error
	Stats(ctx context.Context, since time.Time) (*AlertStats, error)
}
