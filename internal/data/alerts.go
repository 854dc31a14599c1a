package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type AlertModel struct {
	DB DBTX
}

func (m *AlertModel) Insert(ctx context.Context, rec *AlertRecord) (uuid.UUID, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	details, err := json.Marshal(rec.Details)
	if err != nil {
		return uuid.Nil, err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO alerts (
			id, hazard_type, severity, title, description, location_name,
			latitude, longitude, occurred_at, details, delivery_status, delivered,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = m.DB.ExecContext(ctx, query,
		rec.ID, rec.HazardType, rec.Severity, rec.Title, rec.Description, rec.LocationName,
		rec.Latitude, rec.Longitude, rec.OccurredAt, details, rec.DeliveryStatus, rec.Delivered,
		now, now,
	)
	if err != nil {
		return uuid.Nil, err
	}
	rec.CreatedAt = now
	rec.UpdatedAt = now
	return rec.ID, nil
}

func (m *AlertModel) ListRecent(ctx context.Context, limit int, hazardType string) ([]*AlertRecord, error) {
	query := `
		SELECT id, hazard_type, severity, title, description, location_name,
		       latitude, longitude, occurred_at, details, delivery_status, delivered,
		       push_message_id, created_at, updated_at
		FROM alerts
	`
	args := []any{}
	if hazardType != "" {
		query += ` WHERE hazard_type = $1 ORDER BY created_at DESC LIMIT $2`
		args = append(args, hazardType, limit)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := m.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*AlertRecord
	for rows.Next() {
		var rec AlertRecord
		var details []byte
		var lat, lon sql.NullFloat64
		var msgID sql.NullString

		if err := rows.Scan(
			&rec.ID, &rec.HazardType, &rec.Severity, &rec.Title, &rec.Description, &rec.LocationName,
			&lat, &lon, &rec.OccurredAt, &details, &rec.DeliveryStatus, &rec.Delivered,
			&msgID, &rec.CreatedAt, &rec.UpdatedAt,
		); err != nil {
			return nil, err
		}
		if lat.Valid {
			rec.Latitude = &lat.Float64
		}
		if lon.Valid {
			rec.Longitude = &lon.Float64
		}
		if msgID.Valid {
			rec.PushMessageID = msgID.String
		}
		if len(details) > 0 {
			_ = json.Unmarshal(details, &rec.Details)
		}
		out = append(out, &rec)
	}
	return out, rows.Err()
}

func (m *AlertModel) UpdateStatus(ctx context.Context, id uuid.UUID, status string, delivered bool, messageID string) error {
	query := `
		UPDATE alerts
		SET delivery_status = $2, delivered = $3, push_message_id = NULLIF($4, ''), updated_at = $5
		WHERE id = $1
	`
	res, err := m.DB.ExecContext(ctx, query, id, status, delivered, messageID, time.Now().UTC())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Stats aggregates counts by type, severity and delivery status since
// the given cutoff. Three grouped queries; cheap at this table size.
func (m *AlertModel) Stats(ctx context.Context, since time.Time) (*AlertStats, error) {
	stats := &AlertStats{
		ByType:     map[string]int{},
		BySeverity: map[string]int{},
		ByStatus:   map[string]int{},
	}

	type grouping struct {
		column string
		target map[string]int
	}
	for _, g := range []grouping{
		{"hazard_type", stats.ByType},
		{"severity", stats.BySeverity},
		{"delivery_status", stats.ByStatus},
	} {
		query := `SELECT ` + pq.QuoteIdentifier(g.column) + `, COUNT(*) FROM alerts WHERE created_at >= $1 GROUP BY ` + pq.QuoteIdentifier(g.column)
		rows, err := m.DB.QueryContext(ctx, query, since)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var key string
			var count int
			if err := rows.Scan(&key, &count); err != nil {
				rows.Close()
				return nil, err
			}
			g.target[key] = count
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}

	for _, c := range stats.ByType {
		stats.Total += c
	}
	return stats, nil
}
