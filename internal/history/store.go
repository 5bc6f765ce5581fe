// Package history persists periodic device metric samples to Postgres
// so the API can serve short-term utilization history.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/veldtlab/hwscope/gpu"
	"github.com/veldtlab/hwscope/internal/tracing"
)

const schema = `
CREATE TABLE IF NOT EXISTS device_samples (
	id           BIGSERIAL PRIMARY KEY,
	device_index INTEGER NOT NULL,
	device_name  TEXT NOT NULL,
	vendor       TEXT NOT NULL,
	temperature  DOUBLE PRECISION,
	utilization  DOUBLE PRECISION,
	power_draw   DOUBLE PRECISION,
	memory_used  BIGINT,
	raw          JSONB,
	sampled_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS device_samples_index_time
	ON device_samples (device_index, sampled_at DESC);
`

// Sample is one recorded reading for a device.
type Sample struct {
	DeviceIndex int             `json:"deviceIndex"`
	DeviceName  string          `json:"deviceName"`
	Vendor      string          `json:"vendor"`
	Temperature *float64        `json:"temperature,omitempty"`
	Utilization *float64        `json:"utilization,omitempty"`
	PowerDraw   *float64        `json:"powerDraw,omitempty"`
	MemoryUsed  *uint64         `json:"memoryUsed,omitempty"`
	Raw         json.RawMessage `json:"raw,omitempty"`
	SampledAt   time.Time       `json:"sampledAt"`
}

// Store writes and reads device samples.
type Store struct {
	db *sql.DB
}

// Open connects to Postgres and ensures the sample table exists.
func Open(ctx context.Context, connStr string) (*Store, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging history database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating device_samples table: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertSample records one device snapshot. The full device state goes
// into the raw JSONB column so fields added later survive without a
// schema migration.
func (s *Store) InsertSample(ctx context.Context, dev gpu.Device) error {
	ctx, span := tracing.StartSpan(ctx, "history.InsertSample")
	defer span.End()

	rawJSON, err := json.Marshal(dev)
	if err != nil {
		return fmt.Errorf("marshaling device snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO device_samples
			(device_index, device_name, vendor, temperature, utilization, power_draw, memory_used, raw)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		dev.Index,
		dev.Name,
		dev.Vendor.String(),
		nullFloat(dev.Temperature),
		nullFloat(dev.Utilization),
		nullFloat(dev.PowerDraw),
		nullUint(dev.MemoryUsed),
		pqtype.NullRawMessage{RawMessage: rawJSON, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("inserting device sample: %w", err)
	}
	return nil
}

// RecentSamples returns up to limit samples for a device, newest first.
func (s *Store) RecentSamples(ctx context.Context, deviceIndex, limit int) ([]Sample, error) {
	ctx, span := tracing.StartSpan(ctx, "history.RecentSamples")
	defer span.End()

	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT device_index, device_name, vendor, temperature, utilization, power_draw, memory_used, raw, sampled_at
		FROM device_samples
		WHERE device_index = $1
		ORDER BY sampled_at DESC
		LIMIT $2`,
		deviceIndex, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying device samples: %w", err)
	}
	defer rows.Close()

	var samples []Sample
	for rows.Next() {
		var (
			sample Sample
			temp   sql.NullFloat64
			util   sql.NullFloat64
			power  sql.NullFloat64
			mem    sql.NullInt64
			raw    pqtype.NullRawMessage
		)
		if err := rows.Scan(
			&sample.DeviceIndex, &sample.DeviceName, &sample.Vendor,
			&temp, &util, &power, &mem, &raw, &sample.SampledAt,
		); err != nil {
			return nil, fmt.Errorf("scanning device sample: %w", err)
		}
		if temp.Valid {
			sample.Temperature = &temp.Float64
		}
		if util.Valid {
			sample.Utilization = &util.Float64
		}
		if power.Valid {
			sample.PowerDraw = &power.Float64
		}
		if mem.Valid {
			used := uint64(mem.Int64)
			sample.MemoryUsed = &used
		}
		if raw.Valid {
			sample.Raw = raw.RawMessage
		}
		samples = append(samples, sample)
	}
	return samples, rows.Err()
}

// PruneBefore deletes samples older than cutoff and reports how many
// rows were removed.
func (s *Store) PruneBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM device_samples WHERE sampled_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning device samples: %w", err)
	}
	return res.RowsAffected()
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullUint(v *uint64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}
