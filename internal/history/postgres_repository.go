package history

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL history repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create stores a new score record.
func (r *PostgresRepository) Create(ctx context.Context, record *ScoreRecord) error {
	query := `
		INSERT INTO score_records (
			id,
			origin_lat, origin_lon, destination_lat, destination_lon,
			depart_at, provider, alternatives, selected_index,
			average_risk, max_risk, safety_level,
			segments_sampled, high_risk_count, degraded,
			created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.pool.Exec(ctx, query,
		record.ID,
		record.OriginLat,
		record.OriginLon,
		record.DestinationLat,
		record.DestinationLon,
		record.DepartAt,
		record.Provider,
		record.Alternatives,
		record.SelectedIndex,
		record.AverageRisk,
		record.MaxRisk,
		record.SafetyLevel,
		record.SegmentsSampled,
		record.HighRiskCount,
		record.Degraded,
		record.CreatedAt,
	)
	return err
}

// Get retrieves a record by ID.
func (r *PostgresRepository) Get(ctx context.Context, id string) (*ScoreRecord, error) {
	query := `
		SELECT
			id,
			origin_lat, origin_lon, destination_lat, destination_lon,
			depart_at, provider, alternatives, selected_index,
			average_risk, max_risk, safety_level,
			segments_sampled, high_risk_count, degraded,
			created_at
		FROM score_records
		WHERE id = $1
	`

	var record ScoreRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&record.ID,
		&record.OriginLat,
		&record.OriginLon,
		&record.DestinationLat,
		&record.DestinationLon,
		&record.DepartAt,
		&record.Provider,
		&record.Alternatives,
		&record.SelectedIndex,
		&record.AverageRisk,
		&record.MaxRisk,
		&record.SafetyLevel,
		&record.SegmentsSampled,
		&record.HighRiskCount,
		&record.Degraded,
		&record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}

	return &record, nil
}

// Recent retrieves the most recent records, newest first.
func (r *PostgresRepository) Recent(ctx context.Context, limit int) ([]*ScoreRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT
			id,
			origin_lat, origin_lon, destination_lat, destination_lon,
			depart_at, provider, alternatives, selected_index,
			average_risk, max_risk, safety_level,
			segments_sampled, high_risk_count, degraded,
			created_at
		FROM score_records
		ORDER BY created_at DESC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*ScoreRecord
	for rows.Next() {
		var record ScoreRecord
		err := rows.Scan(
			&record.ID,
			&record.OriginLat,
			&record.OriginLon,
			&record.DestinationLat,
			&record.DestinationLon,
			&record.DepartAt,
			&record.Provider,
			&record.Alternatives,
			&record.SelectedIndex,
			&record.AverageRisk,
			&record.MaxRisk,
			&record.SafetyLevel,
			&record.SegmentsSampled,
			&record.HighRiskCount,
			&record.Degraded,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, &record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

// Ensure PostgresRepository implements Repository interface.
var _ Repository = (*PostgresRepository)(nil)
