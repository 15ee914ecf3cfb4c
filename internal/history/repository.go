package history

import "context"

// Repository defines the interface for score history persistence.
type Repository interface {
	// Create stores a new score record.
	Create(ctx context.Context, record *ScoreRecord) error

	// Get retrieves a record by ID.
	// Returns ErrRecordNotFound if the record doesn't exist.
	Get(ctx context.Context, id string) (*ScoreRecord, error)

	// Recent retrieves the most recent records, newest first.
	Recent(ctx context.Context, limit int) ([]*ScoreRecord, error)
}
