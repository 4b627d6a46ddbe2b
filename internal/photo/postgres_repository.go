package photo

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/abduss/photocat/internal/storeerr"
)

// pgxPool is satisfied by *pgxpool.Pool.
type pgxPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

// PostgresRepository keeps photo metadata in a PostgreSQL table keyed by
// photo_number. It is the alternative to DynamoDB for self-hosted setups.
type PostgresRepository struct {
	pool pgxPool
	log  *zap.Logger
}

// NewPostgresRepository builds a repository over a pgx pool.
func NewPostgresRepository(pool pgxPool, log *zap.Logger) *PostgresRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &PostgresRepository{pool: pool, log: log.Named("metadata")}
}

// Ping checks that the database is reachable.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return storeerr.New(storeerr.ErrProvider, "ping", "postgres", err)
	}
	return nil
}

// EnsureSchema creates the metadata table if it is missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
CREATE TABLE IF NOT EXISTS photo_metadata (
    photo_number TEXT PRIMARY KEY,
    description  TEXT NOT NULL DEFAULT '',
    file_name    TEXT NOT NULL DEFAULT '',
    photographer TEXT NOT NULL DEFAULT '',
    date         TEXT NOT NULL DEFAULT '',
    title        TEXT NOT NULL DEFAULT '',
    location     TEXT NOT NULL DEFAULT '',
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return storeerr.New(storeerr.ErrProvider, "create schema", "photo_metadata", err)
	}
	return nil
}

// Upsert inserts the record or replaces the row with the same photo number.
func (r *PostgresRepository) Upsert(ctx context.Context, record Record) (err error) {
	defer func() { observe("upsert", err) }()

	if err := record.Validate(); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
INSERT INTO photo_metadata (photo_number, description, file_name, photographer, date, title, location)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (photo_number)
DO UPDATE SET
    description  = EXCLUDED.description,
    file_name    = EXCLUDED.file_name,
    photographer = EXCLUDED.photographer,
    date         = EXCLUDED.date,
    title        = EXCLUDED.title,
    location     = EXCLUDED.location,
    updated_at   = NOW();`

	if _, err := r.pool.Exec(ctx, query,
		record.PhotoNumber,
		record.Description,
		record.FileName,
		record.Photographer,
		record.Date,
		record.Title,
		record.Location,
	); err != nil {
		r.log.Error("upsert photo metadata", zap.String("photoNumber", record.PhotoNumber), zap.Error(err))
		return storeerr.New(storeerr.ErrProvider, "upsert record", record.PhotoNumber, err)
	}
	return nil
}

// FindByPhotoNumber returns the rows whose photo_number equals id.
func (r *PostgresRepository) FindByPhotoNumber(ctx context.Context, id string) (records []Record, err error) {
	defer func() { observe("find", err) }()

	if err := validateSearchKey(id); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, repoTimeout)
	defer cancel()

	query := `
SELECT photo_number, description, file_name, photographer, date, title, location
FROM photo_metadata
WHERE photo_number = $1;`

	rows, err := r.pool.Query(ctx, query, id)
	if err != nil {
		return nil, storeerr.New(storeerr.ErrProvider, "find by photo number", id, err)
	}
	defer rows.Close()

	records = []Record{}
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.PhotoNumber, &rec.Description, &rec.FileName, &rec.Photographer, &rec.Date, &rec.Title, &rec.Location); err != nil {
			return nil, storeerr.New(storeerr.ErrProvider, "scan record", id, fmt.Errorf("scan photo metadata: %w", err))
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, storeerr.New(storeerr.ErrProvider, "iterate records", id, err)
	}
	return records, nil
}
