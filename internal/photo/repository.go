// Package photo holds the photo metadata model and the repositories that
// persist it in a key-value table.
//
// Records are written with replace-by-key semantics. Blob objects live in a
// separate store; nothing here keeps the two in step.
package photo

import (
	"context"
	"strings"
	"time"

	"github.com/abduss/photocat/internal/metrics"
	"github.com/abduss/photocat/internal/storeerr"
)

const repoTimeout = 10 * time.Second

// Repository persists and queries photo metadata.
type Repository interface {
	// Upsert writes the record, replacing any record with the same photo number.
	Upsert(ctx context.Context, record Record) error
	// FindByPhotoNumber returns records whose photo number equals id exactly.
	FindByPhotoNumber(ctx context.Context, id string) ([]Record, error)
}

func validateSearchKey(id string) error {
	if strings.TrimSpace(id) == "" {
		return storeerr.Validation("find by photo number", "", "photo number is required")
	}
	return nil
}

func observe(op string, err error) {
	metrics.ObserveOperation("metadata", op, err)
}
