package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abduss/photocat/internal/photo"
	"github.com/abduss/photocat/internal/storeerr"
)

func TestMalformedEntryDoesNotAbortRun(t *testing.T) {
	repo := newMemoryRepo()
	pipeline := NewPipeline(repo, nil)

	src := `[
		{"PhotoNumber": 1, "FileName": "one.jpg"},
		{"PhotoNumber": 2, "FileName": "two.jpg"},
		{"FileName": "three.jpg", "Title": "no number"},
		{"PhotoNumber": 4, "FileName": "four.jpg"},
		{"PhotoNumber": 5, "FileName": "five.jpg"}
	]`

	report, err := pipeline.Run(context.Background(), "inline", strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "4", "5"}, report.Succeeded())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, 3, failed[0].Position)
	assert.Equal(t, "#3", failed[0].ID())
	assert.ErrorIs(t, failed[0].Err, storeerr.ErrValidation)
	assert.NotEmpty(t, failed[0].Error)

	assert.Equal(t, []string{"1", "2", "4", "5"}, repo.writes)
}

func TestRepositoryFailureIsReportedPerEntry(t *testing.T) {
	repo := newMemoryRepo()
	repo.failOn["2"] = storeerr.New(storeerr.ErrProvider, "upsert record", "2", errors.New("throttled"))
	pipeline := NewPipeline(repo, nil)

	src := `[{"PhotoNumber": "1"}, {"PhotoNumber": "2"}, {"PhotoNumber": "3"}]`
	report, err := pipeline.Run(context.Background(), "inline", strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "3"}, report.Succeeded())
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "2", failed[0].ID())
	assert.ErrorIs(t, failed[0].Err, storeerr.ErrProvider)
}

func TestCanonicalKeysKeepSevenAndZeroSevenApart(t *testing.T) {
	repo := newMemoryRepo()
	pipeline := NewPipeline(repo, nil)
	ctx := context.Background()

	_, err := pipeline.Run(ctx, "first", strings.NewReader(`[{"PhotoNumber": "7", "FileName": "a.jpg"}]`))
	require.NoError(t, err)

	found, err := repo.FindByPhotoNumber(ctx, "7")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "a.jpg", found[0].FileName)

	_, err = pipeline.Run(ctx, "second", strings.NewReader(`[{"PhotoNumber": "07", "FileName": "a.jpg"}]`))
	require.NoError(t, err)

	assert.Len(t, repo.records, 2)
	padded, err := repo.FindByPhotoNumber(ctx, "07")
	require.NoError(t, err)
	assert.Len(t, padded, 1)
}

func TestNumbersKeepFullPrecision(t *testing.T) {
	repo := newMemoryRepo()
	pipeline := NewPipeline(repo, nil)

	src := `[{"PhotoNumber": 98765432109876543210, "Date": 20210808.125, "description": "snake_case keys", "file_name": "x.jpg"}]`
	report, err := pipeline.Run(context.Background(), "inline", strings.NewReader(src))
	require.NoError(t, err)
	require.Empty(t, report.Failed())

	rec := repo.records["98765432109876543210"]
	assert.Equal(t, "20210808.125", rec.Date)
	assert.Equal(t, "snake_case keys", rec.Description)
	assert.Equal(t, "x.jpg", rec.FileName)
}

func TestTrailingZerosKeepNumbersDistinct(t *testing.T) {
	repo := newMemoryRepo()
	pipeline := NewPipeline(repo, nil)

	src := `[{"PhotoNumber": 1.5}, {"PhotoNumber": 1.50}, {"PhotoNumber": 7, "Date": 2021.10}]`
	report, err := pipeline.Run(context.Background(), "inline", strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"1.5", "1.50", "7"}, report.Succeeded())
	assert.Len(t, repo.records, 3)
	assert.Equal(t, "2021.10", repo.records["7"].Date)
}

func TestMissingDescriptiveFieldsAreStoredEmpty(t *testing.T) {
	repo := newMemoryRepo()
	pipeline := NewPipeline(repo, nil)

	report, err := pipeline.Run(context.Background(), "inline", strings.NewReader(`[{"PhotoNumber": "11"}]`))
	require.NoError(t, err)
	require.Empty(t, report.Failed())

	assert.Equal(t, photo.Record{PhotoNumber: "11"}, repo.records["11"])
}

func TestNonScalarFieldIsMalformed(t *testing.T) {
	repo := newMemoryRepo()
	pipeline := NewPipeline(repo, nil)

	src := `[{"PhotoNumber": "9", "Title": {"en": "nested"}}, "not an object", {"PhotoNumber": "10"}]`
	report, err := pipeline.Run(context.Background(), "inline", strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, []string{"10"}, report.Succeeded())
	failed := report.Failed()
	require.Len(t, failed, 2)
	assert.Equal(t, "9", failed[0].ID())
	assert.Equal(t, "#2", failed[1].ID())
}

func TestSourceThatIsNotAnArrayFails(t *testing.T) {
	pipeline := NewPipeline(newMemoryRepo(), nil)

	_, err := pipeline.Run(context.Background(), "inline", strings.NewReader(`{"PhotoNumber": 1}`))
	require.ErrorIs(t, err, storeerr.ErrValidation)
}

func TestRunFile(t *testing.T) {
	repo := newMemoryRepo()
	pipeline := NewPipeline(repo, nil)

	_, err := pipeline.RunFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, storeerr.ErrLocalIO)

	path := filepath.Join(t.TempDir(), "photos.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"PhotoNumber": 3, "FileName": "c.jpg"}]`), 0o600))

	report, err := pipeline.RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, path, report.Source)
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, []string{"3"}, report.Succeeded())
}

type memoryRepo struct {
	records map[string]photo.Record
	writes  []string
	failOn  map[string]error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: map[string]photo.Record{}, failOn: map[string]error{}}
}

func (m *memoryRepo) Upsert(ctx context.Context, record photo.Record) error {
	if err := m.failOn[record.PhotoNumber]; err != nil {
		return err
	}
	m.writes = append(m.writes, record.PhotoNumber)
	m.records[record.PhotoNumber] = record
	return nil
}

func (m *memoryRepo) FindByPhotoNumber(ctx context.Context, id string) ([]photo.Record, error) {
	if rec, ok := m.records[id]; ok {
		return []photo.Record{rec}, nil
	}
	return []photo.Record{}, nil
}
