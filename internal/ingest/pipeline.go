// Package ingest seeds the metadata table from an external description file.
//
// Entries are upserted one at a time in file order. A failing entry is
// reported and skipped; it never aborts the rest of the run.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abduss/photocat/internal/metrics"
	"github.com/abduss/photocat/internal/photo"
	"github.com/abduss/photocat/internal/storeerr"
)

// Outcome is the result of ingesting one entry. Position is 1-based.
type Outcome struct {
	Position    int    `json:"position"`
	PhotoNumber string `json:"photo_number,omitempty"`
	Err         error  `json:"-"`
	Error       string `json:"error,omitempty"`
}

// ID names the entry in reports: its photo number, or its position when the
// photo number could not be read.
func (o Outcome) ID() string {
	if o.PhotoNumber != "" {
		return o.PhotoNumber
	}
	return fmt.Sprintf("#%d", o.Position)
}

// Report lists the per-entry outcomes of one ingestion run.
type Report struct {
	RunID     string    `json:"run_id"`
	Source    string    `json:"source"`
	StartedAt time.Time `json:"started_at"`
	Outcomes  []Outcome `json:"outcomes"`
}

// Succeeded returns the identifiers of the entries that were written.
func (r Report) Succeeded() []string {
	ids := []string{}
	for _, o := range r.Outcomes {
		if o.Err == nil {
			ids = append(ids, o.ID())
		}
	}
	return ids
}

// Failed returns the outcomes of the entries that were not written.
func (r Report) Failed() []Outcome {
	var failed []Outcome
	for _, o := range r.Outcomes {
		if o.Err != nil {
			failed = append(failed, o)
		}
	}
	return failed
}

// Pipeline upserts description entries through a metadata repository.
type Pipeline struct {
	records  photo.Repository
	log      *zap.Logger
	newRunID func() string
	now      func() time.Time
}

// NewPipeline constructs a pipeline writing to records.
func NewPipeline(records photo.Repository, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		records:  records,
		log:      log.Named("ingest"),
		newRunID: func() string { return uuid.NewString() },
		now:      time.Now,
	}
}

// RunFile ingests the description file at path.
func (p *Pipeline) RunFile(ctx context.Context, path string) (Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return Report{}, storeerr.New(storeerr.ErrLocalIO, "open description file", path, err)
	}
	defer f.Close()

	return p.Run(ctx, path, f)
}

// Run ingests the JSON array read from r. The returned error is non-nil only
// when the source as a whole cannot be read; per-entry failures are in the report.
func (p *Pipeline) Run(ctx context.Context, source string, r io.Reader) (Report, error) {
	report := Report{RunID: p.newRunID(), Source: source, StartedAt: p.now()}

	var entries []json.RawMessage
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return report, storeerr.New(storeerr.ErrValidation, "read description file", source, err)
	}

	log := p.log.With(zap.String("runID", report.RunID), zap.String("source", source))
	log.Info("ingesting photo metadata", zap.Int("entries", len(entries)))

	report.Outcomes = make([]Outcome, 0, len(entries))
	for i, raw := range entries {
		outcome := Outcome{Position: i + 1}

		record, err := parseEntry(raw)
		outcome.PhotoNumber = record.PhotoNumber
		if err != nil {
			outcome.Err = storeerr.New(storeerr.ErrValidation, "parse entry", outcome.ID(), err)
		} else {
			log.Info("adding photo metadata",
				zap.String("photoNumber", record.PhotoNumber),
				zap.String("fileName", record.FileName),
				zap.String("title", record.Title),
			)
			outcome.Err = p.records.Upsert(ctx, record)
		}

		if outcome.Err != nil {
			outcome.Error = outcome.Err.Error()
			log.Warn("photo metadata entry failed", zap.Int("position", outcome.Position), zap.String("id", outcome.ID()), zap.Error(outcome.Err))
		}
		metrics.ObserveIngested(outcome.Err)
		report.Outcomes = append(report.Outcomes, outcome)
	}

	log.Info("photo metadata ingested",
		zap.Int("succeeded", len(report.Succeeded())),
		zap.Int("failed", len(report.Failed())),
	)
	return report, nil
}

var fieldKeys = map[string][2]string{
	"photo_number": {"PhotoNumber", "photo_number"},
	"description":  {"Description", "description"},
	"file_name":    {"FileName", "file_name"},
	"photographer": {"Photographer", "photographer"},
	"date":         {"Date", "date"},
	"title":        {"Title", "title"},
	"location":     {"Location", "location"},
}

// parseEntry decodes one description entry. On failure the returned record
// still carries the photo number when it could be read.
func parseEntry(raw json.RawMessage) (photo.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]any
	if err := dec.Decode(&fields); err != nil || fields == nil {
		return photo.Record{}, fmt.Errorf("entry is not an object")
	}

	var rec photo.Record
	number, err := photo.CanonicalPhotoNumber(lookup(fields, "photo_number"))
	if err != nil {
		return rec, fmt.Errorf("photo number: %w", err)
	}
	rec.PhotoNumber = number

	// Only the photo number is required; absent fields are stored empty.
	for name, dst := range map[string]*string{
		"description":  &rec.Description,
		"file_name":    &rec.FileName,
		"photographer": &rec.Photographer,
		"date":         &rec.Date,
		"title":        &rec.Title,
		"location":     &rec.Location,
	} {
		val, err := photo.CanonicalValue(lookup(fields, name))
		if err != nil {
			return rec, fmt.Errorf("%s: %w", name, err)
		}
		*dst = val
	}

	return rec, nil
}

func lookup(fields map[string]any, name string) any {
	keys := fieldKeys[name]
	if v, ok := fields[keys[0]]; ok {
		return v
	}
	return fields[keys[1]]
}
