package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/abduss/photocat/internal/bucket"
	"github.com/abduss/photocat/internal/file"
	"github.com/abduss/photocat/internal/ingest"
	"github.com/abduss/photocat/internal/photo"
	"github.com/abduss/photocat/internal/storeerr"
)

// Field identifies a value a use case asks the operator for.
type Field int

const (
	FieldBaseName Field = iota
	FieldBucket
	FieldSourceBucket
	FieldDestinationBucket
	FieldKey
	FieldLocalPath
	FieldDestinationPath
	FieldPhotoNumber
)

var fieldNames = map[Field]string{
	FieldBaseName:          "base_name",
	FieldBucket:            "bucket",
	FieldSourceBucket:      "source_bucket",
	FieldDestinationBucket: "destination_bucket",
	FieldKey:               "key",
	FieldLocalPath:         "local_path",
	FieldDestinationPath:   "destination_path",
	FieldPhotoNumber:       "photo_number",
}

var fieldPrompts = map[Field]string{
	FieldBaseName:          "Enter a name for the new bucket",
	FieldBucket:            "Enter the bucket name",
	FieldSourceBucket:      "Enter the bucket to copy from",
	FieldDestinationBucket: "Enter the bucket to copy to",
	FieldKey:               "Enter the object key",
	FieldLocalPath:         "Enter the path of the local file",
	FieldDestinationPath:   "Enter the local path to save to",
	FieldPhotoNumber:       "Enter the photo ID number",
}

// Name is the stable key of f in request bodies.
func (f Field) Name() string {
	return fieldNames[f]
}

// Prompt is the question shown to an interactive operator.
func (f Field) Prompt() string {
	return fieldPrompts[f]
}

func (f Field) String() string {
	return f.Name()
}

// Prompter is the operator side of a use case.
type Prompter interface {
	Ask(ctx context.Context, f Field) (string, error)
	ShowBuckets(buckets []bucket.Bucket)
	ShowObjects(bucketName string, objects []file.Object)
	ShowRecords(records []photo.Record)
	ShowReport(report ingest.Report)
	Notify(msg string)
}

// Event is one entry of a Preset transcript.
type Event struct {
	Type    string          `json:"type"`
	Bucket  string          `json:"bucket,omitempty"`
	Buckets []bucket.Bucket `json:"buckets,omitempty"`
	Objects []file.Object   `json:"objects,omitempty"`
	Records []photo.Record  `json:"records,omitempty"`
	Report  *ingest.Report  `json:"report,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Preset answers from a fixed set of values and records everything shown,
// for callers that cannot be asked interactively.
type Preset struct {
	answers    map[string]string
	transcript []Event
}

// NewPreset builds a Preset keyed by Field.Name.
func NewPreset(answers map[string]string) *Preset {
	if answers == nil {
		answers = map[string]string{}
	}
	return &Preset{answers: answers}
}

func (p *Preset) Ask(_ context.Context, f Field) (string, error) {
	v, ok := p.answers[f.Name()]
	if !ok {
		return "", storeerr.Validation("ask", f.Name(), fmt.Sprintf("missing value for %q", f.Name()))
	}
	return strings.TrimSpace(v), nil
}

func (p *Preset) ShowBuckets(buckets []bucket.Bucket) {
	p.transcript = append(p.transcript, Event{Type: "buckets", Buckets: buckets})
}

func (p *Preset) ShowObjects(bucketName string, objects []file.Object) {
	p.transcript = append(p.transcript, Event{Type: "objects", Bucket: bucketName, Objects: objects})
}

func (p *Preset) ShowRecords(records []photo.Record) {
	p.transcript = append(p.transcript, Event{Type: "records", Records: records})
}

func (p *Preset) ShowReport(report ingest.Report) {
	p.transcript = append(p.transcript, Event{Type: "report", Report: &report})
}

func (p *Preset) Notify(msg string) {
	p.transcript = append(p.transcript, Event{Type: "notice", Message: msg})
}

// Transcript returns the events in the order they were shown.
func (p *Preset) Transcript() []Event {
	return p.transcript
}
