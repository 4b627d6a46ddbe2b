package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/abduss/photocat/internal/bucket"
	"github.com/abduss/photocat/internal/catalog"
	"github.com/abduss/photocat/internal/file"
	"github.com/abduss/photocat/internal/ingest"
	"github.com/abduss/photocat/internal/photo"
)

// Terminal is a catalog.Prompter reading answers line by line and printing
// everything else to out.
type Terminal struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewTerminal wraps a scanner shared with the menu loop.
func NewTerminal(scanner *bufio.Scanner, out io.Writer) *Terminal {
	return &Terminal{scanner: scanner, out: out}
}

func (t *Terminal) Ask(ctx context.Context, f catalog.Field) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fmt.Fprintf(t.out, "%s:\n", f.Prompt())
	if !t.scanner.Scan() {
		if err := t.scanner.Err(); err != nil {
			return "", fmt.Errorf("read %s: %w", f.Name(), err)
		}
		return "", fmt.Errorf("read %s: %w", f.Name(), io.ErrUnexpectedEOF)
	}
	return strings.TrimSpace(t.scanner.Text()), nil
}

func (t *Terminal) ShowBuckets(buckets []bucket.Bucket) {
	if len(buckets) == 0 {
		fmt.Fprintln(t.out, "No buckets.")
		return
	}
	fmt.Fprintln(t.out, "Buckets:")
	for _, b := range buckets {
		fmt.Fprintf(t.out, "  %s\n", b.Name)
	}
}

func (t *Terminal) ShowObjects(bucketName string, objects []file.Object) {
	if len(objects) == 0 {
		fmt.Fprintf(t.out, "Bucket %s is empty.\n", bucketName)
		return
	}
	fmt.Fprintf(t.out, "Objects in %s:\n", bucketName)
	for _, o := range objects {
		fmt.Fprintf(t.out, "  %s (%d bytes)\n", o.Key, o.SizeBytes)
	}
}

func (t *Terminal) ShowRecords(records []photo.Record) {
	for _, r := range records {
		fmt.Fprintf(t.out, "  PhotoNumber: %s\n", r.PhotoNumber)
		fmt.Fprintf(t.out, "    Title: %s\n    Description: %s\n    FileName: %s\n", r.Title, r.Description, r.FileName)
		fmt.Fprintf(t.out, "    Photographer: %s\n    Date: %s\n    Location: %s\n", r.Photographer, r.Date, r.Location)
	}
}

func (t *Terminal) ShowReport(report ingest.Report) {
	fmt.Fprintf(t.out, "Ingested %s (run %s)\n", report.Source, report.RunID)
	fmt.Fprintf(t.out, "  written: %s\n", strings.Join(report.Succeeded(), ", "))
	for _, o := range report.Failed() {
		fmt.Fprintf(t.out, "  failed %s: %v\n", o.ID(), o.Err)
	}
}

func (t *Terminal) Notify(msg string) {
	fmt.Fprintln(t.out, msg)
}
