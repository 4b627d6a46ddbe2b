package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abduss/photocat/internal/bucket"
	"github.com/abduss/photocat/internal/catalog"
	"github.com/abduss/photocat/internal/file"
	"github.com/abduss/photocat/internal/ingest"
	"github.com/abduss/photocat/internal/photo"
	"github.com/abduss/photocat/internal/storeerr"
)

func TestMenuDispatchesAndExits(t *testing.T) {
	var asked []string
	handlers := map[catalog.Command]catalog.Handler{
		catalog.CmdNewContainer: func(ctx context.Context, p catalog.Prompter) error {
			name, err := p.Ask(ctx, catalog.FieldBaseName)
			if err != nil {
				return err
			}
			asked = append(asked, name)
			p.Notify("bucket " + name + "-000001 created")
			return nil
		},
	}

	var out bytes.Buffer
	menu := NewMenu(handlers, strings.NewReader("A\nphotos\nj\n"), &out, nil)
	menu.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 6, 0, time.UTC) }

	require.NoError(t, menu.Run(context.Background()))
	assert.Equal(t, []string{"photos"}, asked)
	assert.Contains(t, out.String(), "a. Create a new storage bucket")
	assert.Contains(t, out.String(), catalog.FieldBaseName.Prompt())
	assert.Contains(t, out.String(), "bucket photos-000001 created")
	assert.Contains(t, out.String(), "date and time = 09/03/2024 14:05:06")
}

func TestMenuInvalidSelectionContinues(t *testing.T) {
	var out bytes.Buffer
	menu := NewMenu(map[catalog.Command]catalog.Handler{}, strings.NewReader("z\nb\nj\n"), &out, nil)

	require.NoError(t, menu.Run(context.Background()))
	assert.Equal(t, 2, strings.Count(out.String(), "Invalid selection"))
}

func TestMenuReportsHandlerErrorWithKind(t *testing.T) {
	handlers := map[catalog.Command]catalog.Handler{
		catalog.CmdRemoveContainer: func(context.Context, catalog.Prompter) error {
			return storeerr.New(storeerr.ErrNonEmptyContainer, "delete bucket", "photos-123456", nil)
		},
	}

	var out bytes.Buffer
	menu := NewMenu(handlers, strings.NewReader("d\nj\n"), &out, nil)

	require.NoError(t, menu.Run(context.Background()))
	assert.Contains(t, out.String(), "Error (non_empty_container): delete bucket photos-123456: bucket not empty")
}

func TestMenuStopsAtEndOfInput(t *testing.T) {
	var out bytes.Buffer
	menu := NewMenu(map[catalog.Command]catalog.Handler{}, strings.NewReader(""), &out, nil)

	require.NoError(t, menu.Run(context.Background()))
}

func TestTerminalAskAtEndOfInput(t *testing.T) {
	handlers := map[catalog.Command]catalog.Handler{
		catalog.CmdSearchMetadata: func(ctx context.Context, p catalog.Prompter) error {
			_, err := p.Ask(ctx, catalog.FieldPhotoNumber)
			return err
		},
	}

	var out bytes.Buffer
	menu := NewMenu(handlers, strings.NewReader("g\n"), &out, nil)

	require.NoError(t, menu.Run(context.Background()))
	assert.Contains(t, out.String(), "read photo_number: unexpected EOF")
}

func TestTerminalRendering(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(nil, &out)

	term.ShowBuckets(nil)
	term.ShowBuckets([]bucket.Bucket{{Name: "photos-123456"}})
	term.ShowObjects("photos-123456", nil)
	term.ShowObjects("photos-123456", []file.Object{{Key: "cat.jpg", SizeBytes: 4}})
	term.ShowRecords([]photo.Record{{PhotoNumber: "7", FileName: "a.jpg"}})
	term.ShowReport(ingest.Report{
		RunID:  "run-1",
		Source: "photoData.json",
		Outcomes: []ingest.Outcome{
			{Position: 1, PhotoNumber: "1"},
			{Position: 2, Err: storeerr.Validation("parse entry", "#2", "bad")},
		},
	})

	rendered := out.String()
	assert.Contains(t, rendered, "No buckets.")
	assert.Contains(t, rendered, "  photos-123456\n")
	assert.Contains(t, rendered, "Bucket photos-123456 is empty.")
	assert.Contains(t, rendered, "cat.jpg (4 bytes)")
	assert.Contains(t, rendered, "FileName: a.jpg")
	assert.Contains(t, rendered, "written: 1")
	assert.Contains(t, rendered, "failed #2:")
}
