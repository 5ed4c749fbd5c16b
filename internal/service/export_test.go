package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell-go/internal/apperr"
	"github.com/inkwell/inkwell-go/internal/model"
)

func seedJournal(t *testing.T) (*ExportService, *fakeEntryStore) {
	t.Helper()
	store := newFakeEntryStore()
	entries := NewEntryService(store)

	_, err := entries.Create(context.Background(), "u1", model.EntryRequest{
		Title: "Hiking day",
		Body:  "Walked 20km.",
		Tags:  []string{"travel", "outdoors"},
	})
	require.NoError(t, err)
	_, err = entries.Create(context.Background(), "u1", model.EntryRequest{
		Title: "Quiet evening",
		Body:  "Tea, then \"Dune\".",
		Tags:  []string{"books"},
	})
	require.NoError(t, err)
	_, err = entries.Create(context.Background(), "u2", model.EntryRequest{Title: "Not yours"})
	require.NoError(t, err)

	return NewExportService(store), store
}

func TestExportUnknownFormat(t *testing.T) {
	svc, _ := seedJournal(t)

	_, err := svc.Export(context.Background(), "u1", "xml")
	require.Error(t, err)
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestExportJSON(t *testing.T) {
	svc, _ := seedJournal(t)

	result, err := svc.Export(context.Background(), "u1", FormatJSON)
	require.NoError(t, err)

	assert.Equal(t, "application/json", result.ContentType)
	assert.True(t, strings.HasSuffix(result.Filename, ".json"))

	var entries []model.EntryResponse
	require.NoError(t, json.Unmarshal(result.Data, &entries))
	require.Len(t, entries, 2, "only the exporting user's entries")

	titles := []string{entries[0].Title, entries[1].Title}
	assert.Contains(t, titles, "Hiking day")
	assert.Contains(t, titles, "Quiet evening")
	assert.NotContains(t, titles, "Not yours")
}

func TestExportCSV(t *testing.T) {
	svc, _ := seedJournal(t)

	result, err := svc.Export(context.Background(), "u1", FormatCSV)
	require.NoError(t, err)
	assert.Contains(t, result.ContentType, "text/csv")

	records, err := csv.NewReader(bytes.NewReader(result.Data)).ReadAll()
	require.NoError(t, err, "quotes in bodies must survive CSV encoding")
	require.Len(t, records, 3, "header plus two rows")

	assert.Equal(t, []string{"id", "title", "body", "tags", "created_at", "updated_at"}, records[0])

	var hikingRow []string
	for _, row := range records[1:] {
		if row[1] == "Hiking day" {
			hikingRow = row
		}
	}
	require.NotNil(t, hikingRow)
	assert.Equal(t, "travel|outdoors", hikingRow[3])
}

func TestExportMarkdown(t *testing.T) {
	svc, _ := seedJournal(t)

	result, err := svc.Export(context.Background(), "u1", FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, result.ContentType, "text/markdown")

	doc := string(result.Data)
	assert.Contains(t, doc, "# Journal export")
	assert.Contains(t, doc, "## Hiking day")
	assert.Contains(t, doc, "Tags: travel, outdoors")
	assert.Contains(t, doc, "Walked 20km.")
	assert.NotContains(t, doc, "Not yours")
}

func TestExportEmptyJournal(t *testing.T) {
	svc := NewExportService(newFakeEntryStore())

	result, err := svc.Export(context.Background(), "u1", FormatJSON)
	require.NoError(t, err)

	var entries []model.EntryResponse
	require.NoError(t, json.Unmarshal(result.Data, &entries))
	assert.Empty(t, entries)
}

func TestExportPagesThroughLargeJournals(t *testing.T) {
	store := newFakeEntryStore()
	entries := NewEntryService(store)

	for i := 0; i < exportPageSize+5; i++ {
		_, err := entries.Create(context.Background(), "u1", model.EntryRequest{Title: "Entry"})
		require.NoError(t, err)
	}

	svc := NewExportService(store)
	result, err := svc.Export(context.Background(), "u1", FormatJSON)
	require.NoError(t, err)

	var out []model.EntryResponse
	require.NoError(t, json.Unmarshal(result.Data, &out))
	assert.Len(t, out, exportPageSize+5)
}
