package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inkwell/inkwell-go/internal/apperr"
	"github.com/inkwell/inkwell-go/internal/model"
)

// Export formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
)

// exportPageSize bounds each store read while walking the full entry list.
const exportPageSize = 200

// ExportResult carries a rendered export document.
type ExportResult struct {
	ContentType string
	Filename    string
	Data        []byte
}

// ExportService renders a user's full journal in a portable format.
type ExportService struct {
	entries EntryStore
}

// NewExportService creates a new ExportService.
func NewExportService(entries EntryStore) *ExportService {
	return &ExportService{entries: entries}
}

// Export renders all of the user's entries, newest first, in the requested
// format. Unknown formats are rejected as invalid input.
func (s *ExportService) Export(ctx context.Context, userID, format string) (ExportResult, error) {
	switch format {
	case FormatJSON, FormatCSV, FormatMarkdown:
	default:
		return ExportResult{}, apperr.Invalid("unknown export format, want json, csv or markdown")
	}

	entries, err := s.allEntries(ctx, userID)
	if err != nil {
		slog.Error("export: listing entries failed", "user_id", userID, "error", err)
		return ExportResult{}, apperr.Internal("could not export entries", err)
	}

	stamp := time.Now().UTC().Format("2006-01-02")

	switch format {
	case FormatCSV:
		data, err := renderCSV(entries)
		if err != nil {
			return ExportResult{}, apperr.Internal("could not export entries", err)
		}
		return ExportResult{
			ContentType: "text/csv; charset=utf-8",
			Filename:    "journal-" + stamp + ".csv",
			Data:        data,
		}, nil
	case FormatMarkdown:
		return ExportResult{
			ContentType: "text/markdown; charset=utf-8",
			Filename:    "journal-" + stamp + ".md",
			Data:        renderMarkdown(entries),
		}, nil
	default:
		data, err := json.MarshalIndent(entriesToResponse(entries), "", "  ")
		if err != nil {
			return ExportResult{}, apperr.Internal("could not export entries", err)
		}
		return ExportResult{
			ContentType: "application/json",
			Filename:    "journal-" + stamp + ".json",
			Data:        data,
		}, nil
	}
}

// allEntries pages through the store until the journal is exhausted.
func (s *ExportService) allEntries(ctx context.Context, userID string) ([]model.Entry, error) {
	var all []model.Entry
	opts := model.ListOptions{Limit: exportPageSize}

	for {
		page, err := s.entries.ListByUser(ctx, userID, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) < opts.Limit {
			return all, nil
		}
		opts.Offset += opts.Limit
	}
}

func renderCSV(entries []model.Entry) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"id", "title", "body", "tags", "created_at", "updated_at"}); err != nil {
		return nil, err
	}
	for _, e := range entries {
		record := []string{
			e.ID,
			e.Title,
			e.Body,
			strings.Join(e.Tags, "|"),
			e.CreatedAt.UTC().Format(time.RFC3339),
			e.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func renderMarkdown(entries []model.Entry) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Journal export\n")
	for _, e := range entries {
		fmt.Fprintf(&buf, "\n## %s\n\n", e.Title)
		fmt.Fprintf(&buf, "*%s*\n", e.CreatedAt.UTC().Format("2006-01-02 15:04"))
		if len(e.Tags) > 0 {
			fmt.Fprintf(&buf, "\nTags: %s\n", strings.Join(e.Tags, ", "))
		}
		if e.Body != "" {
			buf.WriteString("\n" + e.Body + "\n")
		}
	}

	return buf.Bytes()
}
