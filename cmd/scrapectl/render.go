package main

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/storage"
)

const maxTitleWidth = 48

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func renderRecords(w io.Writer, records []domain.Record) {
	t := newTable(w, "Records")
	t.AppendHeader(table.Row{"ID", "Title", "URL", "Category", "Labels", "Created"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: maxTitleWidth, WidthMaxEnforcer: text.Trim},
	})
	for _, r := range records {
		t.AppendRow(table.Row{
			r.ID,
			r.Title,
			r.URL,
			r.Category,
			strings.Join(r.Labels, ", "),
			time.UnixMilli(r.Timestamp).UTC().Format(time.RFC3339),
		})
	}
	t.AppendFooter(table.Row{"", "", "", "", "Total", len(records)})
	t.Render()
}

func renderDump(w io.Writer, dump storage.Dump) {
	idx := newTable(w, "Indexes")
	idx.AppendHeader(table.Row{"Kind", "Names"})
	idx.AppendRow(table.Row{"categories", strings.Join(dump.Categories, ", ")})
	idx.AppendRow(table.Row{"labels", strings.Join(dump.Labels, ", ")})
	idx.Render()

	renderRecords(w, dump.Records)
	renderStats(w, dump.Stats)

	keys := newTable(w, "Raw keys")
	keys.AppendHeader(table.Row{"Key"})
	for _, k := range dump.RawKeys {
		keys.AppendRow(table.Row{k})
	}
	keys.Render()
}

func renderStats(w io.Writer, s storage.Stats) {
	t := newTable(w, "Server")
	t.AppendHeader(table.Row{"Metric", "Value"})
	t.AppendRow(table.Row{"status", s.Status})
	if s.Error != "" {
		t.AppendRow(table.Row{"error", s.Error})
	}
	t.AppendRows([]table.Row{
		{"commands", strconv.FormatInt(s.Commands, 10)},
		{"hits", strconv.FormatInt(s.Hits, 10)},
		{"misses", strconv.FormatInt(s.Misses, 10)},
		{"memory", strconv.FormatInt(s.Memory, 10)},
		{"bandwidth", strconv.FormatInt(s.Bandwidth, 10)},
		{"connections", strconv.FormatInt(s.Connections, 10)},
	})
	t.Render()
}
