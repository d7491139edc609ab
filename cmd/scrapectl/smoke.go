package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/storage"
)

const (
	smokeRecords  = 3
	smokeItemSize = 2048
	smokeCategory = "smoke"
	smokeLabel    = "smoke"
)

type smokeStep struct {
	name string
	err  error
}

func newSmokeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "Store, verify and delete sample records, then check cleanup",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			before := a.store.Stats(ctx)
			steps := runSmoke(ctx, a.store)
			after := a.store.Stats(ctx)

			out := cmd.OutOrStdout()
			t := newTable(out, "Smoke test")
			t.AppendHeader(table.Row{"Step", "Result"})
			var failed int
			for _, s := range steps {
				result := "PASS"
				if s.err != nil {
					result = "FAIL: " + s.err.Error()
					failed++
				}
				t.AppendRow(table.Row{s.name, result})
			}
			t.Render()

			delta := newTable(out, "Server delta")
			delta.AppendHeader(table.Row{"Metric", "Change"})
			delta.AppendRows([]table.Row{
				{"commands", strconv.FormatInt(after.Commands-before.Commands, 10)},
				{"hits", strconv.FormatInt(after.Hits-before.Hits, 10)},
				{"misses", strconv.FormatInt(after.Misses-before.Misses, 10)},
				{"memory", strconv.FormatInt(after.Memory-before.Memory, 10)},
				{"bandwidth", strconv.FormatInt(after.Bandwidth-before.Bandwidth, 10)},
			})
			delta.Render()

			if failed > 0 {
				return fmt.Errorf("smoke test: %d of %d steps failed", failed, len(steps))
			}
			return nil
		},
	}
}

// runSmoke stops at the first failing step.
func runSmoke(ctx context.Context, store *storage.RecordStore) []smokeStep {
	var ids []string
	content := strings.Repeat("x", smokeItemSize)

	checks := []struct {
		name string
		fn   func() error
	}{
		{fmt.Sprintf("store %d records", smokeRecords), func() error {
			for i := range smokeRecords {
				id, err := store.Store(ctx, domain.NewRecord{
					URL:      fmt.Sprintf("https://smoke%d.example.com", i),
					Title:    fmt.Sprintf("t%d", i),
					Content:  content,
					Category: smokeCategory,
					Labels:   []string{smokeLabel},
					Metadata: map[string]any{"size": smokeItemSize},
				})
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return nil
		}},
		{"category index lists records", func() error {
			recs, err := store.GetByCategory(ctx, smokeCategory)
			if err != nil {
				return err
			}
			return expectIDs(recs, ids)
		}},
		{"label index lists records", func() error {
			recs, err := store.GetByLabel(ctx, smokeLabel)
			if err != nil {
				return err
			}
			return expectIDs(recs, ids)
		}},
		{"delete records", func() error {
			for _, id := range ids {
				deleted, err := store.Delete(ctx, id)
				if err != nil {
					return err
				}
				if !deleted {
					return fmt.Errorf("%s: %w", id, errNotFound)
				}
			}
			return nil
		}},
		{"indexes pruned", func() error {
			cats, err := store.Categories(ctx)
			if err != nil {
				return err
			}
			labels, err := store.Labels(ctx)
			if err != nil {
				return err
			}
			if slices.Contains(cats, smokeCategory) || slices.Contains(labels, smokeLabel) {
				return fmt.Errorf("universe still lists %q", smokeCategory)
			}
			return nil
		}},
	}

	steps := make([]smokeStep, 0, len(checks))
	for _, c := range checks {
		err := c.fn()
		steps = append(steps, smokeStep{name: c.name, err: err})
		if err != nil {
			break
		}
	}
	return steps
}

func expectIDs(recs []domain.Record, want []string) error {
	got := make([]string, 0, len(recs))
	for _, r := range recs {
		got = append(got, r.ID)
	}
	for _, id := range want {
		if !slices.Contains(got, id) {
			return fmt.Errorf("record %s missing from index", id)
		}
	}
	return nil
}
