package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
)

var errNotFound = errors.New("record not found")

func newStoreCommand(a *app) *cobra.Command {
	var (
		in       domain.NewRecord
		file     string
		metadata []string
	)

	cmd := &cobra.Command{
		Use:   "store",
		Short: "Store a record from flags or a JSON file",
		Example: `  scrapectl store --url https://example.com --category news --label local
  scrapectl store --file record.json
  cat record.json | scrapectl store --file -`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rec := in
			if file != "" {
				data, err := readInput(cmd.InOrStdin(), file)
				if err != nil {
					return err
				}
				if rec, err = domain.ParseNewRecord(data); err != nil {
					return err
				}
			} else if len(metadata) > 0 {
				meta, err := parseMetadata(metadata)
				if err != nil {
					return err
				}
				rec.Metadata = meta
			}

			id, err := a.store.Store(cmd.Context(), rec)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.URL, "url", "", "record url")
	cmd.Flags().StringVar(&in.Title, "title", "", "record title")
	cmd.Flags().StringVar(&in.Content, "content", "", "record content")
	cmd.Flags().StringVar(&in.Category, "category", "", "record category")
	cmd.Flags().StringArrayVar(&in.Labels, "label", nil, "record label (repeatable)")
	cmd.Flags().StringArrayVar(&metadata, "meta", nil, "metadata key=value (repeatable)")
	cmd.Flags().StringVar(&file, "file", "", "read the record as JSON from a file, or - for stdin")
	cmd.MarkFlagsMutuallyExclusive("file", "url")
	return cmd
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func parseMetadata(pairs []string) (map[string]any, error) {
	meta := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("metadata %q: expected key=value", pair)
		}
		meta[strings.TrimSpace(key)] = value
	}
	return meta, nil
}

func newGetCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Print a record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, found, err := a.store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%s: %w", args[0], errNotFound)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(rec)
		},
	}
}

func newListCommand(a *app) *cobra.Command {
	var category, label string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List records by category or label",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var (
				records []domain.Record
				err     error
			)
			if category != "" {
				records, err = a.store.GetByCategory(cmd.Context(), category)
			} else {
				records, err = a.store.GetByLabel(cmd.Context(), label)
			}
			if err != nil {
				return err
			}
			renderRecords(cmd.OutOrStdout(), records)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category to list")
	cmd.Flags().StringVar(&label, "label", "", "label to list")
	cmd.MarkFlagsOneRequired("category", "label")
	cmd.MarkFlagsMutuallyExclusive("category", "label")
	return cmd
}

func newDeleteCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a record and prune emptied indexes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deleted, err := a.store.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !deleted {
				return fmt.Errorf("%s: %w", args[0], errNotFound)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
