package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/spf13/cobra"

	infraerrors "github.com/jonesrussell/north-cloud/extracurricular/infrastructure/errors"
	infrahttp "github.com/jonesrussell/north-cloud/extracurricular/infrastructure/http"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
)

const (
	fetchTimeout = 30 * time.Second
	maxPageBytes = 5 << 20
	userAgent    = "scrapectl/0.1 (+https://github.com/jonesrussell/north-cloud)"
)

// nonContentSelectors lists elements to strip before extracting body text.
const nonContentSelectors = "script, style, nav, header, footer, noscript"

func newFetchCommand(a *app) *cobra.Command {
	var (
		category string
		labels   []string
	)

	cmd := &cobra.Command{
		Use:   "fetch <url>",
		Short: "Fetch a page, extract its text and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pageURL := args[0]
			body, err := fetchPage(cmd.Context(), infrahttp.NewClient(&infrahttp.ClientConfig{Timeout: fetchTimeout}), pageURL)
			if err != nil {
				return err
			}

			rec, err := extractRecord(pageURL, body)
			if err != nil {
				return err
			}
			rec.Category = category
			rec.Labels = labels

			id, err := a.store.Store(cmd.Context(), rec)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, rec.Title)
			return nil
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category for the stored record")
	cmd.Flags().StringArrayVar(&labels, "label", nil, "label for the stored record (repeatable)")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func fetchPage(ctx context.Context, client *http.Client, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, infraerrors.WrapWithContext(err, "create request")
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, infraerrors.WrapWithContextf(err, "fetch %s", pageURL)
	}
	defer resp.Body.Close()

	if httpErr := infraerrors.ParseHTTPError(resp); httpErr != nil {
		return nil, infraerrors.WrapWithContextf(httpErr, "fetch %s", pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, infraerrors.WrapWithContext(err, "read body")
	}
	return body, nil
}

// extractRecord builds the content fields of a record from an HTML page.
func extractRecord(pageURL string, body []byte) (domain.NewRecord, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return domain.NewRecord{}, fmt.Errorf("parse html: %w", err)
	}

	rec := domain.NewRecord{
		URL:     pageURL,
		Title:   pageTitle(doc),
		Content: bodyText(doc),
	}

	meta := map[string]any{"source": "scrapectl"}
	if desc, ok := doc.Find("meta[name='description']").Attr("content"); ok && strings.TrimSpace(desc) != "" {
		meta["description"] = strings.TrimSpace(desc)
	}
	if author, ok := doc.Find("meta[name='author']").Attr("content"); ok && strings.TrimSpace(author) != "" {
		meta["author"] = strings.TrimSpace(author)
	}
	rec.Metadata = meta

	return rec, nil
}

func pageTitle(doc *goquery.Document) string {
	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		return title
	}
	if og, ok := doc.Find("meta[property='og:title']").Attr("content"); ok {
		return strings.TrimSpace(og)
	}
	return strings.TrimSpace(doc.Find("h1").First().Text())
}

// bodyText prefers <article> and falls back to <body>, collapsing whitespace.
func bodyText(doc *goquery.Document) string {
	sel := doc.Find("article").First()
	if sel.Length() == 0 {
		sel = doc.Find("body").First()
	}
	sel.Find(nonContentSelectors).Remove()
	return strings.Join(strings.Fields(sel.Text()), " ")
}
