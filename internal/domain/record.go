// Package domain holds the record, student and generation types shared by
// the storage, generation and HTTP layers, plus their typed parse functions.
package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Record is a stored unit of scraped content.
type Record struct {
	ID        string         `json:"id"`
	URL       string         `json:"url"`
	Title     string         `json:"title"`
	Content   string         `json:"content"`
	Category  string         `json:"category"`
	Labels    []string       `json:"labels"`
	Timestamp int64          `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// NewRecord is a Record before the store assigns its id and timestamp.
type NewRecord struct {
	URL      string         `json:"url"`
	Title    string         `json:"title"`
	Content  string         `json:"content"`
	Category string         `json:"category"`
	Labels   []string       `json:"labels"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Normalize collapses duplicate labels, keeping the first occurrence order.
// Category and labels are otherwise stored exactly as submitted.
func (n NewRecord) Normalize() NewRecord {
	n.Labels = dedupe(n.Labels)
	return n
}

// Validate checks the fields a stored record must satisfy.
func (n NewRecord) Validate() error {
	if err := validateURL(n.URL); err != nil {
		return err
	}
	if strings.TrimSpace(n.Category) == "" {
		return NewValidationError("category", "must not be empty")
	}
	for i, label := range n.Labels {
		if strings.TrimSpace(label) == "" {
			return NewValidationError(fmt.Sprintf("labels[%d]", i), "must not be empty")
		}
	}
	return nil
}

// WithIdentity completes n into a Record.
func (n NewRecord) WithIdentity(id string, timestampMs int64) Record {
	return Record{
		ID:        id,
		URL:       n.URL,
		Title:     n.Title,
		Content:   n.Content,
		Category:  n.Category,
		Labels:    n.Labels,
		Timestamp: timestampMs,
		Metadata:  n.Metadata,
	}
}

// Validate checks the identity fields and the content fields.
func (r Record) Validate() error {
	if r.ID == "" {
		return NewValidationError("id", "must not be empty")
	}
	if r.Timestamp <= 0 {
		return NewValidationError("timestamp", "must be a positive epoch millisecond value")
	}
	return r.contentFields().Validate()
}

func (r Record) contentFields() NewRecord {
	return NewRecord{
		URL:      r.URL,
		Title:    r.Title,
		Content:  r.Content,
		Category: r.Category,
		Labels:   r.Labels,
		Metadata: r.Metadata,
	}
}

// wire forms with pointer fields so absent keys are distinguishable from zero values.
type newRecordWire struct {
	URL      *string         `json:"url"`
	Title    *string         `json:"title"`
	Content  *string         `json:"content"`
	Category *string         `json:"category"`
	Labels   *[]string       `json:"labels"`
	Metadata *map[string]any `json:"metadata"`
}

type recordWire struct {
	ID        *string `json:"id"`
	Timestamp *int64  `json:"timestamp"`
	newRecordWire
}

// ParseNewRecord decodes and validates a record without id and timestamp.
// Unknown keys, including id and timestamp, are ignored.
func ParseNewRecord(data []byte) (NewRecord, error) {
	var w newRecordWire
	if err := decodeStrict(data, &w); err != nil {
		return NewRecord{}, err
	}

	rec, err := w.toNewRecord()
	if err != nil {
		return NewRecord{}, err
	}
	if err := rec.Validate(); err != nil {
		return NewRecord{}, err
	}
	return rec, nil
}

// ParseRecord decodes and validates a stored record.
func ParseRecord(data []byte) (Record, error) {
	var w recordWire
	if err := decodeStrict(data, &w); err != nil {
		return Record{}, err
	}

	if w.ID == nil {
		return Record{}, NewValidationError("id", "is required")
	}
	if w.Timestamp == nil {
		return Record{}, NewValidationError("timestamp", "is required")
	}
	fields, err := w.toNewRecord()
	if err != nil {
		return Record{}, err
	}

	rec := fields.WithIdentity(*w.ID, *w.Timestamp)
	if err := rec.Validate(); err != nil {
		return Record{}, err
	}
	return rec, nil
}

func (w newRecordWire) toNewRecord() (NewRecord, error) {
	required := []struct {
		name  string
		value *string
	}{
		{"url", w.URL},
		{"title", w.Title},
		{"content", w.Content},
		{"category", w.Category},
	}
	for _, f := range required {
		if f.value == nil {
			return NewRecord{}, NewValidationError(f.name, "is required")
		}
	}
	if w.Labels == nil {
		return NewRecord{}, NewValidationError("labels", "is required")
	}

	rec := NewRecord{
		URL:      *w.URL,
		Title:    *w.Title,
		Content:  *w.Content,
		Category: *w.Category,
		Labels:   *w.Labels,
	}
	if w.Metadata != nil {
		rec.Metadata = *w.Metadata
	}
	if rec.Labels == nil {
		rec.Labels = []string{}
	}
	return rec, nil
}

// decodeStrict unmarshals data and maps JSON type mismatches to a ValidationError.
func decodeStrict(data []byte, v any) error {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewValidationError("", "body is empty")
	}

	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		field := typeErr.Field
		if field == "" {
			field = "body"
		}
		return NewValidationError(field, "must be of type "+typeErr.Type.String())
	}
	return NewValidationError("", "invalid JSON: "+err.Error())
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return NewValidationError("url", "must be an absolute URL")
	}
	return nil
}

func dedupe(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
