package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
)

func requireValidationField(t *testing.T, err error, field string) {
	t.Helper()

	var vErr *domain.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, field, vErr.Field)
}

func TestParseNewRecord_Valid(t *testing.T) {
	t.Parallel()

	rec, err := domain.ParseNewRecord([]byte(`{
		"url": "https://x.com",
		"title": "t",
		"content": "c",
		"category": "science",
		"labels": ["bio", "lab"],
		"metadata": {"source": "debug-api"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, "https://x.com", rec.URL)
	assert.Equal(t, []string{"bio", "lab"}, rec.Labels)
	assert.Equal(t, "debug-api", rec.Metadata["source"])
}

func TestParseNewRecord_IgnoresClientIdentity(t *testing.T) {
	t.Parallel()

	rec, err := domain.ParseNewRecord([]byte(`{"id":"client","timestamp":1,"url":"https://x.com","title":"","content":"","category":"a","labels":[]}`))
	require.NoError(t, err)
	assert.Empty(t, rec.Labels)
}

func TestParseNewRecord_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing url", `{"title":"t","content":"c","category":"a","labels":[]}`, "url"},
		{"relative url", `{"url":"/path","title":"t","content":"c","category":"a","labels":[]}`, "url"},
		{"missing title", `{"url":"https://x.com","content":"c","category":"a","labels":[]}`, "title"},
		{"title wrong type", `{"url":"https://x.com","title":5,"content":"c","category":"a","labels":[]}`, "title"},
		{"missing labels", `{"url":"https://x.com","title":"t","content":"c","category":"a"}`, "labels"},
		{"labels wrong type", `{"url":"https://x.com","title":"t","content":"c","category":"a","labels":"bio"}`, "labels"},
		{"empty label", `{"url":"https://x.com","title":"t","content":"c","category":"a","labels":["ok",""]}`, "labels[1]"},
		{"empty category", `{"url":"https://x.com","title":"t","content":"c","category":" ","labels":[]}`, "category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := domain.ParseNewRecord([]byte(tt.body))
			requireValidationField(t, err, tt.field)
		})
	}
}

func TestParseNewRecord_NotJSON(t *testing.T) {
	t.Parallel()

	_, err := domain.ParseNewRecord([]byte("not json"))
	assert.True(t, domain.IsValidation(err))

	_, err = domain.ParseNewRecord(nil)
	assert.True(t, domain.IsValidation(err))
}

func TestParseRecord_RequiresIdentity(t *testing.T) {
	t.Parallel()

	_, err := domain.ParseRecord([]byte(`{"url":"https://x.com","title":"t","content":"c","category":"a","labels":[],"timestamp":1}`))
	requireValidationField(t, err, "id")

	_, err = domain.ParseRecord([]byte(`{"id":"x","url":"https://x.com","title":"t","content":"c","category":"a","labels":[]}`))
	requireValidationField(t, err, "timestamp")

	rec, err := domain.ParseRecord([]byte(`{"id":"x","url":"https://x.com","title":"t","content":"c","category":"a","labels":["l"],"timestamp":1700000000000}`))
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000000), rec.Timestamp)
}

func TestNewRecord_NormalizeCollapsesDuplicateLabels(t *testing.T) {
	t.Parallel()

	rec := domain.NewRecord{Category: " science ", Labels: []string{"lab", "bio", "lab", "bio"}}.Normalize()

	assert.Equal(t, " science ", rec.Category)
	assert.Equal(t, []string{"lab", "bio"}, rec.Labels)
}

func TestErrorsUnwrap(t *testing.T) {
	t.Parallel()

	base := assert.AnError
	require.ErrorIs(t, &domain.StorageError{Op: "get", Err: base}, base)
	require.ErrorIs(t, &domain.UpstreamError{Op: "projects", Message: "failed", Err: base}, base)
	assert.Equal(t, "upstream projects: bad reply", (&domain.UpstreamError{Op: "projects", Message: "bad reply"}).Error())
}
