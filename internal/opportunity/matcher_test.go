package opportunity_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/north-cloud/extracurricular/internal/domain"
	"github.com/jonesrussell/north-cloud/extracurricular/internal/opportunity"
)

func titles(opps []domain.Opportunity) []string {
	out := make([]string, len(opps))
	for i, o := range opps {
		out[i] = o.Title
	}
	return out
}

func TestFind(t *testing.T) {
	t.Parallel()

	m := opportunity.NewMatcher(opportunity.DefaultCatalogue())

	tests := []struct {
		name      string
		interests []string
		location  string
		want      []string
	}{
		{
			name:      "remote and national entries match anywhere",
			interests: []string{"Technology", "research"},
			location:  "Toronto",
			want:      []string{"Science Fair Competition", "Tech Internship"},
		},
		{
			name:      "local entries need a compatible location",
			interests: []string{"environmental"},
			location:  "Toronto",
			want:      []string{},
		},
		{
			name:      "location containment works both ways",
			interests: []string{"environmental", "leadership"},
			location:  "local community",
			want:      []string{"Youth Leadership Program", "Environmental Conservation Project"},
		},
		{
			name:      "organization is searched",
			interests: []string{"green earth"},
			location:  "Local",
			want:      []string{"Environmental Conservation Project"},
		},
		{
			name:      "case and accents are ignored",
			interests: []string{"SCIENCE FAIR", "Téch"},
			location:  "anywhere",
			want:      []string{"Science Fair Competition", "Tech Internship"},
		},
		{
			name:      "no interests match nothing",
			interests: []string{"", "  "},
			location:  "Local",
			want:      []string{},
		},
		{
			name:      "unrelated interest",
			interests: []string{"ballet"},
			location:  "Local",
			want:      []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := m.Find(domain.UserInput{Interests: tt.interests, Location: tt.location})
			assert.Equal(t, tt.want, titles(got))
		})
	}
}

func TestFind_ConcurrentUse(t *testing.T) {
	t.Parallel()

	m := opportunity.NewMatcher(opportunity.DefaultCatalogue())

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := m.Find(domain.UserInput{Interests: []string{"software"}, Location: "remote"})
			assert.Equal(t, []string{"Tech Internship"}, titles(got))
		}()
	}
	wg.Wait()
}
