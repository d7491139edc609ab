package opportunity

import "github.com/jonesrussell/north-cloud/extracurricular/internal/domain"

// DefaultCatalogue is the built-in list of opportunities.
func DefaultCatalogue() []domain.Opportunity {
	return []domain.Opportunity{
		{
			Title:        "Science Fair Competition",
			Organization: "National Science Foundation",
			Description:  "Annual science fair for high school students to showcase their research projects.",
			Location:     "National",
			Type:         domain.OpportunityCompetition,
			Deadline:     "2025-12-31",
			URL:          "https://example.com/science-fair",
		},
		{
			Title:        "Youth Leadership Program",
			Organization: "Community Center",
			Description:  "Leadership development program for high school students interested in community service.",
			Location:     "Local",
			Type:         domain.OpportunityProgram,
			Deadline:     "2025-09-01",
			URL:          "https://example.com/leadership",
		},
		{
			Title:        "Tech Internship",
			Organization: "Tech Company",
			Description:  "Summer internship program for students interested in software development and technology.",
			Location:     "Remote",
			Type:         domain.OpportunityInternship,
			Deadline:     "2025-03-15",
			URL:          "https://example.com/internship",
		},
		{
			Title:        "Environmental Conservation Project",
			Organization: "Green Earth",
			Description:  "Volunteer program focused on local environmental conservation efforts.",
			Location:     "Local",
			Type:         domain.OpportunityVolunteer,
			Deadline:     "2025-06-30",
			URL:          "https://example.com/conservation",
		},
	}
}
