package source

import (
	"testing"
	"time"

	"github.com/abhilashdr/jobscout/internal/config"
	"github.com/abhilashdr/jobscout/internal/job"
)

func testProfile() config.Profile {
	return config.Profile{
		Name:               "test",
		HomeLocation:       "Hyderabad",
		MaxExperienceYears: 2,
		TargetRoles:        []string{"Data Analyst", "SQL Developer"},
		Skills:             []string{"SQL", "Python"},
		PreferredLocations: []string{"Hyderabad", "Bangalore", "Remote"},
	}
}

func TestRelevant(t *testing.T) {
	t.Parallel()

	pp := newPostProcessor(testProfile())

	tests := []struct {
		name        string
		title       string
		description string
		want        bool
	}{
		{"target role in title", "Data Analyst", "", true},
		{"base keyword in title", "Graduate Trainee Program", "", true},
		{"keyword only in description", "Open Position", "strong sql skills required", true},
		{"nothing matches", "Chef", "cook meals daily", false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := pp.relevant(tt.title, tt.description); got != tt.want {
				t.Errorf("relevant(%q, %q) = %v, want %v", tt.title, tt.description, got, tt.want)
			}
		})
	}
}

func TestAdmissibleLocation(t *testing.T) {
	t.Parallel()

	pp := newPostProcessor(testProfile())

	tests := []struct {
		location string
		want     bool
	}{
		{"", true},
		{"Hyderabad, Telangana", true},
		{"Bangalore", true},
		{"Remote - India", true},
		{"Work From Home", true},
		{"London", false},
		{"New York, USA", false},
		{"San Francisco Bay Area", false},
		// Unknown place names are dropped rather than guessed at.
		{"Pune", false},
		// Junk with no leading letters is not a place name.
		{"*** 123 ***", true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.location, func(t *testing.T) {
			t.Parallel()

			if got := pp.admissibleLocation(tt.location); got != tt.want {
				t.Errorf("admissibleLocation(%q) = %v, want %v", tt.location, got, tt.want)
			}
		})
	}
}

func TestFinalize(t *testing.T) {
	t.Parallel()

	fixed := time.Date(2026, time.August, 20, 12, 0, 0, 0, time.UTC)
	pp := newPostProcessor(testProfile())
	pp.now = func() time.Time { return fixed }

	t.Run("drops invalid posting", func(t *testing.T) {
		t.Parallel()

		_, ok := pp.finalize(job.Posting{Title: "Data Analyst"})
		if ok {
			t.Error("expected a posting without company to be dropped")
		}
	})

	t.Run("drops irrelevant posting", func(t *testing.T) {
		t.Parallel()

		_, ok := pp.finalize(job.Posting{Title: "Chef", Company: "Kitchen Co", Description: "cook meals"})
		if ok {
			t.Error("expected an irrelevant posting to survive filtering")
		}
	})

	t.Run("drops foreign location", func(t *testing.T) {
		t.Parallel()

		_, ok := pp.finalize(job.Posting{Title: "Data Analyst", Company: "Acme", Location: "London"})
		if ok {
			t.Error("expected a foreign posting to be dropped")
		}
	})

	t.Run("normalizes survivor", func(t *testing.T) {
		t.Parallel()

		p, ok := pp.finalize(job.Posting{Title: "Data Analyst", Company: "Acme"})
		if !ok {
			t.Fatal("expected the posting to survive")
		}
		if p.Location != "Hyderabad" {
			t.Errorf("location = %q, want the home location", p.Location)
		}
		if p.Salary != job.SalaryNotDisclosed {
			t.Errorf("salary = %q, want %q", p.Salary, job.SalaryNotDisclosed)
		}
		if !p.ScrapedAt.Equal(fixed) {
			t.Errorf("scraped at = %v, want %v", p.ScrapedAt, fixed)
		}
	})
}

func TestDedupe(t *testing.T) {
	t.Parallel()

	jobs := []job.Posting{
		{Title: "Data Analyst", Company: "Acme", SourcePlatform: "first"},
		{Title: "data analyst", Company: "ACME", SourcePlatform: "second"},
		{Title: "Data Analyst", Company: "Beta"},
	}

	out := dedupe(jobs)
	if len(out) != 2 {
		t.Fatalf("got %d postings, want 2", len(out))
	}
	if out[0].SourcePlatform != "first" {
		t.Errorf("kept %q, want the first occurrence", out[0].SourcePlatform)
	}
	if out[1].Company != "Beta" {
		t.Errorf("second survivor company = %q, want Beta", out[1].Company)
	}
}
