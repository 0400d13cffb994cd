package job

import (
	"strings"
	"testing"
	"time"
)

func TestNormalizeDefaults(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	p := Posting{
		Title:   "  Data Analyst  ",
		Company: " Genpact ",
	}
	p.Normalize("Hyderabad", now)

	if p.Title != "Data Analyst" {
		t.Fatalf("expected trimmed title, got %q", p.Title)
	}
	if p.Company != "Genpact" {
		t.Fatalf("expected trimmed company, got %q", p.Company)
	}
	if p.CompanyType != "Unknown" {
		t.Fatalf("expected Unknown company type, got %q", p.CompanyType)
	}
	if p.Location != "Hyderabad" {
		t.Fatalf("expected home location fallback, got %q", p.Location)
	}
	if p.Salary != SalaryNotDisclosed {
		t.Fatalf("expected salary sentinel, got %q", p.Salary)
	}
	if p.Description != "Data Analyst" {
		t.Fatalf("expected title as description fallback, got %q", p.Description)
	}
	if !p.PostingDate.Equal(now) || !p.ScrapedAt.Equal(now) {
		t.Fatalf("expected timestamps defaulted to now, got %v / %v", p.PostingDate, p.ScrapedAt)
	}
}

func TestNormalizeBoundsLengths(t *testing.T) {
	t.Parallel()

	p := Posting{
		Title:       strings.Repeat("x", 300),
		Company:     "ACME",
		Description: strings.Repeat("y", 1000),
	}
	p.Normalize("Hyderabad", time.Now())

	if len(p.Title) != 200 {
		t.Fatalf("expected title bounded to 200 runes, got %d", len(p.Title))
	}
	if len(p.Description) != 600 {
		t.Fatalf("expected description bounded to 600 runes, got %d", len(p.Description))
	}
}

func TestNormalizeKeepsExistingValues(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	p := Posting{
		Title:              "SQL Developer",
		Company:            "Swiggy",
		CompanyType:        "Startup",
		Location:           "Bangalore",
		Salary:             "6 LPA",
		Description:        "Write SQL",
		ExperienceRequired: "2-4 years",
		PostingDate:        date,
	}
	p.Normalize("Hyderabad", time.Now())

	if p.Location != "Bangalore" || p.Salary != "6 LPA" || p.ExperienceRequired != "2-4 years" {
		t.Fatalf("expected existing values preserved, got %+v", p)
	}
	if !p.PostingDate.Equal(date) {
		t.Fatalf("expected posting date preserved, got %v", p.PostingDate)
	}
}

func TestValid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		posting Posting
		expect  bool
	}{
		{"complete", Posting{Title: "Analyst", Company: "ACME"}, true},
		{"missing title", Posting{Company: "ACME"}, false},
		{"missing company", Posting{Title: "Analyst"}, false},
		{"whitespace only", Posting{Title: "   ", Company: "ACME"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.posting.Valid(); got != tt.expect {
				t.Fatalf("expected %v, got %v", tt.expect, got)
			}
		})
	}
}

func TestKey(t *testing.T) {
	t.Parallel()

	a := Posting{Title: "Data Analyst", Company: "Genpact"}
	b := Posting{Title: "DATA ANALYST", Company: "GENPACT"}
	if a.Key() != b.Key() {
		t.Fatalf("expected case-insensitive keys to match: %q vs %q", a.Key(), b.Key())
	}

	long := Posting{Title: strings.Repeat("a", 80) + "variant one", Company: "ACME"}
	other := Posting{Title: strings.Repeat("a", 80) + "variant two", Company: "ACME"}
	if long.Key() != other.Key() {
		t.Fatal("expected titles differing past the bound to share a key")
	}

	diff := Posting{Title: "Data Analyst", Company: "Other"}
	if a.Key() == diff.Key() {
		t.Fatal("expected different companies to produce different keys")
	}
}

func TestCanonicalExperience(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		title       string
		description string
		expect      string
	}{
		{"fresher marker wins", "Data Analyst Fresher", "2-4 years required", "0-1 years (Fresher)"},
		{"range", "Data Analyst", "requires 2 to 4 years of work", "2-4 years"},
		{"range with dash", "Analyst", "3-5 years experience", "3-5 years"},
		{"single", "Analyst", "minimum 3 years", "3+ years"},
		{"nothing", "Analyst", "great opportunity", ExperienceNotSpecified},
		{"intern marker", "Data Intern", "", "0-1 years (Fresher)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CanonicalExperience(tt.title, tt.description); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestResolveLink(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		href    string
		pageURL string
		expect  string
	}{
		{"absolute kept", "https://jobs.acme.com/1", "https://acme.com/careers", "https://jobs.acme.com/1"},
		{"relative resolved", "/jobs/1", "https://acme.com/careers", "https://acme.com/jobs/1"},
		{"empty falls back", "", "https://acme.com/careers", "https://acme.com/careers"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ResolveLink(tt.href, tt.pageURL); got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}
