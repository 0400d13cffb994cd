// Package job defines the normalized posting every source adapter produces
// and the normalization helpers applied at adapter boundaries.
package job

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
)

const (
	maxTitleLen       = 200
	maxDescriptionLen = 600
	dedupTitleLen     = 50

	// SalaryNotDisclosed is the sentinel stored when a source has no salary text.
	SalaryNotDisclosed = "Not disclosed"
	// ExperienceNotSpecified is the sentinel stored when no experience text
	// could be extracted.
	ExperienceNotSpecified = "Not specified"
)

// Posting is the unit flowing through the harvest pipeline.
type Posting struct {
	ID                 int64     `db:"job_id" json:"id"`
	Title              string    `db:"title" json:"title"`
	Company            string    `db:"company" json:"company"`
	CompanyType        string    `db:"company_type" json:"company_type"`
	Location           string    `db:"location" json:"location"`
	ExperienceRequired string    `db:"experience_required" json:"experience_required"`
	SkillsRequired     string    `db:"skills_required" json:"skills_required"`
	Salary             string    `db:"salary" json:"salary"`
	Description        string    `db:"job_description" json:"job_description"`
	ApplicationLink    string    `db:"application_link" json:"application_link"`
	SourcePlatform     string    `db:"source_platform" json:"source_platform"`
	PostingDate        time.Time `db:"posting_date" json:"posting_date"`
	ScrapedAt          time.Time `db:"scraped_at" json:"scraped_at"`
	RelevanceScore     float64   `db:"relevance_score" json:"relevance_score"`
	Applied            bool      `db:"applied" json:"applied"`
}

// Normalize fills defaulted-optional fields and bounds free-text lengths so
// downstream components never need presence checks. homeLocation is used when
// the source supplied no location at all.
func (p *Posting) Normalize(homeLocation string, now time.Time) {
	p.Title = truncate(strings.TrimSpace(p.Title), maxTitleLen)
	p.Company = strings.TrimSpace(p.Company)

	if strings.TrimSpace(p.CompanyType) == "" {
		p.CompanyType = "Unknown"
	}
	if strings.TrimSpace(p.Location) == "" {
		p.Location = homeLocation
	}
	if strings.TrimSpace(p.Salary) == "" {
		p.Salary = SalaryNotDisclosed
	}
	if strings.TrimSpace(p.Description) == "" {
		p.Description = p.Title
	}
	p.Description = truncate(p.Description, maxDescriptionLen)

	if strings.TrimSpace(p.ExperienceRequired) == "" {
		p.ExperienceRequired = CanonicalExperience(p.Title, p.Description)
	}
	if p.PostingDate.IsZero() {
		p.PostingDate = now
	}
	if p.ScrapedAt.IsZero() {
		p.ScrapedAt = now
	}
}

// Valid reports whether the posting carries the fields the dedup key and the
// storage uniqueness constraint depend on.
func (p *Posting) Valid() bool {
	return strings.TrimSpace(p.Title) != "" && strings.TrimSpace(p.Company) != ""
}

// Key is the global dedup key: a length-bounded lowercase title joined with
// the lowercase company name.
func (p *Posting) Key() string {
	return truncate(strings.ToLower(p.Title), dedupTitleLen) + "|" + strings.ToLower(p.Company)
}

var (
	rangeExpRe  = regexp.MustCompile(`(\d+)\s*(?:to|-|–)\s*(\d+)\s*years?`)
	singleExpRe = regexp.MustCompile(`(\d+)\+?\s*years?`)

	fresherMarkers = []string{
		"fresher", "entry level", "graduate", "trainee", "intern",
		"0 year", "0-1", "0 to 1", "campus", "no experience",
	}
)

// CanonicalExperience extracts a canonical experience requirement from free
// text: a fresher marker wins, then an "N-M years" range, then a bare
// "N+ years" mention.
func CanonicalExperience(title, description string) string {
	text := strings.ToLower(title + " " + description)

	for _, marker := range fresherMarkers {
		if strings.Contains(text, marker) {
			return "0-1 years (Fresher)"
		}
	}

	if m := rangeExpRe.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("%s-%s years", m[1], m[2])
	}
	if m := singleExpRe.FindStringSubmatch(text); m != nil {
		return fmt.Sprintf("%s+ years", m[1])
	}

	return ExperienceNotSpecified
}

// ResolveLink turns a possibly-relative href into an absolute URL using the
// origin of the page it was scraped from. An unresolvable href falls back to
// the page URL itself.
func ResolveLink(href, pageURL string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return pageURL
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return pageURL
	}

	return base.ResolveReference(ref).String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
