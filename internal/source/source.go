// Package source implements the job posting adapters: public ATS JSON APIs,
// generic HTML career pages and browser-driven portals. Every adapter emits
// postings in the normalized shape and reports failures as values, so one
// source's outage never aborts a harvest.
package source

import (
	"context"
	"strings"
	"time"

	"github.com/abhilashdr/jobscout/internal/config"
	"github.com/abhilashdr/jobscout/internal/job"
)

// Adapter fetches postings for one source. Implementations must be side
// effect free with respect to each other so the aggregator can run many
// concurrently.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) Result
}

// Result is the typed outcome of one adapter invocation. Err is set for
// transport or payload failures; the jobs gathered before the failure are
// still usable. Company is empty for portal-wide sources that are not tied
// to a single employer.
type Result struct {
	Source  string
	Company string
	Jobs    []job.Posting
	Err     error
}

// rejectedLocations are explicit non-home-region names; a match rejects the
// posting outright. Anything else (home region, remote markers, empty or
// unparseable text) is admitted.
var rejectedLocations = []string{
	"united states", "usa", "us ", "uk ", "london", "singapore",
	"australia", "canada", "germany", "france", "netherlands",
	"new york", "san francisco", "chicago", "toronto",
}

var admittedLocations = []string{"india", "remote", "work from home", "wfh"}

// postProcessor carries the per-profile checks every API-backed adapter runs
// before returning a posting: a cheap title/description relevance pre-check
// and a location admissibility check.
type postProcessor struct {
	profile  config.Profile
	keywords []string
	admitted []string
	now      func() time.Time
}

func newPostProcessor(profile config.Profile) *postProcessor {
	keywords := baseRoleKeywords()
	for _, role := range profile.TargetRoles {
		keywords = append(keywords, strings.ToLower(role))
	}

	admitted := append([]string{}, admittedLocations...)
	admitted = append(admitted, strings.ToLower(profile.HomeLocation))
	for _, loc := range profile.PreferredLocations {
		admitted = append(admitted, strings.ToLower(loc))
	}

	return &postProcessor{
		profile:  profile,
		keywords: keywords,
		admitted: admitted,
		now:      time.Now,
	}
}

// relevant reports whether the title/description mentions any target role
// keyword. It is looser than scoring; borderline postings pass through.
func (pp *postProcessor) relevant(title, description string) bool {
	combined := strings.ToLower(title + " " + description)
	for _, kw := range pp.keywords {
		if strings.Contains(combined, kw) {
			return true
		}
	}
	return false
}

// admissibleLocation rejects explicit foreign locations and admits the rest:
// home-region names, remote markers, and empty or unparseable text.
func (pp *postProcessor) admissibleLocation(location string) bool {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return true
	}
	for _, bad := range rejectedLocations {
		if strings.Contains(loc, bad) {
			return false
		}
	}
	for _, good := range pp.admitted {
		if good != "" && strings.Contains(loc, good) {
			return true
		}
	}
	// Location text with no letters up front is junk, not a place name.
	return !hasLetterPrefix(loc)
}

// finalize normalizes a raw posting and applies the shared admission checks.
// The returned bool reports whether the posting survived.
func (pp *postProcessor) finalize(p job.Posting) (job.Posting, bool) {
	if !p.Valid() {
		return p, false
	}
	if !pp.relevant(p.Title, p.Description) {
		return p, false
	}
	if !pp.admissibleLocation(p.Location) {
		return p, false
	}
	p.Normalize(pp.profile.HomeLocation, pp.now())
	return p, true
}

func hasLetterPrefix(s string) bool {
	limit := 5
	for i, r := range s {
		if i >= limit {
			break
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// baseRoleKeywords is the vocabulary shared by all profiles; the profile's
// own target roles are appended on top.
func baseRoleKeywords() []string {
	return []string{
		"data analyst", "data analysis", "data engineer", "data engineering",
		"data scientist", "data science", "analytics engineer",
		"sql developer", "sql", "business analyst", "business analysis",
		"system engineer", "systems engineer", "junior analyst",
		"associate analyst", "mis executive", "mis analyst",
		"reporting analyst", "bi analyst", "bi developer",
		"power bi", "tableau", "business intelligence",
		"fresher", "entry level", "graduate", "trainee", "associate",
		"junior", "intern", "internship", "etl developer", "etl engineer",
	}
}

// dedupe keeps the first posting per dedup key. Each adapter runs this on its
// own output before returning, so a noisy source cannot dominate the global
// key space.
func dedupe(jobs []job.Posting) []job.Posting {
	seen := make(map[string]struct{}, len(jobs))
	out := jobs[:0]
	for _, j := range jobs {
		key := j.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, j)
	}
	return out
}
