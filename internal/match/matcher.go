// Package match implements the deterministic relevance scorer: five weighted
// sub-scores plus a flat bonus for explicitly fresher-friendly postings.
package match

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/abhilashdr/jobscout/internal/config"
	"github.com/abhilashdr/jobscout/internal/job"
)

const (
	fresherBonus   = 15
	keySkillBonus  = 10
	salarySubScore = 50 // sources rarely disclose salary, fixed neutral default

	bonusDescWindow    = 500
	relevantDescWindow = 300
)

// fresherKeywords drive the experience cascade. Any match wins over numeric
// parsing, so "Fresher, 0-2 years" scores through this branch, not the range
// branch.
var fresherKeywords = []string{
	"fresher", "freshers", "entry level", "entry-level",
	"0 year", "0 years", "0-1", "0 to 1", "0-2", "0 to 2",
	"1 year", "0 month", "graduate", "trainee", "intern",
	"internship", "junior", "associate", "beginner",
	"campus", "no experience", "recent graduate",
}

// strongFresherIndicators is the deliberately smaller set behind the flat +15
// bonus. It is kept separate from fresherKeywords: the two heuristics are
// independent signals with different text windows.
var strongFresherIndicators = []string{
	"fresher", "freshers only", "entry level", "graduate trainee",
	"0 year", "0 years", "campus", "internship", "trainee program",
}

var keySkills = []string{"sql", "python", "excel", "power bi", "tableau"}

var mncNames = []string{
	"microsoft", "google", "amazon", "deloitte", "accenture",
	"tcs", "infosys", "wipro", "cognizant",
}

var remoteMarkers = []string{"remote", "work from home", "wfh", "anywhere", "pan india"}

var metroCities = []string{"pune", "mumbai", "delhi", "chennai", "kolkata"}

var broadRelevanceKeywords = []string{
	"data", "analyst", "analytics", "analysis",
	"engineer", "engineering",
	"sql", "python", "excel", "power bi", "tableau",
	"database", "etl", "reporting", "dashboard",
	"bi", "business intelligence", "mis", "report",
	"statistics", "statistical", "visualization",
	"junior", "associate", "trainee", "intern",
	"mysql", "postgresql", "pandas", "numpy",
}

var techIndicators = []string{"it", "software", "technology", "computer", "tech"}

var (
	rangeYearsRe  = regexp.MustCompile(`(\d+)\s*(?:to|-|–)\s*(\d+)\s*(?:year|yr)`)
	singleYearsRe = regexp.MustCompile(`(\d+)\s*(?:year|yr)`)
)

// Matcher scores postings against a fixed candidate profile and weights. It
// holds no mutable state and is safe for concurrent use.
type Matcher struct {
	profile config.Profile
	weights config.Weights
}

func New(profile config.Profile, weights config.Weights) *Matcher {
	return &Matcher{profile: profile, weights: weights}
}

// Breakdown carries the per-factor sub-scores behind a total, for the
// dashboard and for debugging borderline matches.
type Breakdown struct {
	Total           float64 `json:"total"`
	Keyword         float64 `json:"keyword"`
	Experience      float64 `json:"experience"`
	Location        float64 `json:"location"`
	CompanyType     float64 `json:"company_type"`
	Salary          float64 `json:"salary"`
	FresherFriendly bool    `json:"fresher_friendly"`
}

// Score computes the 0-100 relevance score for a posting.
func (m *Matcher) Score(p job.Posting) float64 {
	score := m.keywordScore(p)*m.weights.Keyword +
		m.experienceScore(p)*m.weights.Experience +
		m.locationScore(p)*m.weights.Location +
		m.companyScore(p)*m.weights.CompanyType +
		salarySubScore*m.weights.Salary

	if m.isExplicitlyFresherFriendly(p) {
		score += fresherBonus
	}

	return math.Round(math.Min(score, 100)*100) / 100
}

// Explain returns the sub-score breakdown alongside the total.
func (m *Matcher) Explain(p job.Posting) Breakdown {
	return Breakdown{
		Total:           m.Score(p),
		Keyword:         m.keywordScore(p),
		Experience:      m.experienceScore(p),
		Location:        m.locationScore(p),
		CompanyType:     m.companyScore(p),
		Salary:          salarySubScore,
		FresherFriendly: m.isExplicitlyFresherFriendly(p),
	}
}

func (m *Matcher) keywordScore(p job.Posting) float64 {
	text := strings.ToLower(p.Title + " " + p.SkillsRequired + " " + p.Description)
	if len(m.profile.Skills) == 0 {
		return 50
	}

	words := strings.Fields(text)
	var exact, partial []string
	for _, skill := range m.profile.Skills {
		lower := strings.ToLower(skill)
		if strings.Contains(text, lower) {
			exact = append(exact, lower)
			continue
		}
		// Weaker partial match: the skill appears inside some token, e.g.
		// "python" inside "python3".
		for _, w := range words {
			if strings.Contains(w, lower) {
				partial = append(partial, lower)
				break
			}
		}
	}

	total := float64(len(m.profile.Skills))
	score := float64(len(exact))/total*100 + float64(len(partial))/total*50
	score = math.Min(score, 100)

	keyMatches := 0
	for _, skill := range exact {
		for _, key := range keySkills {
			if skill == key {
				keyMatches++
				break
			}
		}
	}
	if keyMatches >= 2 {
		score += keySkillBonus
	}

	return math.Min(score, 100)
}

// experienceScore is a prioritized cascade; the order is load-bearing.
func (m *Matcher) experienceScore(p job.Posting) float64 {
	expText := strings.ToLower(p.ExperienceRequired)
	title := strings.ToLower(p.Title)
	allText := expText + " " + title + " " + strings.ToLower(p.Description)

	for _, kw := range fresherKeywords {
		if strings.Contains(allText, kw) {
			return 100
		}
	}

	if matches := rangeYearsRe.FindAllStringSubmatch(expText, -1); len(matches) > 0 {
		maxExp := 0
		for _, m := range matches {
			if upper, err := strconv.Atoi(m[2]); err == nil && upper > maxExp {
				maxExp = upper
			}
		}
		switch {
		case maxExp == 0:
			return 100
		case maxExp == 1:
			return 95
		case maxExp == 2:
			return 90
		case maxExp <= m.profile.MaxExperienceYears:
			return 75
		default:
			return 40
		}
	}

	if m := singleYearsRe.FindStringSubmatch(expText); m != nil {
		years, _ := strconv.Atoi(m[1])
		switch {
		case years == 0:
			return 100
		case years == 1:
			return 90
		case years == 2:
			return 80
		case years <= 3:
			return 60
		default:
			return 30
		}
	}

	if expText == "" || expText == strings.ToLower(job.ExperienceNotSpecified) {
		for _, w := range []string{"junior", "associate", "trainee", "intern"} {
			if strings.Contains(title, w) {
				return 85
			}
		}
		return 70
	}

	return 60
}

func (m *Matcher) locationScore(p job.Posting) float64 {
	loc := strings.ToLower(p.Location)

	for _, pref := range m.profile.PreferredLocations {
		if strings.Contains(loc, strings.ToLower(pref)) {
			return 100
		}
	}
	for _, kw := range remoteMarkers {
		if strings.Contains(loc, kw) {
			return 95
		}
	}
	if strings.Contains(loc, "hybrid") {
		return 85
	}
	for _, city := range metroCities {
		if strings.Contains(loc, city) {
			return 50
		}
	}
	return 30
}

func (m *Matcher) companyScore(p job.Posting) float64 {
	companyType := strings.ToLower(p.CompanyType)
	companyName := strings.ToLower(p.Company)

	if companyType == "mnc" {
		return 100
	}
	for _, name := range mncNames {
		if strings.Contains(companyName, name) {
			return 100
		}
	}
	if companyType == "startup" {
		return 90
	}
	return 70
}

// isExplicitlyFresherFriendly checks the strong indicator set against the
// title, full experience text and only the first slice of the description.
func (m *Matcher) isExplicitlyFresherFriendly(p job.Posting) bool {
	text := strings.ToLower(p.Title + " " + p.ExperienceRequired + " " + head(p.Description, bonusDescWindow))
	for _, indicator := range strongFresherIndicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}

// IsRelevant is the cheap boolean pre-filter run before scoring.
func (m *Matcher) IsRelevant(p job.Posting) bool {
	text := strings.ToLower(p.Title + " " + head(p.Description, relevantDescWindow) + " " + p.SkillsRequired)

	for _, kw := range broadRelevanceKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}

	if m.isExplicitlyFresherFriendly(p) {
		for _, tech := range techIndicators {
			if strings.Contains(text, tech) {
				return true
			}
		}
	}

	return false
}

func head(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
