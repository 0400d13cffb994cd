package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/abhilashdr/jobscout/internal/config"
	"github.com/abhilashdr/jobscout/internal/job"
	"github.com/abhilashdr/jobscout/internal/utils"
)

// realJobIndicators: a candidate title must contain at least one of these to
// count as an actual job posting.
var realJobIndicators = []string{
	"analyst", "engineer", "developer", "manager", "architect", "scientist",
	"intern", "associate", "consultant", "specialist", "coordinator", "officer",
	"executive", "lead", "senior", "junior", "trainee", "fresher",
	"director", "head", "data", "sql", "python",
	"software", "business", "system", "cloud", "devops", "qa", "testing",
	"full stack", "backend", "frontend", "mobile",
	"machine learning", "product", "project", "program", "operations",
	"mis", "reporting", "bi", "etl",
}

// navBlacklist rejects navigation links and page chrome that anchor-text
// extraction would otherwise pick up.
var navBlacklist = []string{
	"accessibility", "privacy", "cookie", "cookies", "terms",
	"login", "sign in", "register", "about us", "contact us",
	"home", "careers", "jobs", "search", "apply now", "submit",
	"back", "next", "previous", "more", "view all", "see all",
	"shop", "store", "buy", "cart", "checkout",
	"blog", "news", "press", "media", "investors", "sitemap",
	"faqs", "faq", "help", "support", "feedback", "survey",
	"linkedin", "twitter", "facebook", "instagram", "youtube",
	"glassdoor", "indeed", "naukri",
	"our culture", "our values", "diversity", "inclusion",
	"benefits", "perks", "life at", "meet our team",
	"learn more", "read more", "find out", "explore",
	"global", "worldwide", "international", "locations",
}

const (
	minJobTitleLen = 10
	maxJobTitleLen = 200

	careerPageBackoff = time.Second
)

// CareerPageAdapter scrapes one company career page with colly: candidate
// titles come from anchors and headings, and pass a validity filter then a
// relevance filter before admission. Transient failures are retried a bounded
// number of times with a short backoff.
type CareerPageAdapter struct {
	company    CareerPage
	profile    config.Profile
	userAgent  string
	timeout    time.Duration
	maxRetries int
	keywords   []string
	now        func() time.Time
}

func NewCareerPageAdapter(company CareerPage, profile config.Profile, sources config.Sources) *CareerPageAdapter {
	keywords := baseRoleKeywords()
	for _, role := range profile.TargetRoles {
		keywords = append(keywords, strings.ToLower(role))
	}

	retries := sources.CareerPages.MaxRetries
	if retries < 1 {
		retries = 1
	}

	return &CareerPageAdapter{
		company:    company,
		profile:    profile,
		userAgent:  sources.UserAgent,
		timeout:    sources.RequestTimeout,
		maxRetries: retries,
		keywords:   keywords,
		now:        time.Now,
	}
}

func (a *CareerPageAdapter) Name() string {
	return "careerpage/" + strings.ToLower(a.company.Name)
}

func (a *CareerPageAdapter) Fetch(ctx context.Context) Result {
	var lastErr error

	for attempt := 0; attempt < a.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return Result{Source: a.Name(), Company: a.company.Name, Err: err}
		}

		jobs, err := a.scrape()
		if err == nil {
			return Result{Source: a.Name(), Company: a.company.Name, Jobs: jobs}
		}
		lastErr = err

		if waitErr := utils.WaitFor(ctx, careerPageBackoff); waitErr != nil {
			return Result{Source: a.Name(), Company: a.company.Name, Err: waitErr}
		}
	}

	return Result{Source: a.Name(), Company: a.company.Name, Err: fmt.Errorf("career page %s: %w", a.company.CareerURL, lastErr)}
}

func (a *CareerPageAdapter) scrape() ([]job.Posting, error) {
	var jobs []job.Posting
	seen := make(map[string]struct{})

	collector := colly.NewCollector(
		colly.UserAgent(a.userAgent),
		colly.MaxDepth(1),
		colly.AllowURLRevisit(),
	)
	collector.SetRequestTimeout(a.timeout)

	admit := func(title, link string) {
		title = strings.TrimSpace(title)
		if !a.validTitle(title) || !a.matchesRoles(title) {
			return
		}
		key := strings.ToLower(title)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}

		p := job.Posting{
			Title:           title,
			Company:         a.company.Name,
			CompanyType:     a.company.Type,
			Location:        a.profile.HomeLocation,
			Description:     title,
			ApplicationLink: link,
			SourcePlatform:  "Company Career Page",
		}
		p.Normalize(a.profile.HomeLocation, a.now())
		jobs = append(jobs, p)
	}

	collector.OnHTML("a[href]", func(e *colly.HTMLElement) {
		admit(e.Text, e.Request.AbsoluteURL(e.Attr("href")))
	})

	collector.OnHTML("h2, h3, h4", func(e *colly.HTMLElement) {
		// A heading is not itself a link; look for one next to it.
		link := a.company.CareerURL
		if href, ok := e.DOM.Parent().Find("a[href]").Attr("href"); ok {
			link = e.Request.AbsoluteURL(href)
		}
		admit(e.Text, link)
	})

	if err := collector.Visit(a.company.CareerURL); err != nil {
		return nil, err
	}
	collector.Wait()

	return jobs, nil
}

// validTitle rejects text that cannot be a job title: too short or long, a
// known navigation label, missing any real-job indicator word, or a URL
// fragment.
func (a *CareerPageAdapter) validTitle(title string) bool {
	lower := strings.ToLower(strings.TrimSpace(title))
	if len(lower) < minJobTitleLen || len(lower) > maxJobTitleLen {
		return false
	}

	for _, word := range navBlacklist {
		if lower == word || strings.HasPrefix(lower, word+" ") || strings.HasSuffix(lower, " "+word) {
			return false
		}
	}

	hasIndicator := false
	for _, indicator := range realJobIndicators {
		if strings.Contains(lower, indicator) {
			hasIndicator = true
			break
		}
	}
	if !hasIndicator {
		return false
	}

	if strings.HasPrefix(title, "http") || strings.HasPrefix(title, "/") || strings.HasPrefix(title, "www") {
		return false
	}

	return true
}

func (a *CareerPageAdapter) matchesRoles(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range a.keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
