package source

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"

	"github.com/abhilashdr/jobscout/internal/job"
)

const workdaySearchLimit = 20

// Workday URLs embed the tenant and site, e.g.
// https://deloitte.wd1.myworkdayjobs.com/en-US/Deloitte_Careers.
var workdayURLRe = regexp.MustCompile(`https://([^.]+)\.(wd\d+)\.myworkdayjobs\.com/(?:en-US/)?(.+?)(?:\?|$)`)

// Workday drives the JSON search endpoint behind Workday career sites. Each
// fetch issues one bounded POST per search keyword; results across keywords
// are merged and deduplicated.
type Workday struct {
	// APIURL overrides the tenant host, for tests.
	APIURL   string
	company  Company
	client   *Client
	post     *postProcessor
	keywords []string
}

func NewWorkday(company Company, client *Client, post *postProcessor, targetRoles []string) *Workday {
	keywords := make([]string, 0, len(targetRoles))
	for _, role := range targetRoles {
		keywords = append(keywords, strings.ToLower(role))
		if len(keywords) == 5 {
			break
		}
	}

	return &Workday{
		company:  company,
		client:   client,
		post:     post,
		keywords: keywords,
	}
}

func (w *Workday) Name() string {
	return "workday/" + strings.ToLower(w.company.Name)
}

type workdaySearchRequest struct {
	AppliedFacets map[string]any `json:"appliedFacets"`
	Limit         int            `json:"limit"`
	Offset        int            `json:"offset"`
	SearchText    string         `json:"searchText"`
}

type workdayPosting struct {
	Title         string `mapstructure:"title"`
	LocationsText string `mapstructure:"locationsText"`
	ExternalPath  string `mapstructure:"externalPath"`
}

func (w *Workday) Fetch(ctx context.Context) Result {
	m := workdayURLRe.FindStringSubmatch(w.company.Slug)
	if m == nil {
		return Result{Source: w.Name(), Company: w.company.Name, Err: fmt.Errorf("workday url %q does not match the expected shape", w.company.Slug)}
	}

	tenant := m[1]
	site := strings.TrimSuffix(m[3], "/")

	host := w.APIURL
	if host == "" {
		host = fmt.Sprintf("https://%s.wd5.myworkdayjobs.com", tenant)
	}
	searchURL := fmt.Sprintf("%s/wday/cxs/%s/%s/jobs", host, tenant, site)

	var jobs []job.Posting
	var lastErr error

	for _, keyword := range w.keywords {
		payload := workdaySearchRequest{
			AppliedFacets: map[string]any{},
			Limit:         workdaySearchLimit,
			SearchText:    keyword,
		}

		var resp struct {
			JobPostings []map[string]any `json:"jobPostings"`
		}
		if err := w.client.PostJSON(ctx, searchURL, payload, &resp); err != nil {
			// Keep going: one keyword failing should not discard the others.
			lastErr = err
			continue
		}

		var postings []workdayPosting
		if err := mapstructure.Decode(resp.JobPostings, &postings); err != nil {
			lastErr = fmt.Errorf("decoding workday postings: %w", err)
			continue
		}

		for _, raw := range postings {
			link := w.company.Slug
			if raw.ExternalPath != "" {
				link = host + raw.ExternalPath
			}

			p, ok := w.post.finalize(job.Posting{
				Title:           raw.Title,
				Company:         w.company.Name,
				CompanyType:     w.company.Type,
				Location:        raw.LocationsText,
				Description:     raw.Title,
				ApplicationLink: link,
				SourcePlatform:  "Workday",
			})
			if !ok {
				continue
			}
			jobs = append(jobs, p)
		}
	}

	if len(jobs) == 0 && lastErr != nil {
		return Result{Source: w.Name(), Company: w.company.Name, Err: fmt.Errorf("workday %s: %w", w.company.Name, lastErr)}
	}

	return Result{Source: w.Name(), Company: w.company.Name, Jobs: dedupe(jobs)}
}
