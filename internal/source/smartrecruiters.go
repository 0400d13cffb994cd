package source

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/abhilashdr/jobscout/internal/job"
)

const smartRecruitersAPIURL = "https://careers.smartrecruiters.com"

// SmartRecruiters fetches a company board from the SmartRecruiters public
// endpoint. The payload shape drifts between tenants (postings vs. content,
// string vs. object locations), so items are decoded loosely and mapped.
type SmartRecruiters struct {
	APIURL  string
	company Company
	client  *Client
	post    *postProcessor
}

func NewSmartRecruiters(company Company, client *Client, post *postProcessor) *SmartRecruiters {
	return &SmartRecruiters{
		APIURL:  smartRecruitersAPIURL,
		company: company,
		client:  client,
		post:    post,
	}
}

func (s *SmartRecruiters) Name() string {
	return "smartrecruiters/" + s.company.Slug
}

type smartRecruitersPosting struct {
	Name     string         `mapstructure:"name"`
	Title    string         `mapstructure:"title"`
	Ref      string         `mapstructure:"ref"`
	URL      string         `mapstructure:"url"`
	JobURL   string         `mapstructure:"jobUrl"`
	Location map[string]any `mapstructure:"location"`
}

func (s *SmartRecruiters) Fetch(ctx context.Context) Result {
	url := fmt.Sprintf("%s/%s/api/more?start=0", s.APIURL, s.company.Slug)

	var resp struct {
		Postings []map[string]any `json:"postings"`
		Content  []map[string]any `json:"content"`
	}
	if err := s.client.GetJSON(ctx, url, &resp); err != nil {
		return Result{Source: s.Name(), Company: s.company.Name, Err: fmt.Errorf("smartrecruiters board %s: %w", s.company.Slug, err)}
	}

	items := resp.Postings
	if len(items) == 0 {
		items = resp.Content
	}

	var postings []smartRecruitersPosting
	if err := mapstructure.Decode(items, &postings); err != nil {
		return Result{Source: s.Name(), Company: s.company.Name, Err: fmt.Errorf("decoding smartrecruiters postings: %w", err)}
	}

	var jobs []job.Posting
	for _, raw := range postings {
		title := raw.Name
		if title == "" {
			title = raw.Title
		}

		link := raw.Ref
		if link == "" {
			link = raw.URL
		}
		if link == "" {
			link = raw.JobURL
		}

		p, ok := s.post.finalize(job.Posting{
			Title:           title,
			Company:         s.company.Name,
			CompanyType:     s.company.Type,
			Location:        smartRecruitersLocation(raw.Location),
			Description:     title,
			ApplicationLink: link,
			SourcePlatform:  "SmartRecruiters",
		})
		if !ok {
			continue
		}
		jobs = append(jobs, p)
	}

	return Result{Source: s.Name(), Company: s.company.Name, Jobs: dedupe(jobs)}
}

func smartRecruitersLocation(loc map[string]any) string {
	if city, ok := loc["city"].(string); ok && city != "" {
		return city
	}
	if country, ok := loc["country"].(string); ok {
		return country
	}
	return ""
}
