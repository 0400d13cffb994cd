package source

import (
	"context"
	"fmt"

	"github.com/abhilashdr/jobscout/internal/job"
)

const greenhouseAPIURL = "https://boards-api.greenhouse.io"

// Greenhouse fetches a company's board from the Greenhouse public API. One
// GET returns every open posting as JSON; no authentication is needed.
type Greenhouse struct {
	// APIURL is overridable for tests.
	APIURL  string
	company Company
	client  *Client
	post    *postProcessor
}

func NewGreenhouse(company Company, client *Client, post *postProcessor) *Greenhouse {
	return &Greenhouse{
		APIURL:  greenhouseAPIURL,
		company: company,
		client:  client,
		post:    post,
	}
}

func (g *Greenhouse) Name() string {
	return "greenhouse/" + g.company.Slug
}

type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

type greenhouseJob struct {
	Title       string             `json:"title"`
	AbsoluteURL string             `json:"absolute_url"`
	Content     string             `json:"content"`
	Offices     []greenhouseOffice `json:"offices"`
}

type greenhouseOffice struct {
	Name string `json:"name"`
}

func (g *Greenhouse) Fetch(ctx context.Context) Result {
	url := fmt.Sprintf("%s/v1/boards/%s/jobs?content=true", g.APIURL, g.company.Slug)

	var resp greenhouseResponse
	if err := g.client.GetJSON(ctx, url, &resp); err != nil {
		return Result{Source: g.Name(), Company: g.company.Name, Err: fmt.Errorf("greenhouse board %s: %w", g.company.Slug, err)}
	}

	var jobs []job.Posting
	for _, raw := range resp.Jobs {
		location := ""
		if len(raw.Offices) > 0 {
			location = raw.Offices[0].Name
		}

		p, ok := g.post.finalize(job.Posting{
			Title:           raw.Title,
			Company:         g.company.Name,
			CompanyType:     g.company.Type,
			Location:        location,
			Description:     raw.Content,
			ApplicationLink: raw.AbsoluteURL,
			SourcePlatform:  "Greenhouse",
		})
		if !ok {
			continue
		}
		jobs = append(jobs, p)
	}

	return Result{Source: g.Name(), Company: g.company.Name, Jobs: dedupe(jobs)}
}
