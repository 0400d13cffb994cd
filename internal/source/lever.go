package source

import (
	"context"
	"fmt"
	"regexp"

	"github.com/abhilashdr/jobscout/internal/job"
)

const leverAPIURL = "https://api.lever.co"

var htmlTagRe = regexp.MustCompile(`<[^>]+>`)

// Lever fetches a company's postings from the Lever public API, which returns
// the whole board as a JSON array.
type Lever struct {
	APIURL  string
	company Company
	client  *Client
	post    *postProcessor
}

func NewLever(company Company, client *Client, post *postProcessor) *Lever {
	return &Lever{
		APIURL:  leverAPIURL,
		company: company,
		client:  client,
		post:    post,
	}
}

func (l *Lever) Name() string {
	return "lever/" + l.company.Slug
}

type leverPosting struct {
	Text             string            `json:"text"`
	HostedURL        string            `json:"hostedUrl"`
	Description      string            `json:"description"`
	DescriptionPlain string            `json:"descriptionPlain"`
	Categories       map[string]string `json:"categories"`
}

func (l *Lever) Fetch(ctx context.Context) Result {
	url := fmt.Sprintf("%s/v0/postings/%s?mode=json", l.APIURL, l.company.Slug)

	var postings []leverPosting
	if err := l.client.GetJSON(ctx, url, &postings); err != nil {
		return Result{Source: l.Name(), Company: l.company.Name, Err: fmt.Errorf("lever postings %s: %w", l.company.Slug, err)}
	}

	var jobs []job.Posting
	for _, raw := range postings {
		description := raw.DescriptionPlain
		if description == "" {
			description = htmlTagRe.ReplaceAllString(raw.Description, " ")
		}

		p, ok := l.post.finalize(job.Posting{
			Title:           raw.Text,
			Company:         l.company.Name,
			CompanyType:     l.company.Type,
			Location:        raw.Categories["location"],
			Description:     description,
			ApplicationLink: raw.HostedURL,
			SourcePlatform:  "Lever",
		})
		if !ok {
			continue
		}
		jobs = append(jobs, p)
	}

	return Result{Source: l.Name(), Company: l.company.Name, Jobs: dedupe(jobs)}
}
