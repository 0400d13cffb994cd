package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/abhilashdr/jobscout/internal/config"
	"github.com/abhilashdr/jobscout/internal/job"
)

const instahyreMaxPerQuery = 20

// Instahyre searches the public opportunity API. Results skew towards Indian
// startups, so the company type defaults accordingly.
type Instahyre struct {
	// APIURL is overridable in tests.
	APIURL string

	city   string
	roles  []string
	client *Client
	post   *postProcessor
	logger *zap.Logger
}

func NewInstahyre(profile config.Profile, client *Client, logger *zap.Logger) *Instahyre {
	city := profile.HomeLocation
	if i := strings.IndexAny(city, ",("); i > 0 {
		city = strings.TrimSpace(city[:i])
	}

	roles := profile.TargetRoles
	if len(roles) > 5 {
		roles = roles[:5]
	}

	return &Instahyre{
		APIURL: "https://www.instahyre.com/api/v1/opportunity/search/",
		city:   city,
		roles:  roles,
		client: client,
		post:   newPostProcessor(profile),
		logger: logger,
	}
}

func (i *Instahyre) Name() string { return "instahyre" }

type instahyreResponse struct {
	Opportunities []instahyreOpportunity `json:"opportunities"`
	Results       []instahyreOpportunity `json:"results"`
}

type instahyreOpportunity struct {
	ID          int64  `json:"id"`
	Designation string `json:"designation"`
	Title       string `json:"title"`
	CompanyName string `json:"company_name"`
	Company     struct {
		Name string `json:"name"`
	} `json:"company"`
	City string `json:"city"`
}

func (i *Instahyre) Fetch(ctx context.Context) Result {
	var jobs []job.Posting
	var lastErr error

	for _, role := range i.roles {
		if err := ctx.Err(); err != nil {
			return Result{Source: i.Name(), Jobs: dedupe(jobs), Err: err}
		}

		query := url.Values{}
		query.Set("q", strings.ToLower(role))
		query.Set("city", i.city)
		query.Set("experience", "0")

		var resp instahyreResponse
		if err := i.client.GetJSON(ctx, i.APIURL+"?"+query.Encode(), &resp); err != nil {
			lastErr = err
			continue
		}

		opportunities := resp.Opportunities
		if len(opportunities) == 0 {
			opportunities = resp.Results
		}
		if len(opportunities) > instahyreMaxPerQuery {
			opportunities = opportunities[:instahyreMaxPerQuery]
		}

		for _, opp := range opportunities {
			title := opp.Designation
			if title == "" {
				title = opp.Title
			}
			company := opp.CompanyName
			if company == "" {
				company = opp.Company.Name
			}
			location := opp.City
			if location == "" {
				location = i.city
			}

			p, ok := i.post.finalize(job.Posting{
				Title:           title,
				Company:         company,
				CompanyType:     "Startup",
				Location:        location,
				Description:     title,
				ApplicationLink: fmt.Sprintf("https://www.instahyre.com/jobs/%d", opp.ID),
				SourcePlatform:  "Instahyre",
			})
			if ok {
				jobs = append(jobs, p)
			}
		}
	}

	if len(jobs) == 0 && lastErr != nil {
		return Result{Source: i.Name(), Err: lastErr}
	}
	if lastErr != nil {
		i.logger.Warn("partial instahyre results", zap.Error(lastErr))
	}

	jobs = dedupe(jobs)
	i.logger.Debug("instahyre fetch finished", zap.Int("jobs", len(jobs)))

	return Result{Source: i.Name(), Jobs: jobs}
}
