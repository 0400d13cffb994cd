package source

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/abhilashdr/jobscout/internal/job"
)

// Portal describes one browser-driven job board: how to build a search URL
// for a query and how to pull postings out of the rendered markup. Parsing is
// separated from the browser session so it can be tested on static HTML.
type Portal interface {
	Name() string
	SearchURL(role, location string) string
	Parse(doc *goquery.Document) []job.Posting
}

// SearchQuery is one (role, location) pair a portal is searched with.
type SearchQuery struct {
	Role     string
	Location string
}

// NaukriPortal parses naukri.com search result pages.
type NaukriPortal struct{}

func (NaukriPortal) Name() string { return "naukri" }

func (NaukriPortal) SearchURL(role, location string) string {
	roleSlug := strings.Join(strings.Fields(strings.ToLower(role)), "-")
	locationSlug := strings.ReplaceAll(strings.ToLower(location), " ", "-")
	return fmt.Sprintf("https://www.naukri.com/%s-jobs-in-%s?experience=0", roleSlug, locationSlug)
}

func (NaukriPortal) Parse(doc *goquery.Document) []job.Posting {
	var jobs []job.Posting

	doc.Find("article.jobTuple, div.srp-jobtuple-wrapper").Each(func(_ int, card *goquery.Selection) {
		titleEl := card.Find("a.title").First()
		title := strings.TrimSpace(titleEl.Text())
		if title == "" {
			return
		}

		link, _ := titleEl.Attr("href")
		company := strings.TrimSpace(card.Find("a.subTitle, a.comp-name").First().Text())
		location := strings.TrimSpace(card.Find("span.locWdth, li.location span").First().Text())
		experience := strings.TrimSpace(card.Find("span.expwdth, li.experience span").First().Text())
		description := strings.TrimSpace(card.Find("span.job-desc, div.job-description").First().Text())

		skills := make([]string, 0, 4)
		card.Find("ul.tags li, li.tag-li").Each(func(_ int, tag *goquery.Selection) {
			if skill := strings.TrimSpace(tag.Text()); skill != "" {
				skills = append(skills, skill)
			}
		})

		jobs = append(jobs, job.Posting{
			Title:              title,
			Company:            company,
			Location:           location,
			ExperienceRequired: experience,
			SkillsRequired:     strings.Join(skills, ", "),
			Description:        description,
			ApplicationLink:    link,
			SourcePlatform:     "Naukri",
		})
	})

	return jobs
}

// LinkedInPortal parses linkedin.com public job search pages.
type LinkedInPortal struct{}

func (LinkedInPortal) Name() string { return "linkedin" }

func (LinkedInPortal) SearchURL(role, location string) string {
	q := url.Values{}
	q.Set("keywords", role)
	q.Set("location", location)
	q.Set("f_E", "1,2") // internship and entry level
	q.Set("sortBy", "DD")
	return "https://www.linkedin.com/jobs/search?" + q.Encode()
}

func (LinkedInPortal) Parse(doc *goquery.Document) []job.Posting {
	var jobs []job.Posting

	doc.Find("div.base-card, li.jobs-search-results__list-item").Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find("h3.base-search-card__title").First().Text())
		if title == "" {
			title = strings.TrimSpace(card.Find("a.base-card__full-link").First().Text())
		}
		if title == "" {
			return
		}

		link, _ := card.Find("a.base-card__full-link").First().Attr("href")

		company := strings.TrimSpace(card.Find("h4.base-search-card__subtitle").First().Text())
		if company == "" {
			company = strings.TrimSpace(card.Find("a.hidden-nested-link").First().Text())
		}

		location := strings.TrimSpace(card.Find("span.job-search-card__location").First().Text())
		description := strings.TrimSpace(card.Find("p.base-search-card__snippet").First().Text())

		posting := job.Posting{
			Title:           title,
			Company:         company,
			Location:        location,
			Description:     description,
			ApplicationLink: link,
			SourcePlatform:  "LinkedIn",
		}

		if datetime, ok := card.Find("time").First().Attr("datetime"); ok {
			if parsed, err := time.Parse("2006-01-02", datetime); err == nil {
				posting.PostingDate = parsed
			}
		}

		jobs = append(jobs, posting)
	})

	return jobs
}
