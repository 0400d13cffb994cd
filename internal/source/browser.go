package source

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/chromedp/chromedp"

	"github.com/abhilashdr/jobscout/internal/config"
	"github.com/abhilashdr/jobscout/internal/job"
)

const scrollSettle = 2 * time.Second

// BrowserAdapter drives a headless browser session for portals behind bot
// mitigation. The rendering process is scoped to a single Fetch and released
// on every exit path; the whole family is optional and the pipeline runs
// without it.
type BrowserAdapter struct {
	portal     Portal
	queries    []SearchQuery
	post       *postProcessor
	userAgent  string
	maxScrolls int
	// render is swappable so tests can feed static markup instead of
	// launching a browser.
	render func(ctx context.Context, url string) (string, error)
}

func NewBrowserAdapter(portal Portal, profile config.Profile, sources config.Sources) *BrowserAdapter {
	a := &BrowserAdapter{
		portal:     portal,
		queries:    buildQueries(profile),
		post:       newPostProcessor(profile),
		userAgent:  sources.UserAgent,
		maxScrolls: sources.Browser.MaxScrolls,
	}
	a.render = a.renderPage
	return a
}

// buildQueries pairs every target role with every concrete preferred
// location. Remote markers are skipped; portals want a place name.
func buildQueries(profile config.Profile) []SearchQuery {
	var queries []SearchQuery
	for _, role := range profile.TargetRoles {
		for _, location := range profile.PreferredLocations {
			lower := strings.ToLower(location)
			if lower == "remote" || lower == "work from home" {
				continue
			}
			queries = append(queries, SearchQuery{Role: role, Location: location})
		}
	}
	return queries
}

func (a *BrowserAdapter) Name() string {
	return "browser/" + a.portal.Name()
}

func (a *BrowserAdapter) Fetch(ctx context.Context) Result {
	var jobs []job.Posting
	var lastErr error

	for _, query := range a.queries {
		if err := ctx.Err(); err != nil {
			return Result{Source: a.Name(), Jobs: dedupe(jobs), Err: err}
		}

		html, err := a.render(ctx, a.portal.SearchURL(query.Role, query.Location))
		if err != nil {
			lastErr = err
			continue
		}

		doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
		if err != nil {
			lastErr = fmt.Errorf("parsing rendered page: %w", err)
			continue
		}

		for _, p := range a.portal.Parse(doc) {
			if finalized, ok := a.post.finalize(p); ok {
				jobs = append(jobs, finalized)
			}
		}
	}

	if len(jobs) == 0 && lastErr != nil {
		return Result{Source: a.Name(), Err: fmt.Errorf("portal %s: %w", a.portal.Name(), lastErr)}
	}

	return Result{Source: a.Name(), Jobs: dedupe(jobs)}
}

// renderPage loads the URL in a headless session, scrolls a bounded number of
// times to trigger lazy-loaded results, and returns the rendered markup.
func (a *BrowserAdapter) renderPage(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(a.userAgent),
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
	)

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	actions := []chromedp.Action{
		chromedp.Navigate(url),
		chromedp.Sleep(scrollSettle),
	}
	for i := 0; i < a.maxScrolls; i++ {
		actions = append(actions,
			chromedp.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`, nil),
			chromedp.Sleep(scrollSettle),
		)
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html))

	if err := chromedp.Run(tabCtx, actions...); err != nil {
		return "", fmt.Errorf("rendering %s: %w", url, err)
	}

	return html, nil
}
