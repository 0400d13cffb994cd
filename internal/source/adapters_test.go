package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func testClient() *Client {
	return NewClient("test-agent", 5*time.Second)
}

func TestClientSetsHeaders(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("User-Agent"); got != "test-agent" {
			t.Errorf("user agent = %q, want test-agent", got)
		}
		if got := r.Header.Get("Accept"); got != acceptHeader {
			t.Errorf("accept = %q, want %q", got, acceptHeader)
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	var out map[string]any
	if err := testClient().GetJSON(context.Background(), srv.URL, &out); err != nil {
		t.Fatalf("GetJSON: %v", err)
	}
}

func TestClientUnexpectedStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "go away", http.StatusForbidden)
	}))
	defer srv.Close()

	var out map[string]any
	err := testClient().GetJSON(context.Background(), srv.URL, &out)
	if err == nil {
		t.Fatal("expected an error for a 403 response")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error %q does not mention the status code", err)
	}
}

func TestGreenhouseFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/boards/acme/jobs" {
			http.NotFound(w, r)
			return
		}
		if r.URL.Query().Get("content") != "true" {
			t.Errorf("missing content=true in query %q", r.URL.RawQuery)
		}
		fmt.Fprint(w, `{"jobs": [
			{"title": "Data Analyst", "absolute_url": "https://acme.example/jobs/1",
			 "content": "Work with SQL dashboards", "offices": [{"name": "Hyderabad"}]},
			{"title": "Chef", "absolute_url": "https://acme.example/jobs/2",
			 "content": "cook meals daily", "offices": [{"name": "Hyderabad"}]},
			{"title": "Data Analyst II", "absolute_url": "https://acme.example/jobs/3",
			 "content": "analytics", "offices": [{"name": "London"}]}
		]}`)
	}))
	defer srv.Close()

	g := NewGreenhouse(Company{Name: "Acme", Slug: "acme", Type: "Startup"}, testClient(), newPostProcessor(testProfile()))
	g.APIURL = srv.URL

	res := g.Fetch(context.Background())
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Company != "Acme" {
		t.Errorf("company = %q, want Acme", res.Company)
	}
	if len(res.Jobs) != 1 {
		t.Fatalf("got %d jobs, want 1 after filtering", len(res.Jobs))
	}

	p := res.Jobs[0]
	if p.Title != "Data Analyst" || p.Company != "Acme" || p.Location != "Hyderabad" {
		t.Errorf("unexpected posting %+v", p)
	}
	if p.SourcePlatform != "Greenhouse" {
		t.Errorf("source platform = %q, want Greenhouse", p.SourcePlatform)
	}
	if p.ApplicationLink != "https://acme.example/jobs/1" {
		t.Errorf("application link = %q", p.ApplicationLink)
	}
}

func TestGreenhouseFetchError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := NewGreenhouse(Company{Name: "Acme", Slug: "acme"}, testClient(), newPostProcessor(testProfile()))
	g.APIURL = srv.URL

	res := g.Fetch(context.Background())
	if res.Err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(res.Err.Error(), "greenhouse board acme") {
		t.Errorf("error %q does not name the board", res.Err)
	}
	if res.Source != "greenhouse/acme" {
		t.Errorf("source = %q", res.Source)
	}
	if res.Company != "Acme" {
		t.Errorf("company = %q, want the company carried on failures too", res.Company)
	}
}

func TestLeverFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v0/postings/acme" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, `[
			{"text": "SQL Developer", "hostedUrl": "https://jobs.lever.co/acme/1",
			 "description": "<p>Write <b>SQL</b> all day</p>",
			 "categories": {"location": "Bangalore"}},
			{"text": "Head of Kitchen", "hostedUrl": "https://jobs.lever.co/acme/2",
			 "descriptionPlain": "cook meals", "categories": {}}
		]`)
	}))
	defer srv.Close()

	l := NewLever(Company{Name: "Acme", Slug: "acme", Type: "Startup"}, testClient(), newPostProcessor(testProfile()))
	l.APIURL = srv.URL

	res := l.Fetch(context.Background())
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(res.Jobs))
	}

	p := res.Jobs[0]
	if p.Title != "SQL Developer" || p.Location != "Bangalore" {
		t.Errorf("unexpected posting %+v", p)
	}
	if strings.Contains(p.Description, "<") {
		t.Errorf("description %q still contains markup", p.Description)
	}
	if !strings.Contains(p.Description, "Write") {
		t.Errorf("description %q lost its text", p.Description)
	}
}

func TestWorkdayFetch(t *testing.T) {
	t.Parallel()

	var requests atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/wday/cxs/acme/Acme_Careers/jobs" {
			http.NotFound(w, r)
			return
		}
		requests.Add(1)
		fmt.Fprint(w, `{"jobPostings": [
			{"title": "Data Analyst", "locationsText": "Hyderabad, India", "externalPath": "/job/123"}
		]}`)
	}))
	defer srv.Close()

	company := Company{
		Name: "Acme",
		Slug: "https://acme.wd1.myworkdayjobs.com/en-US/Acme_Careers",
		Type: "MNC",
	}
	w := NewWorkday(company, testClient(), newPostProcessor(testProfile()), testProfile().TargetRoles)
	w.APIURL = srv.URL

	res := w.Fetch(context.Background())
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if got := requests.Load(); got != 2 {
		t.Errorf("made %d search requests, want one per target role", got)
	}
	if len(res.Jobs) != 1 {
		t.Fatalf("got %d jobs, want 1 after cross-keyword dedup", len(res.Jobs))
	}

	p := res.Jobs[0]
	if p.ApplicationLink != srv.URL+"/job/123" {
		t.Errorf("application link = %q", p.ApplicationLink)
	}
	if p.SourcePlatform != "Workday" {
		t.Errorf("source platform = %q", p.SourcePlatform)
	}
}

func TestWorkdayRejectsBadURL(t *testing.T) {
	t.Parallel()

	company := Company{Name: "Acme", Slug: "https://example.com/careers"}
	w := NewWorkday(company, testClient(), newPostProcessor(testProfile()), nil)

	res := w.Fetch(context.Background())
	if res.Err == nil {
		t.Fatal("expected an error for a non-workday url")
	}
}

func TestSmartRecruitersFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Acme/api/more" {
			http.NotFound(w, r)
			return
		}
		// Tenants without a postings array ship the same items under content.
		fmt.Fprint(w, `{"content": [
			{"name": "Business Analyst", "ref": "https://sr.example/jobs/1",
			 "location": {"city": "Bangalore"}},
			{"title": "Reporting Analyst", "jobUrl": "https://sr.example/jobs/2",
			 "location": {"country": "India"}}
		]}`)
	}))
	defer srv.Close()

	s := NewSmartRecruiters(Company{Name: "Acme", Slug: "Acme", Type: "BPO"}, testClient(), newPostProcessor(testProfile()))
	s.APIURL = srv.URL

	res := s.Fetch(context.Background())
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Jobs) != 2 {
		t.Fatalf("got %d jobs, want 2", len(res.Jobs))
	}

	if res.Jobs[0].Title != "Business Analyst" || res.Jobs[0].Location != "Bangalore" {
		t.Errorf("unexpected first posting %+v", res.Jobs[0])
	}
	if res.Jobs[1].Title != "Reporting Analyst" || res.Jobs[1].ApplicationLink != "https://sr.example/jobs/2" {
		t.Errorf("unexpected second posting %+v", res.Jobs[1])
	}
}

func TestInstahyreFetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if got := q.Get("city"); got != "Hyderabad" {
			t.Errorf("city = %q, want Hyderabad", got)
		}
		if got := q.Get("experience"); got != "0" {
			t.Errorf("experience = %q, want 0", got)
		}
		fmt.Fprint(w, `{"results": [
			{"id": 42, "designation": "Data Analyst", "company": {"name": "Zinc"}, "city": "Hyderabad"}
		]}`)
	}))
	defer srv.Close()

	profile := testProfile()
	profile.HomeLocation = "Hyderabad, Telangana"

	i := NewInstahyre(profile, testClient(), zap.NewNop())
	i.APIURL = srv.URL

	res := i.Fetch(context.Background())
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if len(res.Jobs) != 1 {
		t.Fatalf("got %d jobs, want 1", len(res.Jobs))
	}

	p := res.Jobs[0]
	if p.Company != "Zinc" || p.CompanyType != "Startup" {
		t.Errorf("unexpected posting %+v", p)
	}
	if p.ApplicationLink != "https://www.instahyre.com/jobs/42" {
		t.Errorf("application link = %q", p.ApplicationLink)
	}
}

func TestNewATSAdapters(t *testing.T) {
	t.Parallel()

	companies := []Company{
		{Name: "A", ATS: ATSGreenhouse, Slug: "a"},
		{Name: "B", ATS: ATSLever, Slug: "b"},
		{Name: "C", ATS: ATSWorkday, Slug: "https://c.wd1.myworkdayjobs.com/C_Careers"},
		{Name: "D", ATS: ATSSmartRecruiters, Slug: "D"},
		{Name: "E", ATS: "taleo", Slug: "e"},
	}

	adapters := NewATSAdapters(companies, testClient(), testProfile(), zap.NewNop())
	if len(adapters) != 4 {
		t.Fatalf("got %d adapters, want 4 with the unknown kind skipped", len(adapters))
	}

	want := []string{"greenhouse/a", "lever/b", "workday/c", "smartrecruiters/D"}
	for i, adapter := range adapters {
		if adapter.Name() != want[i] {
			t.Errorf("adapter %d name = %q, want %q", i, adapter.Name(), want[i])
		}
	}
}
