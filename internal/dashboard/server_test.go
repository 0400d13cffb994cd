package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/abhilashdr/jobscout/internal/job"
	"github.com/abhilashdr/jobscout/internal/match"
	"github.com/abhilashdr/jobscout/internal/pipeline"
	"github.com/abhilashdr/jobscout/internal/store"
)

type fakeStorage struct {
	mu          sync.Mutex
	jobs        []job.Posting
	lastFilters store.Filters
	lastLimit   int
	queryErr    error
	stats       store.Stats
	appliedID   int64
	appliedErr  error
	resume      string
	cleanupMax  float64
	cleanupAge  time.Duration
	removed     int64
}

func (f *fakeStorage) Query(ctx context.Context, fl store.Filters, limit int) ([]job.Posting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.lastFilters = fl
	f.lastLimit = limit
	return f.jobs, f.queryErr
}

func (f *fakeStorage) Stats(ctx context.Context) (store.Stats, error) {
	return f.stats, nil
}

func (f *fakeStorage) MarkApplied(ctx context.Context, id int64, resumeVersion string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.appliedErr != nil {
		return f.appliedErr
	}
	f.appliedID = id
	f.resume = resumeVersion
	return nil
}

func (f *fakeStorage) Cleanup(ctx context.Context, maxScore float64, minAge time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cleanupMax = maxScore
	f.cleanupAge = minAge
	return f.removed, nil
}

type fakeRunner struct {
	mu      sync.Mutex
	running bool
	runs    int
	done    chan struct{}
}

func (f *fakeRunner) Run(ctx context.Context) (*pipeline.Report, error) {
	f.mu.Lock()
	f.runs++
	f.mu.Unlock()

	if f.done != nil {
		close(f.done)
	}
	return &pipeline.Report{}, nil
}

func (f *fakeRunner) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

type fakeExplainer struct {
	breakdown match.Breakdown
	last      job.Posting
}

func (f *fakeExplainer) Explain(p job.Posting) match.Breakdown {
	f.last = p
	return f.breakdown
}

func serve(t *testing.T, storage Storage, runner Runner, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()
	return serveWith(t, storage, runner, &fakeExplainer{}, method, target, body)
}

func serveWith(t *testing.T, storage Storage, runner Runner, explainer Explainer, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()

	srv := NewServer(":0", storage, runner, explainer, zap.NewNop())

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	t.Parallel()

	rec := serve(t, &fakeStorage{}, &fakeRunner{}, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestListJobs(t *testing.T) {
	t.Parallel()

	storage := &fakeStorage{jobs: []job.Posting{{ID: 1, Title: "Data Analyst"}}}
	rec := serve(t, storage, &fakeRunner{}, http.MethodGet,
		"/api/jobs?min_score=65&location=Hyderabad&pending=true&limit=10", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}

	want := store.Filters{MinScore: 65, Location: "Hyderabad", NotApplied: true}
	if storage.lastFilters != want {
		t.Errorf("filters = %+v, want %+v", storage.lastFilters, want)
	}
	if storage.lastLimit != 10 {
		t.Errorf("limit = %d, want 10", storage.lastLimit)
	}

	var jobs []job.Posting
	if err := json.Unmarshal(rec.Body.Bytes(), &jobs); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Title != "Data Analyst" {
		t.Errorf("unexpected response %s", rec.Body)
	}
}

func TestListJobsDefaults(t *testing.T) {
	t.Parallel()

	storage := &fakeStorage{}
	rec := serve(t, storage, &fakeRunner{}, http.MethodGet, "/api/jobs", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if storage.lastLimit != defaultJobsLimit {
		t.Errorf("limit = %d, want the default %d", storage.lastLimit, defaultJobsLimit)
	}
	// An empty result set must still serialize as a json array.
	if got := strings.TrimSpace(rec.Body.String()); got != "[]" {
		t.Errorf("empty response = %q, want []", got)
	}
}

func TestListJobsBadParams(t *testing.T) {
	t.Parallel()

	for _, target := range []string{
		"/api/jobs?min_score=high",
		"/api/jobs?limit=0",
		"/api/jobs?limit=ten",
	} {
		rec := serve(t, &fakeStorage{}, &fakeRunner{}, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
		}
	}
}

func TestListJobsStorageError(t *testing.T) {
	t.Parallel()

	storage := &fakeStorage{queryErr: errors.New("database gone")}
	rec := serve(t, storage, &fakeRunner{}, http.MethodGet, "/api/jobs", "")

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "database gone") {
		t.Errorf("body %s does not carry the error", rec.Body)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	storage := &fakeStorage{stats: store.Stats{Total: 12, Pending: 5, HighPriority: 2, Applied: 7}}
	rec := serve(t, storage, &fakeRunner{}, http.MethodGet, "/api/stats", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var got store.Stats
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got != storage.stats {
		t.Errorf("stats = %+v, want %+v", got, storage.stats)
	}
}

func TestTriggerRun(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{done: make(chan struct{})}
	rec := serve(t, &fakeStorage{}, runner, http.MethodPost, "/api/run", "")

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", rec.Code)
	}

	select {
	case <-runner.done:
	case <-time.After(time.Second):
		t.Fatal("the background run never started")
	}
}

func TestTriggerRunConflict(t *testing.T) {
	t.Parallel()

	runner := &fakeRunner{running: true}
	rec := serve(t, &fakeStorage{}, runner, http.MethodPost, "/api/run", "")

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if runner.runs != 0 {
		t.Error("a conflicting trigger must not start a run")
	}
}

func TestMarkApplied(t *testing.T) {
	t.Parallel()

	storage := &fakeStorage{}
	rec := serve(t, storage, &fakeRunner{}, http.MethodPost,
		"/api/jobs/42/applied", `{"resume_version": "v3"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if storage.appliedID != 42 || storage.resume != "v3" {
		t.Errorf("recorded %d/%q, want 42/v3", storage.appliedID, storage.resume)
	}
}

func TestMarkAppliedBadID(t *testing.T) {
	t.Parallel()

	rec := serve(t, &fakeStorage{}, &fakeRunner{}, http.MethodPost, "/api/jobs/abc/applied", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestMarkAppliedNotFound(t *testing.T) {
	t.Parallel()

	storage := &fakeStorage{appliedErr: errors.New("job 7 not found")}
	rec := serve(t, storage, &fakeRunner{}, http.MethodPost, "/api/jobs/7/applied", "")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestExplainScore(t *testing.T) {
	t.Parallel()

	explainer := &fakeExplainer{breakdown: match.Breakdown{Total: 87.5, Keyword: 100}}
	rec := serveWith(t, &fakeStorage{}, &fakeRunner{}, explainer, http.MethodPost,
		"/api/score", `{"title": "Data Analyst", "company": "Acme"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if explainer.last.Title != "Data Analyst" {
		t.Errorf("explained posting %+v, want the request body", explainer.last)
	}

	var got match.Breakdown
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if got.Total != 87.5 || got.Keyword != 100 {
		t.Errorf("breakdown = %+v", got)
	}
}

func TestExplainScoreRejectsIncomplete(t *testing.T) {
	t.Parallel()

	rec := serve(t, &fakeStorage{}, &fakeRunner{}, http.MethodPost,
		"/api/score", `{"title": "Data Analyst"}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 without a company", rec.Code)
	}
}

func TestCleanup(t *testing.T) {
	t.Parallel()

	storage := &fakeStorage{removed: 3}
	rec := serve(t, storage, &fakeRunner{}, http.MethodPost,
		"/api/cleanup", `{"max_score": 45, "min_age_days": 14}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if storage.cleanupMax != 45 {
		t.Errorf("max score = %v, want 45", storage.cleanupMax)
	}
	if storage.cleanupAge != 14*24*time.Hour {
		t.Errorf("min age = %v, want 14 days", storage.cleanupAge)
	}
	if !strings.Contains(rec.Body.String(), `"removed":3`) {
		t.Errorf("body %s does not report the removed count", rec.Body)
	}
}

func TestCleanupDefaults(t *testing.T) {
	t.Parallel()

	storage := &fakeStorage{}
	rec := serve(t, storage, &fakeRunner{}, http.MethodPost, "/api/cleanup", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	// Zero values flow through; the store applies its own defaults.
	if storage.cleanupMax != 0 || storage.cleanupAge != 0 {
		t.Errorf("got %v/%v, want zero values passed through", storage.cleanupMax, storage.cleanupAge)
	}
}
