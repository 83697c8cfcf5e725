package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/inkline/writing-service/internal/auth"
	"github.com/inkline/writing-service/internal/writing"
)

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

type seqIDs struct {
	next int
}

func (g *seqIDs) NewID() string {
	g.next++
	return fmt.Sprintf("id-%d", g.next)
}

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()

	clock := fixedClock{t: time.Date(2024, 6, 19, 12, 0, 0, 0, time.UTC)}
	svc, err := writing.NewService(writing.NewMemoryRepository(), clock, &seqIDs{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	verifier, err := auth.NewVerifier(auth.Config{Mode: auth.ModeNoop})
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier))
		RegisterRoutes(r, svc, clock, nil)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Authorization", "Bearer user-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndListSessions(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/sessions", map[string]any{
		"date": "2024-06-18", "project": "The Novel", "word_count": 1200, "note": "chapter 12",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/sessions", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: expected 200, got %d", rec.Code)
	}
	var listResp struct {
		Items []writing.Session `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(listResp.Items) != 1 || listResp.Items[0].Project != "The Novel" {
		t.Fatalf("unexpected list response: %+v", listResp)
	}
}

func TestCreateSessionValidationError(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/sessions", map[string]any{
		"date": "2024-06-18", "project": "X", "word_count": 0,
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if resp.Code != "bad_request" {
		t.Fatalf("expected bad_request code, got %q", resp.Code)
	}
}

func TestMissingBearerTokenRejected(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/sessions", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAnalyticsEndpoint(t *testing.T) {
	router := newTestRouter(t)

	// Two sessions this week (refDate Wed 2024-06-19), one last week.
	for _, s := range []map[string]any{
		{"date": "2024-06-18", "project": "X", "word_count": 500},
		{"date": "2024-06-17", "project": "X", "word_count": 300},
		{"date": "2024-06-12", "project": "X", "word_count": 200},
	} {
		if rec := doJSON(t, router, http.MethodPost, "/v1/sessions", s); rec.Code != http.StatusCreated {
			t.Fatalf("seed session: expected 201, got %d", rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/v1/analytics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var summary struct {
		TotalWords    int    `json:"total_words"`
		WritingDays   int    `json:"writing_days"`
		CurrentStreak int    `json:"current_streak"`
		ThisWeek      struct {
			Words     int    `json:"words"`
			Diff      int    `json:"diff"`
			Direction string `json:"direction"`
		} `json:"this_week"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalWords != 1000 || summary.WritingDays != 3 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if summary.CurrentStreak != 2 {
		t.Fatalf("expected current streak 2, got %d", summary.CurrentStreak)
	}
	if summary.ThisWeek.Words != 800 || summary.ThisWeek.Direction != "up" {
		t.Fatalf("unexpected week comparison: %+v", summary.ThisWeek)
	}
}

func TestAnalyticsRangeFilter(t *testing.T) {
	router := newTestRouter(t)

	for _, s := range []map[string]any{
		{"date": "2024-06-18", "project": "X", "word_count": 500},
		{"date": "2024-01-05", "project": "X", "word_count": 9000},
	} {
		if rec := doJSON(t, router, http.MethodPost, "/v1/sessions", s); rec.Code != http.StatusCreated {
			t.Fatalf("seed session: expected 201, got %d", rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/v1/analytics?range=1w", nil)
	var summary struct {
		TotalWords int `json:"total_words"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalWords != 500 {
		t.Fatalf("expected old session filtered out, got total %d", summary.TotalWords)
	}
}

func TestChartEndpoint(t *testing.T) {
	router := newTestRouter(t)

	for _, s := range []map[string]any{
		{"date": "2024-06-16", "project": "The Novel", "word_count": 100},
		{"date": "2024-06-18", "project": "The Novel", "word_count": 200},
	} {
		if rec := doJSON(t, router, http.MethodPost, "/v1/sessions", s); rec.Code != http.StatusCreated {
			t.Fatalf("seed session: expected 201, got %d", rec.Code)
		}
	}

	rec := doJSON(t, router, http.MethodGet, "/v1/analytics/chart", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp struct {
		Points []struct {
			Date     string         `json:"date"`
			Total    int            `json:"total"`
			Projects map[string]int `json:"projects"`
		} `json:"points"`
		YAxisTicks []int `json:"y_axis_ticks"`
		Projects   []writing.Project
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	if len(resp.Points) != 3 {
		t.Fatalf("expected 3 points (16th through 18th), got %d", len(resp.Points))
	}
	if resp.Points[1].Total != 0 {
		t.Fatalf("expected empty middle day, got %+v", resp.Points[1])
	}
	if resp.Points[2].Projects["The Novel"] != 200 {
		t.Fatalf("expected project series value 200, got %+v", resp.Points[2])
	}
	if len(resp.YAxisTicks) != 5 {
		t.Fatalf("expected 5 ticks, got %v", resp.YAxisTicks)
	}

	// hide_empty drops the zero-total day.
	rec = doJSON(t, router, http.MethodGet, "/v1/analytics/chart?hide_empty=true", nil)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode chart: %v", err)
	}
	if len(resp.Points) != 2 {
		t.Fatalf("expected 2 points with hide_empty, got %d", len(resp.Points))
	}
}

func TestProjectLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/projects", map[string]any{"name": "The Novel"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create project: expected 201, got %d", rec.Code)
	}
	var project writing.Project
	if err := json.Unmarshal(rec.Body.Bytes(), &project); err != nil {
		t.Fatalf("decode project: %v", err)
	}
	if project.Color == "" {
		t.Fatal("expected assigned color")
	}

	rec = doJSON(t, router, http.MethodDelete, "/v1/projects/The%20Novel", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete project: expected 204, got %d (%s)", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, router, http.MethodGet, "/v1/projects", nil)
	var listResp struct {
		Items []writing.Project `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode projects: %v", err)
	}
	if len(listResp.Items) != 0 {
		t.Fatalf("expected no projects, got %+v", listResp.Items)
	}
}
