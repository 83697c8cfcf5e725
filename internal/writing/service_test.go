package writing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
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

func newTestService(t *testing.T) *Service {
	t.Helper()
	clock := fixedClock{t: time.Date(2024, 6, 19, 12, 0, 0, 0, time.UTC)}
	svc, err := NewService(NewMemoryRepository(), clock, &seqIDs{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestCreateSessionSanitizesAndPersists(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	session, err := svc.CreateSession(ctx, CreateSessionInput{
		UserID:    "user-1",
		Date:      "2024-06-18",
		Project:   " <b>The Novel</b> ",
		WordCount: 1200,
		Note:      "finished <draft>",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if session.Project != "bThe Novel/b" {
		t.Fatalf("expected sanitized project, got %q", session.Project)
	}
	if session.Note != "finished draft" {
		t.Fatalf("expected sanitized note, got %q", session.Note)
	}
	if session.ID == "" {
		t.Fatal("expected generated ID")
	}

	stored, err := svc.ListSessions(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(stored) != 1 || stored[0].ID != session.ID {
		t.Fatalf("expected persisted session, got %+v", stored)
	}
}

func TestCreateSessionRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cases := []CreateSessionInput{
		{UserID: "user-1", Date: "2024-13-40", Project: "X", WordCount: 100},
		{UserID: "user-1", Date: "2024-06-18", Project: "", WordCount: 100},
		{UserID: "user-1", Date: "2024-06-18", Project: "X", WordCount: 0},
		{UserID: "user-1", Date: "2024-06-18", Project: "X", WordCount: MaxWordCount + 1},
		{UserID: "", Date: "2024-06-18", Project: "X", WordCount: 100},
	}
	for _, input := range cases {
		if _, err := svc.CreateSession(ctx, input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("input %+v: expected ErrInvalidInput, got %v", input, err)
		}
	}
}

func TestUpdateSessionAppliesPartialChanges(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, CreateSessionInput{
		UserID: "user-1", Date: "2024-06-18", Project: "X", WordCount: 100, Note: "first",
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	words := 250
	updated, err := svc.UpdateSession(ctx, "user-1", created.ID, UpdateSessionInput{WordCount: &words})
	if err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}
	if updated.WordCount != 250 {
		t.Fatalf("expected word count 250, got %d", updated.WordCount)
	}
	if updated.Date != "2024-06-18" || updated.Note != "first" {
		t.Fatalf("expected untouched fields preserved, got %+v", updated)
	}
}

func TestUpdateSessionRejectsInvalidField(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateSession(ctx, CreateSessionInput{
		UserID: "user-1", Date: "2024-06-18", Project: "X", WordCount: 100,
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	badDate := "not-a-date"
	if _, err := svc.UpdateSession(ctx, "user-1", created.ID, UpdateSessionInput{Date: &badDate}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateSessionUnknownID(t *testing.T) {
	svc := newTestService(t)
	words := 100
	if _, err := svc.UpdateSession(context.Background(), "user-1", "missing", UpdateSessionInput{WordCount: &words}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestBulkDeleteSkipsUnknownIDs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	var ids []string
	for _, date := range []string{"2024-06-16", "2024-06-17", "2024-06-18"} {
		s, err := svc.CreateSession(ctx, CreateSessionInput{
			UserID: "user-1", Date: date, Project: "X", WordCount: 100,
		})
		if err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
		ids = append(ids, s.ID)
	}

	deleted, err := svc.BulkDeleteSessions(ctx, "user-1", []string{ids[0], ids[2], "ghost"})
	if err != nil {
		t.Fatalf("BulkDeleteSessions: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("expected 2 deleted, got %d", deleted)
	}

	remaining, err := svc.ListSessions(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(remaining) != 1 || remaining[0].ID != ids[1] {
		t.Fatalf("expected one remaining session, got %+v", remaining)
	}
}

func TestListSessionsOrdersNewestDateFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, date := range []string{"2024-06-10", "2024-06-18", "2024-06-14"} {
		if _, err := svc.CreateSession(ctx, CreateSessionInput{
			UserID: "user-1", Date: date, Project: "X", WordCount: 100,
		}); err != nil {
			t.Fatalf("CreateSession: %v", err)
		}
	}

	sessions, err := svc.ListSessions(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	want := []string{"2024-06-18", "2024-06-14", "2024-06-10"}
	for i, date := range want {
		if sessions[i].Date != date {
			t.Fatalf("position %d: got %s, want %s", i, sessions[i].Date, date)
		}
	}
}

func TestCreateProjectAssignsPaletteColorsInOrder(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	first, err := svc.CreateProject(ctx, "user-1", "The Novel")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	second, err := svc.CreateProject(ctx, "user-1", "Blog Posts")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if first.Color != ProjectColors[0] {
		t.Fatalf("first color: got %s, want %s", first.Color, ProjectColors[0])
	}
	if second.Color != ProjectColors[1] {
		t.Fatalf("second color: got %s, want %s", second.Color, ProjectColors[1])
	}
}

func TestCreateProjectReturnsExistingOnCaseInsensitiveMatch(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateProject(ctx, "user-1", "The Novel")
	if err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	dup, err := svc.CreateProject(ctx, "user-1", "the novel")
	if err != nil {
		t.Fatalf("CreateProject duplicate: %v", err)
	}
	if dup.Name != created.Name || dup.Color != created.Color {
		t.Fatalf("expected existing project back, got %+v", dup)
	}

	projects, err := svc.ListProjects(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("expected 1 project, got %d", len(projects))
	}
}

func TestCreateProjectRejectsInvalidName(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"", "   ", strings.Repeat("x", MaxProjectNameLen+1), "bad‮name"} {
		if _, err := svc.CreateProject(ctx, "user-1", name); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("name %q: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestReconcileProjectsCreatesImplicitProjects(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateProject(ctx, "user-1", "The Novel"); err != nil {
		t.Fatalf("CreateProject: %v", err)
	}
	if _, err := svc.CreateSession(ctx, CreateSessionInput{
		UserID: "user-1", Date: "2024-06-18", Project: "Orphaned Draft", WordCount: 300,
	}); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	projects, err := svc.ReconcileProjects(ctx, "user-1")
	if err != nil {
		t.Fatalf("ReconcileProjects: %v", err)
	}
	if len(projects) != 2 {
		t.Fatalf("expected 2 projects after reconcile, got %d", len(projects))
	}

	orphan, err := svc.ListProjects(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListProjects: %v", err)
	}
	found := false
	for _, p := range orphan {
		if p.Name == "Orphaned Draft" && p.Color != "" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected implicit project with a color")
	}
}

func TestSeedIsIdempotent(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if err := svc.Seed(ctx, "demo"); err != nil {
		t.Fatalf("Seed: %v", err)
	}
	first, err := svc.ListSessions(ctx, "demo")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(first) != len(seedSessions) {
		t.Fatalf("expected %d seeded sessions, got %d", len(seedSessions), len(first))
	}

	if err := svc.Seed(ctx, "demo"); err != nil {
		t.Fatalf("second Seed: %v", err)
	}
	second, err := svc.ListSessions(ctx, "demo")
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(second) != len(first) {
		t.Fatalf("expected reseed to be a no-op, got %d sessions", len(second))
	}
}
