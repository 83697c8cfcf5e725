package writing

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Service orchestrates the domain operations for sessions and projects.
// It owns input sanitization and validation; repositories only ever see
// well-formed records.
type Service struct {
	repo  Repository
	clock Clock
	ids   IDGenerator
}

// NewService constructs a Service instance with the provided collaborators.
func NewService(repo Repository, clock Clock, ids IDGenerator) (*Service, error) {
	if repo == nil {
		return nil, errors.New("repo is required")
	}
	if clock == nil {
		return nil, errors.New("clock is required")
	}
	if ids == nil {
		return nil, errors.New("id generator is required")
	}
	return &Service{repo: repo, clock: clock, ids: ids}, nil
}

// CreateSession validates, sanitizes, and persists a new writing session.
func (s *Service) CreateSession(ctx context.Context, input CreateSessionInput) (Session, error) {
	input.Project = Sanitize(input.Project)
	input.Note = SanitizeNote(input.Note)

	if err := input.Validate(); err != nil {
		return Session{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	now := s.clock.Now().UTC()
	session := Session{
		ID:        s.ids.NewID(),
		UserID:    input.UserID,
		Date:      input.Date,
		Project:   input.Project,
		WordCount: input.WordCount,
		Note:      input.Note,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.CreateSession(ctx, session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// UpdateSession applies a partial update to an existing session. Every
// provided field is re-sanitized and re-validated; an invalid field fails
// the whole update rather than being silently dropped.
func (s *Service) UpdateSession(ctx context.Context, userID, sessionID string, input UpdateSessionInput) (Session, error) {
	if userID == "" || sessionID == "" {
		return Session{}, ErrNotFound
	}

	if input.Project != nil {
		sanitized := Sanitize(*input.Project)
		input.Project = &sanitized
	}
	if input.Note != nil {
		sanitized := SanitizeNote(*input.Note)
		input.Note = &sanitized
	}

	if err := input.Validate(); err != nil {
		return Session{}, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	session, err := s.repo.GetSession(ctx, userID, sessionID)
	if err != nil {
		return Session{}, err
	}

	if input.Date != nil {
		session.Date = *input.Date
	}
	if input.Project != nil {
		session.Project = *input.Project
	}
	if input.WordCount != nil {
		session.WordCount = *input.WordCount
	}
	if input.Note != nil {
		session.Note = *input.Note
	}
	session.UpdatedAt = s.clock.Now().UTC()

	if err := s.repo.UpdateSession(ctx, session); err != nil {
		return Session{}, err
	}
	return session, nil
}

// DeleteSession removes a single session.
func (s *Service) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if userID == "" || sessionID == "" {
		return ErrNotFound
	}
	return s.repo.DeleteSession(ctx, userID, sessionID)
}

// BulkDeleteSessions removes several sessions at once and reports how many
// were actually deleted. Unknown IDs are skipped, not errors.
func (s *Service) BulkDeleteSessions(ctx context.Context, userID string, sessionIDs []string) (int, error) {
	if userID == "" || len(sessionIDs) == 0 {
		return 0, nil
	}
	return s.repo.DeleteSessions(ctx, userID, sessionIDs)
}

// ListSessions returns the user's sessions, newest date first.
func (s *Service) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	if userID == "" {
		return nil, ErrNotFound
	}
	return s.repo.ListSessions(ctx, userID)
}

// CreateProject registers a new project, assigning the next free palette
// color. When a project with the same name (case-insensitively) already
// exists, the existing project is returned instead.
func (s *Service) CreateProject(ctx context.Context, userID, name string) (Project, error) {
	name = Sanitize(name)
	if userID == "" || !ValidProjectName(name) {
		return Project{}, fmt.Errorf("%w: project name must be 1-%d printable characters", ErrInvalidInput, MaxProjectNameLen)
	}

	if existing, err := s.repo.GetProject(ctx, userID, name); err == nil {
		return existing, nil
	} else if !errors.Is(err, ErrNotFound) {
		return Project{}, err
	}

	existing, err := s.repo.ListProjects(ctx, userID)
	if err != nil {
		return Project{}, err
	}

	project := Project{
		UserID:    userID,
		Name:      name,
		Color:     pickColor(existing),
		CreatedAt: s.clock.Now().UTC(),
	}

	if err := s.repo.CreateProject(ctx, project); err != nil {
		if errors.Is(err, ErrConflict) {
			// Lost a race with a concurrent create; surface the winner.
			return s.repo.GetProject(ctx, userID, name)
		}
		return Project{}, err
	}
	return project, nil
}

// DeleteProject removes a project by name. Sessions referencing it become
// orphaned and are reconciled back into implicit projects on demand.
func (s *Service) DeleteProject(ctx context.Context, userID, name string) error {
	if userID == "" || strings.TrimSpace(name) == "" {
		return ErrNotFound
	}
	return s.repo.DeleteProject(ctx, userID, name)
}

// ListProjects returns the user's projects in creation order.
func (s *Service) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	if userID == "" {
		return nil, ErrNotFound
	}
	return s.repo.ListProjects(ctx, userID)
}

// ReconcileProjects creates implicit projects for any session project name
// that no longer matches a stored project, so orphaned sessions keep a
// series color. It returns the full project list after reconciliation.
func (s *Service) ReconcileProjects(ctx context.Context, userID string) ([]Project, error) {
	sessions, err := s.repo.ListSessions(ctx, userID)
	if err != nil {
		return nil, err
	}
	projects, err := s.repo.ListProjects(ctx, userID)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		known[strings.ToLower(p.Name)] = struct{}{}
	}

	for _, session := range sessions {
		key := strings.ToLower(session.Project)
		if _, ok := known[key]; ok {
			continue
		}
		project := Project{
			UserID:    userID,
			Name:      session.Project,
			Color:     pickColor(projects),
			CreatedAt: s.clock.Now().UTC(),
		}
		if err := s.repo.CreateProject(ctx, project); err != nil && !errors.Is(err, ErrConflict) {
			return nil, err
		}
		projects = append(projects, project)
		known[key] = struct{}{}
	}

	return projects, nil
}
