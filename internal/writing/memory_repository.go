package writing

import (
	"context"
	"sort"
	"strings"
	"sync"
)

type memoryRepository struct {
	mu       sync.RWMutex
	sessions map[string]map[string]Session // userID -> sessionID -> Session
	projects map[string]map[string]Project // userID -> lower(name) -> Project
}

// NewMemoryRepository returns an in-memory repository intended for local
// development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		sessions: make(map[string]map[string]Session),
		projects: make(map[string]map[string]Project),
	}
}

func (r *memoryRepository) CreateSession(_ context.Context, session Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userStore, ok := r.sessions[session.UserID]
	if !ok {
		userStore = make(map[string]Session)
		r.sessions[session.UserID] = userStore
	}
	if _, exists := userStore[session.ID]; exists {
		return ErrConflict
	}
	userStore[session.ID] = session
	return nil
}

func (r *memoryRepository) GetSession(_ context.Context, userID, sessionID string) (Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	session, ok := r.sessions[userID][sessionID]
	if !ok {
		return Session{}, ErrNotFound
	}
	return session, nil
}

func (r *memoryRepository) UpdateSession(_ context.Context, session Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userStore, ok := r.sessions[session.UserID]
	if !ok {
		return ErrNotFound
	}
	if _, exists := userStore[session.ID]; !exists {
		return ErrNotFound
	}
	userStore[session.ID] = session
	return nil
}

func (r *memoryRepository) DeleteSession(_ context.Context, userID, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userStore, ok := r.sessions[userID]
	if !ok {
		return ErrNotFound
	}
	if _, exists := userStore[sessionID]; !exists {
		return ErrNotFound
	}
	delete(userStore, sessionID)
	return nil
}

func (r *memoryRepository) DeleteSessions(_ context.Context, userID string, sessionIDs []string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	userStore, ok := r.sessions[userID]
	if !ok {
		return 0, nil
	}
	deleted := 0
	for _, id := range sessionIDs {
		if _, exists := userStore[id]; exists {
			delete(userStore, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *memoryRepository) ListSessions(_ context.Context, userID string) ([]Session, error) {
	r.mu.RLock()
	snapshot := make([]Session, 0, len(r.sessions[userID]))
	for _, session := range r.sessions[userID] {
		snapshot = append(snapshot, session)
	}
	r.mu.RUnlock()

	sortSessions(snapshot)
	return snapshot, nil
}

// sortSessions applies the repository ordering contract: date descending,
// then creation time ascending, then ID as the final deterministic key.
func sortSessions(sessions []Session) {
	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].Date != sessions[j].Date {
			return sessions[i].Date > sessions[j].Date
		}
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.Before(sessions[j].CreatedAt)
		}
		return sessions[i].ID < sessions[j].ID
	})
}

func (r *memoryRepository) CreateProject(_ context.Context, project Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userStore, ok := r.projects[project.UserID]
	if !ok {
		userStore = make(map[string]Project)
		r.projects[project.UserID] = userStore
	}
	key := strings.ToLower(project.Name)
	if _, exists := userStore[key]; exists {
		return ErrConflict
	}
	userStore[key] = project
	return nil
}

func (r *memoryRepository) GetProject(_ context.Context, userID, name string) (Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	project, ok := r.projects[userID][strings.ToLower(name)]
	if !ok {
		return Project{}, ErrNotFound
	}
	return project, nil
}

func (r *memoryRepository) DeleteProject(_ context.Context, userID, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	userStore, ok := r.projects[userID]
	if !ok {
		return ErrNotFound
	}
	key := strings.ToLower(name)
	if _, exists := userStore[key]; !exists {
		return ErrNotFound
	}
	delete(userStore, key)
	return nil
}

func (r *memoryRepository) ListProjects(_ context.Context, userID string) ([]Project, error) {
	r.mu.RLock()
	snapshot := make([]Project, 0, len(r.projects[userID]))
	for _, project := range r.projects[userID] {
		snapshot = append(snapshot, project)
	}
	r.mu.RUnlock()

	sortProjects(snapshot)
	return snapshot, nil
}

// sortProjects orders projects by creation time, then name, so series
// ordering is stable.
func sortProjects(projects []Project) {
	sort.Slice(projects, func(i, j int) bool {
		if !projects[i].CreatedAt.Equal(projects[j].CreatedAt) {
			return projects[i].CreatedAt.Before(projects[j].CreatedAt)
		}
		return strings.ToLower(projects[i].Name) < strings.ToLower(projects[j].Name)
	})
}
