package writing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// fileSnapshot is the on-disk JSON shape of the file-backed store.
type fileSnapshot struct {
	Sessions []Session `json:"sessions"`
	Projects []Project `json:"projects"`
}

// fileRepository keeps the whole dataset in memory and persists a JSON
// snapshot on every mutation. An fsnotify watcher reloads the snapshot
// when the file changes externally, so a second process (or a hand edit)
// is picked up without a restart.
type fileRepository struct {
	path    string
	mem     *memoryRepository
	watcher *fsnotify.Watcher
	logger  *slog.Logger
	done    chan struct{}
}

// NewFileRepository opens (creating if necessary) a JSON-snapshot-backed
// repository at the given path. The returned cleanup stops the file
// watcher.
func NewFileRepository(path string, logger *slog.Logger) (Repository, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create store directory: %w", err)
	}

	r := &fileRepository{
		path:   path,
		mem:    NewMemoryRepository().(*memoryRepository),
		logger: logger,
		done:   make(chan struct{}),
	}

	if err := r.reload(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("load snapshot: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("start watcher: %w", err)
	}
	// Watch the directory: atomic saves replace the file by rename, which
	// drops a watch registered on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		_ = watcher.Close()
		return nil, nil, fmt.Errorf("watch store directory: %w", err)
	}
	r.watcher = watcher
	go r.watch()

	cleanup := func() {
		close(r.done)
		_ = watcher.Close()
	}
	return r, cleanup, nil
}

func (r *fileRepository) watch() {
	for {
		select {
		case <-r.done:
			return
		case event, ok := <-r.watcher.Events:
			if !ok {
				return
			}
			if event.Name != r.path || !event.Op.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if err := r.reload(); err != nil {
				r.logger.Warn("snapshot reload failed", "path", r.path, "error", err)
			}
		case err, ok := <-r.watcher.Errors:
			if !ok {
				return
			}
			r.logger.Warn("snapshot watcher error", "path", r.path, "error", err)
		}
	}
}

// reload replaces the in-memory state with the on-disk snapshot, dropping
// malformed records the same way the stores validate on write.
func (r *fileRepository) reload() error {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return err
	}

	var snapshot fileSnapshot
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return fmt.Errorf("decode snapshot: %w", err)
	}

	sessions := make([]Session, 0, len(snapshot.Sessions))
	for _, s := range snapshot.Sessions {
		if s.ID == "" || s.UserID == "" || !ValidWordCount(s.WordCount) {
			continue
		}
		sessions = append(sessions, s)
	}

	// Deduplicate projects by lower-cased name per user; first one wins.
	seen := make(map[string]struct{}, len(snapshot.Projects))
	projects := make([]Project, 0, len(snapshot.Projects))
	for _, p := range snapshot.Projects {
		if p.UserID == "" || strings.TrimSpace(p.Name) == "" {
			continue
		}
		key := p.UserID + "\x00" + strings.ToLower(p.Name)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		projects = append(projects, p)
	}

	r.mem.restore(sessions, projects)
	return nil
}

// persist writes the snapshot to a temp file and renames it into place so
// readers never observe a partial write.
func (r *fileRepository) persist() error {
	sessions, projects := r.mem.dump()
	raw, err := json.MarshalIndent(fileSnapshot{Sessions: sessions, Projects: projects}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".inkline-*.json")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace snapshot: %w", err)
	}
	return nil
}

func (r *fileRepository) CreateSession(ctx context.Context, session Session) error {
	if err := r.mem.CreateSession(ctx, session); err != nil {
		return err
	}
	return r.persist()
}

func (r *fileRepository) GetSession(ctx context.Context, userID, sessionID string) (Session, error) {
	return r.mem.GetSession(ctx, userID, sessionID)
}

func (r *fileRepository) UpdateSession(ctx context.Context, session Session) error {
	if err := r.mem.UpdateSession(ctx, session); err != nil {
		return err
	}
	return r.persist()
}

func (r *fileRepository) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if err := r.mem.DeleteSession(ctx, userID, sessionID); err != nil {
		return err
	}
	return r.persist()
}

func (r *fileRepository) DeleteSessions(ctx context.Context, userID string, sessionIDs []string) (int, error) {
	deleted, err := r.mem.DeleteSessions(ctx, userID, sessionIDs)
	if err != nil || deleted == 0 {
		return deleted, err
	}
	return deleted, r.persist()
}

func (r *fileRepository) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	return r.mem.ListSessions(ctx, userID)
}

func (r *fileRepository) CreateProject(ctx context.Context, project Project) error {
	if err := r.mem.CreateProject(ctx, project); err != nil {
		return err
	}
	return r.persist()
}

func (r *fileRepository) GetProject(ctx context.Context, userID, name string) (Project, error) {
	return r.mem.GetProject(ctx, userID, name)
}

func (r *fileRepository) DeleteProject(ctx context.Context, userID, name string) error {
	if err := r.mem.DeleteProject(ctx, userID, name); err != nil {
		return err
	}
	return r.persist()
}

func (r *fileRepository) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	return r.mem.ListProjects(ctx, userID)
}

// dump returns a deterministic copy of the full dataset for persistence.
func (r *memoryRepository) dump() ([]Session, []Project) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]Session, 0)
	for _, userStore := range r.sessions {
		for _, session := range userStore {
			sessions = append(sessions, session)
		}
	}
	projects := make([]Project, 0)
	for _, userStore := range r.projects {
		for _, project := range userStore {
			projects = append(projects, project)
		}
	}

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].UserID != sessions[j].UserID {
			return sessions[i].UserID < sessions[j].UserID
		}
		return sessions[i].ID < sessions[j].ID
	})
	sort.Slice(projects, func(i, j int) bool {
		if projects[i].UserID != projects[j].UserID {
			return projects[i].UserID < projects[j].UserID
		}
		return strings.ToLower(projects[i].Name) < strings.ToLower(projects[j].Name)
	})
	return sessions, projects
}

// restore replaces the full dataset.
func (r *memoryRepository) restore(sessions []Session, projects []Project) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions = make(map[string]map[string]Session)
	for _, session := range sessions {
		userStore, ok := r.sessions[session.UserID]
		if !ok {
			userStore = make(map[string]Session)
			r.sessions[session.UserID] = userStore
		}
		userStore[session.ID] = session
	}

	r.projects = make(map[string]map[string]Project)
	for _, project := range projects {
		userStore, ok := r.projects[project.UserID]
		if !ok {
			userStore = make(map[string]Project)
			r.projects[project.UserID] = userStore
		}
		userStore[strings.ToLower(project.Name)] = project
	}
}
