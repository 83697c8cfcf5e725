package writing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		project TEXT NOT NULL,
		word_count INTEGER NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_sessions_user_date ON sessions(user_id, date);

	CREATE TABLE IF NOT EXISTS projects (
		user_id TEXT NOT NULL,
		name TEXT NOT NULL COLLATE NOCASE,
		color TEXT NOT NULL,
		created_at TEXT NOT NULL,
		PRIMARY KEY (user_id, name)
	);
`

type sqliteRepository struct {
	conn *sql.DB
}

// NewSQLiteRepository opens (creating if necessary) a SQLite database at
// the given path and initializes the schema. The returned cleanup closes
// the connection.
func NewSQLiteRepository(path string) (Repository, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create database directory: %w", err)
	}

	// WAL mode allows concurrent readers alongside the single writer.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	conn.SetMaxOpenConns(1) // SQLite supports only one writer
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(time.Hour)

	if _, err := conn.Exec(sqliteSchema); err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("initialize schema: %w", err)
	}

	cleanup := func() { _ = conn.Close() }
	return &sqliteRepository{conn: conn}, cleanup, nil
}

func (r *sqliteRepository) CreateSession(ctx context.Context, session Session) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, date, project, word_count, note, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		session.ID, session.UserID, session.Date, session.Project, session.WordCount,
		session.Note, session.CreatedAt.UTC().Format(time.RFC3339Nano), session.UpdatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrConflict
	}
	return err
}

func (r *sqliteRepository) GetSession(ctx context.Context, userID, sessionID string) (Session, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT id, user_id, date, project, word_count, note, created_at, updated_at
		 FROM sessions WHERE user_id = ? AND id = ?`, userID, sessionID)
	return scanSession(row)
}

func (r *sqliteRepository) UpdateSession(ctx context.Context, session Session) error {
	res, err := r.conn.ExecContext(ctx,
		`UPDATE sessions SET date = ?, project = ?, word_count = ?, note = ?, updated_at = ?
		 WHERE user_id = ? AND id = ?`,
		session.Date, session.Project, session.WordCount, session.Note,
		session.UpdatedAt.UTC().Format(time.RFC3339Nano), session.UserID, session.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) DeleteSession(ctx context.Context, userID, sessionID string) error {
	res, err := r.conn.ExecContext(ctx,
		`DELETE FROM sessions WHERE user_id = ? AND id = ?`, userID, sessionID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) DeleteSessions(ctx context.Context, userID string, sessionIDs []string) (int, error) {
	if len(sessionIDs) == 0 {
		return 0, nil
	}

	placeholders := strings.Repeat("?,", len(sessionIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, 0, len(sessionIDs)+1)
	args = append(args, userID)
	for _, id := range sessionIDs {
		args = append(args, id)
	}

	res, err := r.conn.ExecContext(ctx,
		fmt.Sprintf(`DELETE FROM sessions WHERE user_id = ? AND id IN (%s)`, placeholders), args...)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(affected), nil
}

func (r *sqliteRepository) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT id, user_id, date, project, word_count, note, created_at, updated_at
		 FROM sessions WHERE user_id = ?
		 ORDER BY date DESC, created_at ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]Session, 0)
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (Session, error) {
	var session Session
	var createdAt, updatedAt string
	err := row.Scan(&session.ID, &session.UserID, &session.Date, &session.Project,
		&session.WordCount, &session.Note, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Session{}, fmt.Errorf("parse created_at: %w", err)
	}
	if session.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return Session{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return session, nil
}

func (r *sqliteRepository) CreateProject(ctx context.Context, project Project) error {
	_, err := r.conn.ExecContext(ctx,
		`INSERT INTO projects (user_id, name, color, created_at) VALUES (?, ?, ?, ?)`,
		project.UserID, project.Name, project.Color, project.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return ErrConflict
	}
	return err
}

func (r *sqliteRepository) GetProject(ctx context.Context, userID, name string) (Project, error) {
	row := r.conn.QueryRowContext(ctx,
		`SELECT user_id, name, color, created_at FROM projects WHERE user_id = ? AND name = ?`,
		userID, name)

	var project Project
	var createdAt string
	err := row.Scan(&project.UserID, &project.Name, &project.Color, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, err
	}
	if project.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Project{}, fmt.Errorf("parse created_at: %w", err)
	}
	return project, nil
}

func (r *sqliteRepository) DeleteProject(ctx context.Context, userID, name string) error {
	res, err := r.conn.ExecContext(ctx,
		`DELETE FROM projects WHERE user_id = ? AND name = ?`, userID, name)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteRepository) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	rows, err := r.conn.QueryContext(ctx,
		`SELECT user_id, name, color, created_at FROM projects WHERE user_id = ?
		 ORDER BY created_at ASC, name ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := make([]Project, 0)
	for rows.Next() {
		var project Project
		var createdAt string
		if err := rows.Scan(&project.UserID, &project.Name, &project.Color, &createdAt); err != nil {
			return nil, err
		}
		if project.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}
