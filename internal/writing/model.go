package writing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/inkline/writing-service/internal/dateutil"
)

// Session is a single logged writing event. Date is a calendar date string
// (YYYY-MM-DD) representing the day the writing happened, not a timestamp.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Date      string    `json:"date"`
	Project   string    `json:"project"`
	WordCount int       `json:"word_count"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project is a named, colored bucket sessions belong to. Names are unique
// per user, compared case-insensitively.
type Project struct {
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Color     string    `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateSessionInput captures the data required to log a new session.
// Fields are expected to be sanitized before validation.
type CreateSessionInput struct {
	UserID    string
	Date      string
	Project   string
	WordCount int
	Note      string
}

// Validate ensures the input fields meet the domain constraints.
func (i CreateSessionInput) Validate() error {
	var problems []string

	if i.UserID == "" {
		problems = append(problems, "user_id is required")
	}
	if !dateutil.IsValid(i.Date) {
		problems = append(problems, "date must be a valid YYYY-MM-DD date")
	}
	if strings.TrimSpace(i.Project) == "" {
		problems = append(problems, "project is required")
	}
	if !ValidWordCount(i.WordCount) {
		problems = append(problems, fmt.Sprintf("word_count must be between 1 and %d", MaxWordCount))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// UpdateSessionInput describes a partial session update. Nil fields are
// left untouched.
type UpdateSessionInput struct {
	Date      *string
	Project   *string
	WordCount *int
	Note      *string
}

// Validate checks every provided field; absent fields are skipped.
func (i UpdateSessionInput) Validate() error {
	var problems []string

	if i.Date != nil && !dateutil.IsValid(*i.Date) {
		problems = append(problems, "date must be a valid YYYY-MM-DD date")
	}
	if i.Project != nil && strings.TrimSpace(*i.Project) == "" {
		problems = append(problems, "project must not be empty")
	}
	if i.WordCount != nil && !ValidWordCount(*i.WordCount) {
		problems = append(problems, fmt.Sprintf("word_count must be between 1 and %d", MaxWordCount))
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// Repository encapsulates persistence for sessions and projects. Every
// implementation must round-trip each field exactly.
type Repository interface {
	CreateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, userID, sessionID string) (Session, error)
	UpdateSession(ctx context.Context, session Session) error
	DeleteSession(ctx context.Context, userID, sessionID string) error
	DeleteSessions(ctx context.Context, userID string, sessionIDs []string) (int, error)
	// ListSessions returns the user's sessions ordered by date descending,
	// then by creation time ascending. The ordering is part of the contract:
	// analytics tie-breaks depend on a stable iteration order.
	ListSessions(ctx context.Context, userID string) ([]Session, error)

	CreateProject(ctx context.Context, project Project) error
	// GetProject matches the name case-insensitively.
	GetProject(ctx context.Context, userID, name string) (Project, error)
	DeleteProject(ctx context.Context, userID, name string) error
	// ListProjects returns the user's projects in creation order; the order
	// determines default chart series ordering.
	ListProjects(ctx context.Context, userID string) ([]Project, error)
}

// ErrNotFound indicates the requested record does not exist for the user.
var ErrNotFound = errors.New("record not found")

// ErrConflict indicates a duplicate identifier collision.
var ErrConflict = errors.New("record already exists")

// ErrInvalidInput indicates the provided data failed validation.
var ErrInvalidInput = errors.New("invalid input")

// Clock delivers the current time; extracted for deterministic testing.
type Clock interface {
	Now() time.Time
}

// IDGenerator produces unique identifiers for new sessions.
type IDGenerator interface {
	NewID() string
}
