package writing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository instantiates a Firestore-backed repository.
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

const (
	sessionsCollection = "sessions"
	projectsCollection = "projects"
)

func (r *firestoreRepository) sessionCollection(userID string) *firestore.CollectionRef {
	return r.client.Collection("users").Doc(userID).Collection(sessionsCollection)
}

func (r *firestoreRepository) projectCollection(userID string) *firestore.CollectionRef {
	return r.client.Collection("users").Doc(userID).Collection(projectsCollection)
}

// Project documents are keyed by the lower-cased name so the
// case-insensitive uniqueness invariant is enforced by the store itself.
func projectDocID(name string) string {
	return strings.ToLower(name)
}

func (r *firestoreRepository) CreateSession(ctx context.Context, session Session) error {
	data := map[string]any{
		"date":       session.Date,
		"project":    session.Project,
		"word_count": session.WordCount,
		"note":       session.Note,
		"created_at": session.CreatedAt,
		"updated_at": session.UpdatedAt,
	}

	_, err := r.sessionCollection(session.UserID).Doc(session.ID).Create(ctx, data)
	if status.Code(err) == codes.AlreadyExists {
		return ErrConflict
	}
	return err
}

func (r *firestoreRepository) GetSession(ctx context.Context, userID, sessionID string) (Session, error) {
	doc, err := r.sessionCollection(userID).Doc(sessionID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, err
	}
	return snapshotToSession(userID, doc)
}

func (r *firestoreRepository) UpdateSession(ctx context.Context, session Session) error {
	_, err := r.sessionCollection(session.UserID).Doc(session.ID).Update(ctx, []firestore.Update{
		{Path: "date", Value: session.Date},
		{Path: "project", Value: session.Project},
		{Path: "word_count", Value: session.WordCount},
		{Path: "note", Value: session.Note},
		{Path: "updated_at", Value: session.UpdatedAt},
	})
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func (r *firestoreRepository) DeleteSession(ctx context.Context, userID, sessionID string) error {
	ref := r.sessionCollection(userID).Doc(sessionID)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return err
	}
	_, err := ref.Delete(ctx)
	return err
}

func (r *firestoreRepository) DeleteSessions(ctx context.Context, userID string, sessionIDs []string) (int, error) {
	deleted := 0
	for _, id := range sessionIDs {
		err := r.DeleteSession(ctx, userID, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (r *firestoreRepository) ListSessions(ctx context.Context, userID string) ([]Session, error) {
	iter := r.sessionCollection(userID).
		OrderBy("date", firestore.Desc).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	sessions := make([]Session, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		session, err := snapshotToSession(userID, doc)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, nil
}

func snapshotToSession(userID string, doc *firestore.DocumentSnapshot) (Session, error) {
	data := doc.Data()

	session := Session{
		ID:     doc.Ref.ID,
		UserID: userID,
	}
	var ok bool
	if session.Date, ok = data["date"].(string); !ok {
		return Session{}, fmt.Errorf("session %s: missing date", doc.Ref.ID)
	}
	if session.Project, ok = data["project"].(string); !ok {
		return Session{}, fmt.Errorf("session %s: missing project", doc.Ref.ID)
	}
	if count, ok := data["word_count"].(int64); ok {
		session.WordCount = int(count)
	} else {
		return Session{}, fmt.Errorf("session %s: missing word_count", doc.Ref.ID)
	}
	session.Note, _ = data["note"].(string)
	if t, ok := data["created_at"].(time.Time); ok {
		session.CreatedAt = t
	}
	if t, ok := data["updated_at"].(time.Time); ok {
		session.UpdatedAt = t
	}
	return session, nil
}

func (r *firestoreRepository) CreateProject(ctx context.Context, project Project) error {
	data := map[string]any{
		"name":       project.Name,
		"color":      project.Color,
		"created_at": project.CreatedAt,
	}

	_, err := r.projectCollection(project.UserID).Doc(projectDocID(project.Name)).Create(ctx, data)
	if status.Code(err) == codes.AlreadyExists {
		return ErrConflict
	}
	return err
}

func (r *firestoreRepository) GetProject(ctx context.Context, userID, name string) (Project, error) {
	doc, err := r.projectCollection(userID).Doc(projectDocID(name)).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Project{}, ErrNotFound
	}
	if err != nil {
		return Project{}, err
	}
	return snapshotToProject(userID, doc)
}

func (r *firestoreRepository) DeleteProject(ctx context.Context, userID, name string) error {
	ref := r.projectCollection(userID).Doc(projectDocID(name))
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		return err
	}
	_, err := ref.Delete(ctx)
	return err
}

func (r *firestoreRepository) ListProjects(ctx context.Context, userID string) ([]Project, error) {
	iter := r.projectCollection(userID).
		OrderBy("created_at", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	projects := make([]Project, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		project, err := snapshotToProject(userID, doc)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}
	return projects, nil
}

func snapshotToProject(userID string, doc *firestore.DocumentSnapshot) (Project, error) {
	data := doc.Data()

	project := Project{UserID: userID}
	var ok bool
	if project.Name, ok = data["name"].(string); !ok {
		return Project{}, fmt.Errorf("project %s: missing name", doc.Ref.ID)
	}
	project.Color, _ = data["color"].(string)
	if t, ok := data["created_at"].(time.Time); ok {
		project.CreatedAt = t
	}
	return project, nil
}
