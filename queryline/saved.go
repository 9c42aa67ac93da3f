package queryline

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/queryline/queryline/queryline/entity"
	qlerrors "github.com/queryline/queryline/queryline/errors"
	"github.com/queryline/queryline/queryline/query"
)

// Visibility controls who may load a saved query.
type Visibility string

const (
	VisibilityPrivate Visibility = "private"
	VisibilityRoles   Visibility = "roles"
	VisibilityPublic  Visibility = "public"
)

// ManagePublicQueries is the permission required for non-private visibility.
const ManagePublicQueries = "manage_public_queries"

// SavedQuery is a named, persisted spec owned by a user, optionally attached
// to a project. Persistence is last-writer-wins.
type SavedQuery struct {
	ID         uuid.UUID  `json:"id"`
	Name       string     `json:"name"`
	ProjectID  int64      `json:"project_id,omitempty"` // 0 = global
	UserID     int64      `json:"user_id"`
	Visibility Visibility `json:"visibility"`
	RoleIDs    []int64    `json:"role_ids,omitempty"`
	Spec       query.Spec `json:"spec"`
}

// Sanitize forces the query private when the owner lacks the
// manage-public-queries permission, regardless of the requested visibility.
func (q *SavedQuery) Sanitize(perms Permissions) {
	if !perms.Allowed(ManagePublicQueries) {
		q.Visibility = VisibilityPrivate
		q.RoleIDs = nil
	}
	if q.Visibility != VisibilityRoles {
		q.RoleIDs = nil
	}
}

// VisibleTo reports whether the user may load the query.
func (q *SavedQuery) VisibleTo(u *entity.User, ref *entity.RefData) bool {
	if u != nil && u.Admin {
		return true
	}
	switch q.Visibility {
	case VisibilityPublic:
		return true
	case VisibilityRoles:
		if u == nil {
			return false
		}
		if q.UserID == u.ID {
			return true
		}
		held := ref.MemberRoles(q.ProjectID, u.ID)
		for _, want := range q.RoleIDs {
			for _, have := range held {
				if want == have {
					return true
				}
			}
		}
		return false
	default:
		return u != nil && q.UserID == u.ID
	}
}

// EditableBy reports whether the user may change or delete the query.
func (q *SavedQuery) EditableBy(u *entity.User, perms Permissions) bool {
	if u == nil {
		return false
	}
	if u.Admin {
		return true
	}
	if q.Visibility == VisibilityPrivate {
		return q.UserID == u.ID
	}
	// public queries for all projects are admin territory
	return q.ProjectID != 0 && perms.Allowed(ManagePublicQueries)
}

// SavedQueryStore persists saved queries.
type SavedQueryStore interface {
	Get(ctx context.Context, id uuid.UUID) (*SavedQuery, error)
	Put(ctx context.Context, q *SavedQuery) error
	List(ctx context.Context, projectID int64) ([]*SavedQuery, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// LoadSavedQuery fetches a query and enforces access: an unknown id is
// not-found, an inaccessible one is forbidden.
func LoadSavedQuery(ctx context.Context, store SavedQueryStore, id uuid.UUID, u *entity.User, ref *entity.RefData) (*SavedQuery, error) {
	q, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !q.VisibleTo(u, ref) {
		return nil, qlerrors.Forbidden("query is not visible to the current user")
	}
	return q, nil
}

// MemorySavedQueryStore is the in-process store used by tests and the CLI
// when no database is configured.
type MemorySavedQueryStore struct {
	mu      sync.RWMutex
	queries map[uuid.UUID]*SavedQuery
}

func NewMemorySavedQueryStore() *MemorySavedQueryStore {
	return &MemorySavedQueryStore{queries: map[uuid.UUID]*SavedQuery{}}
}

func (s *MemorySavedQueryStore) Get(_ context.Context, id uuid.UUID) (*SavedQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q, ok := s.queries[id]
	if !ok {
		return nil, qlerrors.NotFound("saved query not found: " + id.String())
	}
	cp := *q
	return &cp, nil
}

func (s *MemorySavedQueryStore) Put(_ context.Context, q *SavedQuery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	cp := *q
	s.queries[q.ID] = &cp
	return nil
}

func (s *MemorySavedQueryStore) List(_ context.Context, projectID int64) ([]*SavedQuery, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*SavedQuery
	for _, q := range s.queries {
		if projectID == 0 || q.ProjectID == projectID {
			cp := *q
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *MemorySavedQueryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.queries[id]; !ok {
		return qlerrors.NotFound("saved query not found: " + id.String())
	}
	delete(s.queries, id)
	return nil
}
