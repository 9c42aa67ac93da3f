package storage

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"

	"github.com/queryline/queryline/queryline"
	qlerrors "github.com/queryline/queryline/queryline/errors"
	"github.com/queryline/queryline/queryline/query"
	"github.com/queryline/queryline/queryline/storage/sqlbuilder"
)

// SavedQueries is the SQL-backed saved query store. Specs are persisted in
// their session JSON form so the on-disk shape matches what the session
// codec round-trips.
type SavedQueries struct {
	db    *sql.DB
	style sqlbuilder.PlaceholderStyle
}

func (s *Store) SavedQueries() *SavedQueries {
	return &SavedQueries{db: s.db, style: s.adapter.PlaceholderStyle()}
}

var _ queryline.SavedQueryStore = (*SavedQueries)(nil)

func (s *SavedQueries) Get(ctx context.Context, id uuid.UUID) (*queryline.SavedQuery, error) {
	b := sqlbuilder.New(s.style)
	q := "SELECT id, name, project_id, user_id, visibility, roles_json, spec_json " +
		"FROM saved_queries WHERE id = " + b.Arg(id.String())
	row := s.db.QueryRowContext(ctx, q, b.Args()...)
	sq, err := scanSavedQuery(row)
	if err == sql.ErrNoRows {
		return nil, qlerrors.NotFound("saved query " + id.String())
	}
	return sq, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedQuery(row rowScanner) (*queryline.SavedQuery, error) {
	var (
		idStr, name, visibility string
		projectID, userID       int64
		rolesJSON, specJSON     []byte
	)
	if err := row.Scan(&idStr, &name, &projectID, &userID, &visibility, &rolesJSON, &specJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, qlerrors.Wrap(qlerrors.KindSQL, "scan saved query", err)
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, qlerrors.Wrap(qlerrors.KindSQL, "saved query id", err)
	}
	spec, err := query.DecodeSession(specJSON)
	if err != nil {
		return nil, err
	}
	sq := &queryline.SavedQuery{
		ID:         id,
		Name:       name,
		ProjectID:  projectID,
		UserID:     userID,
		Visibility: queryline.Visibility(visibility),
		Spec:       *spec,
	}
	if len(rolesJSON) > 0 {
		if err := json.Unmarshal(rolesJSON, &sq.RoleIDs); err != nil {
			return nil, qlerrors.Wrap(qlerrors.KindSQL, "saved query roles", err)
		}
	}
	return sq, nil
}

func (s *SavedQueries) Put(ctx context.Context, q *queryline.SavedQuery) error {
	specJSON, err := query.EncodeSession(&q.Spec)
	if err != nil {
		return err
	}
	rolesJSON, err := json.Marshal(q.RoleIDs)
	if err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "saved query roles", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "begin", err)
	}
	defer tx.Rollback()

	db := sqlbuilder.New(s.style)
	del := "DELETE FROM saved_queries WHERE id = " + db.Arg(q.ID.String())
	if _, err := tx.ExecContext(ctx, del, db.Args()...); err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "replace saved query", err)
	}
	b := sqlbuilder.New(s.style)
	ins := "INSERT INTO saved_queries (id, name, project_id, user_id, visibility, roles_json, spec_json) VALUES (" +
		b.ArgList([]any{q.ID.String(), q.Name, q.ProjectID, q.UserID, string(q.Visibility),
			string(rolesJSON), string(specJSON)}) + ")"
	if _, err := tx.ExecContext(ctx, ins, b.Args()...); err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "insert saved query", err)
	}
	if err := tx.Commit(); err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "commit", err)
	}
	return nil
}

// List returns queries attached to a project plus the global ones, name
// order.
func (s *SavedQueries) List(ctx context.Context, projectID int64) ([]*queryline.SavedQuery, error) {
	b := sqlbuilder.New(s.style)
	q := "SELECT id, name, project_id, user_id, visibility, roles_json, spec_json " +
		"FROM saved_queries WHERE project_id = " + b.Arg(projectID) +
		" OR project_id = 0 ORDER BY name, id"
	rows, err := s.db.QueryContext(ctx, q, b.Args()...)
	if err != nil {
		return nil, qlerrors.Wrap(qlerrors.KindSQL, "list saved queries", err)
	}
	defer rows.Close()
	var out []*queryline.SavedQuery
	for rows.Next() {
		sq, err := scanSavedQuery(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sq)
	}
	if err := rows.Err(); err != nil {
		return nil, qlerrors.Wrap(qlerrors.KindSQL, "list saved queries", err)
	}
	return out, nil
}

func (s *SavedQueries) Delete(ctx context.Context, id uuid.UUID) error {
	b := sqlbuilder.New(s.style)
	q := "DELETE FROM saved_queries WHERE id = " + b.Arg(id.String())
	res, err := s.db.ExecContext(ctx, q, b.Args()...)
	if err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "delete saved query", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return qlerrors.NotFound("saved query " + id.String())
	}
	return nil
}
