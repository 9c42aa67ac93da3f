package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/queryline/queryline/queryline/entity"
	qlerrors "github.com/queryline/queryline/queryline/errors"
	"github.com/queryline/queryline/queryline/planner"
	"github.com/queryline/queryline/queryline/query"
	"github.com/queryline/queryline/queryline/storage/sqlbuilder"
)

// Store is a SQL-backed entity source. It satisfies the engine's Source
// contract: Fetch may return rows the caller's predicate would reject (SQL
// collation quirks, mostly), the engine re-checks everything in memory.
type Store struct {
	adapter Adapter
	db      *sql.DB
	log     *logrus.Logger
}

// Open connects through the adapter and ensures the schema exists.
func Open(ctx context.Context, a Adapter, log *logrus.Logger) (*Store, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	db, err := a.Connect(ctx)
	if err != nil {
		return nil, qlerrors.Wrap(qlerrors.KindSQL, "connect", err)
	}
	if err := a.EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, qlerrors.Wrap(qlerrors.KindSQL, "ensure schema", err)
	}
	return &Store{adapter: a, db: db, log: log}, nil
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error {
	err := s.db.Close()
	if aerr := s.adapter.Close(); err == nil {
		err = aerr
	}
	return err
}

const entitySelect = `SELECT id, kind, project_id, tracker_id, status_id, priority_id,
	author_id, assigned_to_id, category_id, fixed_version_id, parent_id,
	subject, description, start_date, due_date,
	estimated_hours, spent_hours, done_ratio, is_private, created_on, updated_on
FROM entities`

// Fetch selects entities matching the compiled predicate, in id order, with
// custom values and watchers attached.
func (s *Store) Fetch(ctx context.Context, pred planner.Node) ([]*entity.Entity, error) {
	b := sqlbuilder.New(s.adapter.PlaceholderStyle())
	where, err := WhereSQL(pred, b)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	q := entitySelect + " WHERE " + where + " ORDER BY id"
	rows, err := s.db.QueryContext(ctx, q, b.Args()...)
	if err != nil {
		return nil, qlerrors.Wrap(qlerrors.KindSQL, "fetch entities", err)
	}
	defer rows.Close()

	var out []*entity.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, qlerrors.Wrap(qlerrors.KindSQL, "fetch entities", err)
	}
	if err := s.attachCustomValues(ctx, out); err != nil {
		return nil, err
	}
	if err := s.attachWatchers(ctx, out); err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"rows":     len(out),
		"duration": time.Since(start),
	}).Debug("entity fetch")
	return out, nil
}

func scanEntity(rows *sql.Rows) (*entity.Entity, error) {
	var (
		id                                   int64
		kind                                 string
		projectID, trackerID, statusID       sql.NullInt64
		priorityID, authorID, assignedToID   sql.NullInt64
		categoryID, fixedVersionID, parentID sql.NullInt64
		subject, description                 sql.NullString
		startDate, dueDate                   sql.NullString
		estimatedHours, spentHours           sql.NullFloat64
		doneRatio                            sql.NullInt64
		isPrivate                            sql.NullInt64
		createdOn, updatedOn                 sql.NullString
	)
	if err := rows.Scan(&id, &kind, &projectID, &trackerID, &statusID,
		&priorityID, &authorID, &assignedToID, &categoryID, &fixedVersionID,
		&parentID, &subject, &description, &startDate, &dueDate,
		&estimatedHours, &spentHours, &doneRatio, &isPrivate,
		&createdOn, &updatedOn); err != nil {
		return nil, qlerrors.Wrap(qlerrors.KindSQL, "scan entity", err)
	}
	e := &entity.Entity{ID: id, Kind: kind, Values: make(map[string]any)}
	putInt := func(name string, v sql.NullInt64) {
		if v.Valid {
			e.Values[name] = v.Int64
		}
	}
	putInt("project_id", projectID)
	putInt("tracker_id", trackerID)
	putInt("status_id", statusID)
	putInt("priority_id", priorityID)
	putInt("author_id", authorID)
	putInt("assigned_to_id", assignedToID)
	putInt("category_id", categoryID)
	putInt("fixed_version_id", fixedVersionID)
	putInt("parent_id", parentID)
	putInt("done_ratio", doneRatio)
	if subject.Valid {
		e.Values["subject"] = subject.String
	}
	if description.Valid {
		e.Values["description"] = description.String
	}
	if estimatedHours.Valid {
		e.Values["estimated_hours"] = estimatedHours.Float64
	}
	if spentHours.Valid {
		e.Values["spent_hours"] = spentHours.Float64
	}
	if isPrivate.Valid {
		e.Values["is_private"] = isPrivate.Int64 != 0
	}
	putDate := func(name string, v sql.NullString) {
		if !v.Valid || v.String == "" {
			return
		}
		if t, ok := parseStoredTime(v.String); ok {
			e.Values[name] = t
		}
	}
	putDate("start_date", startDate)
	putDate("due_date", dueDate)
	putDate("created_on", createdOn)
	putDate("updated_on", updatedOn)
	return e, nil
}

// parseStoredTime accepts both plain dates and RFC 3339 timestamps; both
// forms appear in the timestamp columns depending on who wrote the row.
func parseStoredTime(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(query.DateLayout, s); err == nil {
		return t, true
	}
	return time.Time{}, false
}

func (s *Store) attachCustomValues(ctx context.Context, entities []*entity.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	byID := make(map[int64]*entity.Entity, len(entities))
	ids := make([]any, len(entities))
	for i, e := range entities {
		byID[e.ID] = e
		ids[i] = e.ID
	}
	b := sqlbuilder.New(s.adapter.PlaceholderStyle())
	q := "SELECT entity_id, custom_field_id, value FROM custom_values WHERE entity_id IN (" +
		b.ArgList(ids) + ") ORDER BY entity_id, custom_field_id, value"
	rows, err := s.db.QueryContext(ctx, q, b.Args()...)
	if err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "fetch custom values", err)
	}
	defer rows.Close()
	for rows.Next() {
		var entityID, fieldID int64
		var value string
		if err := rows.Scan(&entityID, &fieldID, &value); err != nil {
			return qlerrors.Wrap(qlerrors.KindSQL, "scan custom value", err)
		}
		e := byID[entityID]
		if e == nil {
			continue
		}
		if e.CustomValues == nil {
			e.CustomValues = make(map[int64][]string)
		}
		e.CustomValues[fieldID] = append(e.CustomValues[fieldID], value)
	}
	return rows.Err()
}

func (s *Store) attachWatchers(ctx context.Context, entities []*entity.Entity) error {
	if len(entities) == 0 {
		return nil
	}
	byID := make(map[int64]*entity.Entity, len(entities))
	ids := make([]any, len(entities))
	for i, e := range entities {
		byID[e.ID] = e
		ids[i] = e.ID
	}
	b := sqlbuilder.New(s.adapter.PlaceholderStyle())
	q := "SELECT entity_id, user_id FROM watchers WHERE entity_id IN (" +
		b.ArgList(ids) + ") ORDER BY entity_id, user_id"
	rows, err := s.db.QueryContext(ctx, q, b.Args()...)
	if err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "fetch watchers", err)
	}
	defer rows.Close()
	for rows.Next() {
		var entityID, userID int64
		if err := rows.Scan(&entityID, &userID); err != nil {
			return qlerrors.Wrap(qlerrors.KindSQL, "scan watcher", err)
		}
		if e := byID[entityID]; e != nil {
			e.WatcherIDs = append(e.WatcherIDs, userID)
		}
	}
	return rows.Err()
}

// PutEntity replaces an entity row and its custom values and watchers.
func (s *Store) PutEntity(ctx context.Context, e *entity.Entity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "begin", err)
	}
	defer tx.Rollback()
	if err := s.putEntityTx(ctx, tx, e); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "commit", err)
	}
	return nil
}

// PutEntities writes a batch in one transaction.
func (s *Store) PutEntities(ctx context.Context, entities []*entity.Entity) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "begin", err)
	}
	defer tx.Rollback()
	for _, e := range entities {
		if err := s.putEntityTx(ctx, tx, e); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "commit", err)
	}
	s.log.WithField("count", len(entities)).Debug("entities stored")
	return nil
}

func (s *Store) putEntityTx(ctx context.Context, tx *sql.Tx, e *entity.Entity) error {
	style := s.adapter.PlaceholderStyle()
	for _, del := range []string{
		"DELETE FROM custom_values WHERE entity_id = ",
		"DELETE FROM watchers WHERE entity_id = ",
		"DELETE FROM entities WHERE id = ",
	} {
		b := sqlbuilder.New(style)
		q := del + b.Arg(e.ID)
		if _, err := tx.ExecContext(ctx, q, b.Args()...); err != nil {
			return qlerrors.Wrap(qlerrors.KindSQL, "delete entity", err)
		}
	}

	b := sqlbuilder.New(style)
	vals := []any{
		e.ID, e.Kind,
		nullInt(e, "project_id"), nullInt(e, "tracker_id"), nullInt(e, "status_id"),
		nullInt(e, "priority_id"), nullInt(e, "author_id"), nullInt(e, "assigned_to_id"),
		nullInt(e, "category_id"), nullInt(e, "fixed_version_id"), nullInt(e, "parent_id"),
		nullStr(e, "subject"), nullStr(e, "description"),
		nullTime(e, "start_date", query.DateLayout), nullTime(e, "due_date", query.DateLayout),
		nullFloat(e, "estimated_hours"), nullFloat(e, "spent_hours"),
		nullInt(e, "done_ratio"), boolInt(e, "is_private"),
		nullTime(e, "created_on", time.RFC3339), nullTime(e, "updated_on", time.RFC3339),
	}
	q := `INSERT INTO entities (id, kind, project_id, tracker_id, status_id, priority_id,
		author_id, assigned_to_id, category_id, fixed_version_id, parent_id,
		subject, description, start_date, due_date,
		estimated_hours, spent_hours, done_ratio, is_private, created_on, updated_on)
	VALUES (` + b.ArgList(vals) + `)`
	if _, err := tx.ExecContext(ctx, q, b.Args()...); err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "insert entity", err)
	}

	for fieldID, values := range e.CustomValues {
		for _, v := range values {
			cb := sqlbuilder.New(style)
			cq := "INSERT INTO custom_values (entity_id, custom_field_id, value) VALUES (" +
				cb.ArgList([]any{e.ID, fieldID, v}) + ")"
			if _, err := tx.ExecContext(ctx, cq, cb.Args()...); err != nil {
				return qlerrors.Wrap(qlerrors.KindSQL, "insert custom value", err)
			}
		}
	}
	for _, userID := range e.WatcherIDs {
		wb := sqlbuilder.New(style)
		wq := "INSERT INTO watchers (entity_id, user_id) VALUES (" +
			wb.ArgList([]any{e.ID, userID}) + ")"
		if _, err := tx.ExecContext(ctx, wq, wb.Args()...); err != nil {
			return qlerrors.Wrap(qlerrors.KindSQL, "insert watcher", err)
		}
	}
	return nil
}

func nullInt(e *entity.Entity, name string) any {
	if v, ok := e.Int64(name); ok {
		return v
	}
	return nil
}

func nullStr(e *entity.Entity, name string) any {
	if v, ok := e.String(name); ok {
		return v
	}
	return nil
}

func nullFloat(e *entity.Entity, name string) any {
	if v, ok := e.Float64(name); ok {
		return v
	}
	return nil
}

// boolInt stores unset booleans as 0 so negated conditions behave the same
// in SQL and in-memory evaluation.
func boolInt(e *entity.Entity, name string) any {
	v, ok := e.Value(name)
	if !ok {
		return int64(0)
	}
	if b, ok := v.(bool); ok && b {
		return int64(1)
	}
	return int64(0)
}

func nullTime(e *entity.Entity, name, layout string) any {
	v, ok := e.Value(name)
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return t.Format(layout)
	case string:
		return t
	}
	return nil
}

// SeedRef mirrors the project and membership reference data into the tables
// the compiled SQL consults. Safe to call repeatedly; it replaces the
// previous contents.
func (s *Store) SeedRef(ctx context.Context, ref *entity.RefData) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "begin", err)
	}
	defer tx.Rollback()
	style := s.adapter.PlaceholderStyle()

	for _, table := range []string{"member_roles", "memberships", "projects"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return qlerrors.Wrap(qlerrors.KindSQL, "clear "+table, err)
		}
	}
	for _, p := range ref.Projects {
		b := sqlbuilder.New(style)
		var parent any
		if p.ParentID != 0 {
			parent = p.ParentID
		}
		public := int64(0)
		if p.Public {
			public = 1
		}
		q := "INSERT INTO projects (id, name, parent_id, status, is_public) VALUES (" +
			b.ArgList([]any{p.ID, p.Name, parent, p.Status, public}) + ")"
		if _, err := tx.ExecContext(ctx, q, b.Args()...); err != nil {
			return qlerrors.Wrap(qlerrors.KindSQL, "insert project", err)
		}
	}
	for _, m := range ref.Memberships {
		b := sqlbuilder.New(style)
		q := "INSERT INTO memberships (project_id, user_id) VALUES (" +
			b.ArgList([]any{m.ProjectID, m.UserID}) + ")"
		if _, err := tx.ExecContext(ctx, q, b.Args()...); err != nil {
			return qlerrors.Wrap(qlerrors.KindSQL, "insert membership", err)
		}
		for _, roleID := range m.RoleIDs {
			rb := sqlbuilder.New(style)
			rq := "INSERT INTO member_roles (project_id, user_id, role_id) VALUES (" +
				rb.ArgList([]any{m.ProjectID, m.UserID, roleID}) + ")"
			if _, err := tx.ExecContext(ctx, rq, rb.Args()...); err != nil {
				return qlerrors.Wrap(qlerrors.KindSQL, "insert member role", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return qlerrors.Wrap(qlerrors.KindSQL, "commit", err)
	}
	s.log.WithFields(logrus.Fields{
		"projects":    len(ref.Projects),
		"memberships": len(ref.Memberships),
	}).Debug("reference data seeded")
	return nil
}
