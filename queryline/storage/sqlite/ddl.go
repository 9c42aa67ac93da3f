package sqlite

const ddlBase = `
CREATE TABLE IF NOT EXISTS entities (
  id               INTEGER PRIMARY KEY,
  kind             TEXT NOT NULL DEFAULT '',
  project_id       INTEGER,
  tracker_id       INTEGER,
  status_id        INTEGER,
  priority_id      INTEGER,
  author_id        INTEGER,
  assigned_to_id   INTEGER,
  category_id      INTEGER,
  fixed_version_id INTEGER,
  parent_id        INTEGER,
  subject          TEXT,
  description      TEXT,
  start_date       TEXT,
  due_date         TEXT,
  estimated_hours  REAL,
  spent_hours      REAL,
  done_ratio       INTEGER,
  is_private       INTEGER,
  created_on       TEXT,
  updated_on       TEXT
);
CREATE INDEX IF NOT EXISTS idx_entities_project  ON entities(project_id);
CREATE INDEX IF NOT EXISTS idx_entities_status   ON entities(status_id);
CREATE INDEX IF NOT EXISTS idx_entities_assignee ON entities(assigned_to_id);
CREATE INDEX IF NOT EXISTS idx_entities_updated  ON entities(updated_on);

CREATE TABLE IF NOT EXISTS custom_values (
  entity_id       INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
  custom_field_id INTEGER NOT NULL,
  value           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cv_entity ON custom_values(entity_id, custom_field_id);
CREATE INDEX IF NOT EXISTS idx_cv_field  ON custom_values(custom_field_id, value);

CREATE TABLE IF NOT EXISTS watchers (
  entity_id INTEGER NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
  user_id   INTEGER NOT NULL,
  PRIMARY KEY (entity_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_watchers_user ON watchers(user_id);

CREATE TABLE IF NOT EXISTS projects (
  id        INTEGER PRIMARY KEY,
  name      TEXT NOT NULL,
  parent_id INTEGER,
  status    INTEGER NOT NULL DEFAULT 1,
  is_public INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS memberships (
  project_id INTEGER NOT NULL,
  user_id    INTEGER NOT NULL,
  PRIMARY KEY (project_id, user_id)
);

CREATE TABLE IF NOT EXISTS member_roles (
  project_id INTEGER NOT NULL,
  user_id    INTEGER NOT NULL,
  role_id    INTEGER NOT NULL,
  PRIMARY KEY (project_id, user_id, role_id)
);

CREATE TABLE IF NOT EXISTS saved_queries (
  id         TEXT PRIMARY KEY,
  name       TEXT NOT NULL,
  project_id INTEGER NOT NULL DEFAULT 0,
  user_id    INTEGER NOT NULL,
  visibility TEXT NOT NULL,
  roles_json TEXT NOT NULL DEFAULT '[]',
  spec_json  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saved_project ON saved_queries(project_id);
`
