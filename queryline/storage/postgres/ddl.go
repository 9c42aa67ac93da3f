package postgres

const ddlBase = `
CREATE TABLE IF NOT EXISTS entities (
  id               BIGINT PRIMARY KEY,
  kind             TEXT NOT NULL DEFAULT '',
  project_id       BIGINT,
  tracker_id       BIGINT,
  status_id        BIGINT,
  priority_id      BIGINT,
  author_id        BIGINT,
  assigned_to_id   BIGINT,
  category_id      BIGINT,
  fixed_version_id BIGINT,
  parent_id        BIGINT,
  subject          TEXT,
  description      TEXT,
  start_date       TEXT,
  due_date         TEXT,
  estimated_hours  DOUBLE PRECISION,
  spent_hours      DOUBLE PRECISION,
  done_ratio       BIGINT,
  is_private       BIGINT,
  created_on       TEXT,
  updated_on       TEXT
);
CREATE INDEX IF NOT EXISTS idx_entities_project  ON entities(project_id);
CREATE INDEX IF NOT EXISTS idx_entities_status   ON entities(status_id);
CREATE INDEX IF NOT EXISTS idx_entities_assignee ON entities(assigned_to_id);
CREATE INDEX IF NOT EXISTS idx_entities_updated  ON entities(updated_on);

CREATE TABLE IF NOT EXISTS custom_values (
  entity_id       BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
  custom_field_id BIGINT NOT NULL,
  value           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_cv_entity ON custom_values(entity_id, custom_field_id);
CREATE INDEX IF NOT EXISTS idx_cv_field  ON custom_values(custom_field_id, value);

CREATE TABLE IF NOT EXISTS watchers (
  entity_id BIGINT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
  user_id   BIGINT NOT NULL,
  PRIMARY KEY (entity_id, user_id)
);
CREATE INDEX IF NOT EXISTS idx_watchers_user ON watchers(user_id);

CREATE TABLE IF NOT EXISTS projects (
  id        BIGINT PRIMARY KEY,
  name      TEXT NOT NULL,
  parent_id BIGINT,
  status    BIGINT NOT NULL DEFAULT 1,
  is_public BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS memberships (
  project_id BIGINT NOT NULL,
  user_id    BIGINT NOT NULL,
  PRIMARY KEY (project_id, user_id)
);

CREATE TABLE IF NOT EXISTS member_roles (
  project_id BIGINT NOT NULL,
  user_id    BIGINT NOT NULL,
  role_id    BIGINT NOT NULL,
  PRIMARY KEY (project_id, user_id, role_id)
);

CREATE TABLE IF NOT EXISTS saved_queries (
  id         TEXT PRIMARY KEY,
  name       TEXT NOT NULL,
  project_id BIGINT NOT NULL DEFAULT 0,
  user_id    BIGINT NOT NULL,
  visibility TEXT NOT NULL,
  roles_json TEXT NOT NULL DEFAULT '[]',
  spec_json  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saved_project ON saved_queries(project_id);
`
