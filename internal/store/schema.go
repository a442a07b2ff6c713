package store

const schemaSQL = `
-- ==========================================================================
-- JOBS AND TASKS
-- ==========================================================================

CREATE TABLE IF NOT EXISTS job (
  id BIGSERIAL PRIMARY KEY,
  job_number TEXT NOT NULL UNIQUE,
  quantity INTEGER NOT NULL DEFAULT 1,
  completed BOOLEAN NOT NULL DEFAULT FALSE,
  blocked BOOLEAN NOT NULL DEFAULT FALSE,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS task (
  id BIGSERIAL PRIMARY KEY,
  job_number TEXT NOT NULL REFERENCES job(job_number) ON DELETE CASCADE,
  task_number TEXT NOT NULL,
  setup_time DOUBLE PRECISION NOT NULL DEFAULT 0,
  time_each DOUBLE PRECISION NOT NULL DEFAULT 0,
  predecessors TEXT NOT NULL DEFAULT '',
  resources TEXT NOT NULL DEFAULT '',
  completed BOOLEAN NOT NULL DEFAULT FALSE,
  UNIQUE (job_number, task_number)
);

CREATE INDEX IF NOT EXISTS idx_task_job_number ON task(job_number);

-- ==========================================================================
-- RESOURCES
-- ==========================================================================

CREATE TABLE IF NOT EXISTS resource (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  type TEXT NOT NULL CHECK (type IN ('H', 'M'))
);

CREATE TABLE IF NOT EXISTS resource_group (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS resource_group_association (
  resource_id BIGINT NOT NULL REFERENCES resource(id) ON DELETE CASCADE,
  group_id BIGINT NOT NULL REFERENCES resource_group(id) ON DELETE CASCADE,
  position INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (resource_id, group_id)
);

CREATE INDEX IF NOT EXISTS idx_rga_group_id ON resource_group_association(group_id, position);

-- ==========================================================================
-- WORKING CALENDAR
-- ==========================================================================

CREATE TABLE IF NOT EXISTS calendar (
  weekday INTEGER PRIMARY KEY CHECK (weekday BETWEEN 1 AND 7),
  start_time TIME NOT NULL,
  end_time TIME NOT NULL
);

-- ==========================================================================
-- SCHEDULE (fully replaced once per run)
-- ==========================================================================

CREATE TABLE IF NOT EXISTS schedule (
  task_number TEXT PRIMARY KEY,
  start_time TIMESTAMPTZ NOT NULL,
  end_time TIMESTAMPTZ NOT NULL,
  resources_used TEXT NOT NULL DEFAULT ''
);
`
