package db

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- Runs: one row per crawl invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    seed_url TEXT NOT NULL,
    started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    finished_at TIMESTAMP,
    total_discovered INTEGER DEFAULT 0,
    total_downloaded INTEGER DEFAULT 0,
    total_errors INTEGER DEFAULT 0,
    manifest_path TEXT
);

-- Forms: every descriptor discovered by a run, in discovery order
CREATE TABLE IF NOT EXISTS forms (
    form_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    form_number TEXT NOT NULL,
    title TEXT,
    url TEXT NOT NULL,
    category TEXT,
    status TEXT NOT NULL,
    sha256 TEXT,
    error TEXT,
    file_path TEXT,
    size_bytes INTEGER DEFAULT 0,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_forms_run ON forms(run_id);
CREATE INDEX IF NOT EXISTS idx_forms_url ON forms(url);
-- Digest index lets downstream consumers dedup identical content
-- reachable via different URLs.
CREATE INDEX IF NOT EXISTS idx_forms_sha256 ON forms(sha256) WHERE sha256 IS NOT NULL;

-- Fetch attempts: every HTTP attempt tracked, including retries
CREATE TABLE IF NOT EXISTS fetch_attempts (
    attempt_id INTEGER PRIMARY KEY AUTOINCREMENT,
    form_id INTEGER NOT NULL,
    attempted_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    status_code INTEGER,
    error TEXT,
    success BOOLEAN NOT NULL,
    FOREIGN KEY (form_id) REFERENCES forms(form_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_attempts_form ON fetch_attempts(form_id);

-- Enrichments: summaries recorded independently of fetch outcomes
CREATE TABLE IF NOT EXISTS enrichments (
    enrichment_id INTEGER PRIMARY KEY AUTOINCREMENT,
    form_id INTEGER NOT NULL,
    summary TEXT,
    language TEXT,
    keywords TEXT,
    error TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (form_id) REFERENCES forms(form_id) ON DELETE CASCADE,
    UNIQUE(form_id)
);
`
