package schema

// SchemaSQL contains the full database schema initialization script
const SchemaSQL = `
-- XP Ledger Schema

-- Accepted awards. One row per (user, activity); the unique constraint is
-- the duplicate-award guard of record.
CREATE TABLE IF NOT EXISTS xp_records (
    id UUID PRIMARY KEY,
    user_id VARCHAR(100) NOT NULL,
    activity_id VARCHAR(200) NOT NULL,
    xp_awarded INTEGER NOT NULL,
    activity JSONB NOT NULL,
    breakdown JSONB NOT NULL,
    validated BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (user_id, activity_id)
);

CREATE INDEX IF NOT EXISTS idx_xp_records_user_created
    ON xp_records (user_id, created_at DESC);

-- Running per-user totals. achieved_at breaks leaderboard ties.
CREATE TABLE IF NOT EXISTS user_totals (
    user_id VARCHAR(100) PRIMARY KEY,
    total_xp BIGINT NOT NULL DEFAULT 0,
    achieved_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_user_totals_leaderboard
    ON user_totals (total_xp DESC, achieved_at ASC);

-- Per (user, streak type) counters with bounded history.
CREATE TABLE IF NOT EXISTS streaks (
    user_id VARCHAR(100) NOT NULL,
    streak_type VARCHAR(20) NOT NULL,
    current_streak INTEGER NOT NULL DEFAULT 0,
    longest_streak INTEGER NOT NULL DEFAULT 0,
    last_activity TIMESTAMPTZ,
    history JSONB NOT NULL DEFAULT '[]',
    PRIMARY KEY (user_id, streak_type)
);

-- Weight configurations and bonus rules stored as documents; both are
-- validated at write time and interpreted at calculation time.
CREATE TABLE IF NOT EXISTS weight_configurations (
    id VARCHAR(100) PRIMARY KEY,
    config JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS bonus_rules (
    id VARCHAR(100) PRIMARY KEY,
    rule JSONB NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS special_events (
    id VARCHAR(100) PRIMARY KEY,
    event_name VARCHAR(200) NOT NULL,
    bonus_multiplier DOUBLE PRECISION NOT NULL,
    starts_at TIMESTAMPTZ NOT NULL,
    ends_at TIMESTAMPTZ NOT NULL
);

-- Transparency reports, write-once.
CREATE TABLE IF NOT EXISTS transparency_reports (
    id UUID PRIMARY KEY,
    user_id VARCHAR(100) NOT NULL,
    activity_id VARCHAR(200) NOT NULL,
    record_id UUID NOT NULL,
    report JSONB NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_reports_user_activity
    ON transparency_reports (user_id, activity_id);

-- Event log with retention cleanup.
CREATE TABLE IF NOT EXISTS events (
    id BIGSERIAL PRIMARY KEY,
    event_type VARCHAR(100) NOT NULL,
    user_id VARCHAR(100),
    payload JSONB NOT NULL,
    metadata JSONB,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_events_created_at ON events (created_at);
CREATE INDEX IF NOT EXISTS idx_events_user_id ON events (user_id) WHERE user_id IS NOT NULL;
`
