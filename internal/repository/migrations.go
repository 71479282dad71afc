package repository

var postgresUp = []string{
	`CREATE TABLE IF NOT EXISTS clubs (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		category     TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		member_count INTEGER NOT NULL DEFAULT 0,
		founded_at   TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clubs_category ON clubs (lower(category))`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id    TEXT PRIMARY KEY,
		categories TEXT[] NOT NULL DEFAULT '{}',
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_favorites (
		user_id  TEXT NOT NULL REFERENCES user_profiles (user_id) ON DELETE CASCADE,
		club_id  TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (user_id, club_id)
	)`,
}

var postgresDown = []string{
	`DROP TABLE IF EXISTS user_favorites`,
	`DROP TABLE IF EXISTS user_profiles`,
	`DROP TABLE IF EXISTS clubs`,
}

var sqliteUp = []string{
	`CREATE TABLE IF NOT EXISTS clubs (
		id           TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		category     TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		member_count INTEGER NOT NULL DEFAULT 0,
		founded_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_clubs_category ON clubs (lower(category))`,
	`CREATE TABLE IF NOT EXISTS user_profiles (
		user_id    TEXT PRIMARY KEY,
		categories TEXT NOT NULL DEFAULT '[]',
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_favorites (
		user_id  TEXT NOT NULL REFERENCES user_profiles (user_id) ON DELETE CASCADE,
		club_id  TEXT NOT NULL,
		position INTEGER NOT NULL,
		PRIMARY KEY (user_id, club_id)
	)`,
}

var sqliteDown = postgresDown
