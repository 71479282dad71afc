package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	_ "modernc.org/sqlite"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/domain"
)

// SQLite caps bound parameters at 999 per statement; clubs bind 6 columns each.
const clubsPerInsert = 999 / 6

// SQLiteStore keeps everything in a single database file. Timestamps are stored as
// RFC3339Nano text and profile categories as a JSON array.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "data/recommendations.db"
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create directory %s: %w", dir, err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	// single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite database: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) ClubsByCategory(ctx context.Context, category string) ([]domain.Club, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE lower(category) = ? ORDER BY name`,
		strings.ToLower(category),
	)
	if err != nil {
		return nil, fmt.Errorf("query clubs for category %q: %w", category, err)
	}
	return scanSQLiteClubs(rows)
}

func (s *SQLiteStore) CandidateClubs(ctx context.Context, categories []string) ([]domain.Club, error) {
	query := `SELECT ` + clubColumns + ` FROM clubs`
	args := make([]any, 0, len(categories))
	if len(categories) > 0 {
		query += ` WHERE lower(category) IN (` + placeholders(len(categories)) + `)`
		for _, c := range lowerAll(categories) {
			args = append(args, c)
		}
	}
	query += ` ORDER BY member_count DESC, name`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query candidate clubs: %w", err)
	}
	return scanSQLiteClubs(rows)
}

func (s *SQLiteStore) ClubsByIDs(ctx context.Context, ids []string) ([]domain.Club, error) {
	if len(ids) == 0 {
		return []domain.Club{}, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE id IN (`+placeholders(len(ids))+`) ORDER BY name`, args...)
	if err != nil {
		return nil, fmt.Errorf("query clubs by id: %w", err)
	}
	return scanSQLiteClubs(rows)
}

func (s *SQLiteStore) MaxMemberCount(ctx context.Context) (int, error) {
	var maxCount int
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(member_count), 0) FROM clubs`).Scan(&maxCount); err != nil {
		return 0, fmt.Errorf("max member count: %w", err)
	}
	return maxCount, nil
}

func (s *SQLiteStore) CountClubs(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM clubs`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count clubs: %w", err)
	}
	return total, nil
}

func (s *SQLiteStore) InsertClubs(ctx context.Context, clubs []domain.Club) error {
	for i := 0; i < len(clubs); i += clubsPerInsert {
		chunk := clubs[i:min(i+clubsPerInsert, len(clubs))]

		rows := make([]string, len(chunk))
		args := make([]any, 0, len(chunk)*6)
		for j, c := range chunk {
			rows[j] = "(?, ?, ?, ?, ?, ?)"
			args = append(args, c.ID, c.Name, c.Category, c.Description, c.MemberCount,
				c.FoundedAt.UTC().Format(time.RFC3339Nano))
		}

		query := `INSERT OR IGNORE INTO clubs (` + clubColumns + `) VALUES ` + strings.Join(rows, ", ")
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert clubs batch %d: %w", i/clubsPerInsert, err)
		}
	}
	return nil
}

func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	var categoriesJSON, updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT categories, updated_at FROM user_profiles WHERE user_id = ?`, userID,
	).Scan(&categoriesJSON, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query profile for user %s: %w", userID, err)
	}

	profile := &domain.UserProfile{UserID: userID, Categories: []string{}, Favorites: []string{}}
	if err := json.Unmarshal([]byte(categoriesJSON), &profile.Categories); err != nil {
		return nil, fmt.Errorf("decode categories for user %s: %w", userID, err)
	}
	if profile.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at for user %s: %w", userID, err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT club_id FROM user_favorites WHERE user_id = ? ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorites for user %s: %w", userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var clubID string
		if err := rows.Scan(&clubID); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		profile.Favorites = append(profile.Favorites, clubID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return profile, nil
}

func (s *SQLiteStore) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	categories := profile.Categories
	if categories == nil {
		categories = []string{}
	}
	categoriesJSON, err := json.Marshal(categories)
	if err != nil {
		return fmt.Errorf("encode categories: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin profile tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO user_profiles (user_id, categories, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET categories = excluded.categories, updated_at = excluded.updated_at`,
		profile.UserID, string(categoriesJSON), profile.UpdatedAt.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("upsert profile for user %s: %w", profile.UserID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_favorites WHERE user_id = ?`, profile.UserID); err != nil {
		return fmt.Errorf("clear favorites for user %s: %w", profile.UserID, err)
	}

	for i, clubID := range uniqueStrings(profile.Favorites) {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_favorites (user_id, club_id, position) VALUES (?, ?, ?)`,
			profile.UserID, clubID, i,
		); err != nil {
			return fmt.Errorf("insert favorite %s for user %s: %w", clubID, profile.UserID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit profile for user %s: %w", profile.UserID, err)
	}
	return nil
}

func (s *SQLiteStore) ListProfileUserIDs(ctx context.Context, page, limit int) ([]string, error) {
	offset := (page - 1) * limit
	rows, err := s.db.QueryContext(ctx,
		`SELECT user_id FROM user_profiles ORDER BY user_id LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query user ids for page %d: %w", page, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}
	return ids, nil
}

func (s *SQLiteStore) CountProfiles(ctx context.Context) (int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM user_profiles`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return total, nil
}

func (s *SQLiteStore) MigrateUp(ctx context.Context) error {
	return s.exec(ctx, sqliteUp)
}

func (s *SQLiteStore) MigrateDown(ctx context.Context) error {
	return s.exec(ctx, sqliteDown)
}

func (s *SQLiteStore) exec(ctx context.Context, statements []string) error {
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() {
	s.db.Close()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func scanSQLiteClubs(rows *sql.Rows) ([]domain.Club, error) {
	defer rows.Close()

	items := []domain.Club{}
	for rows.Next() {
		var (
			c         domain.Club
			foundedAt string
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.Description, &c.MemberCount, &foundedAt); err != nil {
			return nil, fmt.Errorf("scan club: %w", err)
		}
		t, err := time.Parse(time.RFC3339Nano, foundedAt)
		if err != nil {
			return nil, fmt.Errorf("parse founded_at for club %s: %w", c.ID, err)
		}
		c.FoundedAt = t
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over clubs: %w", err)
	}
	return items, nil
}
