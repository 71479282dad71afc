package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/domain"
)

const clubColumns = `id, name, category, description, member_count, founded_at`

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, url string, maxConns int) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}
	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func NewPostgresStoreFromPool(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (r *PostgresStore) ClubsByCategory(ctx context.Context, category string) ([]domain.Club, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE lower(category) = $1 ORDER BY name`,
		strings.ToLower(category),
	)
	if err != nil {
		return nil, fmt.Errorf("query clubs for category %q: %w", category, err)
	}
	return collectClubs(rows)
}

func (r *PostgresStore) CandidateClubs(ctx context.Context, categories []string) ([]domain.Club, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if len(categories) == 0 {
		rows, err = r.pool.Query(ctx,
			`SELECT `+clubColumns+` FROM clubs ORDER BY member_count DESC, name`)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT `+clubColumns+` FROM clubs
			WHERE lower(category) = ANY($1)
			ORDER BY member_count DESC, name`,
			lowerAll(categories),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("query candidate clubs: %w", err)
	}
	return collectClubs(rows)
}

func (r *PostgresStore) ClubsByIDs(ctx context.Context, ids []string) ([]domain.Club, error) {
	if len(ids) == 0 {
		return []domain.Club{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+clubColumns+` FROM clubs WHERE id = ANY($1) ORDER BY name`, ids)
	if err != nil {
		return nil, fmt.Errorf("query clubs by id: %w", err)
	}
	return collectClubs(rows)
}

func (r *PostgresStore) MaxMemberCount(ctx context.Context) (int, error) {
	var maxCount int
	if err := r.pool.QueryRow(ctx, `SELECT COALESCE(MAX(member_count), 0) FROM clubs`).Scan(&maxCount); err != nil {
		return 0, fmt.Errorf("max member count: %w", err)
	}
	return maxCount, nil
}

func (r *PostgresStore) CountClubs(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM clubs`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count clubs: %w", err)
	}
	return total, nil
}

func (r *PostgresStore) InsertClubs(ctx context.Context, clubs []domain.Club) error {
	if len(clubs) == 0 {
		return nil
	}

	rows := make([]string, 0, len(clubs))
	args := make([]any, 0, len(clubs)*6)
	for _, c := range clubs {
		base := len(args)
		rows = append(rows, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6))
		args = append(args, c.ID, c.Name, c.Category, c.Description, c.MemberCount, c.FoundedAt)
	}

	query := `INSERT INTO clubs (` + clubColumns + `) VALUES ` +
		strings.Join(rows, ", ") + ` ON CONFLICT (id) DO NOTHING`
	if _, err := r.pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert clubs: %w", err)
	}
	return nil
}

func (r *PostgresStore) GetProfile(ctx context.Context, userID string) (*domain.UserProfile, error) {
	profile := &domain.UserProfile{UserID: userID}

	err := r.pool.QueryRow(ctx,
		`SELECT categories, updated_at FROM user_profiles WHERE user_id = $1`, userID,
	).Scan(&profile.Categories, &profile.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query profile for user %s: %w", userID, err)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT club_id FROM user_favorites WHERE user_id = $1 ORDER BY position`, userID)
	if err != nil {
		return nil, fmt.Errorf("query favorites for user %s: %w", userID, err)
	}
	favorites, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan favorites for user %s: %w", userID, err)
	}
	profile.Favorites = favorites
	if profile.Categories == nil {
		profile.Categories = []string{}
	}
	return profile, nil
}

// SaveProfile replaces the stored favorites and categories in one transaction.
func (r *PostgresStore) SaveProfile(ctx context.Context, profile *domain.UserProfile) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin profile tx: %w", err)
	}
	defer tx.Rollback(ctx)

	categories := profile.Categories
	if categories == nil {
		categories = []string{}
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO user_profiles (user_id, categories, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET categories = EXCLUDED.categories, updated_at = EXCLUDED.updated_at`,
		profile.UserID, categories, profile.UpdatedAt,
	); err != nil {
		return fmt.Errorf("upsert profile for user %s: %w", profile.UserID, err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM user_favorites WHERE user_id = $1`, profile.UserID); err != nil {
		return fmt.Errorf("clear favorites for user %s: %w", profile.UserID, err)
	}

	if favorites := uniqueStrings(profile.Favorites); len(favorites) > 0 {
		rows := make([]string, 0, len(favorites))
		args := make([]any, 0, len(favorites)*3)
		for i, clubID := range favorites {
			base := len(args)
			rows = append(rows, fmt.Sprintf("($%d, $%d, $%d)", base+1, base+2, base+3))
			args = append(args, profile.UserID, clubID, i)
		}
		query := `INSERT INTO user_favorites (user_id, club_id, position) VALUES ` + strings.Join(rows, ", ")
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("insert favorites for user %s: %w", profile.UserID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit profile for user %s: %w", profile.UserID, err)
	}
	return nil
}

func (r *PostgresStore) ListProfileUserIDs(ctx context.Context, page, limit int) ([]string, error) {
	offset := (page - 1) * limit
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM user_profiles ORDER BY user_id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query user ids for page %d: %w", page, err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan user ids: %w", err)
	}
	return ids, nil
}

func (r *PostgresStore) CountProfiles(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM user_profiles`).Scan(&total); err != nil {
		return 0, fmt.Errorf("count profiles: %w", err)
	}
	return total, nil
}

func (r *PostgresStore) MigrateUp(ctx context.Context) error {
	return r.exec(ctx, postgresUp)
}

func (r *PostgresStore) MigrateDown(ctx context.Context) error {
	return r.exec(ctx, postgresDown)
}

func (r *PostgresStore) exec(ctx context.Context, statements []string) error {
	for _, stmt := range statements {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
	}
	return nil
}

func (r *PostgresStore) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresStore) Close() {
	r.pool.Close()
}

func collectClubs(rows pgx.Rows) ([]domain.Club, error) {
	defer rows.Close()

	items := []domain.Club{}
	for rows.Next() {
		var c domain.Club
		if err := rows.Scan(&c.ID, &c.Name, &c.Category, &c.Description, &c.MemberCount, &c.FoundedAt); err != nil {
			return nil, fmt.Errorf("scan club: %w", err)
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate over clubs: %w", err)
	}
	return items, nil
}
