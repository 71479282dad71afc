package cache

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/actuallystonmai/campusconnect-recommendation/internal/domain"
)

// Cache stores computed recommendations per user. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, userID, query string) ([]domain.ScoredClub, bool, error)
	Set(ctx context.Context, userID, query string, recs []domain.ScoredClub) error
	ClearUserCache(ctx context.Context, userID string) error
	Ping(ctx context.Context) error
	Close() error
}

// QueryKey digests the parts of a request that change the result. Category case
// and the order of categories or favorites do not.
func QueryKey(categories, favorites []string, limit int) string {
	cats := make([]string, len(categories))
	for i, c := range categories {
		cats[i] = strings.ToLower(c)
	}
	slices.Sort(cats)
	cats = slices.Compact(cats)

	favs := slices.Clone(favorites)
	slices.Sort(favs)
	favs = slices.Compact(favs)

	d := xxhash.New()
	_, _ = d.WriteString(strings.Join(cats, "\x1f"))
	_, _ = d.WriteString("\x1e")
	_, _ = d.WriteString(strings.Join(favs, "\x1f"))
	_, _ = d.WriteString("\x1e")
	_, _ = d.WriteString(strconv.Itoa(limit))
	return strconv.FormatUint(d.Sum64(), 16)
}

func buildKey(userID, query string) string {
	return fmt.Sprintf("rec:user:%s:q:%s", userID, query)
}

func userPattern(userID string) string {
	return fmt.Sprintf("rec:user:%s:q:*", escapeGlob(userID))
}

// user ids are free-form strings, so glob metacharacters must not widen SCAN.
func escapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
