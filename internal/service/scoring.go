package service

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/pawmatch/pawmatch-backend/pkg/logger"
)

// Ranking weights. Recency decays with a gravity exponent so fresh posts
// surface even without engagement and old posts sink regardless of it.
const (
	RecencyWeight    = 1.0
	EngagementWeight = 0.5
	Gravity          = 1.8

	ageOffsetHours = 2.0
)

// ErrMalformedItem marks a post that cannot be scored
var ErrMalformedItem = errors.New("malformed content item")

// Score is the rank score of item at now. Deterministic for the same inputs.
// Items created after now (clock skew) are treated as brand new.
func Score(item *domain.Post, now time.Time) (float64, error) {
	if item == nil {
		return 0, fmt.Errorf("%w: nil item", ErrMalformedItem)
	}
	if item.CreatedAt.IsZero() {
		return 0, fmt.Errorf("%w: %s has no creation time", ErrMalformedItem, item.ID)
	}
	if item.LikesCount < 0 || item.CommentsCount < 0 {
		return 0, fmt.Errorf("%w: %s has negative engagement", ErrMalformedItem, item.ID)
	}

	ageHours := now.Sub(item.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}

	engagement := float64(item.LikesCount + item.CommentsCount)
	score := RecencyWeight/math.Pow(ageHours+ageOffsetHours, Gravity) + EngagementWeight*engagement
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("%w: %s scored %v", ErrMalformedItem, item.ID, score)
	}
	return score, nil
}

// RankItems scores every post and sorts by score desc, then newer first,
// then id asc. Posts that fail to score get -Inf and sink to the bottom
// instead of being dropped, so page totals stay stable.
//
// A nil entry is the one exception: it has no id or author to render, so
// it is counted as malformed and skipped. The post store never yields nil.
func RankItems(posts []*domain.Post, now time.Time, interacted domain.IDSet) []domain.FeedItem {
	items := make([]domain.FeedItem, 0, len(posts))
	for _, p := range posts {
		if p == nil {
			malformedItemsTotal.Inc()
			logger.GetLogger().Warn().Msg("nil post in candidate pool")
			continue
		}
		score, err := Score(p, now)
		if err != nil {
			malformedItemsTotal.Inc()
			logger.GetLogger().Warn().Err(err).Str("post_id", p.ID).Msg("scoring failed, ranking item last")
			score = math.Inf(-1)
		}
		items = append(items, domain.FeedItem{
			Post:       *p,
			Interacted: interacted.Has(p.ID),
			Score:      score,
		})
	}

	sort.SliceStable(items, func(i, j int) bool {
		return rankLess(&items[i], &items[j])
	})
	return items
}

func rankLess(a, b *domain.FeedItem) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID < b.ID
}
