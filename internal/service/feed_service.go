package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/pawmatch/pawmatch-backend/internal/repository"
	"github.com/pawmatch/pawmatch-backend/pkg/cache"
	"github.com/pawmatch/pawmatch-backend/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// FeedOptions tunes feed assembly
type FeedOptions struct {
	Window          time.Duration // candidate recency window
	PoolCap         int           // max candidates ranked per request
	SponsorSlot     int           // index of the sponsored item on page 1
	StoryCap        int
	DefaultPageSize int
	MaxPageSize     int
	CacheTTL        time.Duration
}

// DefaultFeedOptions returns the production defaults
func DefaultFeedOptions() FeedOptions {
	return FeedOptions{
		Window:          7 * 24 * time.Hour,
		PoolCap:         200,
		SponsorSlot:     2,
		StoryCap:        20,
		DefaultPageSize: 20,
		MaxPageSize:     100,
		CacheTTL:        cache.TTLShort,
	}
}

// FeedService assembles the personalized feed: candidate retrieval,
// scoring, sponsored splice and pagination, plus the stories lane.
type FeedService struct {
	posts        repository.PostRepository
	stories      repository.StoryRepository
	follows      repository.FollowRepository
	blocks       repository.BlockRepository
	interactions repository.InteractionRepository
	cache        cache.Service
	opts         FeedOptions
	now          func() time.Time
}

// NewFeedService creates a FeedService. cacheService may be nil.
func NewFeedService(
	posts repository.PostRepository,
	stories repository.StoryRepository,
	follows repository.FollowRepository,
	blocks repository.BlockRepository,
	interactions repository.InteractionRepository,
	cacheService cache.Service,
	opts FeedOptions,
) *FeedService {
	return &FeedService{
		posts:        posts,
		stories:      stories,
		follows:      follows,
		blocks:       blocks,
		interactions: interactions,
		cache:        cacheService,
		opts:         opts,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// GetFeed returns one page of viewerID's feed.
//
// Failing to resolve the social graph or the candidate pool fails the
// request. The sponsored lookup, the stories lane and the interaction
// history are optional: on failure they are logged and left out.
//
// Page 1 may carry one sponsored post on top of limit organic items, so it
// can hold limit+1 items. Pagination.TotalItems counts that post while
// Pagination.HasMore only looks at organic items: page n always starts at
// organic item (n-1)*limit. The sponsored post never comes from the
// viewer, an author they follow or an author they blocked.
func (s *FeedService) GetFeed(ctx context.Context, viewerID string, page, limit int) (*domain.FeedResponse, error) {
	start := time.Now()
	page, limit = s.normalizePage(page, limit)

	if cached := s.cachedPage(ctx, viewerID, page, limit); cached != nil {
		feedAssemblyDuration.WithLabelValues("cache").Observe(time.Since(start).Seconds())
		return cached, nil
	}

	now := s.now()
	fc, err := s.resolveContext(ctx, viewerID, page, limit, now)
	if err != nil {
		return nil, err
	}

	excluded := fc.BlockedAuthorIDs.Slice()
	graph := fc.AuthorIDs()
	// sponsored content only reaches outside the viewer's graph
	notSponsors := append(append(make([]string, 0, len(graph)+len(excluded)), graph...), excluded...)
	var (
		pool      []*domain.Post
		sponsored *domain.Post
		stories   []*domain.Story
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pool, err = s.posts.FetchRecentTimeline(gctx, repository.TimelineQuery{
			AuthorIDs:        graph,
			Since:            now.Add(-s.opts.Window),
			Visibilities:     domain.FeedVisibilities,
			ExcludeAuthorIDs: excluded,
			Limit:            s.opts.PoolCap,
		})
		if err != nil {
			return fmt.Errorf("candidate pool: %w", err)
		}
		return nil
	})
	if page == 1 {
		g.Go(func() error {
			p, err := s.posts.FetchSponsoredCandidate(gctx, notSponsors, now)
			if err != nil {
				s.degraded(ctx, "sponsored", viewerID, err)
				return nil
			}
			sponsored = p
			return nil
		})
	}
	g.Go(func() error {
		list, err := s.stories.FetchActive(gctx, graph, now, s.opts.StoryCap)
		if err != nil {
			s.degraded(ctx, "stories", viewerID, err)
			return nil
		}
		stories = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ranked := RankItems(pool, now, fc.InteractedItemIDs)
	resp := assemblePage(ranked, fc, sponsored, s.opts.SponsorSlot, now)
	resp.Stories = make([]domain.Story, 0, len(stories))
	for _, st := range stories {
		resp.Stories = append(resp.Stories, *st)
	}

	s.storePage(ctx, viewerID, page, limit, resp)
	feedAssemblyDuration.WithLabelValues("assembled").Observe(time.Since(start).Seconds())
	return resp, nil
}

// InvalidateUserFeed drops every cached page of userID's feed
func (s *FeedService) InvalidateUserFeed(ctx context.Context, userID string) {
	if s.cache == nil || !s.cache.IsAvailable() {
		return
	}
	if err := s.cache.InvalidateFeed(ctx, userID); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("user_id", userID).Msg("feed cache invalidation failed")
	}
}

func (s *FeedService) normalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = s.opts.DefaultPageSize
	}
	if limit > s.opts.MaxPageSize {
		limit = s.opts.MaxPageSize
	}
	return page, limit
}

// resolveContext loads the viewer's graph and history in parallel
func (s *FeedService) resolveContext(ctx context.Context, viewerID string, page, limit int, now time.Time) (*domain.FeedContext, error) {
	fc := &domain.FeedContext{
		ViewerID:          viewerID,
		InteractedItemIDs: domain.NewIDSet(),
		Page:              page,
		PageSize:          limit,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ids, err := s.follows.GetFolloweeIDs(gctx, viewerID)
		if err != nil {
			return fmt.Errorf("resolve followed authors: %w", err)
		}
		fc.FollowedAuthorIDs = domain.NewIDSet(ids...)
		return nil
	})
	g.Go(func() error {
		ids, err := s.blocks.GetBlockedUserIDs(gctx, viewerID)
		if err != nil {
			return fmt.Errorf("resolve blocked authors: %w", err)
		}
		fc.BlockedAuthorIDs = domain.NewIDSet(ids...)
		return nil
	})
	g.Go(func() error {
		ids, err := s.interactions.GetLikedOrCommentedPostIDs(gctx, viewerID, now.Add(-s.opts.Window))
		if err != nil {
			s.degraded(ctx, "interactions", viewerID, err)
			return nil
		}
		fc.InteractedItemIDs = ids
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fc, nil
}

// assemblePage slices the ranked list for fc's page. On page 1 the
// sponsored post, when present and not already ranked, is spliced into the
// page at slot as an extra item, so organic items are never pushed to the
// next page and pages 1..k always cover ranked[0:k*limit].
func assemblePage(ranked []domain.FeedItem, fc *domain.FeedContext, sponsored *domain.Post, slot int, now time.Time) *domain.FeedResponse {
	total := len(ranked)
	offset := fc.Offset()
	end := offset + fc.PageSize
	if end > total {
		end = total
	}

	items := make([]domain.FeedItem, 0, fc.PageSize+1)
	if offset < total {
		items = append(items, ranked[offset:end]...)
	}

	if fc.Page == 1 && sponsored != nil && !containsPost(ranked, sponsored.ID) {
		score, err := Score(sponsored, now)
		if err != nil {
			score = 0
		}
		items = spliceAt(items, slot, domain.FeedItem{
			Post:       *sponsored,
			Sponsored:  true,
			Interacted: fc.InteractedItemIDs.Has(sponsored.ID),
			Score:      score,
		})
		total++
	}

	return &domain.FeedResponse{
		Items: items,
		Pagination: domain.Pagination{
			Page:       fc.Page,
			Limit:      fc.PageSize,
			TotalItems: total,
			HasMore:    offset+fc.PageSize < len(ranked),
		},
	}
}

func containsPost(items []domain.FeedItem, id string) bool {
	for i := range items {
		if items[i].ID == id {
			return true
		}
	}
	return false
}

// spliceAt inserts item at index, or appends when the slice is shorter
func spliceAt(items []domain.FeedItem, index int, item domain.FeedItem) []domain.FeedItem {
	if index < 0 {
		index = 0
	}
	if index >= len(items) {
		return append(items, item)
	}
	items = append(items, domain.FeedItem{})
	copy(items[index+1:], items[index:])
	items[index] = item
	return items
}

func (s *FeedService) cachedPage(ctx context.Context, viewerID string, page, limit int) *domain.FeedResponse {
	if s.cache == nil || !s.cache.IsAvailable() {
		return nil
	}
	var cached domain.FeedResponse
	err := s.cache.GetFeedPage(ctx, viewerID, page, limit, &cached)
	if err == nil {
		return &cached
	}
	if !errors.Is(err, cache.ErrMiss) {
		logger.FromContext(ctx).Warn().Err(err).Str("viewer_id", viewerID).Msg("feed cache read failed")
	}
	return nil
}

func (s *FeedService) storePage(ctx context.Context, viewerID string, page, limit int, resp *domain.FeedResponse) {
	if s.cache == nil || !s.cache.IsAvailable() {
		return
	}
	if err := s.cache.SetFeedPage(ctx, viewerID, page, limit, resp, s.opts.CacheTTL); err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("viewer_id", viewerID).Msg("feed cache write failed")
	}
}

func (s *FeedService) degraded(ctx context.Context, lane, viewerID string, err error) {
	feedDegradedTotal.WithLabelValues(lane).Inc()
	logger.FromContext(ctx).Warn().
		Err(err).
		Str("lane", lane).
		Str("viewer_id", viewerID).
		Msg("feed lane unavailable, serving without it")
}
