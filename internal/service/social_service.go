package service

import (
	"context"
	"fmt"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/pawmatch/pawmatch-backend/internal/repository"
	"github.com/pawmatch/pawmatch-backend/pkg/logger"
)

// FeedInvalidator drops cached feed pages of a user. *FeedService implements it.
type FeedInvalidator interface {
	InvalidateUserFeed(ctx context.Context, userID string)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateUserFeed(context.Context, string) {}

func invalidatorOrNoop(inv FeedInvalidator) FeedInvalidator {
	if inv == nil {
		return noopInvalidator{}
	}
	return inv
}

// SocialService manages the follow and block graph
type SocialService struct {
	follows repository.FollowRepository
	blocks  repository.BlockRepository
	feeds   FeedInvalidator
}

// NewSocialService creates a SocialService. feeds may be nil.
func NewSocialService(follows repository.FollowRepository, blocks repository.BlockRepository, feeds FeedInvalidator) *SocialService {
	return &SocialService{follows: follows, blocks: blocks, feeds: invalidatorOrNoop(feeds)}
}

// Follow makes userID follow targetID
func (s *SocialService) Follow(ctx context.Context, userID, targetID string) error {
	if err := checkTarget(userID, targetID); err != nil {
		return err
	}
	created, err := s.follows.Follow(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if !created {
		return common.ErrAlreadyFollowing
	}
	s.feeds.InvalidateUserFeed(ctx, userID)
	return nil
}

// Unfollow removes the follow edge
func (s *SocialService) Unfollow(ctx context.Context, userID, targetID string) error {
	if err := checkTarget(userID, targetID); err != nil {
		return err
	}
	removed, err := s.follows.Unfollow(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("%w: not following", common.ErrNotFound)
	}
	s.feeds.InvalidateUserFeed(ctx, userID)
	return nil
}

// Block hides targetID's content from userID. Blocking twice is a no-op.
func (s *SocialService) Block(ctx context.Context, userID, targetID string) error {
	if err := checkTarget(userID, targetID); err != nil {
		return err
	}
	created, err := s.blocks.Block(ctx, userID, targetID)
	if err != nil {
		return err
	}
	if created {
		logger.FromContext(ctx).Info().Str("user_id", userID).Str("blocked_user_id", targetID).Msg("user blocked")
	}
	s.feeds.InvalidateUserFeed(ctx, userID)
	return nil
}

// Unblock lifts a block. Unblocking a user that is not blocked is a no-op.
func (s *SocialService) Unblock(ctx context.Context, userID, targetID string) error {
	if err := checkTarget(userID, targetID); err != nil {
		return err
	}
	if _, err := s.blocks.Unblock(ctx, userID, targetID); err != nil {
		return err
	}
	s.feeds.InvalidateUserFeed(ctx, userID)
	return nil
}

const (
	defaultFollowPage = 20
	maxFollowPage     = 100
)

// ListFollowers pages the users following userID
func (s *SocialService) ListFollowers(ctx context.Context, userID string, page, limit int) (*domain.FollowPage, error) {
	return s.listEdges(ctx, s.follows.ListFollowers, userID, page, limit)
}

// ListFollowing pages the users userID follows
func (s *SocialService) ListFollowing(ctx context.Context, userID string, page, limit int) (*domain.FollowPage, error) {
	return s.listEdges(ctx, s.follows.ListFollowing, userID, page, limit)
}

type edgeLister func(ctx context.Context, userID string, offset, limit int) ([]*domain.UserFollow, int64, error)

func (s *SocialService) listEdges(ctx context.Context, list edgeLister, userID string, page, limit int) (*domain.FollowPage, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", common.ErrInvalidInput)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultFollowPage
	}
	if limit > maxFollowPage {
		limit = maxFollowPage
	}

	edges, total, err := list(ctx, userID, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return &domain.FollowPage{Edges: edges, Page: page, Limit: limit, Total: total}, nil
}

func checkTarget(userID, targetID string) error {
	if targetID == "" {
		return fmt.Errorf("%w: user id is required", common.ErrInvalidInput)
	}
	if userID == targetID {
		return common.ErrSelfAction
	}
	return nil
}

// invalidateAudience drops the author's cached feed and those of their
// followers, since a new post or story can land on any of those pages
func invalidateAudience(ctx context.Context, follows repository.FollowRepository, feeds FeedInvalidator, authorID string) {
	feeds.InvalidateUserFeed(ctx, authorID)
	followers, err := follows.GetFollowerIDs(ctx, authorID)
	if err != nil {
		logger.FromContext(ctx).Warn().Err(err).Str("user_id", authorID).Msg("follower lookup for feed invalidation failed")
		return
	}
	for _, id := range followers {
		feeds.InvalidateUserFeed(ctx, id)
	}
}
