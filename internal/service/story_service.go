package service

import (
	"context"
	"time"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/pawmatch/pawmatch-backend/internal/repository"
	"github.com/pawmatch/pawmatch-backend/pkg/logger"
)

// storyListCap bounds GET /stories
const storyListCap = 100

// StoryService publishes, lists and expires stories
type StoryService struct {
	stories repository.StoryRepository
	pets    repository.PetRepository
	follows repository.FollowRepository
	blocks  repository.BlockRepository
	feeds   FeedInvalidator
	now     func() time.Time
}

// NewStoryService creates a StoryService. feeds may be nil.
func NewStoryService(
	stories repository.StoryRepository,
	pets repository.PetRepository,
	follows repository.FollowRepository,
	blocks repository.BlockRepository,
	feeds FeedInvalidator,
) *StoryService {
	return &StoryService{
		stories: stories,
		pets:    pets,
		follows: follows,
		blocks:  blocks,
		feeds:   invalidatorOrNoop(feeds),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// CreateStory publishes a story that expires after domain.StoryLifetime
func (s *StoryService) CreateStory(ctx context.Context, authorID string, req *domain.CreateStoryRequest) (*domain.Story, error) {
	if req.PetID != nil && *req.PetID != "" {
		if _, err := ownedPet(ctx, s.pets, authorID, *req.PetID); err != nil {
			return nil, err
		}
	}

	now := s.now()
	story := &domain.Story{
		UserID:    authorID,
		PetID:     req.PetID,
		MediaURL:  req.MediaURL,
		Caption:   req.Caption,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.StoryLifetime),
	}
	if err := s.stories.Create(ctx, story); err != nil {
		return nil, err
	}

	invalidateAudience(ctx, s.follows, s.feeds, authorID)
	return story, nil
}

// ListActive returns unexpired stories of viewerID and the authors they
// follow, minus blocked authors, newest first
func (s *StoryService) ListActive(ctx context.Context, viewerID string) ([]*domain.Story, error) {
	followed, err := s.follows.GetFolloweeIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blocks.GetBlockedUserIDs(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	fc := &domain.FeedContext{
		ViewerID:          viewerID,
		FollowedAuthorIDs: domain.NewIDSet(followed...),
		BlockedAuthorIDs:  domain.NewIDSet(blocked...),
	}
	return s.stories.FetchActive(ctx, fc.AuthorIDs(), s.now(), storyListCap)
}

// DeleteStory removes one of the caller's own stories
func (s *StoryService) DeleteStory(ctx context.Context, userID, storyID string) error {
	story, err := s.stories.FindByID(ctx, storyID)
	if err != nil {
		return err
	}
	if story.UserID != userID {
		return common.ErrStoryNotOwned
	}
	if err := s.stories.Delete(ctx, story.ID); err != nil {
		return err
	}
	invalidateAudience(ctx, s.follows, s.feeds, userID)
	return nil
}

// PurgeExpired deletes every story past its expiry
func (s *StoryService) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := s.stories.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.FromContext(ctx).Info().Int64("deleted", n).Msg("expired stories purged")
	}
	return n, nil
}
