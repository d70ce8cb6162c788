package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/pawmatch/pawmatch-backend/internal/repository"
	"github.com/pawmatch/pawmatch-backend/internal/ws"
	"github.com/pawmatch/pawmatch-backend/pkg/logger"
)

const (
	defaultCommentPage = 50
	maxCommentPage     = 100
)

// PostService handles post authoring and engagement
type PostService struct {
	posts    repository.PostRepository
	likes    repository.LikeRepository
	comments repository.CommentRepository
	pets     repository.PetRepository
	follows  repository.FollowRepository
	feeds    FeedInvalidator
	notifier Notifier
	now      func() time.Time
}

// NewPostService creates a PostService. feeds and notifier may be nil.
func NewPostService(
	posts repository.PostRepository,
	likes repository.LikeRepository,
	comments repository.CommentRepository,
	pets repository.PetRepository,
	follows repository.FollowRepository,
	feeds FeedInvalidator,
	notifier Notifier,
) *PostService {
	return &PostService{
		posts:    posts,
		likes:    likes,
		comments: comments,
		pets:     pets,
		follows:  follows,
		feeds:    invalidatorOrNoop(feeds),
		notifier: notifierOrNoop(notifier),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreatePost publishes a post by authorID
func (s *PostService) CreatePost(ctx context.Context, authorID string, req *domain.CreatePostRequest) (*domain.Post, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", common.ErrInvalidInput)
	}

	visibility := req.Visibility
	if visibility == "" {
		visibility = domain.VisibilityPublic
	}
	if !visibility.Valid() {
		return nil, common.ErrInvalidVisibility
	}

	if req.IsSponsored {
		if req.SponsorshipEndAt == nil || !req.SponsorshipEndAt.After(s.now()) {
			return nil, fmt.Errorf("%w: sponsored posts need a sponsorship end in the future", common.ErrInvalidInput)
		}
		if visibility != domain.VisibilityPublic {
			return nil, fmt.Errorf("%w: sponsored posts must be public", common.ErrInvalidInput)
		}
	}

	if req.PetID != nil && *req.PetID != "" {
		if _, err := ownedPet(ctx, s.pets, authorID, *req.PetID); err != nil {
			return nil, err
		}
	}

	post := &domain.Post{
		UserID:      authorID,
		PetID:       req.PetID,
		Content:     content,
		MediaURLs:   strings.Join(req.MediaURLs, ","),
		Visibility:  visibility,
		IsSponsored: req.IsSponsored,
	}
	if req.IsSponsored {
		end := req.SponsorshipEndAt.UTC()
		post.SponsorshipEndAt = &end
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}

	invalidateAudience(ctx, s.follows, s.feeds, authorID)
	logger.FromContext(ctx).Info().
		Str("post_id", post.ID).
		Str("visibility", string(post.Visibility)).
		Bool("sponsored", post.IsSponsored).
		Msg("post created")
	return post, nil
}

// GetPost returns a post visible to viewerID. Posts the viewer may not see
// are reported as missing.
func (s *PostService) GetPost(ctx context.Context, viewerID, postID string) (*domain.Post, error) {
	post, err := s.posts.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	visible, err := s.canView(ctx, viewerID, post)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, common.ErrPostNotFound
	}
	return post, nil
}

// UpdatePost edits content, media or visibility of the caller's own post
func (s *PostService) UpdatePost(ctx context.Context, userID, postID string, req *domain.UpdatePostRequest) (*domain.Post, error) {
	post, err := s.authoredPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			return nil, fmt.Errorf("%w: content cannot be blank", common.ErrInvalidInput)
		}
		post.Content = content
		changes["content"] = content
	}
	if req.MediaURLs != nil {
		post.MediaURLs = strings.Join(*req.MediaURLs, ",")
		changes["media_urls"] = post.MediaURLs
	}
	if req.Visibility != nil {
		if !req.Visibility.Valid() {
			return nil, common.ErrInvalidVisibility
		}
		if *req.Visibility != domain.VisibilityPublic && post.SponsorshipActive(s.now()) {
			return nil, fmt.Errorf("%w: sponsored posts must be public", common.ErrInvalidInput)
		}
		post.Visibility = *req.Visibility
		changes["visibility"] = post.Visibility
	}
	if len(changes) == 0 {
		return post, nil
	}

	post.UpdatedAt = s.now()
	changes["updated_at"] = post.UpdatedAt
	if err := s.posts.Update(ctx, post.ID, changes); err != nil {
		return nil, err
	}
	invalidateAudience(ctx, s.follows, s.feeds, userID)
	return post, nil
}

// DeletePost removes the caller's own post. It leaves the candidate pool
// at once, and the author's and followers' cached pages are dropped.
func (s *PostService) DeletePost(ctx context.Context, userID, postID string) error {
	post, err := s.authoredPost(ctx, userID, postID)
	if err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		return err
	}
	invalidateAudience(ctx, s.follows, s.feeds, userID)
	logger.FromContext(ctx).Info().Str("post_id", post.ID).Msg("post deleted")
	return nil
}

// SponsorPost starts a sponsorship of the caller's own public post, or
// restarts it when one is already running. days outside 1..30 falls back
// to the default length.
func (s *PostService) SponsorPost(ctx context.Context, userID, postID string, days int) (*domain.Post, error) {
	post, err := s.authoredPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if post.Visibility != domain.VisibilityPublic {
		return nil, fmt.Errorf("%w: sponsored posts must be public", common.ErrInvalidInput)
	}
	if days < 1 || days > domain.MaxSponsorshipDays {
		days = domain.DefaultSponsorshipDays
	}

	now := s.now()
	end := now.Add(time.Duration(days) * 24 * time.Hour)
	err = s.posts.Update(ctx, post.ID, map[string]interface{}{
		"is_sponsored":       true,
		"sponsorship_end_at": end,
		"updated_at":         now,
	})
	if err != nil {
		return nil, err
	}
	post.IsSponsored = true
	post.SponsorshipEndAt = &end
	post.UpdatedAt = now

	invalidateAudience(ctx, s.follows, s.feeds, userID)
	logger.FromContext(ctx).Info().
		Str("post_id", post.ID).
		Time("sponsorship_end_at", end).
		Msg("post sponsored")
	return post, nil
}

// ToggleLike flips userID's like on a post
func (s *PostService) ToggleLike(ctx context.Context, userID, postID string) (*domain.LikeToggleResult, error) {
	if _, err := s.GetPost(ctx, userID, postID); err != nil {
		return nil, err
	}
	result, authorID, err := s.likes.Toggle(ctx, postID, userID)
	if err != nil {
		return nil, err
	}
	if result.Liked && authorID != userID {
		s.notifier.SendToMember(authorID, &ws.Event{Type: ws.EventLike, Payload: result})
	}
	return result, nil
}

// AddComment comments on a post as userID
func (s *PostService) AddComment(ctx context.Context, userID, postID string, req *domain.CreateCommentRequest) (*domain.PostComment, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is required", common.ErrInvalidInput)
	}
	if _, err := s.GetPost(ctx, userID, postID); err != nil {
		return nil, err
	}

	comment := &domain.PostComment{PostID: postID, UserID: userID, Content: content}
	authorID, err := s.comments.Create(ctx, comment)
	if err != nil {
		return nil, err
	}
	if authorID != userID {
		s.notifier.SendToMember(authorID, &ws.Event{Type: ws.EventComment, Payload: comment})
	}
	return comment, nil
}

// ListComments returns a post's comments, newest first
func (s *PostService) ListComments(ctx context.Context, viewerID, postID string, limit int) ([]*domain.PostComment, error) {
	if _, err := s.GetPost(ctx, viewerID, postID); err != nil {
		return nil, err
	}
	if limit < 1 {
		limit = defaultCommentPage
	}
	if limit > maxCommentPage {
		limit = maxCommentPage
	}
	return s.comments.ListByPost(ctx, postID, limit)
}

// authoredPost loads a post the caller can see and checks they wrote it.
// A post the caller cannot see is reported as missing.
func (s *PostService) authoredPost(ctx context.Context, userID, postID string) (*domain.Post, error) {
	post, err := s.GetPost(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, common.ErrPostNotOwned
	}
	return post, nil
}

func (s *PostService) canView(ctx context.Context, viewerID string, post *domain.Post) (bool, error) {
	if post.UserID == viewerID {
		return true, nil
	}
	switch post.Visibility {
	case domain.VisibilityPublic:
		return true, nil
	case domain.VisibilityFollowers:
		followees, err := s.follows.GetFolloweeIDs(ctx, viewerID)
		if err != nil {
			return false, err
		}
		return domain.NewIDSet(followees...).Has(post.UserID), nil
	default:
		return false, nil
	}
}
