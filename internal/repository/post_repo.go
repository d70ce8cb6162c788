package repository

import (
	"context"
	"errors"
	"time"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"gorm.io/gorm"
)

// TimelineQuery bounds a candidate pool fetch
type TimelineQuery struct {
	AuthorIDs        []string
	Since            time.Time
	Visibilities     []domain.Visibility
	ExcludeAuthorIDs []string
	Limit            int
}

// PostRepository is the candidate store for the feed. It only retrieves,
// ranking happens in the service layer.
type PostRepository interface {
	FetchRecentTimeline(ctx context.Context, q TimelineQuery) ([]*domain.Post, error)
	FetchSponsoredCandidate(ctx context.Context, excludeAuthorIDs []string, now time.Time) (*domain.Post, error)
	Create(ctx context.Context, post *domain.Post) error
	FindByID(ctx context.Context, id string) (*domain.Post, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) error
	Delete(ctx context.Context, id string) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new PostRepository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// FetchRecentTimeline returns at most q.Limit posts, newest first
func (r *postRepository) FetchRecentTimeline(ctx context.Context, q TimelineQuery) ([]*domain.Post, error) {
	if len(q.AuthorIDs) == 0 || q.Limit <= 0 {
		return []*domain.Post{}, nil
	}

	query := r.db.WithContext(ctx).
		Where("user_id IN ?", q.AuthorIDs).
		Where("created_at >= ?", q.Since)
	if len(q.Visibilities) > 0 {
		query = query.Where("visibility IN ?", q.Visibilities)
	}
	if len(q.ExcludeAuthorIDs) > 0 {
		query = query.Where("user_id NOT IN ?", q.ExcludeAuthorIDs)
	}

	var posts []*domain.Post
	err := query.Order("created_at DESC").Order("id ASC").Limit(q.Limit).Find(&posts).Error
	if err != nil {
		return nil, common.StorageError("fetch timeline", err)
	}
	return posts, nil
}

// FetchSponsoredCandidate returns the newest public post with an active
// sponsorship window, or nil when there is none
func (r *postRepository) FetchSponsoredCandidate(ctx context.Context, excludeAuthorIDs []string, now time.Time) (*domain.Post, error) {
	query := r.db.WithContext(ctx).
		Where("is_sponsored = ?", true).
		Where("sponsorship_end_at > ?", now).
		Where("visibility = ?", domain.VisibilityPublic)
	if len(excludeAuthorIDs) > 0 {
		query = query.Where("user_id NOT IN ?", excludeAuthorIDs)
	}

	var posts []*domain.Post
	if err := query.Order("created_at DESC").Order("id ASC").Limit(1).Find(&posts).Error; err != nil {
		return nil, common.StorageError("fetch sponsored", err)
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return posts[0], nil
}

// Create inserts a post
func (r *postRepository) Create(ctx context.Context, post *domain.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return common.StorageError("create post", err)
	}
	return nil
}

// FindByID returns a post or common.ErrPostNotFound
func (r *postRepository) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	var post domain.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrPostNotFound
	}
	if err != nil {
		return nil, common.StorageError("find post", err)
	}
	return &post, nil
}

// Update writes changes by column name, so zero values are stored too
func (r *postRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&domain.Post{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return common.StorageError("update post", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrPostNotFound
	}
	return nil
}

// Delete removes a post along with its likes and comments
func (r *postRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", id).Delete(&domain.PostLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&domain.PostComment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Post{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrPostNotFound
	}
	if err != nil {
		return common.StorageError("delete post", err)
	}
	return nil
}
