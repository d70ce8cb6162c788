package repository

import (
	"context"
	"errors"
	"time"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"gorm.io/gorm"
)

// StoryRepository story data access interface
type StoryRepository interface {
	Create(ctx context.Context, story *domain.Story) error
	FindByID(ctx context.Context, id string) (*domain.Story, error)
	Delete(ctx context.Context, id string) error
	FetchActive(ctx context.Context, authorIDs []string, now time.Time, limit int) ([]*domain.Story, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type storyRepository struct {
	db *gorm.DB
}

// NewStoryRepository creates a new StoryRepository
func NewStoryRepository(db *gorm.DB) StoryRepository {
	return &storyRepository{db: db}
}

// Create inserts a story
func (r *storyRepository) Create(ctx context.Context, story *domain.Story) error {
	if err := r.db.WithContext(ctx).Create(story).Error; err != nil {
		return common.StorageError("create story", err)
	}
	return nil
}

// FindByID returns a story or common.ErrStoryNotFound
func (r *storyRepository) FindByID(ctx context.Context, id string) (*domain.Story, error) {
	var story domain.Story
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&story).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrStoryNotFound
	}
	if err != nil {
		return nil, common.StorageError("find story", err)
	}
	return &story, nil
}

// Delete hard deletes one story
func (r *storyRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Story{})
	if res.Error != nil {
		return common.StorageError("delete story", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrStoryNotFound
	}
	return nil
}

// FetchActive returns unexpired stories of the given authors, newest first
func (r *storyRepository) FetchActive(ctx context.Context, authorIDs []string, now time.Time, limit int) ([]*domain.Story, error) {
	if len(authorIDs) == 0 || limit <= 0 {
		return []*domain.Story{}, nil
	}

	var stories []*domain.Story
	err := r.db.WithContext(ctx).
		Where("user_id IN ?", authorIDs).
		Where("expires_at > ?", now).
		Order("created_at DESC").
		Order("id ASC").
		Limit(limit).
		Find(&stories).Error
	if err != nil {
		return nil, common.StorageError("fetch stories", err)
	}
	return stories, nil
}

// DeleteExpired hard deletes stories that expired at or before now
func (r *storyRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&domain.Story{})
	if res.Error != nil {
		return 0, common.StorageError("delete expired stories", res.Error)
	}
	return res.RowsAffected, nil
}
