package repository

import (
	"context"
	"time"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"gorm.io/gorm"
)

// InteractionRepository exposes a user's interaction history
type InteractionRepository interface {
	GetLikedOrCommentedPostIDs(ctx context.Context, userID string, since time.Time) (domain.IDSet, error)
}

type interactionRepository struct {
	db *gorm.DB
}

// NewInteractionRepository creates a new InteractionRepository
func NewInteractionRepository(db *gorm.DB) InteractionRepository {
	return &interactionRepository{db: db}
}

// GetLikedOrCommentedPostIDs returns ids of posts the user liked or commented on since the given time
func (r *interactionRepository) GetLikedOrCommentedPostIDs(ctx context.Context, userID string, since time.Time) (domain.IDSet, error) {
	var liked, commented []string

	if err := r.db.WithContext(ctx).Model(&domain.PostLike{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Pluck("post_id", &liked).Error; err != nil {
		return nil, common.StorageError("liked post ids", err)
	}
	if err := r.db.WithContext(ctx).Model(&domain.PostComment{}).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Distinct().
		Pluck("post_id", &commented).Error; err != nil {
		return nil, common.StorageError("commented post ids", err)
	}

	ids := domain.NewIDSet(liked...)
	for _, id := range commented {
		ids.Add(id)
	}
	return ids, nil
}
