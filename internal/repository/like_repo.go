package repository

import (
	"context"
	"errors"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository toggles likes and keeps posts.likes_count in step
type LikeRepository interface {
	Toggle(ctx context.Context, postID, userID string) (*domain.LikeToggleResult, string, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle removes the caller's like if present, otherwise adds it.
// Returns the new state and the post author id.
func (r *likeRepository) Toggle(ctx context.Context, postID, userID string) (*domain.LikeToggleResult, string, error) {
	result := &domain.LikeToggleResult{PostID: postID}
	var authorID string

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id", "user_id").
			Where("id = ?", postID).
			First(&post).Error; err != nil {
			return err
		}
		authorID = post.UserID

		del := tx.Where("post_id = ? AND user_id = ?", postID, userID).Delete(&domain.PostLike{})
		if del.Error != nil {
			return del.Error
		}

		if del.RowsAffected > 0 {
			result.Liked = false
			// 0 미만으로 내려가지 않도록
			if err := tx.Model(&domain.Post{}).
				Where("id = ? AND likes_count > 0", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count - 1")).Error; err != nil {
				return err
			}
		} else {
			result.Liked = true
			if err := tx.Create(&domain.PostLike{PostID: postID, UserID: userID}).Error; err != nil {
				return err
			}
			if err := tx.Model(&domain.Post{}).
				Where("id = ?", postID).
				UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error; err != nil {
				return err
			}
		}

		var updated domain.Post
		if err := tx.Select("likes_count").Where("id = ?", postID).First(&updated).Error; err != nil {
			return err
		}
		result.LikeCount = updated.LikesCount
		return nil
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", common.ErrPostNotFound
	}
	if err != nil {
		return nil, "", common.StorageError("toggle like", err)
	}
	return result, authorID, nil
}
