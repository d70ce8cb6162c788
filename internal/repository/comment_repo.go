package repository

import (
	"context"
	"errors"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"gorm.io/gorm"
)

// CommentRepository comment data access interface
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.PostComment) (string, error)
	ListByPost(ctx context.Context, postID string, limit int) ([]*domain.PostComment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts the comment and bumps posts.comments_count in one
// transaction. Returns the post author id.
func (r *commentRepository) Create(ctx context.Context, comment *domain.PostComment) (string, error) {
	var authorID string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post domain.Post
		if err := tx.Select("id", "user_id").Where("id = ?", comment.PostID).First(&post).Error; err != nil {
			return err
		}
		authorID = post.UserID

		if err := tx.Create(comment).Error; err != nil {
			return err
		}
		return tx.Model(&domain.Post{}).
			Where("id = ?", comment.PostID).
			UpdateColumn("comments_count", gorm.Expr("comments_count + 1")).Error
	})

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", common.ErrPostNotFound
	}
	if err != nil {
		return "", common.StorageError("create comment", err)
	}
	return authorID, nil
}

// ListByPost returns the newest comments of a post
func (r *commentRepository) ListByPost(ctx context.Context, postID string, limit int) ([]*domain.PostComment, error) {
	var comments []*domain.PostComment
	err := r.db.WithContext(ctx).
		Where("post_id = ?", postID).
		Order("created_at DESC").
		Limit(limit).
		Find(&comments).Error
	if err != nil {
		return nil, common.StorageError("list comments", err)
	}
	return comments, nil
}
