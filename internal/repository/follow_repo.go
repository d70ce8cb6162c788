package repository

import (
	"context"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository social graph access
type FollowRepository interface {
	Follow(ctx context.Context, followerID, followeeID string) (bool, error)
	Unfollow(ctx context.Context, followerID, followeeID string) (bool, error)
	GetFolloweeIDs(ctx context.Context, followerID string) ([]string, error)
	GetFollowerIDs(ctx context.Context, followeeID string) ([]string, error)
	// ListFollowers pages the edges pointing at userID, newest first
	ListFollowers(ctx context.Context, userID string, offset, limit int) ([]*domain.UserFollow, int64, error)
	// ListFollowing pages the edges leaving userID, newest first
	ListFollowing(ctx context.Context, userID string, offset, limit int) ([]*domain.UserFollow, int64, error)
}

type followRepository struct {
	db *gorm.DB
}

// NewFollowRepository creates a new FollowRepository
func NewFollowRepository(db *gorm.DB) FollowRepository {
	return &followRepository{db: db}
}

// Follow adds the edge. Reports false when it already existed.
func (r *followRepository) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.UserFollow{FollowerID: followerID, FolloweeID: followeeID})
	if res.Error != nil {
		return false, common.StorageError("follow", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Unfollow removes the edge. Reports false when there was none.
func (r *followRepository) Unfollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND followee_id = ?", followerID, followeeID).
		Delete(&domain.UserFollow{})
	if res.Error != nil {
		return false, common.StorageError("unfollow", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetFolloweeIDs returns ids of users followerID follows
func (r *followRepository) GetFolloweeIDs(ctx context.Context, followerID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.UserFollow{}).
		Where("follower_id = ?", followerID).
		Pluck("followee_id", &ids).Error
	if err != nil {
		return nil, common.StorageError("followee ids", err)
	}
	return ids, nil
}

// GetFollowerIDs returns ids of users following followeeID
func (r *followRepository) GetFollowerIDs(ctx context.Context, followeeID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.UserFollow{}).
		Where("followee_id = ?", followeeID).
		Pluck("follower_id", &ids).Error
	if err != nil {
		return nil, common.StorageError("follower ids", err)
	}
	return ids, nil
}

func (r *followRepository) ListFollowers(ctx context.Context, userID string, offset, limit int) ([]*domain.UserFollow, int64, error) {
	return r.listEdges(ctx, "followee_id", userID, offset, limit)
}

func (r *followRepository) ListFollowing(ctx context.Context, userID string, offset, limit int) ([]*domain.UserFollow, int64, error) {
	return r.listEdges(ctx, "follower_id", userID, offset, limit)
}

func (r *followRepository) listEdges(ctx context.Context, column, userID string, offset, limit int) ([]*domain.UserFollow, int64, error) {
	edgesOf := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.UserFollow{}).Where(column+" = ?", userID)
	}

	var total int64
	if err := edgesOf().Count(&total).Error; err != nil {
		return nil, 0, common.StorageError("count follows", err)
	}

	edges := []*domain.UserFollow{}
	if total == 0 || int64(offset) >= total {
		return edges, total, nil
	}
	err := edgesOf().Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&edges).Error
	if err != nil {
		return nil, 0, common.StorageError("list follows", err)
	}
	return edges, total, nil
}
