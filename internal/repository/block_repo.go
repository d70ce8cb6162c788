package repository

import (
	"context"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BlockRepository block data access interface
type BlockRepository interface {
	Block(ctx context.Context, userID, blockedUserID string) (bool, error)
	Unblock(ctx context.Context, userID, blockedUserID string) (bool, error)
	GetBlockedUserIDs(ctx context.Context, userID string) ([]string, error)
}

type blockRepository struct {
	db *gorm.DB
}

// NewBlockRepository creates a new BlockRepository
func NewBlockRepository(db *gorm.DB) BlockRepository {
	return &blockRepository{db: db}
}

// Block adds a block. Reports false when it already existed.
func (r *blockRepository) Block(ctx context.Context, userID, blockedUserID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.UserBlock{UserID: userID, BlockedUserID: blockedUserID})
	if res.Error != nil {
		return false, common.StorageError("block", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Unblock removes a block. Reports false when there was none.
func (r *blockRepository) Unblock(ctx context.Context, userID, blockedUserID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("user_id = ? AND blocked_user_id = ?", userID, blockedUserID).
		Delete(&domain.UserBlock{})
	if res.Error != nil {
		return false, common.StorageError("unblock", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// GetBlockedUserIDs returns all user ids blocked by userID
func (r *blockRepository) GetBlockedUserIDs(ctx context.Context, userID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&domain.UserBlock{}).
		Where("user_id = ?", userID).
		Pluck("blocked_user_id", &ids).Error
	if err != nil {
		return nil, common.StorageError("blocked user ids", err)
	}
	return ids, nil
}
