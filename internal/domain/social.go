package domain

import "time"

// UserFollow is a directed follow edge
type UserFollow struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	FollowerID string    `gorm:"column:follower_id;size:36;not null;uniqueIndex:uq_user_follows_pair,priority:1" json:"followerId"`
	FolloweeID string    `gorm:"column:followee_id;size:36;not null;uniqueIndex:uq_user_follows_pair,priority:2;index" json:"followeeId"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (UserFollow) TableName() string {
	return "user_follows"
}

// UserBlock hides the blocked user's content from the blocker
type UserBlock struct {
	ID            int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID        string    `gorm:"column:user_id;size:36;not null;uniqueIndex:uq_user_blocks_pair,priority:1" json:"userId"`
	BlockedUserID string    `gorm:"column:blocked_user_id;size:36;not null;uniqueIndex:uq_user_blocks_pair,priority:2" json:"blockedUserId"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (UserBlock) TableName() string {
	return "user_blocks"
}

// FollowPage is one page of follow edges
type FollowPage struct {
	Edges []*UserFollow
	Page  int
	Limit int
	Total int64
}
