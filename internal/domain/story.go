package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StoryLifetime is how long a story stays visible
const StoryLifetime = 24 * time.Hour

// Story is an ephemeral post shown in its own lane above the feed
type Story struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"column:user_id;size:36;not null;index:idx_stories_user_expires,priority:1" json:"authorId"`
	PetID     *string   `gorm:"column:pet_id;size:36" json:"petId,omitempty"`
	MediaURL  string    `gorm:"column:media_url;size:500;not null" json:"mediaUrl"`
	Caption   *string   `gorm:"column:caption;size:500" json:"caption,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at" json:"createdAt"`
	ExpiresAt time.Time `gorm:"column:expires_at;not null;index:idx_stories_user_expires,priority:2" json:"expiresAt"`
}

func (Story) TableName() string {
	return "stories"
}

// BeforeCreate assigns an id and the default expiry
func (s *Story) BeforeCreate(_ *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	if s.ExpiresAt.IsZero() {
		s.ExpiresAt = s.CreatedAt.Add(StoryLifetime)
	}
	return nil
}

// CreateStoryRequest POST /stories body
type CreateStoryRequest struct {
	PetID    *string `json:"petId"`
	MediaURL string  `json:"mediaUrl" binding:"required,url,max=500"`
	Caption  *string `json:"caption" binding:"omitempty,max=500"`
}
