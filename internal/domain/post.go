package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Visibility controls who may see a post
type Visibility string

const (
	VisibilityPublic    Visibility = "public"
	VisibilityFollowers Visibility = "followers"
	VisibilityPrivate   Visibility = "private"
)

// Valid reports whether v is a known visibility
func (v Visibility) Valid() bool {
	switch v {
	case VisibilityPublic, VisibilityFollowers, VisibilityPrivate:
		return true
	}
	return false
}

// FeedVisibilities are the visibilities eligible for the ranked feed
var FeedVisibilities = []Visibility{VisibilityPublic, VisibilityFollowers}

// Post is a content item. Authorship is immutable, counters are owned by
// the like and comment services.
type Post struct {
	ID               string     `gorm:"column:id;primaryKey;size:36" json:"id"`
	UserID           string     `gorm:"column:user_id;size:36;not null;index:idx_posts_user_created,priority:1" json:"authorId"`
	PetID            *string    `gorm:"column:pet_id;size:36" json:"petId,omitempty"`
	Content          string     `gorm:"column:content;type:text" json:"content"`
	MediaURLs        string     `gorm:"column:media_urls;type:text" json:"mediaUrls,omitempty"` // comma separated
	Visibility       Visibility `gorm:"column:visibility;size:16;not null;default:public" json:"visibility"`
	LikesCount       int        `gorm:"column:likes_count;not null;default:0" json:"likeCount"`
	CommentsCount    int        `gorm:"column:comments_count;not null;default:0" json:"commentCount"`
	IsSponsored      bool       `gorm:"column:is_sponsored;not null;default:false;index:idx_posts_sponsored,priority:1" json:"isSponsored"`
	SponsorshipEndAt *time.Time `gorm:"column:sponsorship_end_at;index:idx_posts_sponsored,priority:2" json:"sponsorshipEndAt,omitempty"`
	CreatedAt        time.Time  `gorm:"column:created_at;index:idx_posts_user_created,priority:2" json:"createdAt"`
	UpdatedAt        time.Time  `gorm:"column:updated_at" json:"updatedAt"`
}

func (Post) TableName() string {
	return "posts"
}

// BeforeCreate assigns an id when the caller did not
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// SponsorshipActive reports whether the post may be spliced as sponsored content at now
func (p *Post) SponsorshipActive(now time.Time) bool {
	return p.IsSponsored && p.SponsorshipEndAt != nil && p.SponsorshipEndAt.After(now)
}

// CreatePostRequest POST /posts body
type CreatePostRequest struct {
	PetID            *string    `json:"petId"`
	Content          string     `json:"content" binding:"required,max=5000"`
	MediaURLs        []string   `json:"mediaUrls"`
	Visibility       Visibility `json:"visibility"`
	IsSponsored      bool       `json:"isSponsored"`
	SponsorshipEndAt *time.Time `json:"sponsorshipEndAt"`
}

// UpdatePostRequest PATCH /posts/:id body. Nil fields are left unchanged.
type UpdatePostRequest struct {
	Content    *string     `json:"content" binding:"omitempty,max=5000"`
	MediaURLs  *[]string   `json:"mediaUrls"`
	Visibility *Visibility `json:"visibility"`
}

// Sponsorship length bounds, in days
const (
	DefaultSponsorshipDays = 7
	MaxSponsorshipDays     = 30
)

// SponsorPostRequest POST /posts/:id/sponsor body
type SponsorPostRequest struct {
	Days int `json:"days" binding:"omitempty,gte=1,lte=30"`
}

// PostLike is one user's like on one post
type PostLike struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PostID    string    `gorm:"column:post_id;size:36;not null;uniqueIndex:uq_post_likes_post_user,priority:1" json:"postId"`
	UserID    string    `gorm:"column:user_id;size:36;not null;uniqueIndex:uq_post_likes_post_user,priority:2;index" json:"userId"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (PostLike) TableName() string {
	return "post_likes"
}

// LikeToggleResult is the state after a like toggle
type LikeToggleResult struct {
	PostID    string `json:"postId"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"likeCount"`
}

// PostComment is a flat comment on a post
type PostComment struct {
	ID        string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	PostID    string    `gorm:"column:post_id;size:36;not null;index" json:"postId"`
	UserID    string    `gorm:"column:user_id;size:36;not null;index" json:"authorId"`
	Content   string    `gorm:"column:content;type:text;not null" json:"content"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"createdAt"`
}

func (PostComment) TableName() string {
	return "post_comments"
}

// BeforeCreate assigns an id when the caller did not
func (c *PostComment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// CreateCommentRequest POST /posts/:id/comments body
type CreateCommentRequest struct {
	Content string `json:"content" binding:"required,max=2000"`
}
