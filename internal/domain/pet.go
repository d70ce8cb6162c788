package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Pet profile. Owned by exactly one user.
type Pet struct {
	ID             string    `gorm:"column:id;primaryKey;size:36" json:"id"`
	OwnerID        string    `gorm:"column:user_id;size:36;not null;index" json:"ownerId"`
	Name           string    `gorm:"column:name;size:100;not null" json:"name"`
	Species        string    `gorm:"column:species;size:50;not null" json:"species"`
	Breed          string    `gorm:"column:breed;size:100" json:"breed,omitempty"`
	Age            int       `gorm:"column:age" json:"age,omitempty"`
	Gender         string    `gorm:"column:gender;size:10" json:"gender,omitempty"`
	Bio            *string   `gorm:"column:bio;type:text" json:"bio,omitempty"`
	ProfilePicture *string   `gorm:"column:profile_picture;size:500" json:"profilePicture,omitempty"`
	CreatedAt      time.Time `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt      time.Time `gorm:"column:updated_at" json:"updatedAt"`
}

func (Pet) TableName() string {
	return "pets"
}

// BeforeCreate assigns an id when the caller did not
func (p *Pet) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// CreatePetRequest POST /pets body
type CreatePetRequest struct {
	Name           string  `json:"name" binding:"required,max=100"`
	Species        string  `json:"species" binding:"required,max=50"`
	Breed          string  `json:"breed" binding:"max=100"`
	Age            int     `json:"age" binding:"gte=0,lte=60"`
	Gender         string  `json:"gender" binding:"omitempty,oneof=male female unknown"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profilePicture" binding:"omitempty,url"`
}

// UpdatePetRequest PATCH /pets/:id body. Nil fields are left unchanged.
type UpdatePetRequest struct {
	Name           *string `json:"name" binding:"omitempty,max=100"`
	Species        *string `json:"species" binding:"omitempty,max=50"`
	Breed          *string `json:"breed" binding:"omitempty,max=100"`
	Age            *int    `json:"age" binding:"omitempty,gte=0,lte=60"`
	Gender         *string `json:"gender" binding:"omitempty,oneof=male female unknown"`
	Bio            *string `json:"bio"`
	ProfilePicture *string `json:"profilePicture" binding:"omitempty,url"`
}
