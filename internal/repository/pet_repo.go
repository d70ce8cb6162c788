package repository

import (
	"context"
	"errors"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"gorm.io/gorm"
)

// CandidateQuery selects swipe candidates for PetID
type CandidateQuery struct {
	PetID         string
	OwnerID       string
	ExcludePetIDs []string
	Limit         int
}

// PetRepository pet directory access
type PetRepository interface {
	Create(ctx context.Context, pet *domain.Pet) error
	FindByID(ctx context.Context, id string) (*domain.Pet, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*domain.Pet, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) error
	Delete(ctx context.Context, id string) error
	ListSwipeCandidates(ctx context.Context, q CandidateQuery) ([]*domain.Pet, error)
}

type petRepository struct {
	db *gorm.DB
}

// NewPetRepository creates a new PetRepository
func NewPetRepository(db *gorm.DB) PetRepository {
	return &petRepository{db: db}
}

// Create inserts a pet
func (r *petRepository) Create(ctx context.Context, pet *domain.Pet) error {
	if err := r.db.WithContext(ctx).Create(pet).Error; err != nil {
		return common.StorageError("create pet", err)
	}
	return nil
}

// FindByID returns a pet or common.ErrPetNotFound
func (r *petRepository) FindByID(ctx context.Context, id string) (*domain.Pet, error) {
	var pet domain.Pet
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&pet).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrPetNotFound
	}
	if err != nil {
		return nil, common.StorageError("find pet", err)
	}
	return &pet, nil
}

// ListByOwner returns every pet of ownerID, newest first
func (r *petRepository) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Pet, error) {
	var pets []*domain.Pet
	err := r.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Find(&pets).Error
	if err != nil {
		return nil, common.StorageError("list pets by owner", err)
	}
	return pets, nil
}

// Update writes changes by column name
func (r *petRepository) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&domain.Pet{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return common.StorageError("update pet", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrPetNotFound
	}
	return nil
}

// Delete removes a pet and every match record it is part of, so no pair
// key is left pointing at a missing pet
func (r *petRepository) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("initiator_pet_id = ? OR target_pet_id = ?", id, id).
			Delete(&domain.MatchRecord{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Pet{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return common.ErrPetNotFound
	}
	if err != nil {
		return common.StorageError("delete pet", err)
	}
	return nil
}

// ListSwipeCandidates excludes the pet itself, its owner's pets and the given ids
func (r *petRepository) ListSwipeCandidates(ctx context.Context, q CandidateQuery) ([]*domain.Pet, error) {
	query := r.db.WithContext(ctx).
		Where("id <> ?", q.PetID).
		Where("user_id <> ?", q.OwnerID)
	if len(q.ExcludePetIDs) > 0 {
		query = query.Where("id NOT IN ?", q.ExcludePetIDs)
	}

	var pets []*domain.Pet
	err := query.Order("created_at DESC").Order("id ASC").Limit(q.Limit).Find(&pets).Error
	if err != nil {
		return nil, common.StorageError("list swipe candidates", err)
	}
	return pets, nil
}
