package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/pawmatch/pawmatch-backend/internal/repository"
)

// PetService manages pet profiles
type PetService struct {
	pets repository.PetRepository
}

// NewPetService creates a PetService
func NewPetService(pets repository.PetRepository) *PetService {
	return &PetService{pets: pets}
}

// CreatePet registers a pet owned by ownerID
func (s *PetService) CreatePet(ctx context.Context, ownerID string, req *domain.CreatePetRequest) (*domain.Pet, error) {
	name := strings.TrimSpace(req.Name)
	species := strings.TrimSpace(req.Species)
	if name == "" || species == "" {
		return nil, fmt.Errorf("%w: name and species are required", common.ErrInvalidInput)
	}
	if req.Age < 0 {
		return nil, fmt.Errorf("%w: age cannot be negative", common.ErrInvalidInput)
	}

	pet := &domain.Pet{
		OwnerID:        ownerID,
		Name:           name,
		Species:        species,
		Breed:          strings.TrimSpace(req.Breed),
		Age:            req.Age,
		Gender:         req.Gender,
		Bio:            req.Bio,
		ProfilePicture: req.ProfilePicture,
	}
	if err := s.pets.Create(ctx, pet); err != nil {
		return nil, err
	}
	return pet, nil
}

// ListMyPets returns ownerID's pets, newest first
func (s *PetService) ListMyPets(ctx context.Context, ownerID string) ([]*domain.Pet, error) {
	return s.pets.ListByOwner(ctx, ownerID)
}

// GetPet returns any pet profile
func (s *PetService) GetPet(ctx context.Context, id string) (*domain.Pet, error) {
	return s.pets.FindByID(ctx, id)
}

// UpdatePet edits the caller's own pet
func (s *PetService) UpdatePet(ctx context.Context, ownerID, petID string, req *domain.UpdatePetRequest) (*domain.Pet, error) {
	pet, err := ownedPet(ctx, s.pets, ownerID, petID)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be blank", common.ErrInvalidInput)
		}
		pet.Name = name
		changes["name"] = name
	}
	if req.Species != nil {
		species := strings.TrimSpace(*req.Species)
		if species == "" {
			return nil, fmt.Errorf("%w: species cannot be blank", common.ErrInvalidInput)
		}
		pet.Species = species
		changes["species"] = species
	}
	if req.Breed != nil {
		pet.Breed = strings.TrimSpace(*req.Breed)
		changes["breed"] = pet.Breed
	}
	if req.Age != nil {
		if *req.Age < 0 {
			return nil, fmt.Errorf("%w: age cannot be negative", common.ErrInvalidInput)
		}
		pet.Age = *req.Age
		changes["age"] = pet.Age
	}
	if req.Gender != nil {
		pet.Gender = *req.Gender
		changes["gender"] = pet.Gender
	}
	if req.Bio != nil {
		pet.Bio = req.Bio
		changes["bio"] = *req.Bio
	}
	if req.ProfilePicture != nil {
		pet.ProfilePicture = req.ProfilePicture
		changes["profile_picture"] = *req.ProfilePicture
	}
	if len(changes) == 0 {
		return pet, nil
	}

	if err := s.pets.Update(ctx, pet.ID, changes); err != nil {
		return nil, err
	}
	return pet, nil
}

// DeletePet removes the caller's own pet together with its match history
func (s *PetService) DeletePet(ctx context.Context, ownerID, petID string) error {
	pet, err := ownedPet(ctx, s.pets, ownerID, petID)
	if err != nil {
		return err
	}
	return s.pets.Delete(ctx, pet.ID)
}

// ownedPet loads petID and checks it belongs to userID
func ownedPet(ctx context.Context, pets repository.PetRepository, userID, petID string) (*domain.Pet, error) {
	pet, err := pets.FindByID(ctx, petID)
	if err != nil {
		return nil, err
	}
	if pet.OwnerID != userID {
		return nil, common.ErrPetNotOwned
	}
	return pet, nil
}
