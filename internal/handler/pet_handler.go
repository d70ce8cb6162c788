package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
)

// PetDirectory manages pet profiles. *service.PetService implements it.
type PetDirectory interface {
	CreatePet(ctx context.Context, ownerID string, req *domain.CreatePetRequest) (*domain.Pet, error)
	ListMyPets(ctx context.Context, ownerID string) ([]*domain.Pet, error)
	GetPet(ctx context.Context, id string) (*domain.Pet, error)
	UpdatePet(ctx context.Context, ownerID, petID string, req *domain.UpdatePetRequest) (*domain.Pet, error)
	DeletePet(ctx context.Context, ownerID, petID string) error
}

// PetHandler handles pet profile endpoints
type PetHandler struct {
	pets PetDirectory
}

// NewPetHandler creates a new PetHandler
func NewPetHandler(pets PetDirectory) *PetHandler {
	return &PetHandler{pets: pets}
}

// CreatePet handles POST /api/v1/pets
func (h *PetHandler) CreatePet(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	var req domain.CreatePetRequest
	if !bindJSON(c, &req) {
		return
	}

	pet, err := h.pets.CreatePet(c.Request.Context(), userID, &req)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.CreatedResponse(c, pet)
}

// ListMyPets handles GET /api/v1/pets/me
func (h *PetHandler) ListMyPets(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	pets, err := h.pets.ListMyPets(c.Request.Context(), userID)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, pets, &common.Meta{Total: int64(len(pets))})
}

// GetPet handles GET /api/v1/pets/:id
func (h *PetHandler) GetPet(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	pet, err := h.pets.GetPet(c.Request.Context(), id)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, pet, nil)
}

// UpdatePet handles PATCH /api/v1/pets/:id
func (h *PetHandler) UpdatePet(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req domain.UpdatePetRequest
	if !bindJSON(c, &req) {
		return
	}

	pet, err := h.pets.UpdatePet(c.Request.Context(), userID, id, &req)
	if err != nil {
		common.HandleError(c, err)
		return
	}
	common.SuccessResponse(c, pet, nil)
}

// DeletePet handles DELETE /api/v1/pets/:id
func (h *PetHandler) DeletePet(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.pets.DeletePet(c.Request.Context(), userID, id); err != nil {
		common.HandleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
