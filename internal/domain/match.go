package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MatchStatus is the stored status of a ledger row
type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "pending"
	MatchStatusMatched  MatchStatus = "matched"
	MatchStatusRejected MatchStatus = "rejected"
)

// Decided reports whether the status is final
func (s MatchStatus) Decided() bool {
	return s == MatchStatusMatched || s == MatchStatusRejected
}

// SwipeDirection right means like, left means pass
type SwipeDirection string

const (
	SwipeRight SwipeDirection = "right"
	SwipeLeft  SwipeDirection = "left"
)

// Valid reports whether d is left or right
func (d SwipeDirection) Valid() bool {
	return d == SwipeRight || d == SwipeLeft
}

// MatchRecord is one directional ledger row. PairKey is the normalized
// unordered pair and is unique, so a pair never has more than one row.
type MatchRecord struct {
	ID             string      `gorm:"column:id;primaryKey;size:36" json:"id"`
	InitiatorPetID string      `gorm:"column:initiator_pet_id;size:36;not null;index" json:"initiatorPetId"`
	TargetPetID    string      `gorm:"column:target_pet_id;size:36;not null;index" json:"targetPetId"`
	PairKey        string      `gorm:"column:pair_key;size:73;not null;uniqueIndex:uq_matches_pair_key" json:"-"`
	Status         MatchStatus `gorm:"column:status;size:16;not null;default:pending" json:"status"`
	Message        *string     `gorm:"column:message;size:500" json:"message,omitempty"`
	CreatedAt      time.Time   `gorm:"column:created_at;index" json:"createdAt"`
	UpdatedAt      time.Time   `gorm:"column:updated_at" json:"updatedAt"`
}

func (MatchRecord) TableName() string {
	return "matches"
}

// BeforeCreate assigns an id and the pair key
func (m *MatchRecord) BeforeCreate(_ *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	m.PairKey = PairKey(m.InitiatorPetID, m.TargetPetID)
	return nil
}

// Involves reports whether petID is either side of the record
func (m *MatchRecord) Involves(petID string) bool {
	return m.InitiatorPetID == petID || m.TargetPetID == petID
}

// Counterpart returns the other pet of the pair
func (m *MatchRecord) Counterpart(petID string) string {
	if m.InitiatorPetID == petID {
		return m.TargetPetID
	}
	return m.InitiatorPetID
}

// PairKey normalizes an unordered pet pair as "min|max"
func PairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// PairState is the per pair state derived from the ledger, as seen by the swiper
type PairState int

const (
	PairStateNone PairState = iota
	PairStatePendingForward
	PairStatePendingReverse
	PairStateMatched
	PairStateRejected
)

func (s PairState) String() string {
	switch s {
	case PairStateNone:
		return "none"
	case PairStatePendingForward:
		return "pending_forward"
	case PairStatePendingReverse:
		return "pending_reverse"
	case PairStateMatched:
		return "matched"
	case PairStateRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// DerivePairState computes the state of rec from the point of view of swiperPetID.
// A nil record means the pair has never interacted.
func DerivePairState(rec *MatchRecord, swiperPetID string) PairState {
	if rec == nil {
		return PairStateNone
	}
	switch rec.Status {
	case MatchStatusMatched:
		return PairStateMatched
	case MatchStatusRejected:
		return PairStateRejected
	}
	if rec.InitiatorPetID == swiperPetID {
		return PairStatePendingForward
	}
	return PairStatePendingReverse
}

// SwipeRequest POST /matches/swipe body
type SwipeRequest struct {
	SwiperPetID string         `json:"swiperPetId" binding:"required"`
	TargetPetID string         `json:"targetPetId" binding:"required"`
	Direction   SwipeDirection `json:"direction" binding:"required"`
}

// CreateMatchRequest POST /matches body
type CreateMatchRequest struct {
	InitiatorPetID string  `json:"initiatorPetId" binding:"required"`
	TargetPetID    string  `json:"targetPetId" binding:"required"`
	Message        *string `json:"message" binding:"omitempty,max=500"`
}

// UpdateMatchStatusRequest PATCH /matches/:id body
type UpdateMatchStatusRequest struct {
	Status MatchStatus `json:"status" binding:"required"`
}
