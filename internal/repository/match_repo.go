package repository

import (
	"context"
	"errors"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleRecord is returned by UpdateStatus when the row no longer has
// the status the caller read
var ErrStaleRecord = errors.New("match record changed concurrently")

// InnoDB errors after which the transaction was rolled back and can be rerun
const (
	mysqlErrLockWaitTimeout = 1205
	mysqlErrDeadlock        = 1213
)

// IsLockConflict reports a deadlock or lock wait timeout. Two first swipes
// on one pair both take a gap lock on the missing row and then insert, so
// InnoDB aborts one of them.
func IsLockConflict(err error) bool {
	var myErr *mysqldriver.MySQLError
	if !errors.As(err, &myErr) {
		return false
	}
	return myErr.Number == mysqlErrDeadlock || myErr.Number == mysqlErrLockWaitTimeout
}

// MatchRepository is the match ledger. It holds no business rules.
type MatchRepository interface {
	// FindRecord returns the row for the unordered pair, whichever pet initiated it, or nil
	FindRecord(ctx context.Context, petA, petB string) (*domain.MatchRecord, error)
	FindByID(ctx context.Context, id string) (*domain.MatchRecord, error)
	FindAllInvolving(ctx context.Context, petID string) ([]*domain.MatchRecord, error)
	FindAllInvolvingAny(ctx context.Context, petIDs []string) ([]*domain.MatchRecord, error)
	Create(ctx context.Context, initiatorPetID, targetPetID string, status domain.MatchStatus, message *string) (*domain.MatchRecord, error)
	// UpdateStatus moves rec to status only if it still holds rec.Status
	UpdateStatus(ctx context.Context, rec *domain.MatchRecord, status domain.MatchStatus) error
	// Transaction runs fn against a ledger bound to one transaction; reads take row locks
	Transaction(ctx context.Context, fn func(ledger MatchRepository) error) error
}

type matchRepository struct {
	db        *gorm.DB
	forUpdate bool
}

// NewMatchRepository creates a new MatchRepository
func NewMatchRepository(db *gorm.DB) MatchRepository {
	return &matchRepository{db: db}
}

func (r *matchRepository) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	if r.forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

// FindRecord looks the pair up by its normalized key, which covers both orderings
func (r *matchRepository) FindRecord(ctx context.Context, petA, petB string) (*domain.MatchRecord, error) {
	var recs []*domain.MatchRecord
	err := r.query(ctx).
		Where("pair_key = ?", domain.PairKey(petA, petB)).
		Limit(1).
		Find(&recs).Error
	if err != nil {
		return nil, common.StorageError("find match record", err)
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return recs[0], nil
}

// FindByID returns a record or common.ErrMatchNotFound
func (r *matchRepository) FindByID(ctx context.Context, id string) (*domain.MatchRecord, error) {
	var rec domain.MatchRecord
	err := r.query(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.ErrMatchNotFound
	}
	if err != nil {
		return nil, common.StorageError("find match", err)
	}
	return &rec, nil
}

// FindAllInvolving returns every record where petID is either side, newest first
func (r *matchRepository) FindAllInvolving(ctx context.Context, petID string) ([]*domain.MatchRecord, error) {
	var recs []*domain.MatchRecord
	err := r.db.WithContext(ctx).
		Where("initiator_pet_id = ? OR target_pet_id = ?", petID, petID).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, common.StorageError("find matches involving pet", err)
	}
	return recs, nil
}

// FindAllInvolvingAny returns every record touching any of petIDs, newest first
func (r *matchRepository) FindAllInvolvingAny(ctx context.Context, petIDs []string) ([]*domain.MatchRecord, error) {
	if len(petIDs) == 0 {
		return []*domain.MatchRecord{}, nil
	}
	var recs []*domain.MatchRecord
	err := r.db.WithContext(ctx).
		Where("initiator_pet_id IN ? OR target_pet_id IN ?", petIDs, petIDs).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, common.StorageError("find matches involving pets", err)
	}
	return recs, nil
}

// Create inserts a directional row. A concurrent insert for the same pair
// fails on the pair key index with gorm.ErrDuplicatedKey in the chain.
func (r *matchRepository) Create(ctx context.Context, initiatorPetID, targetPetID string, status domain.MatchStatus, message *string) (*domain.MatchRecord, error) {
	rec := &domain.MatchRecord{
		InitiatorPetID: initiatorPetID,
		TargetPetID:    targetPetID,
		Status:         status,
		Message:        message,
	}
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return nil, common.StorageError("create match record", err)
	}
	return rec, nil
}

// UpdateStatus is a compare-and-set on the status column
func (r *matchRepository) UpdateStatus(ctx context.Context, rec *domain.MatchRecord, status domain.MatchStatus) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&domain.MatchRecord{}).
		Where("id = ? AND status = ?", rec.ID, rec.Status).
		Updates(map[string]interface{}{"status": status, "updated_at": now})
	if res.Error != nil {
		return common.StorageError("update match status", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrStaleRecord
	}
	rec.Status = status
	rec.UpdatedAt = now
	return nil
}

// Transaction implements MatchRepository
func (r *matchRepository) Transaction(ctx context.Context, fn func(ledger MatchRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&matchRepository{db: tx, forUpdate: true})
	})
}
