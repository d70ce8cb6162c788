package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/pawmatch/pawmatch-backend/internal/repository"
	"github.com/pawmatch/pawmatch-backend/internal/ws"
	"github.com/pawmatch/pawmatch-backend/pkg/lock"
	"github.com/pawmatch/pawmatch-backend/pkg/logger"
	"gorm.io/gorm"
)

// MatchOptions tunes the reconciler
type MatchOptions struct {
	CandidateCap int
	MaxAttempts  int // ledger write attempts when a concurrent writer wins
}

// DefaultMatchOptions returns the production defaults
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{CandidateCap: 20, MaxAttempts: 3}
}

// swipeAction is what a swipe does to the ledger
type swipeAction int

const (
	actionCreate swipeAction = iota
	actionKeep
	actionMatch
	actionReject
	actionConflict
)

func (a swipeAction) String() string {
	switch a {
	case actionCreate:
		return "created"
	case actionKeep:
		return "unchanged"
	case actionMatch:
		return "matched"
	case actionReject:
		return "rejected"
	default:
		return "conflict"
	}
}

// swipeTransitions is the reconciler decision table
var swipeTransitions = map[domain.PairState]map[domain.SwipeDirection]swipeAction{
	domain.PairStateNone: {
		domain.SwipeRight: actionCreate,
		domain.SwipeLeft:  actionCreate,
	},
	domain.PairStatePendingForward: {
		domain.SwipeRight: actionKeep,
		domain.SwipeLeft:  actionReject,
	},
	domain.PairStatePendingReverse: {
		domain.SwipeRight: actionMatch,
		domain.SwipeLeft:  actionReject,
	},
	domain.PairStateMatched: {
		domain.SwipeRight: actionConflict,
		domain.SwipeLeft:  actionConflict,
	},
	domain.PairStateRejected: {
		domain.SwipeRight: actionConflict,
		domain.SwipeLeft:  actionConflict,
	},
}

func decideSwipe(state domain.PairState, dir domain.SwipeDirection) swipeAction {
	if byDir, ok := swipeTransitions[state]; ok {
		if action, ok := byDir[dir]; ok {
			return action
		}
	}
	return actionConflict
}

// MatchService owns the swipe state machine and the match ledger workflows
type MatchService struct {
	ledger   repository.MatchRepository
	pets     repository.PetRepository
	locker   lock.Locker
	notifier Notifier
	opts     MatchOptions
}

// NewMatchService creates a MatchService. notifier may be nil.
func NewMatchService(
	ledger repository.MatchRepository,
	pets repository.PetRepository,
	locker lock.Locker,
	notifier Notifier,
	opts MatchOptions,
) *MatchService {
	if locker == nil {
		locker = lock.NewKeyedMutex()
	}
	return &MatchService{
		ledger:   ledger,
		pets:     pets,
		locker:   locker,
		notifier: notifierOrNoop(notifier),
		opts:     opts,
	}
}

// Swipe applies one swipe by userID's pet and returns the resulting ledger row.
//
// Input is validated before any storage access. Ownership of the swiping
// pet and existence of the target are checked before the ledger is touched.
// The check-then-act on the ledger runs under the pair lock inside one
// transaction; a lost race against another writer is retried.
func (s *MatchService) Swipe(ctx context.Context, userID string, req domain.SwipeRequest) (*domain.MatchRecord, error) {
	if req.SwiperPetID == "" || req.TargetPetID == "" {
		return nil, fmt.Errorf("%w: swiperPetId and targetPetId are required", common.ErrInvalidInput)
	}
	if !req.Direction.Valid() {
		return nil, common.ErrInvalidDirection
	}
	if req.SwiperPetID == req.TargetPetID {
		return nil, common.ErrSelfSwipe
	}

	swiper, err := ownedPet(ctx, s.pets, userID, req.SwiperPetID)
	if err != nil {
		return nil, err
	}
	target, err := s.pets.FindByID(ctx, req.TargetPetID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockPair(ctx, swiper.ID, target.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		rec    *domain.MatchRecord
		action swipeAction
	)
	err = common.WithRetry(ctx, s.opts.MaxAttempts, isLedgerRace, func(attempt int) error {
		if attempt > 1 {
			logger.FromContext(ctx).Debug().
				Int("attempt", attempt).
				Str("pair", domain.PairKey(swiper.ID, target.ID)).
				Msg("retrying swipe after concurrent ledger write")
		}
		var err error
		rec, action, err = s.applySwipe(ctx, swiper.ID, target.ID, req.Direction)
		return err
	})
	if isLedgerRace(err) {
		err = fmt.Errorf("%w: concurrent swipes on this pair, try again", common.ErrConflict)
	}

	outcome := action.String()
	switch {
	case errors.Is(err, common.ErrConflict):
		outcome = actionConflict.String()
	case err != nil:
		outcome = "error"
	}
	swipesTotal.WithLabelValues(string(req.Direction), outcome).Inc()
	if err != nil {
		return nil, err
	}

	if action == actionMatch {
		s.notifyMatch(rec, swiper.OwnerID, target.OwnerID)
	}
	return rec, nil
}

// applySwipe runs one read-decide-write cycle in a single transaction
func (s *MatchService) applySwipe(ctx context.Context, swiperID, targetID string, dir domain.SwipeDirection) (*domain.MatchRecord, swipeAction, error) {
	var (
		result *domain.MatchRecord
		action swipeAction
	)

	err := s.ledger.Transaction(ctx, func(ledger repository.MatchRepository) error {
		existing, err := ledger.FindRecord(ctx, swiperID, targetID)
		if err != nil {
			return err
		}

		action = decideSwipe(domain.DerivePairState(existing, swiperID), dir)
		switch action {
		case actionCreate:
			status := domain.MatchStatusPending
			if dir == domain.SwipeLeft {
				status = domain.MatchStatusRejected
			}
			result, err = ledger.Create(ctx, swiperID, targetID, status, nil)
			return err
		case actionKeep:
			result = existing
			return nil
		case actionMatch:
			result = existing
			return ledger.UpdateStatus(ctx, existing, domain.MatchStatusMatched)
		case actionReject:
			result = existing
			return ledger.UpdateStatus(ctx, existing, domain.MatchStatusRejected)
		default:
			return common.ErrDecisionAlreadyMade
		}
	})
	if err != nil {
		return nil, action, err
	}
	return result, action, nil
}

// GetSwipeCandidates lists pets petID has never interacted with, excluding
// the pet itself and every pet of the same owner. Newest first, capped.
func (s *MatchService) GetSwipeCandidates(ctx context.Context, userID, petID string) ([]*domain.Pet, error) {
	if petID == "" {
		return nil, fmt.Errorf("%w: petId is required", common.ErrInvalidInput)
	}

	pet, err := ownedPet(ctx, s.pets, userID, petID)
	if err != nil {
		return nil, err
	}

	records, err := s.ledger.FindAllInvolving(ctx, pet.ID)
	if err != nil {
		return nil, err
	}
	exclude := make([]string, 0, len(records))
	for _, rec := range records {
		exclude = append(exclude, rec.Counterpart(pet.ID))
	}

	return s.pets.ListSwipeCandidates(ctx, repository.CandidateQuery{
		PetID:         pet.ID,
		OwnerID:       pet.OwnerID,
		ExcludePetIDs: exclude,
		Limit:         s.opts.CandidateCap,
	})
}

// RequestMatch creates a pending record with an optional message. Unlike a
// swipe it never finalizes: any existing record for the pair is a conflict.
func (s *MatchService) RequestMatch(ctx context.Context, userID string, req domain.CreateMatchRequest) (*domain.MatchRecord, error) {
	if req.InitiatorPetID == "" || req.TargetPetID == "" {
		return nil, fmt.Errorf("%w: initiatorPetId and targetPetId are required", common.ErrInvalidInput)
	}
	if req.InitiatorPetID == req.TargetPetID {
		return nil, common.ErrSelfSwipe
	}

	initiator, err := ownedPet(ctx, s.pets, userID, req.InitiatorPetID)
	if err != nil {
		return nil, err
	}
	target, err := s.pets.FindByID(ctx, req.TargetPetID)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockPair(ctx, initiator.ID, target.ID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var rec *domain.MatchRecord
	err = s.ledger.Transaction(ctx, func(ledger repository.MatchRepository) error {
		existing, err := ledger.FindRecord(ctx, initiator.ID, target.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return common.ErrMatchExists
		}
		rec, err = ledger.Create(ctx, initiator.ID, target.ID, domain.MatchStatusPending, req.Message)
		return err
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, common.ErrMatchExists
	}
	if err != nil {
		return nil, err
	}

	s.notifier.SendToMember(target.OwnerID, &ws.Event{Type: ws.EventMatchRequest, Payload: rec})
	return rec, nil
}

// ListUserMatches returns every record involving any pet userID owns
func (s *MatchService) ListUserMatches(ctx context.Context, userID string) ([]*domain.MatchRecord, error) {
	pets, err := s.pets.ListByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(pets))
	for i, p := range pets {
		ids[i] = p.ID
	}
	return s.ledger.FindAllInvolvingAny(ctx, ids)
}

// GetMatch returns a record visible to userID
func (s *MatchService) GetMatch(ctx context.Context, userID, matchID string) (*domain.MatchRecord, error) {
	rec, err := s.ledger.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if _, _, err := s.authorize(ctx, userID, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// UpdateMatchStatus decides a pending record. Either owner may reject, only
// the target pet's owner may accept.
func (s *MatchService) UpdateMatchStatus(ctx context.Context, userID, matchID string, status domain.MatchStatus) (*domain.MatchRecord, error) {
	if !status.Decided() {
		return nil, common.ErrInvalidStatus
	}

	rec, err := s.ledger.FindByID(ctx, matchID)
	if err != nil {
		return nil, err
	}
	initiator, target, err := s.authorize(ctx, userID, rec)
	if err != nil {
		return nil, err
	}
	if status == domain.MatchStatusMatched && target.OwnerID != userID {
		return nil, fmt.Errorf("%w: only the target pet's owner can accept", common.ErrForbidden)
	}

	unlock, err := s.lockPair(ctx, rec.InitiatorPetID, rec.TargetPetID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	err = common.WithRetry(ctx, s.opts.MaxAttempts, isLedgerRace, func(int) error {
		return s.ledger.Transaction(ctx, func(ledger repository.MatchRepository) error {
			current, err := ledger.FindByID(ctx, matchID)
			if err != nil {
				return err
			}
			if current.Status.Decided() {
				return common.ErrDecisionAlreadyMade
			}
			if err := ledger.UpdateStatus(ctx, current, status); err != nil {
				return err
			}
			rec = current
			return nil
		})
	})
	if isLedgerRace(err) {
		err = common.ErrDecisionAlreadyMade
	}
	if err != nil {
		return nil, err
	}

	if status == domain.MatchStatusMatched {
		s.notifyMatch(rec, initiator.OwnerID, target.OwnerID)
	}
	return rec, nil
}

// authorize resolves both pets and checks userID owns at least one
func (s *MatchService) authorize(ctx context.Context, userID string, rec *domain.MatchRecord) (*domain.Pet, *domain.Pet, error) {
	initiator, err := s.pets.FindByID(ctx, rec.InitiatorPetID)
	if err != nil {
		return nil, nil, err
	}
	target, err := s.pets.FindByID(ctx, rec.TargetPetID)
	if err != nil {
		return nil, nil, err
	}
	if initiator.OwnerID != userID && target.OwnerID != userID {
		return nil, nil, common.ErrMatchAccess
	}
	return initiator, target, nil
}

func (s *MatchService) lockPair(ctx context.Context, a, b string) (lock.Unlock, error) {
	unlock, err := s.locker.Lock(ctx, domain.PairKey(a, b))
	if err != nil {
		return nil, fmt.Errorf("%w: pair lock: %w", common.ErrStorage, err)
	}
	return unlock, nil
}

func (s *MatchService) notifyMatch(rec *domain.MatchRecord, ownerIDs ...string) {
	seen := domain.NewIDSet()
	for _, id := range ownerIDs {
		if seen.Has(id) {
			continue
		}
		seen.Add(id)
		s.notifier.SendToMember(id, &ws.Event{Type: ws.EventMatch, Payload: rec})
	}
}

// isLedgerRace reports a write lost to a concurrent writer on the same pair,
// including a transaction the database aborted to break a deadlock
func isLedgerRace(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, repository.ErrStaleRecord) ||
		repository.IsLockConflict(err)
}
