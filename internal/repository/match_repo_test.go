package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pawmatch/pawmatch-backend/internal/common"
	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMatchLedger_FindRecordBothOrderings(t *testing.T) {
	repo := NewMatchRepository(setupTestDB(t))
	ctx := context.Background()

	created, err := repo.Create(ctx, "pet-b", "pet-a", domain.MatchStatusPending, nil)
	require.NoError(t, err)
	assert.Equal(t, "pet-a|pet-b", created.PairKey)

	forward, err := repo.FindRecord(ctx, "pet-b", "pet-a")
	require.NoError(t, err)
	reverse, err := repo.FindRecord(ctx, "pet-a", "pet-b")
	require.NoError(t, err)

	require.NotNil(t, forward)
	require.NotNil(t, reverse)
	assert.Equal(t, created.ID, forward.ID)
	assert.Equal(t, created.ID, reverse.ID)

	none, err := repo.FindRecord(ctx, "pet-a", "pet-c")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestMatchLedger_PairKeyIsUnique(t *testing.T) {
	repo := NewMatchRepository(setupTestDB(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, "pet-a", "pet-b", domain.MatchStatusPending, nil)
	require.NoError(t, err)

	_, err = repo.Create(ctx, "pet-b", "pet-a", domain.MatchStatusPending, nil)
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	assert.ErrorIs(t, err, common.ErrStorage)
}

func TestMatchLedger_UpdateStatusCompareAndSet(t *testing.T) {
	repo := NewMatchRepository(setupTestDB(t))
	ctx := context.Background()

	rec, err := repo.Create(ctx, "pet-a", "pet-b", domain.MatchStatusPending, nil)
	require.NoError(t, err)
	stale := *rec

	require.NoError(t, repo.UpdateStatus(ctx, rec, domain.MatchStatusMatched))
	assert.Equal(t, domain.MatchStatusMatched, rec.Status)

	err = repo.UpdateStatus(ctx, &stale, domain.MatchStatusRejected)
	assert.ErrorIs(t, err, ErrStaleRecord)

	stored, err := repo.FindByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchStatusMatched, stored.Status)
}

func TestMatchLedger_FindAllInvolving(t *testing.T) {
	db := setupTestDB(t)
	repo := NewMatchRepository(db)
	ctx := context.Background()

	for _, pair := range [][2]string{{"a", "b"}, {"c", "a"}, {"c", "d"}} {
		_, err := repo.Create(ctx, pair[0], pair[1], domain.MatchStatusPending, nil)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond)
	}

	recs, err := repo.FindAllInvolving(ctx, "a")
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "c", recs[0].InitiatorPetID, "newest first")

	recs, err = repo.FindAllInvolvingAny(ctx, []string{"b", "d"})
	require.NoError(t, err)
	assert.Len(t, recs, 2)

	recs, err = repo.FindAllInvolvingAny(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMatchLedger_FindByIDMissing(t *testing.T) {
	repo := NewMatchRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), "nope")

	assert.ErrorIs(t, err, common.ErrMatchNotFound)
}

func TestMatchLedger_TransactionRollsBack(t *testing.T) {
	repo := NewMatchRepository(setupTestDB(t))
	ctx := context.Background()

	err := repo.Transaction(ctx, func(ledger MatchRepository) error {
		if _, err := ledger.Create(ctx, "a", "b", domain.MatchStatusPending, nil); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	rec, err := repo.FindRecord(ctx, "a", "b")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestIsLockConflict(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"deadlock", common.StorageError("create match record", &mysqldriver.MySQLError{Number: 1213, Message: "Deadlock found"}), true},
		{"lock wait timeout", fmt.Errorf("commit: %w", &mysqldriver.MySQLError{Number: 1205}), true},
		{"duplicate entry", &mysqldriver.MySQLError{Number: 1062}, false},
		{"other", errors.New("connection reset"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsLockConflict(tc.err))
		})
	}
}
