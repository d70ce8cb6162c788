package service

import (
	"context"
	"sync"
	"time"

	"github.com/pawmatch/pawmatch-backend/internal/domain"
	"github.com/pawmatch/pawmatch-backend/internal/repository"
	"github.com/pawmatch/pawmatch-backend/internal/ws"
	"github.com/stretchr/testify/mock"
)

// --- Mock PostRepository ---

type mockPostRepo struct {
	mock.Mock
}

func (m *mockPostRepo) FetchRecentTimeline(ctx context.Context, q repository.TimelineQuery) ([]*domain.Post, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Post), args.Error(1)
}

func (m *mockPostRepo) FetchSponsoredCandidate(ctx context.Context, excludeAuthorIDs []string, now time.Time) (*domain.Post, error) {
	args := m.Called(ctx, excludeAuthorIDs, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPostRepo) Create(ctx context.Context, post *domain.Post) error {
	return m.Called(ctx, post).Error(0)
}

func (m *mockPostRepo) FindByID(ctx context.Context, id string) (*domain.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Post), args.Error(1)
}

func (m *mockPostRepo) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	return m.Called(ctx, id, changes).Error(0)
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// --- Mock StoryRepository ---

type mockStoryRepo struct {
	mock.Mock
}

func (m *mockStoryRepo) Create(ctx context.Context, story *domain.Story) error {
	return m.Called(ctx, story).Error(0)
}

func (m *mockStoryRepo) FindByID(ctx context.Context, id string) (*domain.Story, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Story), args.Error(1)
}

func (m *mockStoryRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockStoryRepo) FetchActive(ctx context.Context, authorIDs []string, now time.Time, limit int) ([]*domain.Story, error) {
	args := m.Called(ctx, authorIDs, now, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Story), args.Error(1)
}

func (m *mockStoryRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock FollowRepository ---

type mockFollowRepo struct {
	mock.Mock
}

func (m *mockFollowRepo) Follow(ctx context.Context, followerID, followeeID string) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFollowRepo) Unfollow(ctx context.Context, followerID, followeeID string) (bool, error) {
	args := m.Called(ctx, followerID, followeeID)
	return args.Bool(0), args.Error(1)
}

func (m *mockFollowRepo) GetFolloweeIDs(ctx context.Context, followerID string) ([]string, error) {
	args := m.Called(ctx, followerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockFollowRepo) GetFollowerIDs(ctx context.Context, followeeID string) ([]string, error) {
	args := m.Called(ctx, followeeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockFollowRepo) ListFollowers(ctx context.Context, userID string, offset, limit int) ([]*domain.UserFollow, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.UserFollow), args.Get(1).(int64), args.Error(2)
}

func (m *mockFollowRepo) ListFollowing(ctx context.Context, userID string, offset, limit int) ([]*domain.UserFollow, int64, error) {
	args := m.Called(ctx, userID, offset, limit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*domain.UserFollow), args.Get(1).(int64), args.Error(2)
}

// --- Mock BlockRepository ---

type mockBlockRepo struct {
	mock.Mock
}

func (m *mockBlockRepo) Block(ctx context.Context, userID, blockedUserID string) (bool, error) {
	args := m.Called(ctx, userID, blockedUserID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBlockRepo) Unblock(ctx context.Context, userID, blockedUserID string) (bool, error) {
	args := m.Called(ctx, userID, blockedUserID)
	return args.Bool(0), args.Error(1)
}

func (m *mockBlockRepo) GetBlockedUserIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// --- Mock InteractionRepository ---

type mockInteractionRepo struct {
	mock.Mock
}

func (m *mockInteractionRepo) GetLikedOrCommentedPostIDs(ctx context.Context, userID string, since time.Time) (domain.IDSet, error) {
	args := m.Called(ctx, userID, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.IDSet), args.Error(1)
}

// --- Mock PetRepository ---

type mockPetRepo struct {
	mock.Mock
}

func (m *mockPetRepo) Create(ctx context.Context, pet *domain.Pet) error {
	return m.Called(ctx, pet).Error(0)
}

func (m *mockPetRepo) FindByID(ctx context.Context, id string) (*domain.Pet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Pet), args.Error(1)
}

func (m *mockPetRepo) ListByOwner(ctx context.Context, ownerID string) ([]*domain.Pet, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Pet), args.Error(1)
}

func (m *mockPetRepo) Update(ctx context.Context, id string, changes map[string]interface{}) error {
	return m.Called(ctx, id, changes).Error(0)
}

func (m *mockPetRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockPetRepo) ListSwipeCandidates(ctx context.Context, q repository.CandidateQuery) ([]*domain.Pet, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Pet), args.Error(1)
}

// --- Mock LikeRepository ---

type mockLikeRepo struct {
	mock.Mock
}

func (m *mockLikeRepo) Toggle(ctx context.Context, postID, userID string) (*domain.LikeToggleResult, string, error) {
	args := m.Called(ctx, postID, userID)
	if args.Get(0) == nil {
		return nil, args.String(1), args.Error(2)
	}
	return args.Get(0).(*domain.LikeToggleResult), args.String(1), args.Error(2)
}

// --- Mock CommentRepository ---

type mockCommentRepo struct {
	mock.Mock
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *domain.PostComment) (string, error) {
	args := m.Called(ctx, comment)
	return args.String(0), args.Error(1)
}

func (m *mockCommentRepo) ListByPost(ctx context.Context, postID string, limit int) ([]*domain.PostComment, error) {
	args := m.Called(ctx, postID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.PostComment), args.Error(1)
}

// --- Recording notifier ---

type sentEvent struct {
	MemberID string
	Type     string
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []sentEvent
}

func (n *recordingNotifier) SendToMember(memberID string, event *ws.Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, sentEvent{MemberID: memberID, Type: event.Type})
}

func (n *recordingNotifier) sent() []sentEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentEvent(nil), n.events...)
}

// --- Recording feed invalidator ---

type recordingInvalidator struct {
	mu    sync.Mutex
	users []string
}

func (r *recordingInvalidator) InvalidateUserFeed(_ context.Context, userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users = append(r.users, userID)
}

func (r *recordingInvalidator) invalidated() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.users...)
}
