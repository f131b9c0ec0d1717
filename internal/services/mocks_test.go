package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/interfaces"
	"github.com/roomieradar/roomieradar/internal/matching"
)

type MockUserStore struct{ mock.Mock }

func (m *MockUserStore) CreateUser(ctx context.Context, user *database.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserStore) GetUserByID(ctx context.Context, id string) (*database.User, error) {
	args := m.Called(ctx, id)
	user, _ := args.Get(0).(*database.User)
	return user, args.Error(1)
}

func (m *MockUserStore) GetUserByEmail(ctx context.Context, email string) (*database.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*database.User)
	return user, args.Error(1)
}

type MockDenylist struct{ mock.Mock }

func (m *MockDenylist) RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error {
	return m.Called(ctx, tokenID, ttl).Error(0)
}

func (m *MockDenylist) IsTokenRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

type MockProfileStore struct{ mock.Mock }

func (m *MockProfileStore) GetProfile(ctx context.Context, userID string) (*database.Profile, error) {
	args := m.Called(ctx, userID)
	profile, _ := args.Get(0).(*database.Profile)
	return profile, args.Error(1)
}

func (m *MockProfileStore) UpsertProfile(ctx context.Context, userID string, update interfaces.ProfileUpdate) (*database.Profile, error) {
	args := m.Called(ctx, userID, update)
	profile, _ := args.Get(0).(*database.Profile)
	return profile, args.Error(1)
}

type MockPreferencesStore struct{ mock.Mock }

func (m *MockPreferencesStore) GetPreferences(ctx context.Context, userID string) (*database.Preferences, error) {
	args := m.Called(ctx, userID)
	prefs, _ := args.Get(0).(*database.Preferences)
	return prefs, args.Error(1)
}

func (m *MockPreferencesStore) SavePreferences(ctx context.Context, prefs *database.Preferences) (*database.Preferences, error) {
	args := m.Called(ctx, prefs)
	saved, _ := args.Get(0).(*database.Preferences)
	return saved, args.Error(1)
}

type MockCandidateStore struct{ mock.Mock }

func (m *MockCandidateStore) ListCandidates(ctx context.Context, excluding []string) ([]matching.Subject, error) {
	args := m.Called(ctx, excluding)
	subjects, _ := args.Get(0).([]matching.Subject)
	return subjects, args.Error(1)
}

type MockSwipeStore struct{ mock.Mock }

func (m *MockSwipeStore) ExcludedIDs(ctx context.Context, userID string) ([]string, error) {
	args := m.Called(ctx, userID)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockSwipeStore) PairState(ctx context.Context, userID, targetID string) (matching.PairState, error) {
	args := m.Called(ctx, userID, targetID)
	return args.Get(0).(matching.PairState), args.Error(1)
}

func (m *MockSwipeStore) ApplySwipe(ctx context.Context, userID, targetID string, direction matching.Direction) (interfaces.SwipeResult, error) {
	args := m.Called(ctx, userID, targetID, direction)
	return args.Get(0).(interfaces.SwipeResult), args.Error(1)
}

func (m *MockSwipeStore) GetMutualMatches(ctx context.Context, userID string) ([]interfaces.MatchedUser, error) {
	args := m.Called(ctx, userID)
	matches, _ := args.Get(0).([]interfaces.MatchedUser)
	return matches, args.Error(1)
}

type MockMessageStore struct{ mock.Mock }

func (m *MockMessageStore) CreateMessage(ctx context.Context, msg *database.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func (m *MockMessageStore) ListMessages(ctx context.Context, chatID string) ([]database.Message, error) {
	args := m.Called(ctx, chatID)
	messages, _ := args.Get(0).([]database.Message)
	return messages, args.Error(1)
}

func (m *MockMessageStore) MarkRead(ctx context.Context, chatID, recipientID string) (int64, error) {
	args := m.Called(ctx, chatID, recipientID)
	return args.Get(0).(int64), args.Error(1)
}

type MockRecorder struct{ mock.Mock }

func (m *MockRecorder) RecordMatchRequest(ctx context.Context, candidates int, duration time.Duration) {
	m.Called(ctx, candidates, duration)
}

func (m *MockRecorder) RecordSwipe(ctx context.Context, direction string, matched bool) {
	m.Called(ctx, direction, matched)
}

func (m *MockRecorder) RecordSwipeRetry(ctx context.Context) {
	m.Called(ctx)
}

type MockPresence struct{ mock.Mock }

func (m *MockPresence) IsOnline(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

var (
	_ interfaces.UserStore        = (*MockUserStore)(nil)
	_ interfaces.TokenDenylist    = (*MockDenylist)(nil)
	_ interfaces.ProfileStore     = (*MockProfileStore)(nil)
	_ interfaces.PreferencesStore = (*MockPreferencesStore)(nil)
	_ interfaces.CandidateStore   = (*MockCandidateStore)(nil)
	_ interfaces.SwipeStore       = (*MockSwipeStore)(nil)
	_ interfaces.MessageStore     = (*MockMessageStore)(nil)
	_ interfaces.MatchRecorder    = (*MockRecorder)(nil)
	_ interfaces.PresenceReader   = (*MockPresence)(nil)

	_ interfaces.UserServiceInterface      = (*UserService)(nil)
	_ interfaces.ProfileServiceInterface   = (*ProfileService)(nil)
	_ interfaces.MatchingServiceInterface  = (*MatchingService)(nil)
	_ interfaces.MessagingServiceInterface = (*MessagingService)(nil)
)
