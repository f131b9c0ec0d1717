package interfaces

import (
	"context"
	"time"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/matching"
)

// UserServiceInterface defines account operations and token checks.
type UserServiceInterface interface {
	Register(ctx context.Context, req RegisterRequest) (*database.User, error)
	Login(ctx context.Context, email, password string) (string, *database.User, error)
	Logout(ctx context.Context, token string) error
	// Authenticate returns the user id a valid, unrevoked token belongs to.
	Authenticate(ctx context.Context, token string) (string, error)
}

// ProfileServiceInterface defines profile and preference survey operations.
type ProfileServiceInterface interface {
	GetProfile(ctx context.Context, userID string) (*database.Profile, error)
	UpdateProfile(ctx context.Context, userID string, update ProfileUpdate, photo *Photo) (*database.Profile, error)
	GetPreferences(ctx context.Context, userID string) (*database.Preferences, error)
	SavePreferences(ctx context.Context, userID string, prefs database.Preferences) (*database.Preferences, error)
}

// MatchingServiceInterface defines the match list and the swipe flow.
type MatchingServiceInterface interface {
	ComputeMatches(ctx context.Context, userID string, opts matching.Options) ([]matching.Candidate, error)
	ApplySwipe(ctx context.Context, userID, targetID, direction string) (SwipeResult, error)
	GetMutualMatches(ctx context.Context, userID string) ([]MatchedUser, error)
}

// MessagingServiceInterface defines chat persistence.
type MessagingServiceInterface interface {
	SendMessage(ctx context.Context, senderID, recipientID, body string) (*database.Message, error)
	GetChatHistory(ctx context.Context, userID, otherID string) ([]database.Message, error)
	MarkRead(ctx context.Context, userID, otherID string) error
}

// MatchRecorder receives match and swipe outcomes for metrics.
type MatchRecorder interface {
	RecordMatchRequest(ctx context.Context, candidates int, duration time.Duration)
	RecordSwipe(ctx context.Context, direction string, matched bool)
	RecordSwipeRetry(ctx context.Context)
}
