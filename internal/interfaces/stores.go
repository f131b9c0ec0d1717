package interfaces

import (
	"context"
	"time"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/matching"
)

// UserStore persists accounts. Lookups of unknown users return a not-found
// AppError; duplicate email or username returns a conflict.
type UserStore interface {
	CreateUser(ctx context.Context, user *database.User) error
	GetUserByID(ctx context.Context, id string) (*database.User, error)
	GetUserByEmail(ctx context.Context, email string) (*database.User, error)
}

// ProfileStore returns nil, nil for a user with no profile yet.
type ProfileStore interface {
	GetProfile(ctx context.Context, userID string) (*database.Profile, error)
	UpsertProfile(ctx context.Context, userID string, update ProfileUpdate) (*database.Profile, error)
}

// PreferencesStore returns nil, nil for a user who never saved the survey.
type PreferencesStore interface {
	GetPreferences(ctx context.Context, userID string) (*database.Preferences, error)
	SavePreferences(ctx context.Context, prefs *database.Preferences) (*database.Preferences, error)
}

// CandidateStore lists every user with a profile except the given ids,
// together with their preferences when present.
type CandidateStore interface {
	ListCandidates(ctx context.Context, excluding []string) ([]matching.Subject, error)
}

// SwipeStore owns swipes and mutual matches. ApplySwipe makes a single
// serializable attempt; callers retry errors database.IsRetryable accepts.
type SwipeStore interface {
	ExcludedIDs(ctx context.Context, userID string) ([]string, error)
	PairState(ctx context.Context, userID, targetID string) (matching.PairState, error)
	ApplySwipe(ctx context.Context, userID, targetID string, direction matching.Direction) (SwipeResult, error)
	GetMutualMatches(ctx context.Context, userID string) ([]MatchedUser, error)
}

// MessageStore persists chat messages.
type MessageStore interface {
	CreateMessage(ctx context.Context, msg *database.Message) error
	ListMessages(ctx context.Context, chatID string) ([]database.Message, error)
	MarkRead(ctx context.Context, chatID, recipientID string) (int64, error)
}

// TokenDenylist remembers logged-out tokens until they expire.
type TokenDenylist interface {
	RevokeToken(ctx context.Context, tokenID string, ttl time.Duration) error
	IsTokenRevoked(ctx context.Context, tokenID string) (bool, error)
}

// PresenceReader reports whether a user has an open chat connection.
type PresenceReader interface {
	IsOnline(ctx context.Context, userID string) (bool, error)
}

// PresenceTracker records which users have an open chat connection.
type PresenceTracker interface {
	PresenceReader
	SetOnline(ctx context.Context, userID string) error
	SetOffline(ctx context.Context, userID string) error
}
