package services

import (
	"context"
	"strings"
	"time"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/interfaces"
	"github.com/roomieradar/roomieradar/internal/matching"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

const (
	defaultSwipeAttempts = 3
	defaultSwipeBackoff  = 25 * time.Millisecond
)

type MatchingService struct {
	profiles   interfaces.ProfileStore
	prefs      interfaces.PreferencesStore
	candidates interfaces.CandidateStore
	swipes     interfaces.SwipeStore
	recorder   interfaces.MatchRecorder
	presence   interfaces.PresenceReader

	attempts int
	backoff  time.Duration
}

// MatchingOption configures a MatchingService.
type MatchingOption func(*MatchingService)

// WithRecorder reports match and swipe outcomes to r.
func WithRecorder(r interfaces.MatchRecorder) MatchingOption {
	return func(s *MatchingService) { s.recorder = r }
}

// WithPresence flags each mutual match that currently has chat open.
func WithPresence(p interfaces.PresenceReader) MatchingOption {
	return func(s *MatchingService) { s.presence = p }
}

// WithSwipeRetry sets how many times a conflicting swipe transaction is tried
// and the base delay between attempts.
func WithSwipeRetry(attempts int, backoff time.Duration) MatchingOption {
	return func(s *MatchingService) {
		if attempts > 0 {
			s.attempts = attempts
		}
		if backoff >= 0 {
			s.backoff = backoff
		}
	}
}

func NewMatchingService(
	profiles interfaces.ProfileStore,
	prefs interfaces.PreferencesStore,
	candidates interfaces.CandidateStore,
	swipes interfaces.SwipeStore,
	opts ...MatchingOption,
) *MatchingService {
	s := &MatchingService{
		profiles:   profiles,
		prefs:      prefs,
		candidates: candidates,
		swipes:     swipes,
		recorder:   noopRecorder{},
		attempts:   defaultSwipeAttempts,
		backoff:    defaultSwipeBackoff,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ComputeMatches ranks everyone the user has not swiped on or matched with.
// A user without preferences gets an empty list.
func (s *MatchingService) ComputeMatches(ctx context.Context, userID string, opts matching.Options) ([]matching.Candidate, error) {
	start := time.Now()
	logger := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"user_id":   userID,
		"operation": "compute_matches",
	})

	prefs, err := s.prefs.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}
	if prefs == nil {
		logger.WithError(errors.NewPreferencesMissingError(userID)).Debug("No preferences, returning empty match list")
		s.recorder.RecordMatchRequest(ctx, 0, time.Since(start))
		return []matching.Candidate{}, nil
	}

	profile, err := s.profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	excluded, err := s.swipes.ExcludedIDs(ctx, userID)
	if err != nil {
		return nil, err
	}

	pool, err := s.candidates.ListCandidates(ctx, excluded)
	if err != nil {
		return nil, err
	}
	for _, candidate := range pool {
		if err := matching.Completeness(candidate); err != nil {
			logger.WithError(err).Debug("Scoring candidate from fallbacks")
		}
	}

	requester := matching.Subject{UserID: userID, Profile: profile, Preferences: prefs}
	matches := matching.ComputeMatchesWithOptions(requester, pool, opts)

	s.recorder.RecordMatchRequest(ctx, len(matches), time.Since(start))
	logger.WithFields(map[string]interface{}{
		"pool_size":   len(pool),
		"match_count": len(matches),
	}).Info("Computed matches")
	return matches, nil
}

// ApplySwipe validates the direction before touching any state, then records
// the swipe. Serialization conflicts are retried; if they persist, or a right
// swipe fails for any other storage reason, nothing is kept and a
// PARTIAL_MATCH_WRITE error is returned.
func (s *MatchingService) ApplySwipe(ctx context.Context, userID, targetID, direction string) (interfaces.SwipeResult, error) {
	dir, err := matching.ParseDirection(direction)
	if err != nil {
		return interfaces.SwipeResult{}, err
	}
	targetID = strings.TrimSpace(targetID)
	if targetID == "" {
		return interfaces.SwipeResult{}, errors.NewValidationError("target_id", "Target is required")
	}
	if targetID == userID {
		return interfaces.SwipeResult{}, errors.NewValidationError("target_id", "You cannot swipe on yourself")
	}

	logger := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"user_id":   userID,
		"target_id": targetID,
		"direction": dir.String(),
		"operation": "apply_swipe",
	})

	for attempt := 1; ; attempt++ {
		result, err := s.swipes.ApplySwipe(ctx, userID, targetID, dir)
		if err == nil {
			s.recorder.RecordSwipe(ctx, dir.String(), result.Matched)
			if result.Matched {
				logger.Info("Mutual match created")
			}
			return result, nil
		}

		if _, ok := errors.AsAppError(err); ok {
			return interfaces.SwipeResult{}, err
		}

		if database.IsRetryable(err) && attempt < s.attempts {
			s.recorder.RecordSwipeRetry(ctx)
			logger.WithField("attempt", attempt).WithError(err).Warn("Retrying swipe after serialization conflict")
			if waitErr := sleepContext(ctx, time.Duration(attempt)*s.backoff); waitErr != nil {
				return interfaces.SwipeResult{}, errors.NewTimeoutError("apply_swipe", time.Duration(attempt)*s.backoff)
			}
			continue
		}

		logger.WithField("attempt", attempt).WithError(err).Error("Swipe could not be recorded")
		if dir == matching.DirectionRight {
			return interfaces.SwipeResult{}, errors.NewPartialMatchWriteError(userID, targetID, err)
		}
		return interfaces.SwipeResult{}, errors.NewDatabaseError("apply_swipe", err)
	}
}

// GetMutualMatches lists the user's matches. Presence is best effort: after
// the first lookup failure the remaining matches are reported offline.
func (s *MatchingService) GetMutualMatches(ctx context.Context, userID string) ([]interfaces.MatchedUser, error) {
	matches, err := s.swipes.GetMutualMatches(ctx, userID)
	if err != nil || s.presence == nil {
		return matches, err
	}

	for i := range matches {
		online, err := s.presence.IsOnline(ctx, matches[i].UserID)
		if err != nil {
			telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
				"operation":  "mutual_matches_presence",
				"matched_id": matches[i].UserID,
			}).WithError(err).Warn("Failed to read chat presence")
			break
		}
		matches[i].Online = online
	}
	return matches, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type noopRecorder struct{}

func (noopRecorder) RecordMatchRequest(context.Context, int, time.Duration) {}
func (noopRecorder) RecordSwipe(context.Context, string, bool) {}
func (noopRecorder) RecordSwipeRetry(context.Context) {}
