package repository

import (
	"context"
	"database/sql"

	"github.com/roomieradar/roomieradar/internal/database"
	"github.com/roomieradar/roomieradar/internal/errors"
	"github.com/roomieradar/roomieradar/internal/interfaces"
	"github.com/roomieradar/roomieradar/internal/matching"
	"github.com/roomieradar/roomieradar/internal/telemetry"
)

type SwipeRepository struct {
	db *database.DB
}

func NewSwipeRepository(db *database.DB) *SwipeRepository {
	return &SwipeRepository{db: db}
}

// ExcludedIDs is the user itself plus everyone it has swiped on or matched with.
func (r *SwipeRepository) ExcludedIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT target_id FROM swipes WHERE user_id = $1
		UNION
		SELECT matched_id FROM mutual_matches WHERE user_id = $1
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("excluded_ids", err)
	}
	defer rows.Close()

	excluded := []string{userID}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewDatabaseError("excluded_ids", err)
		}
		excluded = append(excluded, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("excluded_ids", err)
	}
	return excluded, nil
}

func (r *SwipeRepository) PairState(ctx context.Context, userID, targetID string) (matching.PairState, error) {
	state, err := pairState(ctx, r.db, userID, targetID)
	if err != nil {
		return "", errors.NewDatabaseError("pair_state", err)
	}
	return state, nil
}

func pairState(ctx context.Context, q database.Querier, userID, targetID string) (matching.PairState, error) {
	var matched bool
	err := q.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM mutual_matches WHERE user_id = $1 AND matched_id = $2)`,
		userID, targetID,
	).Scan(&matched)
	if err != nil {
		return "", err
	}
	if matched {
		return matching.StateMatched, nil
	}

	var direction string
	err = q.QueryRowContext(ctx,
		`SELECT direction FROM swipes WHERE user_id = $1 AND target_id = $2`,
		userID, targetID,
	).Scan(&direction)
	switch {
	case err == sql.ErrNoRows:
		return matching.StateUnseen, nil
	case err != nil:
		return "", err
	case direction == string(matching.DirectionLeft):
		return matching.StateSwipedLeft, nil
	default:
		return matching.StateSwipedRight, nil
	}
}

// ApplySwipe records one swipe in a serializable transaction. When it is a
// right swipe answering an earlier right swipe from the target, both
// mutual_matches rows are written in the same transaction. Serialization
// failures come back unwrapped so the caller can retry.
func (r *SwipeRepository) ApplySwipe(ctx context.Context, userID, targetID string, direction matching.Direction) (interfaces.SwipeResult, error) {
	logger := telemetry.GetContextualLogger(ctx).WithFields(map[string]interface{}{
		"user_id":   userID,
		"target_id": targetID,
		"direction": direction,
		"operation": "apply_swipe",
	})

	var result interfaces.SwipeResult
	err := r.db.WithTransaction(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, func(tx *sql.Tx) error {
		result = interfaces.SwipeResult{}

		current, err := pairState(ctx, tx, userID, targetID)
		if err != nil {
			return err
		}

		var reverseRight bool
		err = tx.QueryRowContext(ctx,
			`SELECT EXISTS (SELECT 1 FROM swipes WHERE user_id = $1 AND target_id = $2 AND direction = 'right')`,
			targetID, userID,
		).Scan(&reverseRight)
		if err != nil {
			return err
		}

		transition, err := matching.NextState(current, direction, reverseRight)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO swipes (user_id, target_id, direction) VALUES ($1, $2, $3)`,
			userID, targetID, string(direction),
		)
		if err != nil {
			return err
		}

		if transition.Matched {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO mutual_matches (user_id, matched_id)
				VALUES ($1, $2), ($2, $1)
				ON CONFLICT DO NOTHING
			`, userID, targetID)
			if err != nil {
				return err
			}
			result = interfaces.SwipeResult{Matched: true, MatchedWithID: targetID}
		}
		return nil
	})

	switch {
	case err == nil:
		logger.WithField("matched", result.Matched).Info("Swipe recorded")
		return result, nil
	case database.IsRetryable(err):
		logger.WithError(err).Warn("Swipe transaction hit a serialization conflict")
		return interfaces.SwipeResult{}, err
	case database.IsUniqueViolation(err):
		return interfaces.SwipeResult{}, errors.NewConflictError("target has already been swiped")
	case database.IsForeignKeyViolation(err):
		return interfaces.SwipeResult{}, errors.NewNotFoundError("user")
	}
	if _, ok := errors.AsAppError(err); ok {
		return interfaces.SwipeResult{}, err
	}
	logger.WithError(err).Error("Swipe transaction failed")
	return interfaces.SwipeResult{}, err
}

func (r *SwipeRepository) GetMutualMatches(ctx context.Context, userID string) ([]interfaces.MatchedUser, error) {
	query := `
		SELECT m.matched_id, COALESCE(p.full_name, ''), COALESCE(p.profile_picture, ''), m.created_at
		FROM mutual_matches m
		LEFT JOIN profiles p ON p.user_id = m.matched_id
		WHERE m.user_id = $1
		ORDER BY m.created_at DESC, m.matched_id
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, errors.NewDatabaseError("get_mutual_matches", err)
	}
	defer rows.Close()

	matches := make([]interfaces.MatchedUser, 0)
	for rows.Next() {
		var m interfaces.MatchedUser
		if err := rows.Scan(&m.UserID, &m.FullName, &m.ProfilePicture, &m.MatchedAt); err != nil {
			return nil, errors.NewDatabaseError("get_mutual_matches", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseError("get_mutual_matches", err)
	}
	return matches, nil
}
